package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/errors"
)

var sample = bytes.Repeat([]byte("tile 12 tile 12 tile 7 water water water sand "), 64)

func TestRoundTrip(t *testing.T) {
	for _, algo := range append([]Algorithm{None}, allAlgorithms...) {
		t.Run(string(algo), func(t *testing.T) {
			compressor, err := NewCompressor(&Config{Algorithm: algo, Level: Default})
			require.NoError(t, err)
			assert.Equal(t, algo, compressor.Algorithm())
			assert.Equal(t, Default, compressor.Level())

			compressed, err := compressor.Compress(sample)
			require.NoError(t, err)
			if algo != None {
				assert.Less(t, len(compressed), len(sample))
			}

			decompressed, err := compressor.Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, sample, decompressed)

			var packed, unpacked bytes.Buffer
			require.NoError(t, compressor.CompressStream(&packed, bytes.NewReader(sample)))
			require.NoError(t, compressor.DecompressStream(&unpacked, &packed))
			assert.Equal(t, sample, unpacked.Bytes())
		})
	}
}

func TestCompressionLevels(t *testing.T) {
	for _, algo := range []Algorithm{Gzip, LZ4, Zstd, Deflate} {
		for _, level := range []Level{Fastest, Default, Better, Best} {
			t.Run(string(algo)+"/"+level.String(), func(t *testing.T) {
				compressor, err := NewCompressor(&Config{Algorithm: algo, Level: level})
				require.NoError(t, err)

				compressed, err := compressor.Compress(sample)
				require.NoError(t, err)
				decompressed, err := compressor.Decompress(compressed)
				require.NoError(t, err)
				assert.Equal(t, sample, decompressed)
			})
		}
	}
}

func TestDecompressLimit(t *testing.T) {
	for _, algo := range append([]Algorithm{None}, allAlgorithms...) {
		t.Run(string(algo), func(t *testing.T) {
			packer, err := NewCompressor(&Config{Algorithm: algo})
			require.NoError(t, err)
			compressed, err := packer.Compress(sample)
			require.NoError(t, err)

			limited, err := NewCompressor(&Config{Algorithm: algo, MaxDecompressedSize: 100})
			require.NoError(t, err)
			_, err = limited.Decompress(compressed)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeData))
		})
	}
}

func TestDecompressCorruptInput(t *testing.T) {
	garbage := []byte("definitely not a compressed stream")
	for _, algo := range []Algorithm{Gzip, Snappy, LZ4, Zstd, S2, Zlib} {
		t.Run(string(algo), func(t *testing.T) {
			compressor, err := NewCompressor(&Config{Algorithm: algo})
			require.NoError(t, err)
			_, err = compressor.Decompress(garbage)
			assert.Error(t, err)
		})
	}
}

func TestUnsupportedAlgorithm(t *testing.T) {
	_, err := NewCompressor(&Config{Algorithm: "brotli"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = NewCompressorPool(&Config{Algorithm: "brotli"})
	assert.Error(t, err)
}

func TestDefaultsToNone(t *testing.T) {
	compressor, err := NewCompressor(&Config{})
	require.NoError(t, err)
	assert.Equal(t, None, compressor.Algorithm())

	compressor, err = NewCompressor(nil)
	require.NoError(t, err)
	assert.Equal(t, Zstd, compressor.Algorithm())
}

func TestAlgorithmForPath(t *testing.T) {
	tests := []struct {
		path string
		alg  Algorithm
		name string
	}{
		{"levels/forest.yaml.gz", Gzip, "levels/forest.yaml"},
		{"music/theme.ogg.sz", Snappy, "music/theme.ogg"},
		{"tiles/map.bin.s2", S2, "tiles/map.bin"},
		{"tiles/map.bin.ZST", Zstd, "tiles/map.bin"},
		{"sprites/hero.png.lz4", LZ4, "sprites/hero.png"},
		{"fonts/mono.ttf.zz", Zlib, "fonts/mono.ttf"},
		{"sprites/hero.png", None, "sprites/hero.png"},
		{"README", None, "README"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			alg, name := AlgorithmForPath(tt.path)
			assert.Equal(t, tt.alg, alg)
			assert.Equal(t, tt.name, name)
		})
	}

	assert.Equal(t, ".zst", Extension(Zstd))
	assert.Equal(t, "", Extension(Deflate))
	assert.Equal(t, "", Extension(None))
}

func TestCompressorPool(t *testing.T) {
	pool, err := NewCompressorPool(&Config{Algorithm: Zstd, Level: Better})
	require.NoError(t, err)

	compressed, err := pool.Compress(sample)
	require.NoError(t, err)
	decompressed, err := pool.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, sample, decompressed)

	c := pool.Get()
	assert.Equal(t, Zstd, c.Algorithm())
	pool.Put(c)
}
