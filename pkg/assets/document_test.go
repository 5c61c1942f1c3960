package assets

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/compression"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/errors"
)

func TestDocumentFormat(t *testing.T) {
	assert.Equal(t, FormatYAML, DocumentFormat("a/b.yaml"))
	assert.Equal(t, FormatYAML, DocumentFormat("a/b.YML"))
	assert.Equal(t, FormatJSON, DocumentFormat("b.json"))
	assert.Equal(t, "", DocumentFormat("b.yaml.gz"))
	assert.Equal(t, "", DocumentFormat("README"))
}

func TestDecodeDocument(t *testing.T) {
	var doc Document
	require.NoError(t, decodeDocument(FormatYAML, []byte(""), &doc))
	assert.NotNil(t, doc.Data, "empty files decode to an empty map")

	err := decodeDocument(FormatJSON, []byte(`[1, 2]`), &doc)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))

	err = decodeDocument("toml", []byte(`a = 1`), &doc)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestDocumentGetters(t *testing.T) {
	doc := Document{Data: map[string]any{
		"whole":    float64(3),
		"fraction": 2.5,
		"big":      uint64(1) << 63,
		"list":     []any{"a", 1},
	}}

	n, ok := doc.Int("whole")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	_, ok = doc.Int("fraction")
	assert.False(t, ok)
	_, ok = doc.Int("big")
	assert.False(t, ok)
	_, ok = doc.Strings("list")
	assert.False(t, ok, "mixed lists are not string lists")
	_, ok = doc.Lookup("list.x")
	assert.False(t, ok)
	_, ok = doc.Lookup("whole.deeper")
	assert.False(t, ok)

	root, ok := doc.Lookup("")
	assert.True(t, ok)
	assert.Len(t, root, 4)

	var empty Document
	_, ok = empty.Lookup("")
	assert.False(t, ok)
}

func TestCloneMapIsDeep(t *testing.T) {
	src := map[string]any{
		"nested": map[string]any{"hp": 3},
		"list":   []any{map[string]any{"n": 1}},
	}
	dst := cloneMap(src)
	dst["nested"].(map[string]any)["hp"] = 0
	dst["list"].([]any)[0].(map[string]any)["n"] = 0

	assert.Equal(t, 3, src["nested"].(map[string]any)["hp"])
	assert.Equal(t, 1, src["list"].([]any)[0].(map[string]any)["n"])
	assert.Nil(t, cloneMap(nil))
}

func TestFileReader(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "root/tiles/map.bin", []byte("tiles"), 0o644))
	packed, err := compression.NewCompressor(&compression.Config{Algorithm: compression.LZ4})
	require.NoError(t, err)
	data, err := packed.Compress([]byte("packed tiles"))
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "root/tiles/map.bin.lz4", data, 0o644))
	require.NoError(t, afero.WriteFile(fs, "root/huge.bin", make([]byte, 64), 0o644))
	require.NoError(t, fs.MkdirAll("root/dir", 0o755))

	r := newFileReader(fs, "root", 32, zaptest.NewLogger(t))
	ctx := context.Background()

	raw, name, err := r.read(ctx, "tiles/map.bin")
	require.NoError(t, err)
	assert.Equal(t, "tiles", string(raw))
	assert.Equal(t, "tiles/map.bin", name)

	raw, name, err = r.read(ctx, "./tiles/map.bin.lz4")
	require.NoError(t, err)
	assert.Equal(t, "packed tiles", string(raw))
	assert.Equal(t, "./tiles/map.bin", name)

	_, _, err = r.read(ctx, "huge.bin")
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
	_, _, err = r.read(ctx, "dir")
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
	_, _, err = r.read(ctx, "missing.bin")
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))

	for _, key := range []string{"../etc/passwd", "tiles/../../x", "/abs", "a//b", ""} {
		_, _, err = r.read(ctx, key)
		assert.ErrorIs(t, err, errors.ErrInvalidArgument, key)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = r.read(cancelled, "tiles/map.bin")
	assert.ErrorIs(t, err, context.Canceled)
}
