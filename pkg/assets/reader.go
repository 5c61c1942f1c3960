package assets

import (
	"context"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/compression"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/errors"
)

// fileReader resolves keys under the asset root and unpacks compressed files.
type fileReader struct {
	fs      afero.Fs
	root    string
	maxSize int64
	log     *zap.Logger

	mu     sync.Mutex
	codecs map[compression.Algorithm]*compression.CompressorPool
}

func newFileReader(fs afero.Fs, root string, maxSize int64, log *zap.Logger) *fileReader {
	if maxSize <= 0 {
		maxSize = compression.DefaultMaxDecompressedSize
	}
	return &fileReader{
		fs:      fs,
		root:    root,
		maxSize: maxSize,
		log:     log,
		codecs:  make(map[compression.Algorithm]*compression.CompressorPool),
	}
}

// resolve maps a key to a file path, refusing keys that leave the root.
func (r *fileReader) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != strings.TrimPrefix(key, "./") {
		return "", errors.Newf(errors.ErrorTypeInvalidArgument, "asset key %q is not a clean relative path", key)
	}
	return filepath.Join(r.root, filepath.FromSlash(clean)), nil
}

// read returns the unpacked contents of key and the key with its compression
// extension removed.
func (r *fileReader) read(ctx context.Context, key string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	file, err := r.resolve(key)
	if err != nil {
		return nil, "", err
	}

	info, err := r.fs.Stat(file)
	if err != nil {
		return nil, "", errors.Wrap(err, errors.ErrorTypeFile, "asset not found").WithDetail("path", file)
	}
	if info.IsDir() {
		return nil, "", errors.New(errors.ErrorTypeFile, "asset is a directory").WithDetail("path", file)
	}
	if info.Size() > r.maxSize {
		return nil, "", errors.Newf(errors.ErrorTypeFile, "asset is larger than %d bytes", r.maxSize).
			WithDetail("path", file)
	}

	raw, err := afero.ReadFile(r.fs, file)
	if err != nil {
		return nil, "", errors.Wrap(err, errors.ErrorTypeFile, "failed to read asset").WithDetail("path", file)
	}

	alg, name := compression.AlgorithmForPath(key)
	if alg == compression.None {
		return raw, name, nil
	}
	codec, err := r.codec(alg)
	if err != nil {
		return nil, "", err
	}
	data, err := codec.Decompress(raw)
	if err != nil {
		return nil, "", err
	}
	r.log.Debug("unpacked asset",
		zap.String("key", key),
		zap.String("algorithm", string(alg)),
		zap.Int("packed", len(raw)),
		zap.Int("unpacked", len(data)))
	return data, name, nil
}

func (r *fileReader) codec(alg compression.Algorithm) (*compression.CompressorPool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pool, ok := r.codecs[alg]; ok {
		return pool, nil
	}
	pool, err := compression.NewCompressorPool(&compression.Config{
		Algorithm:           alg,
		MaxDecompressedSize: r.maxSize,
	})
	if err != nil {
		return nil, err
	}
	r.codecs[alg] = pool
	return pool, nil
}
