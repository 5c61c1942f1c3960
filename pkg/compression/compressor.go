// Package compression unpacks (and packs) asset files stored compressed on
// disk. Blob loaders pick the codec from the file extension with
// AlgorithmForPath and decompress the whole file before it enters a pool.
//
// # Algorithms
//
//   - Gzip (.gz), Deflate, Zlib (.zz): wide tool support
//   - Snappy (.sz), S2 (.s2): fast, moderate ratio
//   - LZ4 (.lz4): fastest to decode
//   - Zstd (.zst): best ratio, good speed
//
// # Basic Usage
//
//	alg, name := compression.AlgorithmForPath("tiles/forest.png.zst")
//	comp, err := compression.NewCompressor(&compression.Config{Algorithm: alg})
//	raw, err := comp.Decompress(data)
//
// # Pooled Usage
//
//	pool, err := compression.NewCompressorPool(&compression.Config{Algorithm: compression.Zstd})
//	raw, err := pool.Decompress(data)
//
// Decompression stops with an error once the output would exceed
// Config.MaxDecompressedSize.
package compression

import (
	"bytes"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/errors"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents snappy compression (framed stream format)
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
	// Deflate represents raw deflate compression
	Deflate Algorithm = "deflate"
	// Zlib represents zlib-wrapped deflate
	Zlib Algorithm = "zlib"
)

// Level represents compression level. It only matters when packing assets.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

func (l Level) String() string {
	switch l {
	case Fastest:
		return "Fastest"
	case Default:
		return "Default"
	case Better:
		return "Better"
	case Best:
		return "Best"
	default:
		return "Unknown"
	}
}

// DefaultMaxDecompressedSize caps the unpacked size of a single asset.
const DefaultMaxDecompressedSize = 256 << 20

var extensions = map[string]Algorithm{
	".gz":  Gzip,
	".sz":  Snappy,
	".s2":  S2,
	".zst": Zstd,
	".lz4": LZ4,
	".zz":  Zlib,
}

// AlgorithmForPath returns the algorithm implied by p's extension and the
// path with that extension removed. Unknown extensions yield None and p
// unchanged.
func AlgorithmForPath(p string) (Algorithm, string) {
	ext := strings.ToLower(path.Ext(p))
	if alg, ok := extensions[ext]; ok {
		return alg, p[:len(p)-len(ext)]
	}
	return None, p
}

// Extension returns the file extension used for alg, or "" for None and
// Deflate.
func Extension(alg Algorithm) string {
	for ext, a := range extensions {
		if a == alg {
			return ext
		}
	}
	return ""
}

// Compressor provides compression and decompression functionality.
// All implementations are safe for concurrent use.
type Compressor interface {
	// Compress compresses data and returns the compressed bytes.
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses data and returns the original bytes.
	Decompress(data []byte) ([]byte, error)

	// CompressStream compresses from reader to writer.
	CompressStream(dst io.Writer, src io.Reader) error

	// DecompressStream decompresses from reader to writer.
	DecompressStream(dst io.Writer, src io.Reader) error

	// Algorithm returns the compression algorithm used.
	Algorithm() Algorithm

	// Level returns the compression level configured.
	Level() Level
}

// Config represents compressor configuration.
type Config struct {
	Algorithm Algorithm `yaml:"algorithm" json:"algorithm"`
	Level     Level     `yaml:"level" json:"level"`
	// MaxDecompressedSize bounds Decompress and DecompressStream output.
	// Zero means DefaultMaxDecompressedSize.
	MaxDecompressedSize int64 `yaml:"max_decompressed_size" json:"max_decompressed_size"`
}

// DefaultConfig returns the configuration used for packing new assets.
func DefaultConfig() *Config {
	return &Config{
		Algorithm:           Zstd,
		Level:               Default,
		MaxDecompressedSize: DefaultMaxDecompressedSize,
	}
}

// NewCompressor creates a new compressor based on the provided configuration.
// If config is nil, default configuration is used.
func NewCompressor(config *Config) (Compressor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	base := baseCompressor{
		algorithm: config.Algorithm,
		level:     config.Level,
		limit:     config.MaxDecompressedSize,
	}
	if base.limit <= 0 {
		base.limit = DefaultMaxDecompressedSize
	}

	switch config.Algorithm {
	case None, "":
		base.algorithm = None
		return &noneCompressor{baseCompressor: base}, nil
	case Gzip:
		return newGzipCompressor(base), nil
	case Snappy:
		return &snappyCompressor{baseCompressor: base}, nil
	case LZ4:
		return &lz4Compressor{baseCompressor: base, compressionLevel: mapLZ4Level(config.Level)}, nil
	case Zstd:
		return newZstdCompressor(base), nil
	case S2:
		return &s2Compressor{baseCompressor: base}, nil
	case Deflate:
		return &deflateCompressor{baseCompressor: base, flateLevel: mapFlateLevel(config.Level)}, nil
	case Zlib:
		return &zlibCompressor{baseCompressor: base, flateLevel: mapFlateLevel(config.Level)}, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported compression algorithm: %s", config.Algorithm)
	}
}

// CompressorPool reuses compressor instances, which keeps encoder and
// decoder state warm across asset loads.
//
// CompressorPool is safe for concurrent use.
type CompressorPool struct {
	pool   sync.Pool
	config *Config
}

// NewCompressorPool creates a pool of compressors sharing config. It fails
// when the algorithm is unknown.
func NewCompressorPool(config *Config) (*CompressorPool, error) {
	if config == nil {
		config = DefaultConfig()
	}
	first, err := NewCompressor(config)
	if err != nil {
		return nil, err
	}
	cp := &CompressorPool{config: config}
	cp.pool.New = func() interface{} {
		comp, _ := NewCompressor(config)
		return comp
	}
	cp.pool.Put(first)
	return cp, nil
}

// Get gets a compressor from pool
func (cp *CompressorPool) Get() Compressor {
	return cp.pool.Get().(Compressor)
}

// Put returns compressor to pool
func (cp *CompressorPool) Put(c Compressor) {
	cp.pool.Put(c)
}

// Compress compresses data using a pooled compressor
func (cp *CompressorPool) Compress(data []byte) ([]byte, error) {
	c := cp.Get()
	defer cp.Put(c)
	return c.Compress(data)
}

// Decompress decompresses data using a pooled compressor
func (cp *CompressorPool) Decompress(data []byte) ([]byte, error) {
	c := cp.Get()
	defer cp.Put(c)
	return c.Decompress(data)
}

// Base compressor implementation
type baseCompressor struct {
	algorithm Algorithm
	level     Level
	limit     int64
}

// Algorithm returns the compression algorithm
func (bc *baseCompressor) Algorithm() Algorithm {
	return bc.algorithm
}

// Level returns the compression level
func (bc *baseCompressor) Level() Level {
	return bc.level
}

// copyLimited copies r to dst, failing once more than bc.limit bytes arrive.
func (bc *baseCompressor) copyLimited(dst io.Writer, r io.Reader) error {
	n, err := io.Copy(dst, io.LimitReader(r, bc.limit+1))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, string(bc.algorithm)+" stream is corrupt")
	}
	if n > bc.limit {
		return errors.Newf(errors.ErrorTypeData, "decompressed size exceeds %d bytes", bc.limit).
			WithDetail("algorithm", string(bc.algorithm))
	}
	return nil
}

func (bc *baseCompressor) readAll(r io.Reader, sizeHint int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(sizeHint)
	if err := bc.copyLimited(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeAll pushes data through w and flushes it.
func writeAll(w io.WriteCloser, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Close()
}

func streamThrough(w io.WriteCloser, src io.Reader) error {
	if _, err := io.Copy(w, src); err != nil {
		return err
	}
	return w.Close()
}

// None compressor (no compression)
type noneCompressor struct {
	baseCompressor
}

func (nc *noneCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (nc *noneCompressor) Decompress(data []byte) ([]byte, error) {
	if int64(len(data)) > nc.limit {
		return nil, errors.Newf(errors.ErrorTypeData, "asset size exceeds %d bytes", nc.limit)
	}
	return data, nil
}

func (nc *noneCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	_, err := io.Copy(dst, src)
	return err
}

func (nc *noneCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	return nc.copyLimited(dst, src)
}

// Gzip compressor
type gzipCompressor struct {
	baseCompressor
	writerPool sync.Pool
	readerPool sync.Pool
}

func newGzipCompressor(base baseCompressor) *gzipCompressor {
	level := mapFlateLevel(base.level)
	gc := &gzipCompressor{baseCompressor: base}
	gc.writerPool.New = func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, level)
		return w
	}
	gc.readerPool.New = func() interface{} {
		return new(gzip.Reader)
	}
	return gc
}

func (gc *gzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gc.writerPool.Get().(*gzip.Writer)
	defer gc.writerPool.Put(w)

	w.Reset(&buf)
	if err := writeAll(w, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gc *gzipCompressor) Decompress(data []byte) ([]byte, error) {
	r := gc.readerPool.Get().(*gzip.Reader)
	defer gc.readerPool.Put(r)

	if err := r.Reset(bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid gzip header")
	}
	return gc.readAll(r, len(data)*2)
}

func (gc *gzipCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	w := gc.writerPool.Get().(*gzip.Writer)
	defer gc.writerPool.Put(w)

	w.Reset(dst)
	return streamThrough(w, src)
}

func (gc *gzipCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	r := gc.readerPool.Get().(*gzip.Reader)
	defer gc.readerPool.Put(r)

	if err := r.Reset(src); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "invalid gzip header")
	}
	return gc.copyLimited(dst, r)
}

// Snappy compressor. Assets use the framed format so files written by the
// snappy command line tools unpack too.
type snappyCompressor struct {
	baseCompressor
}

func (sc *snappyCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeAll(snappy.NewBufferedWriter(&buf), data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (sc *snappyCompressor) Decompress(data []byte) ([]byte, error) {
	return sc.readAll(snappy.NewReader(bytes.NewReader(data)), len(data)*2)
}

func (sc *snappyCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	return streamThrough(snappy.NewBufferedWriter(dst), src)
}

func (sc *snappyCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	return sc.copyLimited(dst, snappy.NewReader(src))
}

// LZ4 compressor
type lz4Compressor struct {
	baseCompressor
	compressionLevel lz4.CompressionLevel
}

func (lc *lz4Compressor) writer(dst io.Writer) (*lz4.Writer, error) {
	w := lz4.NewWriter(dst)
	if err := w.Apply(lz4.CompressionLevelOption(lc.compressionLevel)); err != nil {
		return nil, err
	}
	return w, nil
}

func (lc *lz4Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := lc.writer(&buf)
	if err != nil {
		return nil, err
	}
	if err := writeAll(w, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lc *lz4Compressor) Decompress(data []byte) ([]byte, error) {
	return lc.readAll(lz4.NewReader(bytes.NewReader(data)), len(data)*2)
}

func (lc *lz4Compressor) CompressStream(dst io.Writer, src io.Reader) error {
	w, err := lc.writer(dst)
	if err != nil {
		return err
	}
	return streamThrough(w, src)
}

func (lc *lz4Compressor) DecompressStream(dst io.Writer, src io.Reader) error {
	return lc.copyLimited(dst, lz4.NewReader(src))
}

// Zstd compressor
type zstdCompressor struct {
	baseCompressor
	encoderPool sync.Pool
	decoderPool sync.Pool
}

func newZstdCompressor(base baseCompressor) *zstdCompressor {
	level := mapZstdLevel(base.level)
	zc := &zstdCompressor{baseCompressor: base}
	zc.encoderPool.New = func() interface{} {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
		return enc
	}
	zc.decoderPool.New = func() interface{} {
		dec, _ := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(uint64(base.limit)))
		return dec
	}
	return zc
}

func (zc *zstdCompressor) Compress(data []byte) ([]byte, error) {
	enc := zc.encoderPool.Get().(*zstd.Encoder)
	defer zc.encoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

func (zc *zstdCompressor) Decompress(data []byte) ([]byte, error) {
	dec := zc.decoderPool.Get().(*zstd.Decoder)
	defer zc.decoderPool.Put(dec)

	if err := dec.Reset(bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid zstd frame")
	}
	return zc.readAll(dec, len(data)*3)
}

func (zc *zstdCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	enc := zc.encoderPool.Get().(*zstd.Encoder)
	defer zc.encoderPool.Put(enc)

	enc.Reset(dst)
	return streamThrough(enc, src)
}

func (zc *zstdCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	dec := zc.decoderPool.Get().(*zstd.Decoder)
	defer zc.decoderPool.Put(dec)

	if err := dec.Reset(src); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "invalid zstd frame")
	}
	return zc.copyLimited(dst, dec)
}

// S2 compressor (Snappy-compatible but better compression)
type s2Compressor struct {
	baseCompressor
}

func (sc *s2Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeAll(s2.NewWriter(&buf), data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (sc *s2Compressor) Decompress(data []byte) ([]byte, error) {
	return sc.readAll(s2.NewReader(bytes.NewReader(data)), len(data)*2)
}

func (sc *s2Compressor) CompressStream(dst io.Writer, src io.Reader) error {
	return streamThrough(s2.NewWriter(dst), src)
}

func (sc *s2Compressor) DecompressStream(dst io.Writer, src io.Reader) error {
	return sc.copyLimited(dst, s2.NewReader(src))
}

// Deflate compressor
type deflateCompressor struct {
	baseCompressor
	flateLevel int
}

func (dc *deflateCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, dc.flateLevel)
	if err != nil {
		return nil, err
	}
	if err := writeAll(w, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (dc *deflateCompressor) Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	return dc.readAll(r, len(data)*2)
}

func (dc *deflateCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	w, err := flate.NewWriter(dst, dc.flateLevel)
	if err != nil {
		return err
	}
	return streamThrough(w, src)
}

func (dc *deflateCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	r := flate.NewReader(src)
	defer r.Close()
	return dc.copyLimited(dst, r)
}

// Zlib compressor
type zlibCompressor struct {
	baseCompressor
	flateLevel int
}

func (zc *zlibCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zc.flateLevel)
	if err != nil {
		return nil, err
	}
	if err := writeAll(w, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (zc *zlibCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid zlib header")
	}
	defer r.Close()
	return zc.readAll(r, len(data)*2)
}

func (zc *zlibCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	w, err := zlib.NewWriterLevel(dst, zc.flateLevel)
	if err != nil {
		return err
	}
	return streamThrough(w, src)
}

func (zc *zlibCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	r, err := zlib.NewReader(src)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "invalid zlib header")
	}
	defer r.Close()
	return zc.copyLimited(dst, r)
}

// Helper functions to map compression levels

func mapFlateLevel(level Level) int {
	switch level {
	case Fastest:
		return flate.BestSpeed
	case Best:
		return flate.BestCompression
	default:
		return flate.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}
