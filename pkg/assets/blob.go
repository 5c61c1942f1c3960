package assets

import (
	"bytes"
	"context"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/compression"
)

// Blob holds the raw bytes of an asset file, unpacked but otherwise
// undecoded.
type Blob struct {
	Key string
	// Packing is the compression the file was stored with.
	Packing compression.Algorithm
	Data    []byte
}

// Size returns the unpacked size in bytes.
func (b *Blob) Size() int { return len(b.Data) }

// Reader returns a reader over the blob's bytes.
func (b *Blob) Reader() *bytes.Reader { return bytes.NewReader(b.Data) }

func (m *Manager) loadBlob(ctx context.Context, key string, b *Blob) error {
	data, _, err := m.reader.read(ctx, key)
	if err != nil {
		return err
	}
	b.Key = key
	b.Packing, _ = compression.AlgorithmForPath(key)
	b.Data = data
	m.residentBytes += int64(len(data))
	return nil
}

func (m *Manager) destroyBlob(b *Blob) {
	if b.Key != "" {
		m.residentBytes -= int64(len(b.Data))
	}
	b.Data = nil
}
