package testutil

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// AssetSuite provides an in-memory filesystem, a context and a logger for
// tests that load assets through pools.
type AssetSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	fs        afero.Fs
	log       *zap.Logger
	startTime time.Time
}

// SetupTest gives every test a fresh filesystem.
func (s *AssetSuite) SetupTest() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 30*time.Second)
	s.fs = afero.NewMemMapFs()
	s.log = zaptest.NewLogger(s.T())
	s.startTime = time.Now()
}

// TearDownTest releases the test context.
func (s *AssetSuite) TearDownTest() {
	s.cancel()
	s.T().Logf("test completed in %v", time.Since(s.startTime))
}

// Context returns the test context
func (s *AssetSuite) Context() context.Context {
	return s.ctx
}

// Fs returns the in-memory filesystem
func (s *AssetSuite) Fs() afero.Fs {
	return s.fs
}

// Logger returns the test logger
func (s *AssetSuite) Logger() *zap.Logger {
	return s.log
}

// WriteFile creates name with content, making parent directories.
func (s *AssetSuite) WriteFile(name string, content []byte) string {
	require.NoError(s.T(), s.fs.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(s.T(), afero.WriteFile(s.fs, name, content, 0o644))
	return name
}
