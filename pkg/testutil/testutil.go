// Package testutil provides testing utilities for MoGUL
package testutil

import (
	"context"
	"sort"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// TestLogger creates a test logger that writes to the test output.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// Recorder counts loader and destructor invocations per key. Pool tests
// plug its methods into the callbacks they hand to a pool.
type Recorder struct {
	loads    map[string]int
	destroys map[string]int
	order    []string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		loads:    make(map[string]int),
		destroys: make(map[string]int),
	}
}

// Loaded records a loader call for key.
func (r *Recorder) Loaded(key string) {
	r.loads[key]++
}

// Destroyed records a destructor call for key.
func (r *Recorder) Destroyed(key string) {
	r.destroys[key]++
	r.order = append(r.order, key)
}

// Loads returns how many times key was loaded.
func (r *Recorder) Loads(key string) int {
	return r.loads[key]
}

// Destroys returns how many times key was destroyed.
func (r *Recorder) Destroys(key string) int {
	return r.destroys[key]
}

// TotalLoads returns the number of loader calls across all keys.
func (r *Recorder) TotalLoads() int {
	n := 0
	for _, c := range r.loads {
		n += c
	}
	return n
}

// TotalDestroys returns the number of destructor calls across all keys.
func (r *Recorder) TotalDestroys() int {
	return len(r.order)
}

// DestroyOrder returns destroyed keys in call order.
func (r *Recorder) DestroyOrder() []string {
	return append([]string(nil), r.order...)
}

// Keys returns every key seen by the loader, sorted.
func (r *Recorder) Keys() []string {
	keys := make([]string, 0, len(r.loads))
	for k := range r.loads {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
