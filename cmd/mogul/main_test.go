package main

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/assets"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/resource"
)

func fixedMemory(percent float64) assets.Option {
	return assets.WithMemoryProbe(func(context.Context) (float64, error) { return percent, nil })
}

func poolStats(t *testing.T, snap assets.Snapshot, name string) resource.Stats {
	t.Helper()
	for _, s := range snap.Pools {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("pool %q missing from snapshot", name)
	return resource.Stats{}
}

func assetFs(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "assets/actors/goblin.yaml", []byte("name: goblin\nhp: 7\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "assets/tiles/forest.bin", []byte{1, 2, 3, 4}, 0o644))
	return fs
}

func TestRunInspect(t *testing.T) {
	var out bytes.Buffer
	opts := inspectOptions{
		Repeat: 2,
		Keys:   []string{"actors/goblin.yaml", "tiles/forest.bin"},
	}
	require.NoError(t, runInspect(context.Background(), assetFs(t), opts, &out, fixedMemory(10)))

	var report inspectReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	require.Len(t, report.Loaded, 4)
	assert.Equal(t, "documents", report.Loaded[0].Pool)
	assert.Equal(t, "blobs", report.Loaded[1].Pool)
	assert.Equal(t, 4, report.Loaded[1].Size)
	assert.Equal(t, uint32(2), report.Loaded[2].RefCount, "second load shares the first payload")
	assert.Equal(t, report.Loaded[0].ID, report.Loaded[2].ID)

	docs := poolStats(t, report.Held, "documents")
	assert.Equal(t, 1, docs.Live)
	assert.Equal(t, uint64(1), docs.Hits)
	assert.Equal(t, uint64(1), docs.Misses)
	assert.Equal(t, int64(4), report.Held.ResidentBytes)

	assert.Equal(t, 1, poolStats(t, report.Released, "documents").Cached)
	assert.Equal(t, 1, poolStats(t, report.Released, "blobs").Cached)
	assert.False(t, report.Maintenance.Triggered)
}

func TestRunInspectCleansUnderPressure(t *testing.T) {
	var out bytes.Buffer
	opts := inspectOptions{Repeat: 1, Keys: []string{"actors/goblin.yaml", "tiles/forest.bin"}}
	require.NoError(t, runInspect(context.Background(), assetFs(t), opts, &out, fixedMemory(99)))

	var report inspectReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.True(t, report.Maintenance.Triggered)
	assert.Equal(t, 1, report.Maintenance.Cleaned["documents"])
	assert.Equal(t, 1, report.Maintenance.Cleaned["blobs"])
}

func TestRunInspectReportsFailures(t *testing.T) {
	var out bytes.Buffer
	opts := inspectOptions{Repeat: 1, Keys: []string{"actors/missing.yaml", "tiles/forest.bin"}}
	err := runInspect(context.Background(), assetFs(t), opts, &out, fixedMemory(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 loads failed")

	var report inspectReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.NotEmpty(t, report.Loaded[0].Error)
	assert.Empty(t, report.Loaded[1].Error)
	assert.Equal(t, uint64(1), poolStats(t, report.Held, "documents").LoadFailures)
}

func TestRunInspectOptions(t *testing.T) {
	fs := assetFs(t)
	var out bytes.Buffer

	err := runInspect(context.Background(), fs, inspectOptions{Repeat: 0, Keys: []string{"x"}}, &out)
	assert.Error(t, err)

	err = runInspect(context.Background(), fs, inspectOptions{Repeat: 1, ConfigPath: "missing.yaml", Keys: []string{"x"}}, &out)
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "data/tiles/forest.bin", []byte{9}, 0o644))
	opts := inspectOptions{Repeat: 1, Root: "data", Keys: []string{"tiles/forest.bin"}}
	assert.NoError(t, runInspect(context.Background(), fs, opts, &out, fixedMemory(10)))
}

func TestConfigInitAndValidate(t *testing.T) {
	fs := afero.NewMemMapFs()
	var out bytes.Buffer

	require.NoError(t, runConfigInit(fs, "mogul.yaml", false, &out))
	assert.Contains(t, out.String(), "wrote mogul.yaml")
	assert.Error(t, runConfigInit(fs, "mogul.yaml", false, &out), "refuses to overwrite")
	require.NoError(t, runConfigInit(fs, "mogul.yaml", true, &out))

	out.Reset()
	require.NoError(t, runConfigValidate(fs, "mogul.yaml", &out))
	assert.Contains(t, out.String(), "mogul.yaml: ok (3 pools)")
	assert.Regexp(t, `scratch\s+capacity=128 unique`, out.String())
	assert.Regexp(t, `documents\s+capacity=256 shared`, out.String())

	require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte("pools:\n  documents:\n    capacity: 0\n"), 0o644))
	assert.Error(t, runConfigValidate(fs, "bad.yaml", &out))
}

func TestChurn(t *testing.T) {
	opts := profileOptions{Ops: 2000, Capacity: 64, Keys: 256, Hold: 16, Seed: 7}
	pool, err := resource.New(resource.Config[tile]{Name: "churn", Capacity: opts.Capacity, Load: loadTile},
		resource.WithMetrics(nil))
	require.NoError(t, err)
	defer pool.Destroy()

	keys := make([]string, opts.Keys)
	for i := range keys {
		keys[i] = "tiles/" + strconv.Itoa(i)
	}

	res, err := churn(context.Background(), pool, keys, opts)
	require.NoError(t, err)
	assert.Equal(t, 2000, res.Ops)
	assert.Zero(t, res.Exhausted)
	assert.Equal(t, uint64(2000), res.Stats.Hits+res.Stats.Misses)
	assert.Positive(t, res.Stats.Evictions)
	assert.Zero(t, res.Stats.Live, "every held reference is released")
}

func TestRunProfileValidatesOptions(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runProfile(context.Background(), profileOptions{Ops: 1, Capacity: 8, Keys: 8, Hold: 8}, &out))
	assert.Error(t, runProfile(context.Background(), profileOptions{Ops: 1, Capacity: 8, Keys: 0, Hold: 1}, &out))
	assert.Error(t, runProfile(context.Background(), profileOptions{Capacity: 8, Keys: 8, Hold: 1}, &out))
}

func TestRootCommand(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		var out bytes.Buffer
		root := newRootCmd()
		root.SetOut(&out)
		root.SetArgs([]string{"version"})
		require.NoError(t, root.Execute())
		assert.Contains(t, out.String(), "MoGUL v"+version)
	})

	t.Run("profile reads environment", func(t *testing.T) {
		t.Setenv("MOGUL_OPS", "300")
		var out bytes.Buffer
		root := newRootCmd()
		root.SetOut(&out)
		root.SetArgs([]string{"profile", "--duration", "0", "--capacity", "32", "--keys", "64", "--hold", "8"})
		require.NoError(t, root.Execute())
		assert.Contains(t, out.String(), "Loads:      300 in")
		assert.Contains(t, out.String(), "0 live")
	})
}
