package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/assets"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/compression"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/config"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/logger"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/observability"
)

type inspectOptions struct {
	ConfigPath string
	Root       string
	Repeat     int
	Trace      bool
	Keys       []string
}

type loadedAsset struct {
	Key      string `json:"key"`
	Pool     string `json:"pool"`
	Index    uint32 `json:"index,omitempty"`
	ID       uint64 `json:"id,omitempty"`
	RefCount uint32 `json:"ref_count,omitempty"`
	Size     int    `json:"size,omitempty"`
	Error    string `json:"error,omitempty"`
}

type inspectReport struct {
	Loaded      []loadedAsset            `json:"loaded"`
	Held        assets.Snapshot          `json:"held"`
	Released    assets.Snapshot          `json:"released"`
	Maintenance assets.MaintenanceReport `json:"maintenance"`
}

func newInspectCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [keys...]",
		Short: "Load assets through the pools and print pool statistics",
		Long: `Load each key through the document pool (.yaml, .yml, .json, optionally
compressed) or the blob pool (anything else), print pool statistics as JSON while
the assets are held and again after they are released, then run memory maintenance.

Example:
  mogul inspect --root ./assets --repeat 2 actors/goblin.yaml tiles/forest.bin.zst`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := inspectOptions{
				ConfigPath: v.GetString("config"),
				Root:       v.GetString("root"),
				Repeat:     v.GetInt("repeat"),
				Trace:      v.GetBool("trace"),
				Keys:       args,
			}
			return runInspect(cmd.Context(), afero.NewOsFs(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("root", "", "Asset root directory (overrides the config)")
	cmd.Flags().Int("repeat", 1, "Load every key this many times")
	cmd.Flags().Bool("trace", false, "Write loader spans to stderr")
	return cmd
}

func loadEngineConfig(fs afero.Fs, path string) (*config.EngineConfig, error) {
	if path == "" {
		return config.NewEngineConfig("mogul"), nil
	}
	return config.LoadEngineConfig(fs, path)
}

func runInspect(ctx context.Context, fs afero.Fs, opts inspectOptions, out io.Writer, extra ...assets.Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1")
	}
	cfg, err := loadEngineConfig(fs, opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Root != "" {
		cfg.Assets.Root = opts.Root
	}

	if opts.Trace {
		cfg.Observability.EnableTracing = true
		tcfg := observability.DefaultTracingConfig("mogul", version)
		tcfg.Writer = os.Stderr
		shutdown, err := observability.InitTracing(ctx, tcfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("trace shutdown failed", zap.Error(err))
			}
		}()
	}

	mgr, err := assets.NewManager(cfg, append([]assets.Option{assets.WithFs(fs), assets.WithLogger(logger.Get())}, extra...)...)
	if err != nil {
		return err
	}
	defer mgr.Close()

	var (
		report  inspectReport
		release []func() error
		failed  int
	)
	for i := 0; i < opts.Repeat; i++ {
		for _, key := range opts.Keys {
			entry, done := loadOne(ctx, mgr, key)
			if entry.Error != "" {
				failed++
			} else {
				release = append(release, done)
			}
			report.Loaded = append(report.Loaded, entry)
		}
	}
	report.Held = mgr.Stats()

	for _, done := range release {
		if err := done(); err != nil {
			return err
		}
	}
	report.Released = mgr.Stats()

	report.Maintenance, err = mgr.Maintain(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if _, err := fmt.Fprintln(out, string(data)); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d loads failed", failed, len(report.Loaded))
	}
	return nil
}

// loadOne loads key into the pool its extension selects and returns a
// function releasing it.
func loadOne(ctx context.Context, mgr *assets.Manager, key string) (loadedAsset, func() error) {
	_, name := compression.AlgorithmForPath(key)
	entry := loadedAsset{Key: key}

	if assets.DocumentFormat(name) != "" {
		entry.Pool = config.PoolDocuments
		ctx = logger.ContextWith(ctx, entry.Pool, key)
		doc, err := mgr.Documents().LoadByKey(ctx, key)
		if err != nil {
			entry.Error = err.Error()
			logger.WithContext(ctx).Warn("load failed", zap.Error(err))
			return entry, nil
		}
		h, _ := mgr.Documents().HandleOf(doc)
		entry.Index, entry.ID = h.Index, h.ID
		entry.RefCount, _ = mgr.Documents().RefCountOf(doc)
		entry.Size = len(doc.Data)
		logger.WithContext(ctx).Debug("loaded document", zap.Uint64("id", h.ID))
		return entry, func() error { return mgr.Documents().Release(doc) }
	}

	entry.Pool = config.PoolBlobs
	ctx = logger.ContextWith(ctx, entry.Pool, key)
	blob, err := mgr.Blobs().LoadByKey(ctx, key)
	if err != nil {
		entry.Error = err.Error()
		logger.WithContext(ctx).Warn("load failed", zap.Error(err))
		return entry, nil
	}
	h, _ := mgr.Blobs().HandleOf(blob)
	entry.Index, entry.ID = h.Index, h.ID
	entry.RefCount, _ = mgr.Blobs().RefCountOf(blob)
	entry.Size = blob.Size()
	logger.WithContext(ctx).Debug("loaded blob", zap.Uint64("id", h.ID), zap.Int("size", blob.Size()))
	return entry, func() error { return mgr.Blobs().Release(blob) }
}
