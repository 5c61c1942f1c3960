package main

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"math/rand/v2"
	"os"
	"runtime"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/errors"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/logger"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/metrics"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/resource"
)

type profileOptions struct {
	Duration   time.Duration
	Ops        int
	Capacity   int
	Keys       int
	Hold       int
	Seed       uint64
	CPUProfile string
	MemProfile string
}

type profileResult struct {
	Ops       int
	Exhausted int
	Elapsed   time.Duration
	Stats     resource.Stats
}

// tile is a fixed-size payload standing in for decoded map data.
type tile struct {
	key  string
	data [256]byte
}

func newProfileCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Churn a pool with random keyed loads and report throughput",
		Long: `Load random keys into a shared pool while holding a sliding window of
references, so the pool keeps reviving cached slots and evicting the oldest ones.

Examples:
  mogul profile --duration 10s
  mogul profile --capacity 256 --keys 4096 --cpuprofile cpu.prof --memprofile mem.prof`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := profileOptions{
				Duration:   v.GetDuration("duration"),
				Ops:        v.GetInt("ops"),
				Capacity:   v.GetInt("capacity"),
				Keys:       v.GetInt("keys"),
				Hold:       v.GetInt("hold"),
				Seed:       v.GetUint64("seed"),
				CPUProfile: v.GetString("cpuprofile"),
				MemProfile: v.GetString("memprofile"),
			}
			return runProfile(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().Duration("duration", 5*time.Second, "Profiling duration")
	cmd.Flags().Int("ops", 0, "Stop after this many loads (0 runs for --duration)")
	cmd.Flags().Int("capacity", 1024, "Pool capacity")
	cmd.Flags().Int("keys", 4096, "Distinct keys to draw from")
	cmd.Flags().Int("hold", 256, "References held at once")
	cmd.Flags().Uint64("seed", 1, "Random seed")
	cmd.Flags().String("cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().String("memprofile", "", "Write memory profile to file")
	return cmd
}

func runProfile(ctx context.Context, opts profileOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Keys < 1 || opts.Hold < 1 {
		return fmt.Errorf("--keys and --hold must be at least 1")
	}
	if opts.Hold >= opts.Capacity {
		return fmt.Errorf("--hold (%d) must be below --capacity (%d)", opts.Hold, opts.Capacity)
	}
	if opts.Ops <= 0 && opts.Duration <= 0 {
		return fmt.Errorf("either --ops or --duration must be positive")
	}

	pool, err := resource.New(resource.Config[tile]{
		Name:     "profile",
		Capacity: opts.Capacity,
		Load:     loadTile,
		Destroy:  func(t *tile) { t.key = "" },
	},
		resource.WithLogger(logger.Get()),
		resource.WithMetrics(metrics.NewCollectorWithVectors("profile", metrics.NewVectors(prometheus.NewRegistry()))),
	)
	if err != nil {
		return err
	}
	defer pool.Destroy()

	keys := make([]string, opts.Keys)
	for i := range keys {
		keys[i] = "tiles/" + strconv.Itoa(i)
	}

	if opts.CPUProfile != "" {
		f, err := os.Create(opts.CPUProfile)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		fmt.Fprintf(out, "CPU profiling enabled, writing to: %s\n", opts.CPUProfile)
	}

	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	res, err := churn(ctx, pool, keys, opts)
	if err != nil {
		return err
	}

	if opts.MemProfile != "" {
		if err := writeHeapProfile(opts.MemProfile); err != nil {
			return err
		}
		fmt.Fprintf(out, "Memory profile written to: %s\n", opts.MemProfile)
	}

	printProfileResult(out, res)
	logger.Debug("profile finished", zap.Int("ops", res.Ops), zap.Duration("elapsed", res.Elapsed))
	return nil
}

// churn loads random keys, keeping the most recent opts.Hold references
// alive, until ctx ends or opts.Ops loads have been made.
func churn(ctx context.Context, pool *resource.Pool[tile], keys []string, opts profileOptions) (profileResult, error) {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	held := make([]*tile, 0, opts.Hold)
	var res profileResult

	start := time.Now()
	for opts.Ops <= 0 || res.Ops < opts.Ops {
		// Checking the context every load dominates the profile.
		if res.Ops%256 == 0 && ctx.Err() != nil {
			break
		}
		t, err := pool.LoadByKey(ctx, keys[rng.IntN(len(keys))])
		switch {
		case errors.IsType(err, errors.ErrorTypePoolExhausted):
			res.Exhausted++
		case err != nil:
			return res, err
		default:
			held = append(held, t)
		}
		if len(held) > opts.Hold {
			if err := pool.Release(held[0]); err != nil {
				return res, err
			}
			held = held[1:]
		}
		res.Ops++
	}
	res.Elapsed = time.Since(start)

	for _, t := range held {
		if err := pool.Release(t); err != nil {
			return res, err
		}
	}
	res.Stats = pool.Stats()
	return res, nil
}

func loadTile(_ context.Context, key string, t *tile) error {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	seed := h.Sum64()
	for i := range t.data {
		t.data[i] = byte(seed >> (8 * (i % 8)))
	}
	t.key = key
	return nil
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create memory profile: %w", err)
	}
	defer f.Close()

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	return nil
}

func printProfileResult(out io.Writer, res profileResult) {
	s := res.Stats
	lookups := s.Hits + s.Misses
	hitRate := 0.0
	if lookups > 0 {
		hitRate = float64(s.Hits) / float64(lookups) * 100
	}
	opsPerSec := 0.0
	if res.Elapsed > 0 {
		opsPerSec = float64(res.Ops) / res.Elapsed.Seconds()
	}

	fmt.Fprintf(out, "Loads:      %d in %v (%.0f ops/sec)\n", res.Ops, res.Elapsed.Round(time.Millisecond), opsPerSec)
	fmt.Fprintf(out, "Hit rate:   %.1f%% (%d hits, %d misses)\n", hitRate, s.Hits, s.Misses)
	fmt.Fprintf(out, "Evictions:  %d\n", s.Evictions)
	fmt.Fprintf(out, "Exhausted:  %d\n", res.Exhausted)
	fmt.Fprintf(out, "Slots:      %d live, %d cached, %d free of %d\n", s.Live, s.Cached, s.Free, s.Capacity)
}
