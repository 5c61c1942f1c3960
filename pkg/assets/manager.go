package assets

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/config"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/errors"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/logger"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/metrics"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/resource"
)

// MemoryProbe reports system memory usage in percent.
type MemoryProbe func(ctx context.Context) (float64, error)

// SystemMemory reads memory usage from the operating system.
func SystemMemory(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read memory stats: %w", err)
	}
	return vm.UsedPercent, nil
}

// managed is the type-independent view of a pool the manager keeps.
type managed interface {
	Name() string
	Stats() resource.Stats
	Clean() int
	Destroy()
}

// Manager owns the engine's pools.
type Manager struct {
	cfg    *config.EngineConfig
	log    *zap.Logger
	reader *fileReader

	documents *resource.Pool[Document]
	blobs     *resource.Pool[Blob]
	scratch   *resource.Pool[Scratch]
	pools     map[string]managed

	residentBytes int64
	lastMaintain  time.Time
	closed        bool

	fs      afero.Fs
	probe   MemoryProbe
	clock   resource.Clock
	vectors *metrics.Vectors
	tracer  trace.Tracer
}

// Option customizes a Manager.
type Option func(*Manager)

// WithFs sets the filesystem assets are read from. Defaults to the OS.
func WithFs(fs afero.Fs) Option {
	return func(m *Manager) { m.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithMemoryProbe replaces SystemMemory.
func WithMemoryProbe(p MemoryProbe) Option {
	return func(m *Manager) { m.probe = p }
}

// WithClock sets the clock every pool stamps releases with.
func WithClock(c resource.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithMetricsVectors records pool metrics into v instead of the default
// registry. It has no effect when metrics are disabled in the config.
func WithMetricsVectors(v *metrics.Vectors) Option {
	return func(m *Manager) { m.vectors = v }
}

// WithTracer sets the tracer used when tracing is enabled in the config.
func WithTracer(t trace.Tracer) Option {
	return func(m *Manager) { m.tracer = t }
}

// NewManager validates cfg and creates the built-in pools.
func NewManager(cfg *config.EngineConfig, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "engine config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid engine config")
	}

	m := &Manager{
		cfg:   cfg,
		pools: make(map[string]managed),
		probe: SystemMemory,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.Get()
	}
	m.log = m.log.With(zap.String("engine", cfg.Name))
	if m.fs == nil {
		m.fs = afero.NewOsFs()
	}
	if m.vectors == nil {
		m.vectors = metrics.Default
	}
	if m.tracer == nil {
		m.tracer = otel.Tracer("github.com/engineerOfLies/MoGUL-sub000/pkg/assets")
	}
	if !cfg.Observability.EnableTracing {
		m.tracer = noop.NewTracerProvider().Tracer("")
	}
	m.reader = newFileReader(m.fs, cfg.Assets.Root, cfg.Assets.MaxFileSize, m.log.Named("reader"))

	var err error
	m.documents, err = NewPool[Document](m, config.PoolDocuments, m.loadDocument, destroyDocument)
	if err != nil {
		return nil, err
	}
	m.blobs, err = NewPool[Blob](m, config.PoolBlobs, m.loadBlob, m.destroyBlob)
	if err != nil {
		m.Close()
		return nil, err
	}
	m.scratch, err = NewPool[Scratch](m, config.PoolScratch, m.loadScratch, destroyScratch)
	if err != nil {
		m.Close()
		return nil, err
	}

	m.log.Info("asset manager ready",
		zap.String("root", cfg.Assets.Root),
		zap.Strings("pools", cfg.PoolNames()))
	return m, nil
}

// NewPool creates a pool sized by the config entry called name and puts it
// under m's maintenance, statistics and Close.
func NewPool[T any](m *Manager, name string, load resource.Loader[T], destroy resource.Destructor[T]) (*resource.Pool[T], error) {
	if m.closed {
		return nil, errors.New(errors.ErrorTypeInvalidArgument, "manager is closed")
	}
	pc, ok := m.cfg.Pool(name)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeConfig, "no pool named %q in config", name)
	}
	if _, exists := m.pools[name]; exists {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "pool %q already exists", name)
	}

	opts := []resource.Option{
		resource.WithLogger(m.log.Named("resource")),
		resource.WithTracer(m.tracer),
	}
	if m.clock != nil {
		opts = append(opts, resource.WithClock(m.clock))
	}
	if m.cfg.Observability.EnableMetrics {
		opts = append(opts, resource.WithMetrics(metrics.NewCollectorWithVectors(name, m.vectors)))
	} else {
		opts = append(opts, resource.WithMetrics(nil))
	}

	pool, err := resource.New(resource.Config[T]{
		Name:         name,
		Capacity:     pc.Capacity,
		Unique:       pc.Unique,
		MaxKeyLength: pc.MaxKeyLength,
		Destroy:      destroy,
		Load:         load,
	}, opts...)
	if err != nil {
		return nil, err
	}
	m.pools[name] = pool
	return pool, nil
}

// Documents returns the shared pool of decoded documents.
func (m *Manager) Documents() *resource.Pool[Document] { return m.documents }

// Blobs returns the shared pool of raw asset bytes.
func (m *Manager) Blobs() *resource.Pool[Blob] { return m.blobs }

// Scratch returns the unique pool of working state.
func (m *Manager) Scratch() *resource.Pool[Scratch] { return m.scratch }

// ResidentBytes returns the bytes held by loaded blobs, live or cached.
func (m *Manager) ResidentBytes() int64 { return m.residentBytes }

// Snapshot is a point-in-time view of every pool.
type Snapshot struct {
	Engine        string           `json:"engine"`
	ResidentBytes int64            `json:"resident_bytes"`
	Pools         []resource.Stats `json:"pools"`
}

// Stats snapshots every pool in name order.
func (m *Manager) Stats() Snapshot {
	snap := Snapshot{
		Engine:        m.cfg.Name,
		ResidentBytes: m.residentBytes,
		Pools:         make([]resource.Stats, 0, len(m.pools)),
	}
	for _, name := range m.poolNames() {
		snap.Pools = append(snap.Pools, m.pools[name].Stats())
	}
	return snap
}

// MaintenanceReport describes one maintenance run.
type MaintenanceReport struct {
	MemoryUsed float64        `json:"memory_used_percent"`
	Triggered  bool           `json:"triggered"`
	Cleaned    map[string]int `json:"cleaned,omitempty"`
}

// Maintain cleans every pool when system memory usage is at or above the
// configured high watermark.
func (m *Manager) Maintain(ctx context.Context) (MaintenanceReport, error) {
	var report MaintenanceReport
	if m.closed {
		return report, errors.New(errors.ErrorTypeInvalidArgument, "manager is closed")
	}
	used, err := m.probe(ctx)
	if err != nil {
		return report, err
	}
	report.MemoryUsed = used
	if used < m.cfg.Maintenance.MemoryHighWatermark {
		return report, nil
	}

	report.Triggered = true
	report.Cleaned = make(map[string]int, len(m.pools))
	total := 0
	for _, name := range m.poolNames() {
		n := m.pools[name].Clean()
		report.Cleaned[name] = n
		total += n
	}
	m.log.Info("memory maintenance",
		zap.Float64("memory_used_percent", used),
		zap.Float64("watermark", m.cfg.Maintenance.MemoryHighWatermark),
		zap.Int("destroyed", total))
	return report, nil
}

// Update runs Maintain when the configured interval has passed since the
// previous run. It is meant to be called once per frame; the report is nil
// when nothing ran.
func (m *Manager) Update(ctx context.Context, now time.Time) (*MaintenanceReport, error) {
	if !m.lastMaintain.IsZero() && now.Sub(m.lastMaintain) < m.cfg.Maintenance.Interval {
		return nil, nil
	}
	m.lastMaintain = now
	report, err := m.Maintain(ctx)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Close destroys every pool. Payloads still referenced become invalid.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	m.closed = true
	for _, name := range m.poolNames() {
		m.pools[name].Destroy()
	}
	m.log.Info("asset manager closed")
}

func (m *Manager) poolNames() []string {
	names := make([]string, 0, len(m.pools))
	for name := range m.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
