package pdftext

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/telemetry"
)

// State is the lifecycle of the process-wide engine.
type State int

const (
	NotLoaded State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "not_loaded"
	}
}

//go:embed selfcheck.pdf
var selfCheckPDF []byte

// Config selects and bounds the engine.
type Config struct {
	// Worker names the engine backend and must be set before first use.
	Worker   string
	MaxPages int
}

// InitFunc builds an Extractor from Config.
type InitFunc func(ctx context.Context, cfg Config) (Extractor, error)

// Loader lazily initializes the extraction engine once per process.
// Concurrent Ensure calls share a single in-flight load. A failed load is
// reported to every waiter and retried by the next call.
type Loader struct {
	cfg   Config
	init  InitFunc
	group singleflight.Group

	mu    sync.Mutex
	state State
	ext   Extractor
}

// NewLoader returns a loader. A nil init uses the ledongthuc engine with a self-check.
func NewLoader(cfg Config, init InitFunc) *Loader {
	if init == nil {
		init = InitEngine
	}
	return &Loader{cfg: cfg, init: init}
}

// State reports the current lifecycle state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// StateName reports State as text for health checks.
func (l *Loader) StateName() string {
	return l.State().String()
}

// Ensure returns the loaded Extractor, loading it if needed.
func (l *Loader) Ensure(ctx context.Context) (Extractor, error) {
	l.mu.Lock()
	if l.state == Loaded {
		ext := l.ext
		l.mu.Unlock()
		return ext, nil
	}
	l.mu.Unlock()

	ch := l.group.DoChan("load", func() (any, error) {
		return l.load(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Extractor), nil
	}
}

func (l *Loader) load(ctx context.Context) (Extractor, error) {
	l.mu.Lock()
	if l.state == Loaded {
		ext := l.ext
		l.mu.Unlock()
		return ext, nil
	}
	l.state = Loading
	l.mu.Unlock()

	ext, err := l.init(ctx, l.cfg)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.state = Failed
		metrics.IncPDFLoad("error")
		telemetry.Error("pdf.loader.failed", map[string]any{"worker": l.cfg.Worker, "err": err})
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	l.state = Loaded
	l.ext = ext
	metrics.IncPDFLoad("ok")
	telemetry.Info("pdf.loader.loaded", map[string]any{"worker": l.cfg.Worker})
	return ext, nil
}

// InitEngine builds the ledongthuc engine and verifies it on an embedded two-page document.
func InitEngine(ctx context.Context, cfg Config) (Extractor, error) {
	if strings.TrimSpace(cfg.Worker) == "" {
		return nil, ErrWorkerNotConfigured
	}
	text, err := NewEngine(0).Extract(ctx, selfCheckPDF)
	if err != nil {
		return nil, fmt.Errorf("self-check: %w", err)
	}
	if strings.Count(text, "\n") != 1 || strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("self-check: unexpected output %q", text)
	}
	return NewEngine(cfg.MaxPages), nil
}
