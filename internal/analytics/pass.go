package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopfloor/internal/core"
)

// Fetcher loads one complete snapshot of raw time entries.
type Fetcher interface {
	FetchTimeEntries(ctx context.Context) ([]core.RawTimeEntry, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]core.RawTimeEntry, error)

func (f FetcherFunc) FetchTimeEntries(ctx context.Context) ([]core.RawTimeEntry, error) {
	return f(ctx)
}

// State is the lifecycle stage of a pass.
type State string

const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateProcessing State = "processing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// IsTerminal reports whether the pass has finished.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateFetching
	case StateFetching:
		return to == StateProcessing || to == StateFailed
	case StateProcessing:
		return to == StateDone
	default:
		return false
	}
}

// Report is the outcome of a resolved pass.
type Report struct {
	PassID      string       `json:"passId"`
	GeneratedAt time.Time    `json:"generatedAt"`
	Entries     int          `json:"entries"`
	Rejected    int          `json:"rejected"`
	Definitions []Definition `json:"definitions"`
}

// PassConfig configures a pass. OnResolved, when set, is called exactly
// once with the report after a successful pass.
type PassConfig struct {
	Options    Options
	Logger     *slog.Logger
	OnResolved func(Report)
	Now        func() time.Time
}

// Pass is a single aggregation run over one snapshot. Its definitions are
// available immediately with empty views and are filled in once, when the
// snapshot has been fetched and processed. A pass never runs twice.
type Pass struct {
	id      string
	fetcher Fetcher
	cfg     PassConfig

	startOnce sync.Once
	done      chan struct{}

	mu     sync.Mutex
	state  State
	defs   []Definition
	report Report
	err    error
}

// NewPass declares the catalog for a new pass without fetching anything.
func NewPass(fetcher Fetcher, cfg PassConfig) *Pass {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.Options = cfg.Options.withDefaults()
	return &Pass{
		id:      uuid.NewString(),
		fetcher: fetcher,
		cfg:     cfg,
		done:    make(chan struct{}),
		state:   StateIdle,
		defs:    Catalog(),
	}
}

// ID identifies the pass in logs and stored reports.
func (p *Pass) ID() string { return p.id }

// State returns the current lifecycle stage.
func (p *Pass) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Definitions returns a copy of the catalog as it currently stands. Before
// the pass resolves every view's Data is nil.
func (p *Pass) Definitions() []Definition {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyDefinitions(p.defs)
}

// Done is closed when the pass reaches a terminal state.
func (p *Pass) Done() <-chan struct{} { return p.done }

// Start launches the fetch in the background. Calls after the first are no-ops.
func (p *Pass) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		if err := p.transition(StateIdle, StateFetching); err != nil {
			p.cfg.Logger.ErrorContext(ctx, "Pass start rejected", "pass_id", p.id, "error", err)
			return
		}
		go p.run(ctx)
	})
}

// Wait blocks until the pass resolves or ctx ends.
func (p *Pass) Wait(ctx context.Context) (Report, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return Report{}, p.err
	}
	r := p.report
	r.Definitions = copyDefinitions(p.defs)
	return r, nil
}

// Run starts the pass and waits for it.
func (p *Pass) Run(ctx context.Context) (Report, error) {
	p.Start(ctx)
	return p.Wait(ctx)
}

func (p *Pass) run(ctx context.Context) {
	defer close(p.done)
	log := p.cfg.Logger.With("pass_id", p.id)

	start := p.cfg.Now()
	raws, err := p.fetcher.FetchTimeEntries(ctx)
	if err != nil {
		p.fail(fmt.Errorf("fetch time entries: %w", err))
		log.ErrorContext(ctx, "Analytics pass failed", "error", err, "state", StateFailed)
		return
	}
	if err := p.transition(StateFetching, StateProcessing); err != nil {
		p.fail(err)
		return
	}

	entries, rejected := core.NormalizeAll(raws, p.cfg.Options.Location)
	for _, r := range rejected {
		log.DebugContext(ctx, "Dropped malformed time entry", "index", r.Index, "error", r.Err)
	}
	results := Compute(entries, p.cfg.Options)

	p.mu.Lock()
	Attach(p.defs, results)
	p.report = Report{
		PassID:      p.id,
		GeneratedAt: p.cfg.Now(),
		Entries:     len(entries),
		Rejected:    len(rejected),
	}
	p.state = StateDone
	report := p.report
	report.Definitions = copyDefinitions(p.defs)
	p.mu.Unlock()

	log.InfoContext(ctx, "Analytics pass completed",
		"entries", len(entries),
		"rejected", len(rejected),
		"duration_ms", p.cfg.Now().Sub(start).Milliseconds())

	if p.cfg.OnResolved != nil {
		p.cfg.OnResolved(report)
	}
}

func (p *Pass) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
	p.state = StateFailed
}

func (p *Pass) transition(from, to State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != from {
		return fmt.Errorf("invalid pass transition: expected %s, got %s", from, p.state)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed pass transition: %s -> %s", from, to)
	}
	p.state = to
	return nil
}

// copyDefinitions copies the definition and view slices. Chart data is
// shared; it is never modified after it is attached.
func copyDefinitions(defs []Definition) []Definition {
	out := make([]Definition, len(defs))
	for i, d := range defs {
		out[i] = Definition{Title: d.Title, Views: append([]View(nil), d.Views...)}
	}
	return out
}
