package ragify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// PipelineInfoKey is the record key under which Pipeline.Run stores its
// bookkeeping sub-record. The bookkeeping is purely observational and is
// never read back as control input.
const PipelineInfoKey = "_pipeline_info"

// ErrDuplicateComponent is returned by Validate when two components in a
// pipeline share a name.
var ErrDuplicateComponent = fmt.Errorf("duplicate component name")

// Pipeline is an ordered, named collection of components executed
// sequentially over one Record.
//
// Components run strictly in the order they were added; later components may
// depend on keys written by earlier ones. A single component's failure never
// aborts the run: the failing stage is recorded and the pipeline continues
// with the next component.
type Pipeline struct {
	name       string
	enabled    bool
	components []Component
	log        zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for stage diagnostics.
// Default is a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// New creates an enabled pipeline with the given name.
func New(name string, opts ...Option) *Pipeline {
	p := &Pipeline{
		name:    name,
		enabled: true,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Enabled reports whether the pipeline is enabled.
func (p *Pipeline) Enabled() bool { return p.enabled }

// SetEnabled toggles the whole pipeline on or off.
func (p *Pipeline) SetEnabled(enabled bool) { p.enabled = enabled }

// Add appends a component. Returns the pipeline for chaining.
func (p *Pipeline) Add(c Component) *Pipeline {
	p.components = append(p.components, c)
	return p
}

// AddAll appends components in the given order.
func (p *Pipeline) AddAll(cs ...Component) *Pipeline {
	p.components = append(p.components, cs...)
	return p
}

// Remove deletes the first component with the given name. Absence is a
// normal, non-error case: Remove reports false and changes nothing.
func (p *Pipeline) Remove(name string) bool {
	for i, c := range p.components {
		if c.Name() == name {
			p.components = append(p.components[:i], p.components[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the component with the given name, if present.
func (p *Pipeline) Get(name string) (Component, bool) {
	for _, c := range p.components {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Components returns the components in execution order.
func (p *Pipeline) Components() []Component {
	out := make([]Component, len(p.components))
	copy(out, p.components)
	return out
}

// Validate checks pipeline invariants. Currently: component names must be
// unique. The caller decides whether a validation failure aborts assembly.
func (p *Pipeline) Validate() error {
	seen := make(map[string]struct{}, len(p.components))
	for _, c := range p.components {
		if _, dup := seen[c.Name()]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateComponent, c.Name())
		}
		seen[c.Name()] = struct{}{}
	}
	return nil
}

// Run executes the pipeline over a copy of in and returns the final record
// together with the per-stage results.
//
// A disabled pipeline returns the input record unchanged with no bookkeeping
// and no stage results. Otherwise the returned record carries a bookkeeping
// sub-record under PipelineInfoKey: pipeline name, which components executed,
// were skipped or failed, key counts before and after, and a success flag
// (true when no stage failed).
func (p *Pipeline) Run(ctx context.Context, in Record) (Record, []StageResult) {
	if !p.enabled {
		p.log.Debug().Str("pipeline", p.name).Msg("pipeline disabled, skipping run")
		return in, nil
	}

	rec := in.Clone()
	executed := make([]string, 0, len(p.components))
	skipped := make([]string, 0)
	failed := make([]string, 0)

	info := map[string]any{
		"pipeline_name": p.name,
		"start_keys":    len(rec),
	}
	rec[PipelineInfoKey] = info

	results := make([]StageResult, 0, len(p.components))
	for _, c := range p.components {
		res := Execute(ctx, c, rec)
		results = append(results, res)

		switch {
		case res.Skipped:
			p.log.Debug().Str("pipeline", p.name).Str("component", c.Name()).
				Msg("component disabled, skipping")
			skipped = append(skipped, c.Name())
		case res.Failed():
			p.log.Error().Err(res.Err).Str("pipeline", p.name).
				Str("component", c.Name()).Msg("component failed, continuing")
			failed = append(failed, c.Name())
		default:
			p.log.Debug().Str("pipeline", p.name).Str("component", c.Name()).
				Msg("component executed")
			executed = append(executed, c.Name())
			rec = res.Record
		}
	}

	info["components_executed"] = executed
	info["components_skipped"] = skipped
	info["components_failed"] = failed
	info["end_keys"] = len(rec)
	info["success"] = len(failed) == 0

	return rec, results
}
