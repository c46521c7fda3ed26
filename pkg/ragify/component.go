package ragify

import "context"

// Component is one named processing stage in a pipeline.
//
// A Component is constructed once at pipeline-assembly time and reused across
// many runs. It owns any external resource handle it needs (store client,
// model client) for its whole lifetime. Run must not assume any specific
// upstream stage ran: it checks for the keys it needs and substitutes
// documented defaults when they are absent.
type Component interface {
	// Name identifies the component; unique within a pipeline.
	Name() string

	// Enabled reports whether the component should run. Disabled components
	// are skipped and leave the record untouched.
	Enabled() bool

	// Run performs the stage's core transformation on the record.
	Run(ctx context.Context, rec Record) (Record, error)
}

// Preprocessor is an optional hook run before a Component's Run, used to
// normalize inputs (e.g. wipe an external store when a clear flag is set).
type Preprocessor interface {
	Preprocess(ctx context.Context, rec Record) (Record, error)
}

// Postprocessor is an optional hook run after a Component's Run, used to
// attach derived statistics to the record.
type Postprocessor interface {
	Postprocess(ctx context.Context, rec Record) (Record, error)
}

// Base carries the name/enabled plumbing shared by all components.
// Embed it by value and construct with NewBase.
type Base struct {
	name    string
	enabled bool
}

// NewBase returns an enabled Base with the given name.
func NewBase(name string) Base {
	return Base{name: name, enabled: true}
}

// Name returns the component name.
func (b Base) Name() string { return b.name }

// Enabled reports whether the component is enabled.
func (b Base) Enabled() bool { return b.enabled }

// SetEnabled toggles the component on or off.
func (b *Base) SetEnabled(enabled bool) { b.enabled = enabled }

// StageResult is the tagged outcome of executing one component.
//
// On failure Err is set and Record is the execute input, unchanged: a failing
// stage contributes nothing to the run rather than aborting it. External side
// effects already performed by the stage are not rolled back (fail-forward).
type StageResult struct {
	Component string
	Record    Record
	Err       error
	Skipped   bool
}

// Failed reports whether the stage ended in error.
func (s StageResult) Failed() bool { return s.Err != nil }

// Execute runs a component's full preprocess -> run -> postprocess sequence
// over a copy of rec and returns a tagged result.
//
// A disabled component is skipped: the input record is returned unchanged. An
// error in any phase discards the stage's partial output entirely, so the
// caller's record is exactly what it was before Execute.
func Execute(ctx context.Context, c Component, rec Record) StageResult {
	if !c.Enabled() {
		return StageResult{Component: c.Name(), Record: rec, Skipped: true}
	}

	work := rec.Clone()

	if pre, ok := c.(Preprocessor); ok {
		out, err := pre.Preprocess(ctx, work)
		if err != nil {
			return StageResult{Component: c.Name(), Record: rec, Err: err}
		}
		work = out
	}

	out, err := c.Run(ctx, work)
	if err != nil {
		return StageResult{Component: c.Name(), Record: rec, Err: err}
	}
	work = out

	if post, ok := c.(Postprocessor); ok {
		out, err := post.Postprocess(ctx, work)
		if err != nil {
			return StageResult{Component: c.Name(), Record: rec, Err: err}
		}
		work = out
	}

	return StageResult{Component: c.Name(), Record: work}
}
