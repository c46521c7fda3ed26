package ragify

import (
	"context"
	"errors"
	"testing"
)

func TestPipelineRunsComponentsInOrder(t *testing.T) {
	first := newStub("first")
	first.runFn = func(_ context.Context, rec Record) (Record, error) {
		rec["seen"] = []string{"first"}
		return rec, nil
	}
	second := newStub("second")
	second.runFn = func(_ context.Context, rec Record) (Record, error) {
		rec["seen"] = append(rec.StringSlice("seen"), "second")
		return rec, nil
	}
	third := newStub("third")
	third.runFn = func(_ context.Context, rec Record) (Record, error) {
		rec["seen"] = append(rec.StringSlice("seen"), "third")
		return rec, nil
	}

	p := New("ordered").AddAll(first, second, third)
	out, results := p.Run(context.Background(), NewRecord())

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	seen := out.StringSlice("seen")
	want := []string{"first", "second", "third"}
	if len(seen) != len(want) {
		t.Fatalf("got seen %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("got seen %v, want %v", seen, want)
		}
	}

	info := out.Map(PipelineInfoKey)
	if info == nil {
		t.Fatal("missing pipeline bookkeeping")
	}
	executed, _ := info["components_executed"].([]string)
	if len(executed) != 3 || executed[0] != "first" || executed[2] != "third" {
		t.Errorf("components_executed = %v", executed)
	}
	if success, _ := info["success"].(bool); !success {
		t.Error("expected success=true")
	}
}

func TestPipelineDisabledReturnsInputUnchanged(t *testing.T) {
	c := newStub("stage")
	c.runFn = func(_ context.Context, rec Record) (Record, error) {
		rec["touched"] = true
		return rec, nil
	}

	p := New("off").Add(c)
	p.SetEnabled(false)

	in := Record{"input": "value"}
	out, results := p.Run(context.Background(), in)

	if results != nil {
		t.Errorf("expected no stage results, got %v", results)
	}
	if out.Has("touched") || out.Has(PipelineInfoKey) {
		t.Errorf("disabled pipeline modified record: %v", out)
	}
	if out.String("input") != "value" {
		t.Errorf("input lost: %v", out)
	}
}

func TestPipelineContinuesPastFailure(t *testing.T) {
	failing := newStub("failing")
	failing.runFn = func(_ context.Context, _ Record) (Record, error) {
		return nil, errors.New("stage exploded")
	}
	after := newStub("after")
	after.runFn = func(_ context.Context, rec Record) (Record, error) {
		rec["after_ran"] = true
		return rec, nil
	}

	p := New("resilient").AddAll(failing, after)
	out, results := p.Run(context.Background(), NewRecord())

	if !results[0].Failed() {
		t.Error("expected first stage to fail")
	}
	if results[1].Failed() {
		t.Errorf("second stage failed: %v", results[1].Err)
	}
	if !out.Bool("after_ran") {
		t.Error("stage after a failure did not run")
	}

	info := out.Map(PipelineInfoKey)
	failed, _ := info["components_failed"].([]string)
	if len(failed) != 1 || failed[0] != "failing" {
		t.Errorf("components_failed = %v", failed)
	}
	if success, _ := info["success"].(bool); success {
		t.Error("expected success=false after a stage failure")
	}
}

func TestPipelineRecordsSkippedComponents(t *testing.T) {
	off := newStub("off")
	off.SetEnabled(false)
	on := newStub("on")

	p := New("mixed").AddAll(off, on)
	out, results := p.Run(context.Background(), NewRecord())

	if !results[0].Skipped {
		t.Error("expected first stage skipped")
	}
	info := out.Map(PipelineInfoKey)
	skipped, _ := info["components_skipped"].([]string)
	if len(skipped) != 1 || skipped[0] != "off" {
		t.Errorf("components_skipped = %v", skipped)
	}
	executed, _ := info["components_executed"].([]string)
	if len(executed) != 1 || executed[0] != "on" {
		t.Errorf("components_executed = %v", executed)
	}
}

func TestPipelineValidateRejectsDuplicateNames(t *testing.T) {
	p := New("dups").AddAll(newStub("same"), newStub("other"), newStub("same"))

	err := p.Validate()
	if !errors.Is(err, ErrDuplicateComponent) {
		t.Errorf("got %v, want ErrDuplicateComponent", err)
	}

	if err := New("ok").AddAll(newStub("a"), newStub("b")).Validate(); err != nil {
		t.Errorf("unexpected error for unique names: %v", err)
	}
}

func TestPipelineRemoveAndGet(t *testing.T) {
	a := newStub("a")
	b := newStub("b")
	p := New("edit").AddAll(a, b)

	if got, ok := p.Get("b"); !ok || got.Name() != "b" {
		t.Errorf("Get(b) = %v, %v", got, ok)
	}
	if !p.Remove("a") {
		t.Error("Remove(a) = false")
	}
	if p.Remove("a") {
		t.Error("second Remove(a) = true")
	}
	if len(p.Components()) != 1 {
		t.Errorf("components = %v", p.Components())
	}
}

func TestPipelineRunDoesNotMutateCaller(t *testing.T) {
	c := newStub("writer")
	c.runFn = func(_ context.Context, rec Record) (Record, error) {
		rec["written"] = true
		return rec, nil
	}

	in := Record{"input": "value"}
	p := New("isolated").Add(c)
	out, _ := p.Run(context.Background(), in)

	if in.Has("written") || in.Has(PipelineInfoKey) {
		t.Errorf("caller's record mutated: %v", in)
	}
	if !out.Bool("written") {
		t.Error("output missing stage write")
	}
}
