package main

import (
	"strings"
	"testing"

	"github.com/spf13/afero"

	"gasladder/pkg/ladder"
)

func smallViewer(t *testing.T) *viewer {
	t.Helper()
	opts := ladder.DefaultOptions()
	opts.Domain = ladder.Domain{Min: 0, Max: 3}
	opts.Found = viewerFound
	v, err := newViewer(opts)
	if err != nil {
		t.Fatalf("newViewer: %v", err)
	}
	return v
}

func TestViewerListing(t *testing.T) {
	v := smallViewer(t)
	if len(v.lines) != 16 {
		t.Fatalf("expected 16 listing lines, got %d", len(v.lines))
	}
	if v.lines[15] != "4:" {
		t.Errorf("expected exit label last, got %q", v.lines[15])
	}
	if got := v.currentLine(); got != -1 {
		t.Errorf("expected no current line before a value is loaded, got %d", got)
	}
}

func TestViewerStepping(t *testing.T) {
	v := smallViewer(t)
	v.setValue(2)
	if got := v.currentLine(); got != 0 {
		t.Fatalf("expected to start on line 0, got %d", got)
	}

	v.step()
	if got := v.currentLine(); got != 1 {
		t.Errorf("expected line 1 after cmp, got %d", got)
	}

	v.run()
	if v.err != nil {
		t.Fatalf("run: %v", v.err)
	}
	if !v.machine.Halted {
		t.Fatal("expected machine to halt")
	}
	if len(v.machine.Actions) != 1 || v.machine.Actions[0].Text != "FOUND(2)" {
		t.Fatalf("expected a single FOUND(2), got %+v", v.machine.Actions)
	}
	// cmp jl jg, cmp jg, action, jmp
	if v.machine.Steps != 7 {
		t.Errorf("expected 7 steps, got %d", v.machine.Steps)
	}
	if !v.executed(10) {
		t.Errorf("expected line 10 to hold the executed action")
	}
	if got := v.status(); !strings.HasSuffix(got, "done in 7 steps: FOUND(2)") {
		t.Errorf("unexpected status %q", got)
	}

	// stepping a halted machine is a no-op
	v.step()
	if v.machine.Steps != 7 {
		t.Errorf("step after halt changed the step count to %d", v.machine.Steps)
	}
}

func TestViewerEveryValue(t *testing.T) {
	v := smallViewer(t)
	for n := 0; n <= 3; n++ {
		v.setValue(n)
		v.run()
		if v.err != nil {
			t.Fatalf("value %d: %v", n, v.err)
		}
		if len(v.machine.Actions) != 1 {
			t.Fatalf("value %d: expected one action, got %d", n, len(v.machine.Actions))
		}
	}
}

func TestViewerInput(t *testing.T) {
	v := smallViewer(t)
	v.typed([]rune("1a2-"))
	if v.input != "12" {
		t.Errorf("expected input 12, got %q", v.input)
	}
	v.backspace()
	v.submit()
	if v.err != nil || !v.loaded || v.value != 1 || v.input != "" {
		t.Errorf("submit failed: err=%v loaded=%t value=%d input=%q", v.err, v.loaded, v.value, v.input)
	}

	v.typed([]rune("-"))
	v.submit()
	if v.err == nil {
		t.Error("expected an error for a lone minus sign")
	}
	if !strings.HasPrefix(v.status(), "error: ") {
		t.Errorf("expected error status, got %q", v.status())
	}
}

func TestVisibleRange(t *testing.T) {
	tests := []struct {
		current, total, rows int
		wantFirst, wantLast  int
	}{
		{0, 10, 20, 0, 10},
		{-1, 100, 20, 0, 20},
		{2, 100, 20, 0, 20},
		{50, 100, 20, 40, 60},
		{99, 100, 20, 80, 100},
	}
	for _, tc := range tests {
		first, last := visibleRange(tc.current, tc.total, tc.rows)
		if first != tc.wantFirst || last != tc.wantLast {
			t.Errorf("visibleRange(%d, %d, %d) = (%d, %d); want (%d, %d)",
				tc.current, tc.total, tc.rows, first, last, tc.wantFirst, tc.wantLast)
		}
	}
}

func TestOptions(t *testing.T) {
	fs := afero.NewMemMapFs()
	yaml := "ladders:\n  - max: 15\n    register: ecx\n  - max: 7\n"
	if err := afero.WriteFile(fs, "/v.yaml", []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	env := map[string]string{"GASLADDER_LABEL_BASE": "50"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	opts, err := options(fs, lookup, []string{"--config", "/v.yaml", "--min", "4"})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Domain != (ladder.Domain{Min: 4, Max: 15}) {
		t.Errorf("unexpected domain %+v", opts.Domain)
	}
	if opts.Register != "ecx" || opts.LabelBase != 50 || opts.Found != viewerFound {
		t.Errorf("unexpected options %+v", opts)
	}

	if _, err := options(fs, lookup, []string{"--min", "9", "--max", "1"}); err == nil {
		t.Error("expected an invalid domain error")
	}
}
