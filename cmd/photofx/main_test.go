package main

import (
	"path/filepath"
	"testing"
)

func TestOutputPaths(t *testing.T) {
	got, err := outputPaths("out", []string{"a/x.png", "b/y.png"})
	if err != nil {
		t.Fatalf("outputPaths() error = %v", err)
	}
	want := map[string]string{
		"a/x.png": filepath.Join("out", "x.png"),
		"b/y.png": filepath.Join("out", "y.png"),
	}
	for in, w := range want {
		if got[in] != w {
			t.Errorf("outputPaths()[%q] = %q, want %q", in, got[in], w)
		}
	}

	tests := []struct {
		name   string
		inputs []string
	}{
		{"same base name", []string{"a/x.png", "b/x.png"}},
		{"repeated input", []string{"a/x.png", "a/x.png"}},
	}
	for _, tt := range tests {
		if _, err := outputPaths("out", tt.inputs); err == nil {
			t.Errorf("%s: outputPaths() error = nil, want error", tt.name)
		}
	}
}
