package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.js")
	if err := os.WriteFile(file, []byte("1 + 1"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		scriptFile  string
		expr        string
		interactive bool
		source      string
		label       string
	}{
		{name: "inline source has no label", expr: "40 + 2", source: "40 + 2", label: ""},
		{name: "inline wins over file", scriptFile: file, expr: "x", source: "x", label: ""},
		{name: "file is labelled by path", scriptFile: file, source: "1 + 1", label: file},
		{name: "interactive without script", interactive: true, source: "", label: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, label, err := readSource(tt.scriptFile, tt.expr, tt.interactive)
			if err != nil {
				t.Fatal(err)
			}
			if source != tt.source || label != tt.label {
				t.Errorf("readSource = (%q, %q), want (%q, %q)", source, label, tt.source, tt.label)
			}
		})
	}

	if _, _, err := readSource(filepath.Join(dir, "missing.js"), "", false); err == nil {
		t.Error("expected error for missing script file")
	}
}
