package console

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	if p.Writer() != &buf {
		t.Error("writer not set correctly")
	}
	// A buffer is never a terminal.
	if p.Colors() {
		t.Error("colors should be disabled for non-terminal writers")
	}
}

func TestNew_NilWriter(t *testing.T) {
	p := New(nil, true)
	if p == nil {
		t.Fatal("New returned nil")
	}
	if p.Colors() {
		t.Error("noColor should disable colors")
	}
}

func TestPrinter_Marks(t *testing.T) {
	tests := []struct {
		name  string
		print func(p *Printer)
		want  string
	}{
		{"success", func(p *Printer) { p.Success("report written") }, "✓ report written\n"},
		{"error", func(p *Printer) { p.Error("write failed") }, "✗ write failed\n"},
		{"warning", func(p *Printer) { p.Warning("git not found") }, "! git not found\n"},
		{"info", func(p *Printer) { p.Info("plain") }, "plain\n"},
		{"infof", func(p *Printer) { p.Infof("total %d", 72) }, "total 72\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.print(&Printer{writer: &buf})
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrinter_Colors(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{writer: &buf, useColors: true}

	p.Success("ok")
	if !strings.Contains(buf.String(), colorGreen) {
		t.Errorf("expected green escape, got %q", buf.String())
	}
	if got := p.Bold("x"); got != colorBold+"x"+colorReset {
		t.Errorf("Bold = %q", got)
	}
	if got := p.Cyan("x"); got != colorCyan+"x"+colorReset {
		t.Errorf("Cyan = %q", got)
	}
}

func TestPrinter_ScoreColor(t *testing.T) {
	p := &Printer{writer: &bytes.Buffer{}, useColors: true}
	tests := []struct {
		score float64
		color string
	}{
		{95, colorGreen},
		{80, colorGreen},
		{72, colorYellow},
		{59, colorRed},
	}
	for _, tt := range tests {
		if got := p.ScoreColor(tt.score, "s"); !strings.HasPrefix(got, tt.color) {
			t.Errorf("ScoreColor(%g) = %q, want prefix %q", tt.score, got, tt.color)
		}
	}

	plain := &Printer{writer: &bytes.Buffer{}}
	if got := plain.ScoreColor(10, "s"); got != "s" {
		t.Errorf("plain ScoreColor = %q", got)
	}
}
