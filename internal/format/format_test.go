package format

import (
	"strings"
	"testing"
	"time"
)

func TestASCII_Table(t *testing.T) {
	tb := NewTable(ASCII)
	tb.Header("Category", "Score")
	tb.Row("tests", 80)
	tb.Row("security", 60)
	out := tb.String()

	// StyleLight upper-cases headers.
	for _, want := range []string{"CATEGORY", "tests", "80", "───"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestMarkdown_Table(t *testing.T) {
	tb := NewTable(Markdown)
	tb.Header("Category", "Weighted")
	tb.Row("tests", 24)
	tb.Footer("Total", 72)
	out := tb.String()

	for _, want := range []string{"| Category", "---", "tests", "TOTAL", "72"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSameRows_DualFormat(t *testing.T) {
	build := func(m Mode) string {
		tb := NewTable(m)
		tb.Header("A", "B")
		tb.Row("x", "y")
		tb.Columns(ColumnConfig{Number: 2, Align: AlignRight})
		return tb.String()
	}

	ascii, md := build(ASCII), build(Markdown)
	if ascii == md {
		t.Error("ASCII and Markdown output should differ")
	}
	for _, out := range []string{ascii, md} {
		if !strings.Contains(out, "x") || !strings.Contains(out, "y") {
			t.Errorf("expected data in output:\n%s", out)
		}
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		v    float64
		prec int
		want string
	}{
		{72, 0, "72"},
		{66.7, 1, "66.7"},
		{24, 2, "24.00"},
		{0.8, 2, "0.80"},
	}
	for _, tt := range tests {
		if got := Score(tt.v, tt.prec); got != tt.want {
			t.Errorf("Score(%g, %d) = %q, want %q", tt.v, tt.prec, got, tt.want)
		}
	}
	if got := Signed(3, 0); got != "+3" {
		t.Errorf("Signed(3) = %q", got)
	}
	if got := Signed(-2.5, 1); got != "-2.5" {
		t.Errorf("Signed(-2.5) = %q", got)
	}
	if got := Signed(0, 0); got != "0" {
		t.Errorf("Signed(0) = %q", got)
	}
}

func TestDuration(t *testing.T) {
	if got := Duration(350 * time.Millisecond); got != "350ms" {
		t.Errorf("Duration = %q", got)
	}
	if got := Duration(1250 * time.Millisecond); got != "1.2s" && got != "1.3s" {
		t.Errorf("Duration = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"abcdef", 3, "abc"},
		{"déjà vu!", 6, "déj..."},
	}
	for _, tc := range tests {
		if got := Truncate(tc.in, tc.maxLen); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
	}
}

func TestBar(t *testing.T) {
	if got := Bar(50, 10); got != "█████░░░░░" {
		t.Errorf("Bar(50) = %q", got)
	}
	if got := Bar(150, 4); got != "████" {
		t.Errorf("Bar(150) = %q", got)
	}
	if got := Bar(-5, 3); got != "░░░" {
		t.Errorf("Bar(-5) = %q", got)
	}
	if BoolMark(true) != "✓" || BoolMark(false) != "✗" {
		t.Error("BoolMark mismatch")
	}
}
