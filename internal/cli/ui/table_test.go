package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "NAME", "TYPE")
	table.AddRow("inlet", "Boundary")
	table.AddRow("wall")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "NAME   TYPE") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "-----  --------") {
		t.Errorf("unexpected separator %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "inlet  Boundary") {
		t.Errorf("unexpected row %q", lines[2])
	}
	if strings.TrimSpace(lines[3]) != "wall" {
		t.Errorf("short row should pad, got %q", lines[3])
	}
	if table.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", table.Len())
	}
}

func TestTableWithoutHeaders(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf, true).Render()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("ID", "1234")
	kv.AddRow("Version", "3")
	kv.Render()

	want := "ID:      1234\nVersion: 3\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Attributes", true)
	if buf.String() != "Attributes\n==========\n" {
		t.Errorf("unexpected header %q", buf.String())
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("got %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Errorf("longer strings must not be cut, got %q", got)
	}
}
