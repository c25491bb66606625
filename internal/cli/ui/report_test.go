package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/conduit-lang/attrkit/internal/logger"
)

func TestFormatProblem(t *testing.T) {
	out := FormatProblem(Problem{
		Context:     "unknown definition",
		Message:     "Bondary",
		Suggestions: []string{"Boundary"},
		Hints:       []string{"attrkit info model.xml"},
	}, true)

	for _, want := range []string{
		"UNKNOWN DEFINITION: Bondary\n",
		"Did you mean: Boundary?",
		"→ attrkit info model.xml",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestFormatProblemWithoutContext(t *testing.T) {
	out := FormatProblem(Problem{Message: "boom"}, true)
	if out != "boom\n" {
		t.Errorf("got %q", out)
	}
}

func TestDocumentNotFound(t *testing.T) {
	out := DocumentNotFound("bondary", []string{"boundary", "solver"}, true)
	if !strings.Contains(out, "DOCUMENT NOT FOUND: bondary") {
		t.Errorf("missing header in %q", out)
	}
	if !strings.Contains(out, "Did you mean: boundary?") {
		t.Errorf("missing suggestion in %q", out)
	}
	if strings.Contains(out, "solver") {
		t.Errorf("unrelated name suggested in %q", out)
	}
}

func TestSuccess(t *testing.T) {
	var buf bytes.Buffer
	Success(&buf, "stored bc", true)
	if buf.String() != "✓ stored bc\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteRecords(t *testing.T) {
	log := logger.New()
	log.Infof("read definition %s", "Inlet")
	log.Warnf("unknown item %s", "flux")
	log.Errorf("missing definition %s", "Wall")

	var buf bytes.Buffer
	n := WriteRecords(&buf, log.Records(), logger.Warning, true)
	if n != 2 {
		t.Fatalf("expected 2 records, got %d", n)
	}
	out := buf.String()
	if strings.Contains(out, "read definition") {
		t.Errorf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "WARNING unknown item flux\n") {
		t.Errorf("missing warning in %q", out)
	}
	if !strings.Contains(out, "ERROR   missing definition Wall\n") {
		t.Errorf("missing error in %q", out)
	}
}
