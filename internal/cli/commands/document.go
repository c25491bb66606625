package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conduit-lang/attrkit/internal/attribute"
	"github.com/conduit-lang/attrkit/internal/cli/ui"
	"github.com/conduit-lang/attrkit/internal/codec/xmlio"
	"github.com/conduit-lang/attrkit/internal/logger"
)

// readDocument parses path into a fresh resource. Records stay in the
// returned log; only the summary goes to zap.
func (a *app) readDocument(path string) (*attribute.Resource, *logger.Logger, error) {
	res := attribute.NewResource(uuid.Nil)
	log := logger.New()
	err := xmlio.ReadFile(path, res, log)
	a.log.Debug("read document",
		zap.String("path", path),
		zap.Int("warnings", log.Count(logger.Warning)-log.Count(logger.Error)),
		zap.Int("errors", log.Count(logger.Error)),
		zap.Error(err))
	return res, log, err
}

// reportFailure prints the records of a failed read and returns errReported
func (a *app) reportFailure(w io.Writer, path string, log *logger.Logger, err error) error {
	fmt.Fprint(w, ui.FormatProblem(ui.Problem{Context: "cannot read", Message: path}, a.noColor))
	if ui.WriteRecords(w, log.Records(), logger.Warning, a.noColor) == 0 && err != nil {
		fmt.Fprintln(w, err)
	}
	return errReported
}

// splitList turns "a, b,,c" into [a b c]
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
