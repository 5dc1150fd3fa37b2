package ltl

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"ltlcleaner/infrastructure/sheet"
	"ltlcleaner/models"
)

// Upload is one order export handed to Process.
type Upload struct {
	Name string
	Body io.Reader
}

// Outcome is either a result (possibly carrying an empty-result warning) or
// a structured failure, never both.
type Outcome struct {
	Result
	Err *Error `json:"error,omitempty"`
}

// OK reports whether the run produced a usable result.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Process reads every upload, parses it into order lines and transforms
// them. Any failure, including a panic in a decoder, is returned as a
// structured error on the outcome.
func Process(uploads []Upload, reference []models.ReferenceRow) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("ltl process panic", slog.Any("panic", r))
			out = Outcome{Err: &Error{Kind: KindComputation, Message: fmt.Sprintf("unexpected failure: %v", r)}}
		}
	}()

	if len(uploads) == 0 {
		return Outcome{Err: malformedInput("", "no order export uploaded")}
	}

	tables := make([][]models.OrderLine, 0, len(uploads))
	for _, u := range uploads {
		lines, err := readUpload(u)
		if err != nil {
			return Outcome{Err: AsError(err)}
		}
		tables = append(tables, lines)
	}

	res, err := Transform(tables, reference)
	if err != nil {
		return Outcome{Err: AsError(err)}
	}
	return Outcome{Result: res}
}

func readUpload(u Upload) ([]models.OrderLine, error) {
	if !sheet.Supported(u.Name) {
		return nil, malformedInput(u.Name, "%s", "unsupported file type; upload "+strings.Join(sheet.SupportedExtensions, ", ")+" files")
	}
	t, err := sheet.Read(u.Name, u.Body)
	if err != nil {
		return nil, &Error{Kind: KindMalformedInput, Source: u.Name, Message: "cannot read spreadsheet", Err: err}
	}
	return ParseOrderTable(t)
}
