package reference

import (
	"log/slog"
	"sync"

	"ltlcleaner/infrastructure/ltl"
	"ltlcleaner/infrastructure/sheet"
	"ltlcleaner/models"
)

// Loader reads the LTL reference table once. The first Load decides the
// outcome for the life of the process; later calls return the same rows or
// the same error without touching the file again.
type Loader struct {
	path string
	read func(path string) (*sheet.Table, error)

	once sync.Once
	rows []models.ReferenceRow
	err  error
}

func NewLoader(path string) *Loader {
	return &Loader{path: path, read: sheet.ReadFile}
}

// Path is the reference file location.
func (l *Loader) Path() string {
	return l.path
}

// Load returns a copy of the reference rows, reading the file on first use.
func (l *Loader) Load() ([]models.ReferenceRow, error) {
	l.once.Do(l.load)
	if l.err != nil {
		return nil, l.err
	}
	out := make([]models.ReferenceRow, len(l.rows))
	copy(out, l.rows)
	return out, nil
}

func (l *Loader) load() {
	t, err := l.read(l.path)
	if err != nil {
		l.err = &ltl.Error{Kind: ltl.KindReferenceLoad, Source: l.path, Message: "cannot read reference file", Err: err}
		return
	}
	rows, err := ltl.ParseReferenceTable(t)
	if err != nil {
		l.err = err
		return
	}
	l.rows = rows
	slog.Info("ltl reference loaded", slog.String("path", l.path), slog.Int("materials", len(rows)))
}
