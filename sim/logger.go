package sim

import (
	"fmt"
	"os"
	"strings"
)

// Logger writes scenario runs to a CSV file: one header line, then one
// %f-formatted row per Log call.
type Logger struct {
	f      *os.File
	rowFmt string
}

// NewLogger creates the CSV file and writes the header line. The caller
// owns the logger and must Close it when the run ends.
func NewLogger(fn string, header ...string) (*Logger, error) {
	f, err := os.Create(fn)
	if err != nil {
		return nil, fmt.Errorf("sim: create log %s: %w", fn, err)
	}
	if _, err := fmt.Fprintln(f, strings.Join(header, ",")); err != nil {
		f.Close()
		return nil, err
	}

	cells := strings.Repeat("%f,", len(header))
	return &Logger{f: f, rowFmt: cells[:len(cells)-1] + "\n"}, nil
}

// Log writes one row; v must have one value per header column.
func (l *Logger) Log(v ...interface{}) {
	fmt.Fprintf(l.f, l.rowFmt, v...)
}

func (l *Logger) Close() error {
	return l.f.Close()
}
