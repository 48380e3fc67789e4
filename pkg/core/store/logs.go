package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hedgepnl/pkg/models"
)

// RunLog keeps the append-only audit trail of a batch run. Entries are one
// line each so the process log stays greppable and the files package can
// parse it back for "new files only" runs.
type RunLog struct {
	Dir string
}

// NewRunLog ensures the log directory exists.
func NewRunLog(dir string) (*RunLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	return &RunLog{Dir: dir}, nil
}

// ProcessLogPath returns the path of the process log file.
func (l *RunLog) ProcessLogPath() string {
	return filepath.Join(l.Dir, "process_log.txt")
}

// ValidationLogPath returns the path of the validation log file.
func (l *RunLog) ValidationLogPath() string {
	return filepath.Join(l.Dir, "validation_log.txt")
}

// LogProcessStart records that a file entered processing:
// "[timestamp] filename".
func (l *RunLog) LogProcessStart(filePath string) error {
	line := fmt.Sprintf("[%s] %s\n", timestamp(), filepath.Base(filePath))
	return appendLine(l.ProcessLogPath(), line)
}

// LogValidation records one validation verdict:
// "[timestamp] filename | verdict" with an optional trailing error.
func (l *RunLog) LogValidation(filePath string, result models.ValidationResult) error {
	line := fmt.Sprintf("[%s] %s | %s", timestamp(), filepath.Base(filePath), result.Verdict())
	if result.Err != "" {
		line += " | " + result.Err
	}
	return appendLine(l.ValidationLogPath(), line+"\n")
}

func timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append to log %s: %w", path, err)
	}
	return nil
}
