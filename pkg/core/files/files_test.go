package files

import (
	"os"
	"path/filepath"
	"testing"
)

func newManager(t *testing.T, names ...string) *Manager {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return &Manager{InputDir: dir, Extensions: []string{".xlsx", ".xls", ".msg", ".eml"}}
}

func TestDateCode(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"report_20240801.xlsx", "20240801"},
		{"report_2024_08_01.msg", "20240801"},
		{"report-2024-08-01.eml", "20240801"},
		{"report_2025_6_13.msg", "20250613"},
		{"Total Dynamic Hedge P&L as of 2025/06/13", "20250613"},
		{"report.xlsx", ""},
		{"notes_19990101.xlsx", ""}, // only 20xx dates count
	}
	for _, tt := range tests {
		if got := DateCode(tt.name); got != tt.expected {
			t.Errorf("DateCode(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestListAll(t *testing.T) {
	m := newManager(t, "b_20240801.xlsx", "a_20240801.msg", ".hidden.xlsx", "notes.txt")

	paths, err := m.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
	// Sorted by name.
	if filepath.Base(paths[0]) != "a_20240801.msg" || filepath.Base(paths[1]) != "b_20240801.xlsx" {
		t.Errorf("paths = %v", paths)
	}
}

func TestListByDate(t *testing.T) {
	m := newManager(t, "r_20240801.xlsx", "r_20240802.xlsx", "r.msg")

	paths, err := m.ListByDate("20240801")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "r_20240801.xlsx" {
		t.Errorf("paths = %v", paths)
	}
}

func TestListUnprocessed(t *testing.T) {
	m := newManager(t, "done_20240801.xlsx", "todo_20240802.xlsx")

	logPath := filepath.Join(t.TempDir(), "process_log.txt")
	logBody := "[2024-08-01 09:00:00] done_20240801.xlsx\nnot a log line\n"
	if err := os.WriteFile(logPath, []byte(logBody), 0o644); err != nil {
		t.Fatal(err)
	}

	paths, err := m.ListUnprocessed(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "todo_20240802.xlsx" {
		t.Errorf("paths = %v", paths)
	}
}

func TestListUnprocessedNoLog(t *testing.T) {
	m := newManager(t, "a_20240801.xlsx")

	paths, err := m.ListUnprocessed(filepath.Join(t.TempDir(), "missing.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Errorf("paths = %v", paths)
	}
}

func TestListAllMissingDir(t *testing.T) {
	m := &Manager{InputDir: "/nonexistent/input/dir", Extensions: []string{".xlsx"}}
	if _, err := m.ListAll(); err == nil {
		t.Error("expected error for missing input directory")
	}
}
