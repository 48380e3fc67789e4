// Package files selects input files for batch runs: everything, one
// valuation date, or only what the process log has not seen yet.
package files

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	dateSeparatedRe = regexp.MustCompile(`(20\d{2})[\-_/](\d{1,2})[\-_/](\d{1,2})`)
	dateCompactRe   = regexp.MustCompile(`(20\d{2})([01]\d)([0-3]\d)`)
)

// Manager enumerates supported input files in one directory.
type Manager struct {
	InputDir   string
	Extensions []string // lowercase, with dot, e.g. ".xlsx"
}

// DateCode extracts a YYYYMMDD date from a filename or subject line.
// Accepts 20240801 plus separated spellings with -, _ or / and one- or
// two-digit month and day (2024_08_01, 2024-8-1, 2024/08/01). Empty when
// no date is present.
func DateCode(s string) string {
	if m := dateSeparatedRe.FindStringSubmatch(s); m != nil {
		return m[1] + pad2(m[2]) + pad2(m[3])
	}
	if m := dateCompactRe.FindStringSubmatch(s); m != nil {
		return m[1] + m[2] + m[3]
	}
	return ""
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// ListAll returns every supported, non-hidden file in the input directory,
// sorted by name for deterministic run order.
func (m *Manager) ListAll() ([]string, error) {
	entries, err := os.ReadDir(m.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", m.InputDir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !m.supported(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(m.InputDir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// ListByDate returns the supported files whose names carry the given
// YYYYMMDD date code.
func (m *Manager) ListByDate(dateCode string) ([]string, error) {
	all, err := m.ListAll()
	if err != nil {
		return nil, err
	}
	var matched []string
	for _, path := range all {
		if DateCode(filepath.Base(path)) == dateCode {
			matched = append(matched, path)
		}
	}
	return matched, nil
}

// ListUnprocessed returns the supported files not yet named in the process
// log. A missing log means nothing was processed.
func (m *Manager) ListUnprocessed(processLogPath string) ([]string, error) {
	all, err := m.ListAll()
	if err != nil {
		return nil, err
	}

	processed, err := loadProcessedNames(processLogPath)
	if err != nil {
		return nil, err
	}

	var fresh []string
	for _, path := range all {
		if !processed[filepath.Base(path)] {
			fresh = append(fresh, path)
		}
	}
	return fresh, nil
}

func (m *Manager) supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range m.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// loadProcessedNames parses "[timestamp] filename" lines from the append-only
// process log.
func loadProcessedNames(path string) (map[string]bool, error) {
	processed := make(map[string]bool)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return processed, nil
		}
		return nil, fmt.Errorf("failed to open process log %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "[") {
			continue
		}
		parts := strings.SplitN(line, "] ", 2)
		if len(parts) == 2 && parts[1] != "" {
			processed[parts[1]] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read process log %s: %w", path, err)
	}
	return processed, nil
}
