package journal

import (
	"regexp"
	"sort"
	"strconv"
	"time"
)

// Journal files are named Journal.<YYYY-MM-DDTHHMMSS>.<NN>.log. The game
// starts a new file per session and bumps the part suffix when a single
// session rolls over.
var journalNamePattern = regexp.MustCompile(
	`^Journal\.(\d{4}-\d{2}-\d{2}T\d{6})\.(\d+)\.log$`)

// FileInfo is the date and part number decoded from a journal filename.
type FileInfo struct {
	Date time.Time
	Part int
}

// IsJournalName reports whether name matches the journal filename pattern.
func IsJournalName(name string) bool {
	return journalNamePattern.MatchString(name)
}

// ParseName decodes a journal filename into its date and part suffix.
// Returns nil when the name does not match the pattern.
func ParseName(name string) *FileInfo {
	m := journalNamePattern.FindStringSubmatch(name)
	if m == nil {
		return nil
	}
	date, err := time.Parse("2006-01-02T150405", m[1])
	if err != nil {
		return nil
	}
	part, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	return &FileInfo{Date: date, Part: part}
}

// SortByDate orders journal filenames newest first. Files sharing a date
// are ordered by part suffix descending. Names that do not match the
// pattern sort last in their original relative order.
func SortByDate(names []string) []string {
	sorted := make([]string, len(names))
	copy(sorted, names)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := ParseName(sorted[i]), ParseName(sorted[j])
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Part > b.Part
	})
	return sorted
}
