// Package locator finds the year-stamped folder that holds a given year's
// raw spreadsheets.
package locator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrRootNotFound is returned when the raw data root is missing
var ErrRootNotFound = errors.New("raw data folder not found")

var yearPattern = regexp.MustCompile(`20[0-9]{2}`)

// Match selects which year token names a folder when several are present
type Match int

const (
	// MatchLast uses the last year token, e.g. "f861_2016_rev2018" is 2018
	MatchLast Match = iota
	// MatchFirst uses the first year token
	MatchFirst
)

// YearNotFoundError reports a year that no folder provides
type YearNotFoundError struct {
	Year      int
	Available []int
}

func (e *YearNotFoundError) Error() string {
	return fmt.Sprintf("%d not found, options are %v", e.Year, e.Available)
}

// Folder is a discovered year-stamped directory
type Folder struct {
	Name string
	Path string
	Year int
}

// Locator resolves years to folders under a fixed root
type Locator struct {
	folders []Folder // sorted by name
}

// New scans root for year-stamped folders
func New(root string, match Match) (*Locator, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("reading raw data folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", root, err)
	}

	loc := &Locator{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		year, ok := folderYear(entry.Name(), match)
		if !ok {
			continue
		}
		loc.folders = append(loc.folders, Folder{
			Name: entry.Name(),
			Path: filepath.Join(root, entry.Name()),
			Year: year,
		})
	}

	sort.Slice(loc.folders, func(i, j int) bool {
		return loc.folders[i].Name < loc.folders[j].Name
	})

	return loc, nil
}

func folderYear(name string, match Match) (int, bool) {
	tokens := yearPattern.FindAllString(name, -1)
	if len(tokens) == 0 {
		return 0, false
	}
	token := tokens[len(tokens)-1]
	if match == MatchFirst {
		token = tokens[0]
	}
	year, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return year, true
}

// Folders returns the discovered folders sorted by name
func (l *Locator) Folders() []Folder {
	return append([]Folder(nil), l.folders...)
}

// Within returns a locator that only knows the folders whose year lies in
// [first, last]
func (l *Locator) Within(first, last int) *Locator {
	out := &Locator{}
	for _, f := range l.folders {
		if f.Year >= first && f.Year <= last {
			out.folders = append(out.folders, f)
		}
	}
	return out
}

// Years returns the distinct discovered years, ascending
func (l *Locator) Years() []int {
	seen := make(map[int]bool, len(l.folders))
	years := make([]int, 0, len(l.folders))
	for _, f := range l.folders {
		if seen[f.Year] {
			continue
		}
		seen[f.Year] = true
		years = append(years, f.Year)
	}
	sort.Ints(years)
	return years
}

// Find returns the folder for year. When several folder names contain the
// year, the lexicographically first one wins.
func (l *Locator) Find(year int) (Folder, error) {
	found := false
	for _, f := range l.folders {
		if f.Year == year {
			found = true
			break
		}
	}
	if !found {
		return Folder{}, &YearNotFoundError{Year: year, Available: l.Years()}
	}

	token := strconv.Itoa(year)
	for _, f := range l.folders {
		if strings.Contains(f.Name, token) {
			return f, nil
		}
	}

	// Unreachable: the folder that produced the year contains its token
	return Folder{}, &YearNotFoundError{Year: year, Available: l.Years()}
}
