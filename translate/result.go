package translate

import (
	"fmt"
	"strings"
)

// Outcome tells what happened to a single string value.
type Outcome int

const (
	// Translated means the backend returned a translation.
	Translated Outcome = iota
	// Skipped means the value sits under a protected key.
	Skipped
	// FellBack means the backend failed and the original text was kept.
	FellBack
	// Untouched means there was nothing to translate (blank or variables only).
	Untouched
)

func (o Outcome) String() string {
	switch o {
	case Translated:
		return "translated"
	case Skipped:
		return "skipped"
	case FellBack:
		return "fell-back"
	case Untouched:
		return "untouched"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the outcome of translating one string value.
type Result struct {
	// Text is the value to write to the output document. It equals the input
	// for every outcome except Translated.
	Text    string
	Outcome Outcome
	// Err is the backend error for FellBack results.
	Err error
}

// Path locates a value in the document: the chain of mapping keys leading
// to it. Sequence items share the path of their sequence.
type Path []string

// Key returns the nearest mapping key, or "" at the document root.
func (p Path) Key() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Child returns a new path with key appended.
func (p Path) Child(key string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, key)
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// Stats counts results per outcome.
type Stats struct {
	Translated int
	Skipped    int
	FellBack   int
	Untouched  int
}

// Add records one result.
func (s *Stats) Add(o Outcome) {
	switch o {
	case Translated:
		s.Translated++
	case Skipped:
		s.Skipped++
	case FellBack:
		s.FellBack++
	case Untouched:
		s.Untouched++
	}
}

// Merge adds the counts of other to s.
func (s *Stats) Merge(other Stats) {
	s.Translated += other.Translated
	s.Skipped += other.Skipped
	s.FellBack += other.FellBack
	s.Untouched += other.Untouched
}

// Total returns the number of string values seen.
func (s Stats) Total() int {
	return s.Translated + s.Skipped + s.FellBack + s.Untouched
}
