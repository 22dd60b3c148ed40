package translate

import (
	"fmt"
	"strings"
)

// MatchMode selects how protected keys are compared against a value's path.
type MatchMode string

const (
	// MatchKey protects a value when its nearest mapping key is listed.
	MatchKey MatchMode = "key"
	// MatchPath protects a value when its dotted path, or any prefix of it,
	// is listed (e.g. "meta.name" or "meta").
	MatchPath MatchMode = "path"
)

// ParseMatchMode validates a match mode name. Empty means MatchKey.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchKey:
		return MatchKey, nil
	case MatchPath:
		return MatchPath, nil
	default:
		return "", fmt.Errorf("unknown protected match mode %q (want %q or %q)", s, MatchKey, MatchPath)
	}
}

// Protector decides which values must not be translated. It is read-only
// after construction and safe for concurrent use.
type Protector struct {
	mode MatchMode
	keys map[string]struct{}
}

// NewProtector builds a Protector for keys. Blank entries are ignored.
func NewProtector(keys []string, mode MatchMode) *Protector {
	if mode == "" {
		mode = MatchKey
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return &Protector{mode: mode, keys: set}
}

// Mode returns the match mode.
func (p *Protector) Mode() MatchMode {
	if p == nil {
		return MatchKey
	}
	return p.mode
}

// Len returns the number of protected keys.
func (p *Protector) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Protected reports whether the value at path is protected.
// A nil Protector protects nothing.
func (p *Protector) Protected(path Path) bool {
	if p == nil || len(p.keys) == 0 || len(path) == 0 {
		return false
	}

	if p.mode == MatchPath {
		for i := 1; i <= len(path); i++ {
			if _, ok := p.keys[strings.Join(path[:i], ".")]; ok {
				return true
			}
		}
		return false
	}

	_, ok := p.keys[path.Key()]
	return ok
}
