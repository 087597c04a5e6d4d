package widget

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

var (
	ErrUnknownType   = errors.New("could not find widget")
	ErrInvalidType   = errors.New("invalid widget type")
	ErrDuplicateType = errors.New("widget type already registered")
)

// Registry maps type names to widget types. Types are validated when they are
// registered, so lookups never hand out a type that cannot be set up.
type Registry struct {
	types map[string]Type
}

// NewRegistry returns a registry holding types.
func NewRegistry(types ...Type) (*Registry, error) {
	r := &Registry{types: make(map[string]Type, len(types))}
	for _, t := range types {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds t.
func (r *Registry) Register(t Type) error {
	name := strings.TrimSpace(t.Name)
	if name == "" || name != t.Name {
		return fmt.Errorf("%w: bad name %q", ErrInvalidType, t.Name)
	}
	if t.Setup == nil {
		return fmt.Errorf("%w: %s has no setup", ErrInvalidType, name)
	}
	if _, ok := r.types[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, name)
	}
	r.types[name] = t
	return nil
}

// Lookup returns the type called name. For unknown names the error suggests
// the closest registered name.
func (r *Registry) Lookup(name string) (Type, error) {
	if t, ok := r.types[name]; ok {
		return t, nil
	}
	if s := r.suggest(name); s != "" {
		return Type{}, fmt.Errorf("%w %s (did you mean %s?)", ErrUnknownType, name, s)
	}
	return Type{}, fmt.Errorf("%w %s", ErrUnknownType, name)
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.types))
	for name := range r.types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) suggest(name string) string {
	best, bestDist := "", 0
	for _, cand := range r.Names() {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(cand))
		if best == "" || d < bestDist {
			best, bestDist = cand, d
		}
	}
	// Only suggest names that are plausibly typos.
	if best == "" || bestDist > max(2, len(best)/3) {
		return ""
	}
	return best
}
