// Package serializer implements the Result Store's side-channel save/load
// registry (spec.md §4.3): a process-wide mapping from a node's declared
// cache=<format> tag to the Saver/Loader pair that knows how to persist and
// reconstruct values of that format outside the Result Store's own inline
// blob storage. It mirrors the source's module-level SAVER_REGISTRY /
// LOADER_REGISTRY lookup tables.
package serializer

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Saver persists a value to a side-channel file at the given path; the
// matching Loader reads it back from that same path.
type Saver interface {
	Save(path string, value any) error
}

// Loader reconstructs a value previously written by a Saver.
type Loader interface {
	Load(path string) (any, error)
}

// Registry is the process-wide format -> (Saver, Loader) lookup table.
type Registry struct {
	mu      sync.RWMutex
	savers  map[string]Saver
	loaders map[string]Loader
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		savers:  make(map[string]Saver),
		loaders: make(map[string]Loader),
	}
}

// Register associates format with a Saver/Loader pair. Re-registering a
// format overwrites its previous entry, matching the source's plain dict
// assignment semantics (SAVER_REGISTRY[format] = saver).
func (r *Registry) Register(format string, s Saver, l Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savers[format] = s
	r.loaders[format] = l
	log.Debug().Str("format", format).Msg("serializer registered")
}

// Saver returns the registered Saver for format, or false if none is
// registered.
func (r *Registry) Saver(format string) (Saver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.savers[format]
	return s, ok
}

// Loader returns the registered Loader for format, or false if none is
// registered.
func (r *Registry) Loader(format string) (Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[format]
	return l, ok
}

// Formats returns the names of all registered formats.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]string, 0, len(r.savers))
	for f := range r.savers {
		formats = append(formats, f)
	}
	return formats
}

// ErrUnregisteredFormat is returned when a node declares a cache=<format>
// tag that no Saver/Loader pair has been registered for.
func ErrUnregisteredFormat(format string) error {
	return fmt.Errorf("serializer: no saver/loader registered for format %q", format)
}

// Default is the process-wide registry used when callers do not construct
// their own, pre-populated with the json and gob formats this module ships.
var Default = NewRegistry()

func init() {
	Default.Register("json", JSONSaver{}, JSONLoader{})
	Default.Register("gob", GobSaver{}, GobLoader{})
}
