package engine

import (
	"sort"
	"sync"

	"github.com/go-opt/milo/logger"
)

var (
	registry  = make(map[string]Constructor)
	registryM sync.RWMutex
)

// Constructor builds a fresh, uninitialized engine.
type Constructor func() Engine

// Register makes an engine constructor available under name. Engines
// call it from their package init. A second registration of the same
// name is ignored with a warning.
func Register(name string, fn Constructor) {
	if fn == nil {
		panic("nil engine constructor")
	}
	registryM.Lock()
	defer registryM.Unlock()
	if _, ok := registry[name]; ok {
		log := logger.Logger()
		log.Warn().Str("name", name).Msg("engine registered multiple times")
		return
	}
	registry[name] = fn
}

// New builds the engine registered under name.
func New(name string) (Engine, error) {
	registryM.RLock()
	defer registryM.RUnlock()
	fn, ok := registry[name]
	if !ok {
		return nil, Errf("new", CodePluginNotFound, "no engine named %q", name)
	}
	return fn(), nil
}

// Names lists the registered engine names, sorted.
func Names() []string {
	registryM.RLock()
	defer registryM.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
