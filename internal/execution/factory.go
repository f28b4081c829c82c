package execution

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor builds an executor from the broker configuration
type Constructor func(config BrokerConfig) (Executor, error)

// Registry maps broker identifiers to executor constructors. Brokers register
// once at startup; resolution happens before any orchestration runs, so there
// is no string dispatch inside the trading path.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry creates a registry with the built-in brokers registered
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}

	r.Register("paper", func(BrokerConfig) (Executor, error) {
		return NewPaper(), nil
	})
	r.Register("bybit", func(config BrokerConfig) (Executor, error) {
		if config.APIKey == "" || config.APISecret == "" {
			return nil, fmt.Errorf("bybit executor requires API credentials")
		}
		return NewBybit(config), nil
	})

	return r
}

// Register adds a broker constructor under the given name
func (r *Registry) Register(name string, constructor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[name] = constructor
}

// New resolves a broker name to a ready executor
func (r *Registry) New(name string, config BrokerConfig) (Executor, error) {
	r.mu.RLock()
	constructor, ok := r.constructors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown broker %q (available: %v)", name, r.Names())
	}
	return constructor(config)
}

// Names lists the registered broker identifiers
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
