package commands

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Command
	aliases map[string]string // alias -> primary name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]Command),
		aliases: make(map[string]string),
	}
}

func (r *Registry) taken(word string) bool {
	_, isName := r.byName[word]
	_, isAlias := r.aliases[word]
	return isName || isAlias
}

// Register adds c under its name and aliases. Nothing is registered when
// any of those words is already in use.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if name == "" {
		return fmt.Errorf("command has no name")
	}
	if r.taken(name) {
		return fmt.Errorf("command already registered: %s", name)
	}
	for _, alias := range c.Aliases() {
		if alias == name || r.taken(alias) {
			return fmt.Errorf("command alias already registered: %s", alias)
		}
	}

	r.byName[name] = c
	for _, alias := range c.Aliases() {
		r.aliases[alias] = name
	}
	return nil
}

// Find resolves a command word, trying primary names before aliases.
func (r *Registry) Find(word string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cmd, ok := r.byName[word]; ok {
		return cmd, true
	}
	if name, ok := r.aliases[word]; ok {
		return r.byName[name], true
	}
	return nil, false
}

// All returns each command once, ordered by primary name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Command, 0, len(names))
	for _, name := range names {
		out = append(out, r.byName[name])
	}
	return out
}

// DefaultRegistry holds the commands registered from init functions.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
