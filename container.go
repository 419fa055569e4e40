package recall

import "github.com/google/uuid"

// Container is a deck of flashcards or a bank of MCQs: items plus an
// ordered list of child containers. Cycles are forbidden by construction;
// the tree is treated as a value and is never mutated by this package.
type Container struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Items    []Item       `json:"items,omitempty"`
	Children []*Container `json:"children,omitempty"`

	// HasCustomSettings marks this container as a settings override point.
	// Descendants without their own override inherit from the nearest such
	// ancestor; otherwise the global settings apply.
	HasCustomSettings bool      `json:"hasCustomSettings,omitempty"`
	Settings          *Settings `json:"settings,omitempty"`
}

// NewContainer creates an empty container, generating a UUID when id is
// empty.
func NewContainer(id, name string) *Container {
	if id == "" {
		id = uuid.NewString()
	}
	return &Container{ID: id, Name: name}
}

// Forest is an ordered list of root containers.
type Forest []*Container

// Find returns the container with the given id, searching depth-first, or
// nil when no container matches.
func (f Forest) Find(id string) *Container {
	for _, root := range f {
		if c := findIn(root, id); c != nil {
			return c
		}
	}
	return nil
}

func findIn(c *Container, id string) *Container {
	if c == nil {
		return nil
	}
	if c.ID == id {
		return c
	}
	for _, child := range c.Children {
		if found := findIn(child, id); found != nil {
			return found
		}
	}
	return nil
}

// pathTo returns the root-to-target chain of containers for the given id,
// or nil when the id is not in the forest.
func (f Forest) pathTo(id string) []*Container {
	for _, root := range f {
		if p := pathIn(root, id, nil); p != nil {
			return p
		}
	}
	return nil
}

func pathIn(c *Container, id string, prefix []*Container) []*Container {
	if c == nil {
		return nil
	}
	chain := append(prefix, c)
	if c.ID == id {
		return chain
	}
	for _, child := range c.Children {
		if p := pathIn(child, id, chain); p != nil {
			return p
		}
	}
	return nil
}

// EffectiveSettings resolves the scheduling configuration for the container
// with the given id: walking from the container toward the root, the
// nearest container (the target itself first) that declares a custom
// settings override wins; absent any override, or when the id is not found
// in the forest at all, the global settings apply.
func EffectiveSettings(forest Forest, id string, global Settings) Settings {
	path := forest.pathTo(id)
	for i := len(path) - 1; i >= 0; i-- {
		if path[i].HasCustomSettings && path[i].Settings != nil {
			return *path[i].Settings
		}
	}
	return global
}
