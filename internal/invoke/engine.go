package invoke

import "github.com/ironsheep/pixel-marshal/internal/collection"

// Engine executes a command against a working list.
//
// The engine may add, remove, reorder or replace images and names in list.
// Names need not match the image count on return; the caller reconciles them.
// A non-nil error is reported to callers verbatim as an EngineFailure.
type Engine interface {
	Run(command string, list *collection.Collection) error
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(command string, list *collection.Collection) error

// Run calls f(command, list).
func (f EngineFunc) Run(command string, list *collection.Collection) error {
	return f(command, list)
}

// Factory creates a fresh, independent engine instance.
type Factory func() (Engine, error)
