// Package invoke validates caller arguments, runs an engine command over a
// private working list and reflects the result back into the caller's
// arguments.
//
// Arguments are passed by pointer so results can be written back:
//
//	images := []*pixel.Buffer{a, b}
//	names := []string{"a", "b"}
//	err := interp.Run("rm[0]", &images, &names)
//	// images == [b], names == ["b"]
//
// Validation happens before the engine is called and an engine failure
// happens before anything is written back, so a failed call never modifies
// its arguments.
package invoke

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/pixel-marshal/internal/collection"
	"github.com/ironsheep/pixel-marshal/internal/marshalerr"
	"github.com/ironsheep/pixel-marshal/internal/pixel"
)

// Interpreter owns one engine instance and runs commands on it.
//
// An Interpreter is not safe for concurrent use; use a Pool for parallel
// work.
type Interpreter struct {
	engine Engine
	calls  int
}

// NewInterpreter wraps an engine instance.
func NewInterpreter(engine Engine) *Interpreter {
	return &Interpreter{engine: engine}
}

// Run is the one-shot form: it creates an engine from factory, runs a single
// command and discards the engine.
func Run(factory Factory, command string, images, names any) error {
	engine, err := factory()
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	return NewInterpreter(engine).Run(command, images, names)
}

// Run executes command.
//
// images may be nil, a *pixel.Buffer, a *[]*pixel.Buffer, a *[]any holding
// buffers, or a *collection.Collection. names may be nil, a string, a
// *[]string or a *[]any holding strings. A single buffer only accepts a
// string name.
//
// With a single buffer the command must leave exactly one image; the result
// then replaces the buffer's contents in place, otherwise a
// CardinalityViolation is returned and the buffer is left as it was. With a
// sequence the caller's slice (and names, when writable) are replaced by the
// results, names being truncated or padded with "[unnamed]".
func (in *Interpreter) Run(command string, images, names any) error {
	const op = "invoke.Run"

	if strings.TrimSpace(command) == "" {
		return marshalerr.New(marshalerr.EmptyCommand, op, "command %q is blank", command)
	}

	img, err := resolveImages(op, images)
	if err != nil {
		return err
	}
	nm, err := resolveNames(op, names, img)
	if err != nil {
		return err
	}

	working := collection.New(img.inputs, nm.inputs).Clone()

	results, resultNames, err := in.call(command, working)
	if err != nil {
		return err
	}

	switch img.kind {
	case imagesSingle:
		if len(results) != 1 {
			return marshalerr.New(marshalerr.CardinalityViolation, op,
				"single image was removed or multiplied by your command (%d images after %q)", len(results), command)
		}
		img.single.Adopt(results[0])
		return nil
	case imagesMany:
		writeImages(img, results)
	}

	reconciled := collection.ReconcileNames(resultNames, len(results))
	if img.coll != nil {
		img.coll.Refill(results, reconciled)
	}
	writeNames(nm, reconciled)
	return nil
}

// RunCollection runs command over c and refills it with the results.
func (in *Interpreter) RunCollection(command string, c *collection.Collection) error {
	return in.Run(command, c, nil)
}

// call runs the engine on the working list and collects owned results.
func (in *Interpreter) call(command string, working *collection.Collection) ([]*pixel.Buffer, []string, error) {
	const op = "invoke.Run"

	log := Logger().With(zap.String("command", command))
	log.Debug("invoking engine",
		zap.Int("images", len(working.Images)),
		zap.Int("names", len(working.Names)))

	in.calls++
	start := time.Now()
	if err := in.safeRun(command, working); err != nil {
		log.Debug("engine failed", zap.Error(err))
		return nil, nil, marshalerr.Wrap(marshalerr.EngineFailure, op, err)
	}

	results := make([]*pixel.Buffer, len(working.Images))
	for i, b := range working.Images {
		if b == nil {
			return nil, nil, marshalerr.New(marshalerr.EngineFailure, op,
				"engine returned a nil image at position %d", i)
		}
		if b.Ownership() == pixel.Borrowed {
			b = b.Clone()
		}
		results[i] = b
	}

	log.Debug("engine finished",
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)))
	return results, working.Names, nil
}

// safeRun turns an engine panic into an error.
func (in *Interpreter) safeRun(command string, working *collection.Collection) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return in.engine.Run(command, working)
}

func writeImages(img imagesArg, results []*pixel.Buffer) {
	switch {
	case img.buffers != nil:
		fresh := make([]*pixel.Buffer, len(results))
		copy(fresh, results)
		*img.buffers = fresh
	case img.values != nil:
		fresh := make([]any, len(results))
		for i, b := range results {
			fresh[i] = b
		}
		*img.values = fresh
	}
}

func writeNames(nm namesArg, names []string) {
	switch {
	case nm.strings != nil:
		fresh := make([]string, len(names))
		copy(fresh, names)
		*nm.strings = fresh
	case nm.values != nil:
		fresh := make([]any, len(names))
		for i, s := range names {
			fresh[i] = s
		}
		*nm.values = fresh
	}
}

// Calls returns how many commands this interpreter has run.
func (in *Interpreter) Calls() int {
	return in.calls
}

func (in *Interpreter) String() string {
	return fmt.Sprintf("<Interpreter engine=%T calls=%d> at %p", in.engine, in.calls, in)
}
