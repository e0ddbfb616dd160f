// Package scene evaluates Lisp scene sources into placed colliders and
// registered distance fields. It wraps zygomys in a sandboxed
// environment in which scene code builds CSG solids, registers them in
// a field store, and places colliders against them.
package scene

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/chitin/pkg/collide"
	"github.com/chazu/chitin/pkg/field"
)

// Placed is a collider with its world placement and scene name.
type Placed struct {
	Name     string
	Collider collide.Collider
	Pose     collide.Pose
}

// Scene is the result of evaluating a scene source: colliders in
// declaration order and the field store their surface shapes resolve
// against.
type Scene struct {
	Colliders []Placed
	Fields    *field.Store
}

// Find returns the first placed collider with the given name.
func (s *Scene) Find(name string) (Placed, bool) {
	for _, p := range s.Colliders {
		if p.Name == name {
			return p, true
		}
	}
	return Placed{}, false
}

// EvalError is a non-fatal error produced during evaluation, such as a
// parse error or a runtime error in scene code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Evaluator evaluates scene sources. It is safe for concurrent use;
// each call to Evaluate runs in a fresh sandboxed environment for
// determinism.
type Evaluator struct {
	mu         sync.Mutex
	generation uint64
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate runs a scene source and produces the resulting Scene.
//
// Return semantics:
//   - On success: scene + nil errors + nil error
//   - On parse/eval failure: nil scene + eval errors + nil error
//   - On fatal failure (timeout, interpreter panic): nil + nil + error
func (e *Evaluator) Evaluate(source string) (*Scene, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		sc, evalErrs, err := evaluate(source)
		ch <- evalResult{scene: sc, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func evaluate(source string) (*Scene, []EvalError, error) {
	sc := &Scene{Fields: field.NewStore()}

	// Empty source is a valid program describing an empty scene.
	if strings.TrimSpace(source) == "" {
		return sc, nil, nil
	}

	// Sandbox mode keeps scene code away from the filesystem and
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, sc)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseInterpreterError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseInterpreterError(err), nil
	}

	return sc, nil, nil
}

// linePattern matches interpreter messages of the form
// "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches the plain "line N: ..." form.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseInterpreterError converts a zygomys error into EvalError values,
// extracting line information where the message format carries it.
func parseInterpreterError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
