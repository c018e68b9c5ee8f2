package statues

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Law is a set of algebraic properties declared by an Operation.
type Law uint8

const (
	// Associative: op(op(a, b), c) == op(a, op(b, c)).
	Associative Law = 1 << iota
	// Commutative: op(a, b) == op(b, a).
	Commutative
)

// Has reports whether l includes every law in required.
func (l Law) Has(required Law) bool { return l&required == required }

func (l Law) String() string {
	var names []string
	if l.Has(Associative) {
		names = append(names, "Associative")
	}
	if l.Has(Commutative) {
		names = append(names, "Commutative")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "+")
}

// OperationRegistry maps operation names to tagged operations and their
// declared laws. Callers that receive an operation by name (a scenario file,
// a command line flag) resolve and validate it here.
type OperationRegistry struct {
	mu  sync.RWMutex
	ops map[string]Operation
}

// NewOperationRegistry creates an empty registry.
func NewOperationRegistry() *OperationRegistry {
	return &OperationRegistry{ops: make(map[string]Operation)}
}

// Register adds op, replacing any operation with the same name.
func (r *OperationRegistry) Register(op Operation) error {
	if op.Name == "" {
		return constructionf("operation name is required")
	}
	if op.Fn == nil {
		return constructionf("operation %s has no function", op.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op.Name] = op
	return nil
}

// Lookup returns the operation registered under name.
func (r *OperationRegistry) Lookup(name string) (Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[name]
	return op, ok
}

// Names returns the registered names, sorted.
func (r *OperationRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve looks up name and checks that it declares the required laws.
func (r *OperationRegistry) Resolve(name string, required Law) (Operation, error) {
	op, ok := r.Lookup(name)
	if !ok {
		return Operation{}, constructionf("operation %q not registered (known: %s)",
			name, strings.Join(r.Names(), ", "))
	}
	if err := CheckLaws(op, required); err != nil {
		return Operation{}, err
	}
	return op, nil
}

// CheckLaws fails when op does not declare every law in required.
func CheckLaws(op Operation, required Law) error {
	if !op.Laws.Has(required) {
		return constructionf("operation %s missing required law: %s (has: %s)",
			op.Name, required&^op.Laws, op.Laws)
	}
	return nil
}

var defaultRegistry = func() *OperationRegistry {
	r := NewOperationRegistry()
	for _, op := range builtinOperations() {
		if err := r.Register(op); err != nil {
			panic(fmt.Sprintf("statues: builtin operation: %v", err))
		}
	}
	return r
}()

// Register adds op to the package registry.
func Register(op Operation) error { return defaultRegistry.Register(op) }

// Lookup finds an operation in the package registry.
func Lookup(name string) (Operation, bool) { return defaultRegistry.Lookup(name) }

// Resolve looks up name in the package registry and checks its laws.
func Resolve(name string, required Law) (Operation, error) {
	return defaultRegistry.Resolve(name, required)
}
