package xleval

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Function is implemented by every formula function.
//
// args holds the unresolved arguments in call order; they may be references.
// srcRowx and srcColx locate the calling cell for functions that need it,
// and are -1 when there is no calling cell. Evaluate never panics on bad
// input: every failure is returned as an ErrorCode value. Argument counts
// have been validated by the caller.
type Function interface {
	Evaluate(args []Value, srcRowx, srcColx int) Value
}

// FunctionFunc adapts an ordinary function to Function.
type FunctionFunc func(args []Value, srcRowx, srcColx int) Value

func (f FunctionFunc) Evaluate(args []Value, srcRowx, srcColx int) Value {
	return f(args, srcRowx, srcColx)
}

// VarArgs is used as FuncDef.MaxArgs for functions without an upper limit.
const VarArgs = 255

// FuncDef describes a registered function: name, argument count range
// and implementation.
type FuncDef struct {
	Name    string
	MinArgs int
	MaxArgs int
	Fn      Function
}

// Registry maps upper-case function names to their definitions.
type Registry struct {
	defs      map[string]*FuncDef
	logfile   io.Writer
	verbosity int
}

// NewRegistry returns an empty registry. Diagnostics are written to
// logfile when verbosity is positive; logfile may be nil.
func NewRegistry(logfile io.Writer, verbosity int) *Registry {
	return &Registry{
		defs:      make(map[string]*FuncDef),
		logfile:   logfile,
		verbosity: verbosity,
	}
}

// DefaultRegistry returns a registry holding the text functions, with
// numeric text parsed in culture (DefaultCulture when nil).
func DefaultRegistry(culture *NumberCulture) *Registry {
	r := NewRegistry(nil, 0)
	r.RegisterAll(TextFunctions(NewCoercer(culture)))
	return r
}

// Register adds or replaces a definition.
func (r *Registry) Register(def FuncDef) {
	def.Name = strings.ToUpper(def.Name)
	r.defs[def.Name] = &def
}

// RegisterAll registers every definition in defs.
func (r *Registry) RegisterAll(defs []FuncDef) {
	for _, def := range defs {
		r.Register(def)
	}
}

// Lookup finds a function by name, ignoring case.
func (r *Registry) Lookup(name string) (*FuncDef, bool) {
	def, ok := r.defs[strings.ToUpper(name)]
	return def, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call validates the argument count and invokes the named function.
// Unknown names give #NAME? and a wrong argument count gives #VALUE!.
func (r *Registry) Call(name string, args []Value, srcRowx, srcColx int) Value {
	def, ok := r.Lookup(name)
	if !ok {
		r.logf(1, "call: unknown function %s\n", name)
		return ErrName
	}
	if len(args) < def.MinArgs || len(args) > def.MaxArgs {
		r.logf(1, "call: %s takes %d..%d args, got %d\n", def.Name, def.MinArgs, def.MaxArgs, len(args))
		return ErrValue
	}
	result := def.Fn.Evaluate(args, srcRowx, srcColx)
	if result == nil {
		r.logf(1, "call: %s returned nil\n", def.Name)
		return ErrValue
	}
	r.logf(2, "call: %s%v -> %v\n", def.Name, args, result)
	return result
}

func (r *Registry) logf(level int, format string, args ...interface{}) {
	if r.verbosity >= level && r.logfile != nil {
		fmt.Fprintf(r.logfile, format, args...)
	}
}
