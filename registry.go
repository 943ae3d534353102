package main

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

var (
	ErrUnknownNamespace = errors.New("unknown namespace")
	ErrUnknownFunction  = errors.New("unknown function")
)

// LookupError is returned when a namespace or a function name can't be resolved.
type LookupError struct {
	Namespace string
	Function  string
}

func (e *LookupError) Error() string {
	if e.Function == "" {
		return fmt.Sprintf("namespace '%v' is not registered", e.Namespace)
	}
	return fmt.Sprintf("function '%v' is not found in namespace '%v'", e.Function, e.Namespace)
}

func (e *LookupError) Is(target error) bool {
	if e.Function == "" {
		return target == ErrUnknownNamespace
	}
	return target == ErrUnknownFunction
}

type Registry struct {
	namespaces map[string]Namespace
}

func NewRegistry() *Registry {
	return &Registry{namespaces: make(map[string]Namespace)}
}

func (r *Registry) Register(namespace Namespace) error {
	if _, ok := r.namespaces[namespace.Name()]; ok {
		return fmt.Errorf("namespace %v already registered", namespace.Name())
	}
	r.namespaces[namespace.Name()] = namespace
	return nil
}

func (r *Registry) Namespace(name string) (Namespace, bool) {
	namespace, ok := r.namespaces[name]
	return namespace, ok
}

func (r *Registry) Namespaces() []string {
	names := make([]string, 0, len(r.namespaces))
	for name := range r.namespaces {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve binds every name in order. It fails on the first name that doesn't resolve.
func (r *Registry) Resolve(namespace string, names []string, logger *zap.SugaredLogger) ([]Func, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one function must be specified")
	}
	target, ok := r.namespaces[namespace]
	if !ok {
		return nil, &LookupError{Namespace: namespace}
	}
	funcs := make([]Func, 0, len(names))
	for _, name := range names {
		f, ok := target.Bind(name, logger)
		if !ok {
			return nil, &LookupError{Namespace: namespace, Function: name}
		}
		funcs = append(funcs, f)
	}
	return funcs, nil
}

// DefaultRegistry holds the namespaces compiled into the binary.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	for _, namespace := range []Namespace{testFunctions, textFunctions, hashFunctions} {
		if err := registry.Register(namespace); err != nil {
			panic(err)
		}
	}
	return registry
}

type binder func(logger *zap.SugaredLogger) Func

// funcTable is a Namespace backed by a static table of constructors.
type funcTable struct {
	name  string
	funcs map[string]binder
}

func (t *funcTable) Name() string { return t.name }
func (t *funcTable) Names() []string {
	names := make([]string, 0, len(t.funcs))
	for name := range t.funcs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
func (t *funcTable) Bind(name string, logger *zap.SugaredLogger) (Func, bool) {
	bind, ok := t.funcs[name]
	if !ok {
		return nil, false
	}
	return bind(logger), true
}

// pure wraps a function that doesn't log.
func pure(f Func) binder {
	return func(_ *zap.SugaredLogger) Func { return f }
}
