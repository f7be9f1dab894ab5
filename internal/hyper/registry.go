package hyper

import (
	"fmt"
	"sort"
)

var constructors = map[string]func(Mesh) (Model, error){
	"mooney-rivlin": func(m Mesh) (Model, error) { return asModel(NewMooneyRivlin(m)) },
	"neo-hookean":   func(m Mesh) (Model, error) { return asModel(NewNeoHookean(m)) },
	"stvk":          func(m Mesh) (Model, error) { return asModel(NewStVK(m)) },
}

// asModel keeps a failed constructor from leaking a typed nil.
func asModel[T Model](m T, err error) (Model, error) {
	if err != nil {
		return nil, err
	}
	return m, nil
}

// New builds the named mesh-backed model.
func New(name string, mesh Mesh) (Model, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return fn(mesh)
}

// Names lists the registered models in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
