package hyper

import "github.com/san-kum/hyperfem/internal/material"

func typeOf(m material.Material) material.Type {
	if m == nil {
		return material.TypeInvalid
	}
	return m.Type()
}

// resolveENu hands every element's ENu material to fn, or fails on the
// first element carrying a different material type.
func resolveENu(model string, mesh Mesh, fn func(el int, m *material.ENu)) error {
	for el := 0; el < mesh.NumElements(); el++ {
		switch m := mesh.ElementMaterial(el).(type) {
		case *material.ENu:
			fn(el, m)
		default:
			return &ConfigurationError{
				Model:    model,
				Element:  el,
				Expected: material.TypeENu,
				Actual:   typeOf(m),
			}
		}
	}
	return nil
}

func resolveMooneyRivlin(model string, mesh Mesh, fn func(el int, m *material.MooneyRivlin)) error {
	for el := 0; el < mesh.NumElements(); el++ {
		switch m := mesh.ElementMaterial(el).(type) {
		case *material.MooneyRivlin:
			fn(el, m)
		default:
			return &ConfigurationError{
				Model:    model,
				Element:  el,
				Expected: material.TypeMooneyRivlin,
				Actual:   typeOf(m),
			}
		}
	}
	return nil
}
