package material

import "fmt"

// Set is a named group of element indices (0-based).
type Set struct {
	Name     string
	Elements []int
}

// Region binds the material at MaterialIndex to the set at SetIndex.
type Region struct {
	MaterialIndex int
	SetIndex      int
}

// Catalog is the material section of a volumetric mesh as handed over by
// the mesh parser.
type Catalog struct {
	NumElements int
	Materials   []Material
	Sets        []Set
	Regions     []Region
}

// Resolve propagates regions to elements. Every element must belong to
// exactly one region.
func (c *Catalog) Resolve() (*Assignment, error) {
	if c.NumElements < 0 {
		return nil, fmt.Errorf("%w: negative element count %d", ErrIndexOutOfRange, c.NumElements)
	}

	elementMaterial := make([]int, c.NumElements)
	for i := range elementMaterial {
		elementMaterial[i] = -1
	}

	for r, region := range c.Regions {
		if region.MaterialIndex < 0 || region.MaterialIndex >= len(c.Materials) {
			return nil, fmt.Errorf("%w: region %d references material %d of %d",
				ErrIndexOutOfRange, r, region.MaterialIndex, len(c.Materials))
		}
		if region.SetIndex < 0 || region.SetIndex >= len(c.Sets) {
			return nil, fmt.Errorf("%w: region %d references set %d of %d",
				ErrIndexOutOfRange, r, region.SetIndex, len(c.Sets))
		}

		for _, el := range c.Sets[region.SetIndex].Elements {
			if el < 0 || el >= c.NumElements {
				return nil, &ElementError{Element: el, Wrapped: ErrIndexOutOfRange}
			}
			if elementMaterial[el] >= 0 {
				return nil, &ElementError{Element: el, Wrapped: ErrDuplicateAssignment}
			}
			elementMaterial[el] = region.MaterialIndex
		}
	}

	for el, m := range elementMaterial {
		if m < 0 {
			return nil, &ElementError{Element: el, Wrapped: ErrUnassignedElement}
		}
	}

	materials := make([]Material, len(c.Materials))
	copy(materials, c.Materials)

	return &Assignment{materials: materials, elementMaterial: elementMaterial}, nil
}

// Assignment maps each element to its material.
type Assignment struct {
	materials       []Material
	elementMaterial []int
}

// SingleMaterial assigns m to every one of numElements elements.
func SingleMaterial(numElements int, m Material) *Assignment {
	return &Assignment{
		materials:       []Material{m},
		elementMaterial: make([]int, numElements),
	}
}

func (a *Assignment) NumElements() int  { return len(a.elementMaterial) }
func (a *Assignment) NumMaterials() int { return len(a.materials) }

// Material returns the i-th catalog material.
func (a *Assignment) Material(i int) Material { return a.materials[i] }

// ElementMaterial returns the material of element el.
// Precondition: 0 <= el < NumElements(); violations panic.
func (a *Assignment) ElementMaterial(el int) Material {
	return a.materials[a.elementMaterial[el]]
}

// ElementMaterialIndex returns the catalog index of element el's material.
func (a *Assignment) ElementMaterialIndex(el int) int {
	return a.elementMaterial[el]
}

func (a *Assignment) ElementDensity(el int) float64 {
	return a.ElementMaterial(el).Density()
}

// SetMaterial replaces the i-th material. Models built from this
// assignment keep the parameters they resolved at construction and must
// be rebuilt to observe the change.
func (a *Assignment) SetMaterial(i int, m Material) error {
	if i < 0 || i >= len(a.materials) {
		return fmt.Errorf("%w: material %d of %d", ErrIndexOutOfRange, i, len(a.materials))
	}
	a.materials[i] = m
	return nil
}
