package config

import (
	"errors"
	"fmt"

	"github.com/san-kum/hyperfem/internal/hyper"
	"github.com/san-kum/hyperfem/internal/material"
)

// ErrCatalogSize indicates a catalog whose element count differs from the mesh.
var ErrCatalogSize = errors.New("config: catalog does not match mesh")

// loadCatalog resolves the configured catalog. A catalog that declares only
// an element count, with no material section, gives every element
// material.DefaultMaterial.
func (c *Config) loadCatalog() (*material.Assignment, error) {
	cat, err := material.LoadCatalog(c.Catalog)
	if err != nil {
		return nil, err
	}
	if len(cat.Materials) == 0 && len(cat.Regions) == 0 {
		return material.SingleMaterial(cat.NumElements, material.DefaultMaterial()), nil
	}
	return cat.Resolve()
}

// Assignment resolves the configured catalog for a mesh of numElements
// elements. It is an error to call it without a catalog.
func (c *Config) Assignment(numElements int) (*material.Assignment, error) {
	if c.Catalog == "" {
		return nil, errors.New("config: no catalog configured")
	}
	assign, err := c.loadCatalog()
	if err != nil {
		return nil, err
	}
	if assign.NumElements() != numElements {
		return nil, fmt.Errorf("%w: %s has %d elements, mesh has %d",
			ErrCatalogSize, c.Catalog, assign.NumElements(), numElements)
	}
	return assign, nil
}

// MeshModel builds the model for a mesh of numElements elements. With a
// catalog each element reads its own material; otherwise every element
// shares the homogeneous parameters.
func (c *Config) MeshModel(numElements int) (hyper.Model, error) {
	if c.Catalog == "" {
		return c.HomogeneousModel()
	}
	assign, err := c.Assignment(numElements)
	if err != nil {
		return nil, err
	}
	return hyper.New(c.Model, assign)
}

// ElementModel builds a single-element model from the catalog material of
// element el, or the homogeneous model without a catalog.
func (c *Config) ElementModel(el int) (hyper.Model, error) {
	if c.Catalog == "" {
		return c.HomogeneousModel()
	}
	assign, err := c.loadCatalog()
	if err != nil {
		return nil, err
	}
	if el < 0 || el >= assign.NumElements() {
		return nil, fmt.Errorf("%w: element %d of %d", material.ErrIndexOutOfRange, el, assign.NumElements())
	}
	return hyper.New(c.Model, material.SingleMaterial(1, assign.ElementMaterial(el)))
}
