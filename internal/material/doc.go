// Package material stores the material catalog of a volumetric mesh:
// named material descriptors, element sets and the regions that bind a
// material to a set.
//
// Materials form a closed set of variants:
//
//   - [ENu]: parameterized by Young's modulus E and Poisson's ratio nu
//   - [MooneyRivlin]: parameterized by mu01, mu10 and the volumetric v1
//
// A [Catalog] is resolved once into an [Assignment], which maps every
// element to exactly one material. Constitutive models read the
// assignment at construction time and never re-resolve materials during
// evaluation.
//
// # Thread Safety
//
// Materials are immutable. An [Assignment] may be read concurrently;
// [Assignment.SetMaterial] must not run concurrently with readers.
package material
