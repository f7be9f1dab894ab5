package material_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hyperfem/internal/material"
)

var _ = Describe("Material descriptors", func() {
	It("converts E and nu to Lamé parameters", func() {
		m, err := material.NewENu("steel", 7800, 200e9, 0.3)
		Expect(err).NotTo(HaveOccurred())

		mu, lambda := m.Lame()
		Expect(mu).To(BeNumerically("~", 200e9/2.6, 1))
		Expect(lambda).To(BeNumerically("~", 200e9*0.3/(1.3*0.4), 1))
		Expect(m.Type()).To(Equal(material.TypeENu))
	})

	It("rejects names longer than 23 bytes", func() {
		_, err := material.NewMooneyRivlin("a-very-long-material-name", 1000, 1, 1, 1)
		Expect(err).To(MatchError(material.ErrNameTooLong))

		_, err = material.NewMooneyRivlin("exactly-23-bytes-long-x", 1000, 1, 1, 1)
		Expect(err).NotTo(HaveOccurred())
	})

	DescribeTable("rejects invalid parameters",
		func(density, e, nu float64, param string) {
			_, err := material.NewENu("bad", density, e, nu)
			Expect(err).To(MatchError(material.ErrInvalidParameter))

			var pe *material.ParameterError
			Expect(err).To(BeAssignableToTypeOf(pe))
			Expect(err.(*material.ParameterError).Parameter).To(Equal(param))
		},
		Entry("zero density", 0.0, 1e6, 0.3, "density"),
		Entry("negative E", 1000.0, -1.0, 0.3, "E"),
		Entry("incompressible nu", 1000.0, 1e6, 0.5, "nu"),
		Entry("nu below -1", 1000.0, 1e6, -1.0, "nu"),
		Entry("NaN E", 1000.0, math.NaN(), 0.3, "E"),
	)

	It("parses type tags", func() {
		t, err := material.ParseType("MOONEYRIVLIN")
		Expect(err).NotTo(HaveOccurred())
		Expect(t).To(Equal(material.TypeMooneyRivlin))

		_, err = material.ParseType("orthotropic")
		Expect(err).To(MatchError(material.ErrUnknownType))
	})
})

var _ = Describe("Catalog resolution", func() {
	var (
		rubber *material.MooneyRivlin
		tissue *material.ENu
	)

	BeforeEach(func() {
		var err error
		rubber, err = material.NewMooneyRivlin("rubber", 1100, 1.0, 0.5, 2.0)
		Expect(err).NotTo(HaveOccurred())
		tissue, err = material.NewENu("tissue", 1000, 1e4, 0.45)
		Expect(err).NotTo(HaveOccurred())
	})

	It("assigns every element through its region", func() {
		c := &material.Catalog{
			NumElements: 4,
			Materials:   []material.Material{rubber, tissue},
			Sets: []material.Set{
				{Name: "left", Elements: []int{0, 1}},
				{Name: "right", Elements: []int{2, 3}},
			},
			Regions: []material.Region{
				{MaterialIndex: 1, SetIndex: 1},
				{MaterialIndex: 0, SetIndex: 0},
			},
		}

		a, err := c.Resolve()
		Expect(err).NotTo(HaveOccurred())
		Expect(a.NumElements()).To(Equal(4))
		Expect(a.ElementMaterial(0)).To(BeIdenticalTo(rubber))
		Expect(a.ElementMaterial(3)).To(BeIdenticalTo(tissue))
		Expect(a.ElementDensity(2)).To(Equal(1000.0))
		Expect(a.ElementMaterialIndex(1)).To(Equal(0))
	})

	It("fails on an unassigned element", func() {
		c := &material.Catalog{
			NumElements: 3,
			Materials:   []material.Material{rubber},
			Sets:        []material.Set{{Name: "all", Elements: []int{0, 2}}},
			Regions:     []material.Region{{MaterialIndex: 0, SetIndex: 0}},
		}

		_, err := c.Resolve()
		Expect(err).To(MatchError(material.ErrUnassignedElement))

		var ee *material.ElementError
		Expect(err).To(BeAssignableToTypeOf(ee))
		Expect(err.(*material.ElementError).Element).To(Equal(1))
	})

	It("fails when an element belongs to two regions", func() {
		c := &material.Catalog{
			NumElements: 2,
			Materials:   []material.Material{rubber, tissue},
			Sets: []material.Set{
				{Name: "a", Elements: []int{0, 1}},
				{Name: "b", Elements: []int{1}},
			},
			Regions: []material.Region{{0, 0}, {1, 1}},
		}

		_, err := c.Resolve()
		Expect(err).To(MatchError(material.ErrDuplicateAssignment))
	})

	It("fails on out-of-range references", func() {
		c := &material.Catalog{
			NumElements: 1,
			Materials:   []material.Material{rubber},
			Sets:        []material.Set{{Name: "a", Elements: []int{5}}},
			Regions:     []material.Region{{0, 0}},
		}
		_, err := c.Resolve()
		Expect(err).To(MatchError(material.ErrIndexOutOfRange))

		c.Regions = []material.Region{{3, 0}}
		_, err = c.Resolve()
		Expect(err).To(MatchError(material.ErrIndexOutOfRange))
	})

	It("replaces a material explicitly", func() {
		a := material.SingleMaterial(3, rubber)
		Expect(a.SetMaterial(0, tissue)).To(Succeed())
		Expect(a.ElementMaterial(2)).To(BeIdenticalTo(tissue))
		Expect(a.SetMaterial(1, tissue)).To(MatchError(material.ErrIndexOutOfRange))
	})
})

var _ = Describe("YAML catalogs", func() {
	It("parses materials, sets and regions by name", func() {
		doc := []byte(`
elements: 6
materials:
  - name: rubber
    type: mooney-rivlin
    density: 1100
    mu01: 1.0
    mu10: 0.5
    v1: 2.0
  - name: gel
    type: enu
    density: 1000
    E: 5000
    nu: 0.4
sets:
  - name: core
    range: [0, 3]
  - name: shell
    elements: [4, 5]
regions:
  - material: gel
    set: shell
  - material: rubber
    set: core
`)
		c, err := material.ParseCatalog(doc)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Materials).To(HaveLen(2))
		Expect(c.Sets[0].Elements).To(Equal([]int{0, 1, 2, 3}))

		a, err := c.Resolve()
		Expect(err).NotTo(HaveOccurred())

		mr, ok := a.ElementMaterial(2).(*material.MooneyRivlin)
		Expect(ok).To(BeTrue())
		Expect(mr.Mu10).To(Equal(0.5))
		Expect(a.ElementMaterial(5).Type()).To(Equal(material.TypeENu))
	})

	It("rejects unknown material references", func() {
		doc := []byte(`
elements: 1
materials:
  - {name: a, type: enu, density: 1, E: 1, nu: 0.3}
sets:
  - {name: s, elements: [0]}
regions:
  - {material: b, set: s}
`)
		_, err := material.ParseCatalog(doc)
		Expect(err).To(MatchError(material.ErrIndexOutOfRange))
	})

	It("rejects unknown type tags", func() {
		_, err := material.ParseCatalog([]byte("materials:\n  - {name: a, type: foam, density: 1}\n"))
		Expect(err).To(MatchError(material.ErrUnknownType))
	})

	It("rejects ranges beyond the element count before expanding them", func() {
		doc := []byte(`
elements: 4
materials:
  - {name: a, type: enu, density: 1, E: 1, nu: 0.3}
sets:
  - {name: s, range: [0, 10000000000]}
regions:
  - {material: a, set: s}
`)
		_, err := material.ParseCatalog(doc)
		Expect(err).To(MatchError(material.ErrIndexOutOfRange))

		_, err = material.ParseCatalog([]byte("elements: 4\nsets:\n  - {name: s, range: [-1, 2]}\n"))
		Expect(err).To(MatchError(material.ErrIndexOutOfRange))
	})

	DescribeTable("rejects duplicate names",
		func(doc string) {
			_, err := material.ParseCatalog([]byte(doc))
			Expect(err).To(MatchError(material.ErrDuplicateName))
		},
		Entry("materials", `
elements: 1
materials:
  - {name: a, type: enu, density: 1, E: 1, nu: 0.3}
  - {name: a, type: enu, density: 2, E: 2, nu: 0.3}
`),
		Entry("sets", `
elements: 2
sets:
  - {name: s, elements: [0]}
  - {name: s, elements: [1]}
`),
	)
})
