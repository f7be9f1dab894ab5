package material

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Elements  int            `yaml:"elements"`
	Materials []materialFile `yaml:"materials"`
	Sets      []setFile      `yaml:"sets"`
	Regions   []regionFile   `yaml:"regions"`
}

type materialFile struct {
	Name    string  `yaml:"name"`
	Type    string  `yaml:"type"`
	Density float64 `yaml:"density"`
	E       float64 `yaml:"E"`
	Nu      float64 `yaml:"nu"`
	Mu01    float64 `yaml:"mu01"`
	Mu10    float64 `yaml:"mu10"`
	V1      float64 `yaml:"v1"`
}

type setFile struct {
	Name     string `yaml:"name"`
	Elements []int  `yaml:"elements"`
	// Range is an inclusive [first, last] shorthand for contiguous sets.
	Range []int `yaml:"range"`
}

type regionFile struct {
	Material string `yaml:"material"`
	Set      string `yaml:"set"`
}

// LoadCatalog reads a YAML catalog from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog. Regions refer to materials and sets
// by name.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("material: parse catalog: %w", err)
	}

	c := &Catalog{NumElements: f.Elements}
	materialIndex := make(map[string]int, len(f.Materials))
	for i, mf := range f.Materials {
		if _, dup := materialIndex[mf.Name]; dup {
			return nil, fmt.Errorf("%w: material %q", ErrDuplicateName, mf.Name)
		}
		m, err := mf.build()
		if err != nil {
			return nil, err
		}
		c.Materials = append(c.Materials, m)
		materialIndex[mf.Name] = i
	}

	setIndex := make(map[string]int, len(f.Sets))
	for i, sf := range f.Sets {
		if len(sf.Name) > MaxNameLength {
			return nil, fmt.Errorf("%w: set %q", ErrNameTooLong, sf.Name)
		}
		if _, dup := setIndex[sf.Name]; dup {
			return nil, fmt.Errorf("%w: set %q", ErrDuplicateName, sf.Name)
		}
		elements := append([]int(nil), sf.Elements...)
		if len(sf.Range) != 0 {
			if len(sf.Range) != 2 || sf.Range[0] < 0 || sf.Range[1] < sf.Range[0] || sf.Range[1] >= f.Elements {
				return nil, fmt.Errorf("%w: set %q range %v", ErrIndexOutOfRange, sf.Name, sf.Range)
			}
			for el := sf.Range[0]; el <= sf.Range[1]; el++ {
				elements = append(elements, el)
			}
		}
		c.Sets = append(c.Sets, Set{Name: sf.Name, Elements: elements})
		setIndex[sf.Name] = i
	}

	for _, rf := range f.Regions {
		mi, ok := materialIndex[rf.Material]
		if !ok {
			return nil, fmt.Errorf("%w: region references unknown material %q", ErrIndexOutOfRange, rf.Material)
		}
		si, ok := setIndex[rf.Set]
		if !ok {
			return nil, fmt.Errorf("%w: region references unknown set %q", ErrIndexOutOfRange, rf.Set)
		}
		c.Regions = append(c.Regions, Region{MaterialIndex: mi, SetIndex: si})
	}

	return c, nil
}

func (mf materialFile) build() (Material, error) {
	t, err := ParseType(mf.Type)
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeENu:
		return NewENu(mf.Name, mf.Density, mf.E, mf.Nu)
	case TypeMooneyRivlin:
		return NewMooneyRivlin(mf.Name, mf.Density, mf.Mu01, mf.Mu10, mf.V1)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, mf.Type)
}
