package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/hyperfem/internal/hyper"
	"github.com/san-kum/hyperfem/internal/reduce"
)

const (
	DefaultModel   = "neo-hookean"
	DefaultMu01    = 1.0e5
	DefaultMu10    = 5.0e4
	DefaultV1      = 1.0e6
	DefaultE       = 1.0e6
	DefaultNu      = 0.45
	DefaultDensity = 1000.0
	DefaultDataDir = ".hyperfem"
)

type Config struct {
	Model    string         `yaml:"model"`
	Material MaterialConfig `yaml:"material"`
	Reducer  ReducerConfig  `yaml:"reducer"`
	Workers  int            `yaml:"workers"`
	Catalog  string         `yaml:"catalog,omitempty"`
	DataDir  string         `yaml:"data_dir"`
}

// MaterialConfig holds homogeneous parameters. Mooney-Rivlin reads
// Mu01, Mu10 and V1; Neo-Hookean and StVK read E and Nu.
type MaterialConfig struct {
	Mu01    float64 `yaml:"mu01"`
	Mu10    float64 `yaml:"mu10"`
	V1      float64 `yaml:"v1"`
	E       float64 `yaml:"e"`
	Nu      float64 `yaml:"nu"`
	Density float64 `yaml:"density"`
}

type ReducerConfig struct {
	RepeatedTolerance   float64 `yaml:"repeated_tolerance"`
	DegenerateTolerance float64 `yaml:"degenerate_tolerance"`
	Policy              string  `yaml:"policy"`
	InversionThreshold  float64 `yaml:"inversion_threshold"`
}

func DefaultConfig() *Config {
	opts := reduce.DefaultOptions()
	return &Config{
		Model: DefaultModel,
		Material: MaterialConfig{
			Mu01:    DefaultMu01,
			Mu10:    DefaultMu10,
			V1:      DefaultV1,
			E:       DefaultE,
			Nu:      DefaultNu,
			Density: DefaultDensity,
		},
		Reducer: ReducerConfig{
			RepeatedTolerance:   opts.RepeatedTolerance,
			DegenerateTolerance: opts.DegenerateTolerance,
			Policy:              opts.Policy.String(),
			InversionThreshold:  opts.InversionThreshold,
		},
		DataDir: DefaultDataDir,
	}
}

// Load reads a .yaml/.yml or .ini file over the defaults.
func Load(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini":
		return loadINI(path)
	case ".yaml", ".yml", "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		cfg := DefaultConfig()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
		return cfg, nil
	default:
		return nil, fmt.Errorf("config: unsupported file type %q", filepath.Ext(path))
	}
}

func loadINI(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	d := DefaultConfig()
	top := file.Section("")
	mat := file.Section("material")
	red := file.Section("reducer")

	return &Config{
		Model: top.Key("model").MustString(d.Model),
		Material: MaterialConfig{
			Mu01:    mat.Key("mu01").MustFloat64(d.Material.Mu01),
			Mu10:    mat.Key("mu10").MustFloat64(d.Material.Mu10),
			V1:      mat.Key("v1").MustFloat64(d.Material.V1),
			E:       mat.Key("e").MustFloat64(d.Material.E),
			Nu:      mat.Key("nu").MustFloat64(d.Material.Nu),
			Density: mat.Key("density").MustFloat64(d.Material.Density),
		},
		Reducer: ReducerConfig{
			RepeatedTolerance:   red.Key("repeated_tolerance").MustFloat64(d.Reducer.RepeatedTolerance),
			DegenerateTolerance: red.Key("degenerate_tolerance").MustFloat64(d.Reducer.DegenerateTolerance),
			Policy:              red.Key("policy").MustString(d.Reducer.Policy),
			InversionThreshold:  red.Key("inversion_threshold").MustFloat64(d.Reducer.InversionThreshold),
		},
		Workers: top.Key("workers").MustInt(d.Workers),
		Catalog: top.Key("catalog").MustString(d.Catalog),
		DataDir: top.Key("data_dir").MustString(d.DataDir),
	}, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReduceOptions converts the reducer section and validates it.
func (c *Config) ReduceOptions() (reduce.Options, error) {
	policy, err := reduce.ParsePolicy(c.Reducer.Policy)
	if err != nil {
		return reduce.Options{}, err
	}
	opts := reduce.Options{
		RepeatedTolerance:   c.Reducer.RepeatedTolerance,
		DegenerateTolerance: c.Reducer.DegenerateTolerance,
		Policy:              policy,
		InversionThreshold:  c.Reducer.InversionThreshold,
	}
	return opts, opts.Validate()
}

// HomogeneousModel builds the configured model with one parameter set for
// every element.
func (c *Config) HomogeneousModel() (hyper.Model, error) {
	m := c.Material
	switch c.Model {
	case "mooney-rivlin":
		return hyper.NewHomogeneousMooneyRivlin(m.Mu01, m.Mu10, m.V1), nil
	case "neo-hookean":
		if err := checkENu(m); err != nil {
			return nil, err
		}
		return hyper.NewHomogeneousNeoHookean(m.E, m.Nu), nil
	case "stvk":
		if err := checkENu(m); err != nil {
			return nil, err
		}
		return hyper.NewHomogeneousStVK(m.E, m.Nu), nil
	default:
		return nil, fmt.Errorf("%w: %q", hyper.ErrUnknownModel, c.Model)
	}
}

func checkENu(m MaterialConfig) error {
	if !(m.E > 0) {
		return fmt.Errorf("config: E must be positive, got %g", m.E)
	}
	if !(m.Nu > -1 && m.Nu < 0.5) {
		return fmt.Errorf("config: nu must be in (-1, 0.5), got %g", m.Nu)
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := c.ReduceOptions(); err != nil {
		return err
	}
	if _, err := c.HomogeneousModel(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be non-negative, got %d", c.Workers)
	}
	return nil
}
