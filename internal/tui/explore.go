package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/hyperfem/internal/analysis"
	"github.com/san-kum/hyperfem/internal/fem"
	"github.com/san-kum/hyperfem/internal/hyper"
	"github.com/san-kum/hyperfem/internal/reduce"
	"github.com/san-kum/hyperfem/internal/tensor"
)

var modelInfo = map[string]string{
	"mooney-rivlin": "rubber, two-term",
	"neo-hookean":   "compressible, log volume",
	"stvk":          "green strain, quadratic",
}

// Builder constructs the homogeneous model for a name.
type Builder func(name string) (hyper.Model, error)

type state int

const (
	stateMenu state = iota
	stateExplore
)

const (
	paramStretch1 = iota
	paramStretch2
	paramStretch3
	paramShear
	paramAngle
	numParams
)

var paramNames = [numParams]string{"λ1", "λ2", "λ3", "shear γ", "angle θ"}

var restParams = [numParams]float64{1, 1, 1, 0, 0}

// Explorer is the bubbletea model of the interactive deformation
// explorer. The deformation is F = Rz(θ)·(I + γ·e1⊗e2)·diag(λ1, λ2, λ3).
type Explorer struct {
	state  state
	cursor int
	models []string
	build  Builder
	opts   reduce.Options

	selected    string
	model       hyper.Model
	reducer     *reduce.Reducer
	params      [numParams]float64
	paramCursor int
	step        float64

	dec    reduce.Decomposition
	energy float64
	piola  tensor.Mat3
	err    error
	curve  []float64

	width  int
	height int
}

func NewExplorer(models []string, build Builder, opts reduce.Options) Explorer {
	return Explorer{
		state:   stateMenu,
		models:  models,
		build:   build,
		opts:    opts,
		reducer: reduce.NewReducer(opts),
		params:  restParams,
		step:    0.05,
		width:   80,
		height:  24,
	}
}

func (m Explorer) Init() tea.Cmd { return nil }

func (m Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case stateMenu:
			return m.menuKey(msg)
		case stateExplore:
			return m.exploreKey(msg)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m Explorer) menuKey(msg tea.KeyMsg) (Explorer, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.models)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.models) == 0 {
			return m, nil
		}
		name := m.models[m.cursor]
		model, err := m.build(name)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.selected = name
		m.model = model
		m.params = restParams
		m.paramCursor = 0
		m.state = stateExplore
		m.sweep()
		m.evaluate()
	}
	return m, nil
}

func (m Explorer) exploreKey(msg tea.KeyMsg) (Explorer, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
		m.err = nil
		return m, nil
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < numParams-1 {
			m.paramCursor++
		}
	case "left", "h":
		m.params[m.paramCursor] -= m.step
	case "right", "l":
		m.params[m.paramCursor] += m.step
	case "[":
		m.step = math.Max(m.step/2, 1e-4)
	case "]":
		m.step = math.Min(m.step*2, 0.5)
	case "r":
		m.params = restParams
	case "u":
		// incompressible uniaxial state for the current λ1
		l := m.params[paramStretch1]
		if l > 0 {
			m.params[paramStretch2] = 1 / math.Sqrt(l)
			m.params[paramStretch3] = 1 / math.Sqrt(l)
		}
	}
	m.evaluate()
	return m, nil
}

// Deformation returns the current deformation gradient.
func (m Explorer) Deformation() tensor.Mat3 {
	p := m.params
	shear := tensor.Identity()
	shear[0][1] = p[paramShear]
	return tensor.Rotation(r3.Vec{Z: 1}, p[paramAngle]).
		Mul(shear).
		Mul(tensor.Diag(p[paramStretch1], p[paramStretch2], p[paramStretch3]))
}

func (m *Explorer) evaluate() {
	m.err = nil
	d, err := m.reducer.Reduce(m.Deformation())
	if err != nil {
		m.err = err
		return
	}
	m.dec = d
	grad := m.model.ComputeEnergyGradient(0, d.Invariants)
	m.energy = m.model.ComputeEnergy(0, d.Invariants)
	m.piola = fem.Piola(&d, fem.PrincipalGradient(grad, d.Stretches))
}

func (m *Explorer) sweep() {
	curve, err := analysis.Sweep(m.model, 0, analysis.Uniaxial, analysis.Linspace(0.6, 1.6, 41), m.opts)
	if err != nil {
		m.curve = nil
		return
	}
	m.curve = analysis.Energies(curve)
}

// Energy and Err report the state of the last evaluation.
func (m Explorer) Energy() float64 { return m.energy }
func (m Explorer) Err() error      { return m.err }

func (m Explorer) View() string {
	if m.state == stateMenu {
		return m.viewMenu()
	}
	return m.viewExplore()
}

func (m Explorer) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + cyan.Render("hyperfem") + "  " + dim.Render("isotropic hyperelastic explorer") + "\n")
	b.WriteString("      " + separator(36) + "\n\n")

	for i, name := range m.models {
		desc := modelInfo[name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-16s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-16s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n      " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter explore   q quit") + "\n")
	return b.String()
}

func (m Explorer) viewExplore() string {
	var b strings.Builder

	b.WriteString("\n   " + cyan.Render(m.selected) + "  " + dim.Render(modelInfo[m.selected]) + "\n")
	b.WriteString("   " + separator(40) + "\n\n")

	for i, name := range paramNames {
		val := fmt.Sprintf("%8.3f", m.params[i])
		if i == m.paramCursor {
			b.WriteString("   " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-10s", name)) + magenta.Render(val) + "\n")
		} else {
			b.WriteString("     " + dim.Render(fmt.Sprintf("%-10s", name)) + dim.Render(val) + "\n")
		}
	}
	b.WriteString("     " + dim.Render(fmt.Sprintf("%-10s", "step")) + dim.Render(fmt.Sprintf("%8.4f", m.step)) + "\n\n")

	if m.err != nil {
		b.WriteString("   " + red.Render("● "+m.err.Error()) + "\n")
	} else {
		inv := m.dec.Invariants
		b.WriteString(fmt.Sprintf("   %s %s  %s %s  %s %s\n",
			dim.Render("Ic"), white.Render(fmt.Sprintf("%.4f", inv.Ic())),
			dim.Render("IIc"), white.Render(fmt.Sprintf("%.4f", inv.IIc())),
			dim.Render("IIIc"), white.Render(fmt.Sprintf("%.4f", inv.IIIc()))))
		b.WriteString(fmt.Sprintf("   %s %s  %s %s\n",
			dim.Render("σ"), white.Render(fmt.Sprintf("%.4f %.4f %.4f", m.dec.Stretches[0], m.dec.Stretches[1], m.dec.Stretches[2])),
			dim.Render("W"), green.Render(fmt.Sprintf("%.6g", m.energy))))

		b.WriteString("\n   " + dim.Render("P") + "\n")
		for _, row := range m.piola {
			b.WriteString("     " + white.Render(fmt.Sprintf("% .4e  % .4e  % .4e", row[0], row[1], row[2])) + "\n")
		}

		var flags []string
		for _, p := range [3][2]int{{0, 1}, {0, 2}, {1, 2}} {
			if m.dec.IsRepeated(p[0], p[1]) {
				flags = append(flags, fmt.Sprintf("σ%d=σ%d", p[0]+1, p[1]+1))
			}
		}
		if m.dec.Clamped {
			flags = append(flags, "clamped")
		}
		if len(flags) > 0 {
			b.WriteString("\n   " + yellow.Render("○ "+strings.Join(flags, "  ")) + "\n")
		}
	}

	if len(m.curve) > 1 {
		chart := asciigraph.Plot(m.curve, asciigraph.Height(6), asciigraph.Width(40), asciigraph.Caption("uniaxial W(λ), λ ∈ [0.6, 1.6]"))
		b.WriteString("\n" + graphStyle.Render(chart) + "\n")
		b.WriteString("   " + Sparkline(m.curve, 40) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("   ↑↓ select  ←→ adjust  [] step  u uniaxial  r reset  esc back") + "\n")
	return b.String()
}
