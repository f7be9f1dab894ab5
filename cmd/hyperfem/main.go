package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/hyperfem/internal/analysis"
	"github.com/san-kum/hyperfem/internal/config"
	"github.com/san-kum/hyperfem/internal/export"
	"github.com/san-kum/hyperfem/internal/fem"
	"github.com/san-kum/hyperfem/internal/hyper"
	"github.com/san-kum/hyperfem/internal/material"
	"github.com/san-kum/hyperfem/internal/optim"
	"github.com/san-kum/hyperfem/internal/reduce"
	"github.com/san-kum/hyperfem/internal/storage"
	"github.com/san-kum/hyperfem/internal/tensor"
	"github.com/san-kum/hyperfem/internal/tet"
	"github.com/san-kum/hyperfem/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	modelName  string
	policy     string
	verbose    bool
	// Deformation
	stretch []float64
	shear   float64
	angle   float64
	element int
	// Checks
	samples int
	seed    int64
	step    float64
	tol     float64
	// Sweeps
	loading string
	from    float64
	to      float64
	points  int
	save    bool
	// Bench
	cells     int
	workers   int
	reps      int
	stiffness bool
	noise     float64
	// Output and fitting
	svgPath   string
	fitPoints int
)

var heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

func main() {
	rootCmd := &cobra.Command{
		Use:   "hyperfem",
		Short: "isotropic hyperelastic element toolkit",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
		RunE: runExplore,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "report directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml or ini)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "material preset for the selected model")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "constitutive model")
	rootCmd.PersistentFlags().StringVar(&policy, "policy", "", "inversion policy (reject, clamp)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list constitutive models and presets",
		RunE:  listModels,
	}

	catalogCmd := &cobra.Command{
		Use:   "catalog [file]",
		Short: "load and resolve a material catalog (default: the configured one)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showCatalog,
	}

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "evaluate one deformation",
		RunE:  evalDeformation,
	}
	evalCmd.Flags().Float64SliceVar(&stretch, "stretch", []float64{1, 1, 1}, "principal stretches")
	evalCmd.Flags().Float64Var(&shear, "shear", 0, "simple shear γ")
	evalCmd.Flags().Float64Var(&angle, "angle", 0, "rotation about z (radians)")
	evalCmd.Flags().IntVar(&element, "element", 0, "catalog element whose material to use")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "finite-difference verification of every model",
		RunE:  checkModels,
	}
	checkCmd.Flags().IntVar(&samples, "samples", 8, "sample deformations per model")
	checkCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	checkCmd.Flags().Float64Var(&step, "step", analysis.DefaultStep, "finite-difference step")
	checkCmd.Flags().Float64Var(&tol, "tol", analysis.DefaultTolerance, "tolerance")

	curveCmd := &cobra.Command{
		Use:   "curve",
		Short: "sweep energy and stress along a loading path",
		RunE:  plotCurve,
	}
	curveCmd.Flags().StringVar(&loading, "loading", "uniaxial", "uniaxial, equibiaxial, shear or volumetric")
	curveCmd.Flags().Float64Var(&from, "from", 0.6, "first parameter")
	curveCmd.Flags().Float64Var(&to, "to", 1.6, "last parameter")
	curveCmd.Flags().IntVar(&points, "points", 60, "samples")
	curveCmd.Flags().BoolVar(&save, "save", false, "save as a report")
	curveCmd.Flags().StringVar(&svgPath, "svg", "", "also write the stress curve as svg")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list saved reports",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [report_id]",
		Short: "plot a saved report",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the stress curve as svg")

	fitCmd := &cobra.Command{
		Use:   "fit [report_id]",
		Short: "grid-search model parameters against a saved report",
		Args:  cobra.ExactArgs(1),
		RunE:  fitRun,
	}
	fitCmd.Flags().IntVar(&fitPoints, "points", 9, "grid points per parameter")

	exportCmd := &cobra.Command{
		Use:   "export [report_id]",
		Short: "export a saved report as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time a parallel batch evaluation on a box mesh",
		RunE:  benchBatch,
	}
	benchCmd.Flags().IntVar(&cells, "cells", 16, "cells per box edge")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (default from config)")
	benchCmd.Flags().IntVar(&reps, "reps", 5, "repetitions")
	benchCmd.Flags().BoolVar(&stiffness, "stiffness", true, "assemble stiffness")
	benchCmd.Flags().Float64Var(&noise, "noise", 0.05, "random vertex displacement relative to cell size")
	benchCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "interactive deformation explorer",
		RunE:  runExplore,
	}

	rootCmd.AddCommand(modelsCmd, catalogCmd, evalCmd, checkCmd, curveCmd,
		runsCmd, plotCmd, fitCmd, exportCmd, benchCmd, exploreCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, a preset and the flags.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		log.WithField("path", configFile).Debug("loaded config")
	}
	if modelName != "" {
		cfg.Model = modelName
	}
	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("no preset %q for %s (have %s)", preset, cfg.Model,
				strings.Join(config.ListPresets(cfg.Model), ", "))
		}
		cfg.Material = p.Material
	}
	if policy != "" {
		cfg.Reducer.Policy = policy
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func modelFor(cfg *config.Config, name string) (hyper.Model, error) {
	c := *cfg
	c.Model = name
	return c.HomogeneousModel()
}

func evaluatorFor(cfg *config.Config, model hyper.Model, shape fem.Shape) (*fem.Evaluator, error) {
	opts, err := cfg.ReduceOptions()
	if err != nil {
		return nil, err
	}
	ec := fem.DefaultConfig()
	ec.Reduce = opts
	if cfg.Workers > 0 {
		ec.Workers = cfg.Workers
	}
	return fem.NewEvaluator(model, shape, ec)
}

func unitTet() (*tet.Mesh, error) {
	return tet.NewMesh(
		[][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[][4]int{{0, 1, 2, 3}},
	)
}

func listModels(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tMATERIAL\tPRESETS")
	for _, name := range hyper.Names() {
		kind := material.TypeENu
		if name == "mooney-rivlin" {
			kind = material.TypeMooneyRivlin
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, kind, strings.Join(config.ListPresets(name), ", "))
	}
	return w.Flush()
}

func showCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Catalog = args[0]
	}
	if cfg.Catalog == "" {
		return errors.New("no catalog given and none configured")
	}
	cat, err := material.LoadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}
	assign, err := cfg.Assignment(cat.NumElements)
	if err != nil {
		return err
	}

	counts := make([]int, assign.NumMaterials())
	for el := 0; el < assign.NumElements(); el++ {
		counts[assign.ElementMaterialIndex(el)]++
	}

	fmt.Println(heading.Render(fmt.Sprintf("%s: %d elements, %d materials", cfg.Catalog, assign.NumElements(), assign.NumMaterials())))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tTYPE\tDENSITY\tPARAMETERS\tELEMENTS")
	for i := 0; i < assign.NumMaterials(); i++ {
		m := assign.Material(i)
		var params string
		switch m := m.(type) {
		case *material.ENu:
			params = fmt.Sprintf("E=%g nu=%g", m.E, m.Nu)
		case *material.MooneyRivlin:
			params = fmt.Sprintf("mu01=%g mu10=%g v1=%g", m.Mu01, m.Mu10, m.V1)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%g\t%s\t%d\n", i, m.Name(), m.Type(), m.Density(), params, counts[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if modelName == "" {
		return nil
	}
	if _, err := hyper.New(modelName, assign); err != nil {
		return err
	}
	log.WithField("model", modelName).Info("catalog is compatible")
	return nil
}

func deformation() (tensor.Mat3, error) {
	if len(stretch) != 3 {
		return tensor.Mat3{}, fmt.Errorf("--stretch needs 3 values, got %d", len(stretch))
	}
	s := tensor.Identity()
	s[0][1] = shear
	return tensor.Rotation(r3.Vec{Z: 1}, angle).
		Mul(s).
		Mul(tensor.Diag(stretch[0], stretch[1], stretch[2])), nil
}

func evalDeformation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := deformation()
	if err != nil {
		return err
	}
	model, err := cfg.ElementModel(element)
	if err != nil {
		return err
	}
	mesh, err := unitTet()
	if err != nil {
		return err
	}
	e, err := evaluatorFor(cfg, model, mesh)
	if err != nil {
		return err
	}

	forces := make([]float64, e.Dofs())
	energy, err := e.Evaluate(0, f, forces, nil)
	if err != nil {
		return err
	}
	density := energy / mesh.ElementVolume(0)

	d, err := reduce.NewReducer(e.Config().Reduce).Reduce(f)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"eigenvalues": d.Eigenvalues, "repeated": d.Repeated}).Debug("decomposition")

	fmt.Println(heading.Render(cfg.Model))
	for _, row := range f {
		fmt.Printf("  F  % .6f  % .6f  % .6f\n", row[0], row[1], row[2])
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "det F\t%.6g\n", d.Det)
	fmt.Fprintf(w, "invariants\t%.6g  %.6g  %.6g\n", d.Invariants.Ic(), d.Invariants.IIc(), d.Invariants.IIIc())
	fmt.Fprintf(w, "stretches\t%.6g  %.6g  %.6g\n", d.Stretches[0], d.Stretches[1], d.Stretches[2])
	if d.Clamped {
		fmt.Fprintf(w, "clamped\tyes\n")
	}
	fmt.Fprintf(w, "energy density\t%.6g\n", density)
	fmt.Fprintln(w, "VERTEX\tFX\tFY\tFZ")
	for a := 0; a < 4; a++ {
		fmt.Fprintf(w, "%d\t% .6e\t% .6e\t% .6e\n", a, forces[3*a], forces[3*a+1], forces[3*a+2])
	}
	return w.Flush()
}

func checkModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mesh, err := unitTet()
	if err != nil {
		return err
	}
	defs := analysis.SampleDeformations(samples, seed)

	failed := 0
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tCHECKS\tWORST\tMAX ERROR\tSTATUS")
	for _, name := range hyper.Names() {
		model, err := modelFor(cfg, name)
		if err != nil {
			return err
		}
		e, err := evaluatorFor(cfg, model, mesh)
		if err != nil {
			return err
		}
		report, err := analysis.CheckModel(name, e, 0, defs, step)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		worst := report.Worst()
		status := "ok"
		if !report.Passed(tol) {
			status = "FAIL"
			failed++
		}
		log.WithFields(log.Fields{"model": name, "checks": len(report.Results)}).Debug(worst.String())
		fmt.Fprintf(w, "%s\t%d\t%s\t%.3e\t%s\n", name, len(report.Results), worst.Name, worst.MaxError, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d model(s) failed verification", failed)
	}
	return nil
}

func plotCurve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := analysis.ParseLoading(loading)
	if err != nil {
		return err
	}
	model, err := cfg.HomogeneousModel()
	if err != nil {
		return err
	}
	opts, err := cfg.ReduceOptions()
	if err != nil {
		return err
	}

	curve, err := analysis.Sweep(model, 0, l, analysis.Linspace(from, to, points), opts)
	if err != nil {
		return err
	}
	printCurve(fmt.Sprintf("%s %s", cfg.Model, l), curve)
	if err := writeSVG(curve); err != nil {
		return err
	}

	if !save {
		return nil
	}
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	m := cfg.Material
	id, err := st.Save(l.String(), cfg.Model, map[string]float64{
		"mu01": m.Mu01, "mu10": m.Mu10, "v1": m.V1, "e": m.E, "nu": m.Nu,
	}, curve)
	if err != nil {
		return err
	}
	log.WithField("id", id).Info("saved report")
	return nil
}

func printCurve(title string, curve []analysis.CurvePoint) {
	if len(curve) < 2 {
		return
	}
	fmt.Println(heading.Render(title))
	fmt.Printf("parameter %.3g → %.3g, %d samples\n\n", curve[0].Param, curve[len(curve)-1].Param, len(curve))

	fmt.Println(asciigraph.Plot(analysis.Energies(curve),
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Caption("energy density"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(analysis.Stresses(curve),
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Caption("first Piola-Kirchhoff stress"),
	))
	fmt.Println()
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runs, err := storage.New(cfg.DataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no reports found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tMODEL\tTIME\tSAMPLES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			run.ID,
			run.Kind,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Samples,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	curve, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(curve) < 2 {
		return errors.New("no data to plot")
	}
	printCurve(fmt.Sprintf("%s %s (%s)", meta.Model, meta.Kind, meta.ID), curve)
	return writeSVG(curve)
}

func writeSVG(curve []analysis.CurvePoint) error {
	if svgPath == "" {
		return nil
	}
	svg := export.CurveToSVG(curve, export.FieldStress, 640, 360, "#00ccff")
	if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
		return err
	}
	log.WithField("path", svgPath).Info("wrote svg")
	return nil
}

func fitRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	target, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	l, err := analysis.ParseLoading(meta.Kind)
	if err != nil {
		return err
	}
	opts, err := cfg.ReduceOptions()
	if err != nil {
		return err
	}

	m := cfg.Material
	var names []string
	var ranges [][]float64
	if cfg.Model == "mooney-rivlin" {
		names = []string{"mu01", "mu10", "v1"}
		ranges = [][]float64{
			optim.Geomspace(m.Mu01/10, m.Mu01*10, fitPoints),
			optim.Geomspace(m.Mu10/10, m.Mu10*10, fitPoints),
			optim.Geomspace(m.V1/10, m.V1*10, fitPoints),
		}
	} else {
		names = []string{"e", "nu"}
		ranges = [][]float64{
			optim.Geomspace(m.E/10, m.E*10, fitPoints),
			analysis.Linspace(0, 0.49, fitPoints),
		}
	}

	grid := optim.NewGridSearch(names, ranges)
	log.WithFields(log.Fields{"model": cfg.Model, "points": grid.Size(), "report": meta.ID}).Info("fitting")

	best, score, err := grid.Search(cmd.Context(), func(p map[string]float64) (float64, error) {
		c := *cfg
		c.Material.Mu01, c.Material.Mu10, c.Material.V1 = p["mu01"], p["mu10"], p["v1"]
		c.Material.E, c.Material.Nu = p["e"], p["nu"]
		model, err := c.HomogeneousModel()
		if err != nil {
			return 0, err
		}
		return analysis.StressMisfit(model, 0, l, target, opts)
	})
	if err != nil {
		return err
	}

	fmt.Println(heading.Render(fmt.Sprintf("%s fitted to %s", cfg.Model, meta.ID)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.6g\n", name, best[name])
	}
	fmt.Fprintf(w, "relative misfit\t%.3e\n", score)
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return storage.New(cfg.DataDir).Export(args[0], os.Stdout)
}

func benchBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	const h = 0.1
	mesh, err := tet.Box(cells, cells, cells, h)
	if err != nil {
		return err
	}
	model, err := cfg.MeshModel(mesh.NumElements())
	if err != nil {
		return err
	}
	if cfg.Catalog != "" {
		log.WithField("catalog", cfg.Catalog).Info("per-element materials")
	}
	e, err := evaluatorFor(cfg, model, mesh)
	if err != nil {
		return err
	}

	r := rand.New(rand.NewSource(seed))
	x := mesh.Affine(tensor.Diag(1.1, 0.95, 0.97), [3]float64{})
	for i := range x {
		x[i] += noise * h * (2*r.Float64() - 1)
	}
	deform, err := mesh.Deformation(x)
	if err != nil {
		return err
	}

	batch := fem.NewBatch(mesh.NumElements(), mesh.NumElementVertices(), stiffness)
	n := e.Config().Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	fmt.Printf("benchmarking %s on %d elements, %d workers\n\n", cfg.Model, mesh.NumElements(), n)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REP\tTIME\tELEMENTS/SEC\tENERGY\tFAILED")
	for i := 0; i < reps; i++ {
		start := time.Now()
		err := e.EvaluateAll(context.Background(), deform, batch)
		elapsed := time.Since(start)

		var de *hyper.DomainError
		if err != nil && !errors.As(err, &de) {
			return err
		}
		failed := len(batch.Failed())
		if failed > 0 {
			log.WithFields(log.Fields{"failed": failed, "first": de}).Warn("elements outside the model domain")
		}

		fmt.Fprintf(w, "%d\t%v\t%.0f\t%.6g\t%d\n",
			i, elapsed, float64(mesh.NumElements())/elapsed.Seconds(), batch.TotalEnergy(), failed)
	}
	return w.Flush()
}

func runExplore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.ReduceOptions()
	if err != nil {
		return err
	}
	build := func(name string) (hyper.Model, error) { return modelFor(cfg, name) }

	p := tea.NewProgram(tui.NewExplorer(hyper.Names(), build, opts), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
