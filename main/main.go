package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	plt "github.com/phil-mansfield/pyplot"
	"go.uber.org/zap"

	"github.com/phil-mansfield/gravmag"
	"github.com/phil-mansfield/gravmag/io"
	"github.com/phil-mansfield/gravmag/kernel"
)

var colors = map[kernel.Anomaly]string{
	kernel.Gravity: "r", kernel.Magnetic: "b", kernel.VGG: "g",
}

func main() {
	var (
		forward, load string
		exampleConfig string
		threads int
		verbose bool
		outDir, plotFile string
	)
	vars := map[string]*string{
		"Forward": &forward,
		"Load": &load,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&forward, "Forward", "",
		"Configuration file for [Forward] mode.",
	)
	flag.StringVar(
		&load, "Load", "",
		"Snapshot file to rerun in [Load] mode.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. The only accepted argument is "+
			"'Forward'.",
	)
	flag.IntVar(
		&threads, "Threads", 0,
		"Number of kernel goroutines. Overrides 'Workers' if positive.",
	)
	flag.BoolVar(&verbose, "Verbose", false, "Log at debug level.")
	flag.StringVar(
		&outDir, "OutputDir", ".", "Output directory for [Load] mode.",
	)
	flag.StringVar(
		&plotFile, "Plot", "", "Plot file for [Load] mode.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil { log.Fatal(err.Error()) }
	if threads < 0 { log.Fatal("'Threads' must be non-negative.") }

	switch modeName {
	case "Forward":
		con, err := io.ReadForwardConfig(forward)
		if err != nil { log.Fatal(err.Error()) }
		m, err := gravmag.FromConfig(con, filepath.Dir(forward))
		if err != nil { log.Fatal(err.Error()) }
		mc := &con.Model
		dir := mc.OutputDir
		if !filepath.IsAbs(dir) { dir = filepath.Join(filepath.Dir(forward), dir) }

		logger := newLogger(verbose)
		defer logger.Sync()
		runMain(m, logger, threads, dir)

		if mc.ValidRayInvrFile() {
			fname := filepath.Join(dir, mc.RayInvrFile)
			err := io.WriteRayInvrFile(fname, m.RayInvrLayers())
			if err != nil { log.Fatal(err.Error()) }
		}
		if mc.ValidSnapshotFile() {
			saveSnapshot(m, filepath.Join(dir, mc.SnapshotFile))
		}
		if mc.ValidPlotFile() {
			plotResults(m, filepath.Join(dir, mc.PlotFile))
		}

	case "Load":
		f, err := os.Open(load)
		if err != nil { log.Fatal(err.Error()) }
		m, err := gravmag.Load(f)
		f.Close()
		if err != nil { log.Fatal(err.Error()) }

		logger := newLogger(verbose)
		defer logger.Sync()
		runMain(m, logger, threads, outDir)
		if plotFile != "" { plotResults(m, filepath.Join(outDir, plotFile)) }

	case "ExampleConfig":
		switch exampleConfig {
		case "Forward":
			fmt.Println(io.ExampleForwardFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. The only recognized " +
					"argument is 'Forward'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose { cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel) }
	logger, err := cfg.Build()
	if err != nil { log.Fatal(err.Error()) }
	return logger
}

// runMain runs the forward model, writes every anomaly which succeeded to
// outDir and prints the misfits.
func runMain(m *gravmag.Model, logger *zap.Logger, threads int, outDir string) {
	if threads > 0 { m.Workers = threads }
	m.Log(logger)

	if err := m.Forward(context.Background()); err != nil {
		log.Fatal(err.Error())
	}

	for a := kernel.Gravity; a < kernel.EndAnomaly; a++ {
		res := m.Result(a)
		if res == nil { continue }
		if !res.OK() {
			fmt.Printf("%8s: failed: %s\n", a, res.Err.Error())
			continue
		}

		fname := filepath.Join(outDir, fmt.Sprintf("%s.txt", a))
		if err := io.WriteCurveFile(fname, res.Xs, res.Ys); err != nil {
			log.Fatal(err.Error())
		}

		if rms, ok := res.RMS(); ok {
			fmt.Printf("%8s: RMS = %.2f %s\n", a, rms, a.Unit())
		} else {
			fmt.Printf("%8s: RMS = None\n", a)
		}
	}
}

func saveSnapshot(m *gravmag.Model, fname string) {
	f, err := os.Create(fname)
	if err != nil { log.Fatal(err.Error()) }
	if err := gravmag.Save(f, m); err != nil { log.Fatal(err.Error()) }
	if err := f.Close(); err != nil { log.Fatal(err.Error()) }
}

// plotResults plots each successful anomaly against its reference curve,
// one figure per anomaly, named after fname.
func plotResults(m *gravmag.Model, fname string) {
	ext := filepath.Ext(fname)
	base := strings.TrimSuffix(fname, ext)
	if ext == "" { ext = ".png" }

	for a := kernel.Gravity; a < kernel.EndAnomaly; a++ {
		res := m.Result(a)
		if res == nil || !res.OK() { continue }

		plt.Figure(plt.FigSize(10, 5))
		if id, ok := m.Reference(a); ok {
			c, err := m.Curves.Get(id)
			if err != nil { log.Fatal(err.Error()) }
			plt.Plot(c.Xs, c.Ys, "k", plt.LW(1))
		}
		plt.Plot(res.Xs, res.Ys, plt.LW(2), plt.C(colors[a]))

		if rms, ok := res.RMS(); ok {
			plt.Title(fmt.Sprintf("%s: RMS = %.2f %s", a, rms, a.Unit()))
		} else {
			plt.Title(a.String())
		}
		plt.XLabel(`$x$ [km]`, plt.FontSize(16))
		plt.YLabel(fmt.Sprintf("%s [%s]", a, a.Unit()), plt.FontSize(16))
		plt.XLim(res.Xs[0], res.Xs[len(res.Xs)-1])
		plt.Grid(plt.Axis("y"))
		plt.SaveFig(fmt.Sprintf("%s_%s%s", base, a, ext))
	}

	plt.Execute()
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" { setNames = append(setNames, name) }
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but gravmag only accepts "+
				"one mode flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}
