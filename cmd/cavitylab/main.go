package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/cavitylab/internal/analysis"
	"github.com/san-kum/cavitylab/internal/cavity"
	"github.com/san-kum/cavitylab/internal/config"
	"github.com/san-kum/cavitylab/internal/experiment"
	"github.com/san-kum/cavitylab/internal/inventory"
	"github.com/san-kum/cavitylab/internal/metrics"
	"github.com/san-kum/cavitylab/internal/scope"
	"github.com/san-kum/cavitylab/internal/solver"
	"github.com/san-kum/cavitylab/internal/storage"
	"github.com/san-kum/cavitylab/internal/sweep"
	"github.com/san-kum/cavitylab/internal/viz"
)

var (
	dataDir       string
	logLevel      string
	configFile    string
	preset        string
	inventoryFile string
	// overrides
	runName    string
	power      float64
	wavelength float64
	miMo       float64
	sweepKind  string
	target     string
	start      float64
	stop       float64
	steps      int
	detector   string
	// output
	logScale bool
	braille  bool
	svgFile  string
	noSave   bool
	// fit
	channel  int
	t0, t1   float64
	distance int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cavitylab",
		Short:         "fabry-perot cavity modelling lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			log.SetLevel(lvl)
			return nil
		},
	}

	defaultLevel := os.Getenv("LOG_LEVEL")
	if defaultLevel == "" {
		defaultLevel = "info"
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cavitylab", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLevel, "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "build the cavity, run its sweep and store the result",
		RunE:  runExperiment,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&logScale, "log", false, "plot log10 power")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "print cavity figures of merit",
		RunE:  showInfo,
	}
	addConfigFlags(infoCmd)

	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "print the component tree of the model",
		RunE:  showTree,
	}
	addConfigFlags(treeCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive sweep",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	lockCmd := &cobra.Command{
		Use:   "lock",
		Short: "find the swept value that maximises a detector",
		RunE:  lockCavity,
	}
	addConfigFlags(lockCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&logScale, "log", false, "plot log10 power")
	plotCmd.Flags().StringVar(&detector, "detector", "", "plot only this detector")
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write an svg line plot")
	plotCmd.Flags().BoolVar(&braille, "braille", false, "draw on a braille canvas instead of an ascii graph")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	fitCmd := &cobra.Command{
		Use:   "fit [scope.csv]",
		Short: "measure finesse from a scope trace",
		Args:  cobra.ExactArgs(1),
		RunE:  fitTrace,
	}
	fitCmd.Flags().IntVar(&channel, "channel", 1, "voltage column (1 = first after time)")
	fitCmd.Flags().Float64Var(&t0, "t0", 0, "window start (s)")
	fitCmd.Flags().Float64Var(&t1, "t1", 0, "window end (s)")
	fitCmd.Flags().IntVar(&distance, "distance", 0, "minimum trough separation in samples (0 = estimate)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tWAVELENGTH\tMI_MO\tSWEEP")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.0f nm\t%g m\t%s\n", name, p.Laser.Wavelength*1e9, p.Distances.MiMo, p.Sweep.Kind)
			}
			w.Flush()
		},
	}

	inventoryCmd := &cobra.Command{
		Use:   "inventory [file]",
		Short: "list mirror coatings in an inventory file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := inventory.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Print(viz.InventoryTable(inv.Entries()))
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd,
		infoCmd, treeCmd, fitCmd, presetsCmd, inventoryCmd, liveCmd, lockCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&inventoryFile, "inventory", "", "mirror inventory (toml or yaml)")
	f.StringVar(&runName, "name", "", "run name")
	f.Float64Var(&power, "power", config.DefaultPower, "laser power (W)")
	f.Float64Var(&wavelength, "wavelength", config.DefaultWavelength, "laser wavelength (m)")
	f.Float64Var(&miMo, "mi-mo", config.DefaultMiMo, "mirror separation (m)")
	f.StringVar(&sweepKind, "sweep", config.SweepPiezo, "sweep kind (piezo, fsr, xaxis)")
	f.StringVar(&target, "target", "", "xaxis target parameter, e.g. m_input.phi")
	f.Float64Var(&start, "start", 0, "xaxis start")
	f.Float64Var(&stop, "stop", 0, "xaxis stop")
	f.IntVar(&steps, "steps", 0, "samples per sweep")
	f.StringVar(&detector, "detector", "", "detector to report")
}

// loadConfig resolves the configuration from preset, file or defaults and
// applies any flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (have %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	case configFile != "":
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
	}

	f := cmd.Flags()
	if f.Changed("name") {
		cfg.Name = runName
	}
	if f.Changed("power") {
		cfg.Laser.Power = power
	}
	if f.Changed("wavelength") {
		cfg.Laser.Wavelength = wavelength
	}
	if f.Changed("mi-mo") {
		cfg.Distances.MiMo = miMo
	}
	if f.Changed("sweep") {
		cfg.Sweep.Kind = sweepKind
	}
	if f.Changed("target") {
		cfg.Sweep.Target = target
	}
	if f.Changed("start") {
		cfg.Sweep.Start = start
	}
	if f.Changed("stop") {
		cfg.Sweep.Stop = stop
	}
	if f.Changed("steps") {
		cfg.Sweep.Steps = steps
	}
	if f.Changed("detector") {
		cfg.Detector = detector
	}
	return cfg, nil
}

func buildExperiment(cmd *cobra.Command) (*experiment.Experiment, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	var inv *inventory.Inventory
	if inventoryFile != "" {
		if inv, err = inventory.Load(inventoryFile); err != nil {
			return nil, err
		}
		log.Debug("loaded inventory", "path", inventoryFile, "mirrors", inv.Len())
	}
	exp, err := experiment.Build(cfg, inv)
	if err != nil {
		return nil, err
	}
	return exp.WithSolver(solver.NewPlaneWave().WithLogger(log.Default().WithPrefix("solver"))), nil
}

func runExperiment(cmd *cobra.Command, args []string) error {
	exp, err := buildExperiment(cmd)
	if err != nil {
		return err
	}
	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stopSignals()

	log.Info("running", "name", exp.Config().Name, "action", exp.Action().ActionName())
	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	props, err := cavity.Analyze(exp.Model(), cavity.Name)
	if err != nil {
		return err
	}

	det := exp.Detector()
	values, err := res.Detector(det)
	if err != nil {
		return err
	}
	peak := metrics.NewPeak(det)
	figures, err := metrics.Evaluate(res,
		peak,
		metrics.NewVisibility(det),
		metrics.NewEnergyBalance(exp.Config().Laser.Power, cavity.Reflected, cavity.Transmitted),
	)
	if err != nil {
		return err
	}
	figures["peak_x_"+det] = peak.At()

	fmt.Println(viz.Plot(values, viz.PlotOptions{
		Caption: fmt.Sprintf("%s vs %s", det, res.Target),
		Log10:   logScale,
	}))
	fmt.Println()
	fmt.Println(viz.CavityReport(props))
	fmt.Printf("peak %s: %s at %s = %.6g\n", det, viz.FormatSI(peak.Value(), "W"), res.Target, peak.At())
	log.Debug("sweep figures", "figures", figures)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(exp.Config(), res, props, figures)
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", id)
	return nil
}

func showInfo(cmd *cobra.Command, args []string) error {
	exp, err := buildExperiment(cmd)
	if err != nil {
		return err
	}
	props, err := cavity.Analyze(exp.Model(), cavity.Name)
	if err != nil {
		return err
	}
	fmt.Println(viz.CavityReport(props))
	return nil
}

func showTree(cmd *cobra.Command, args []string) error {
	exp, err := buildExperiment(cmd)
	if err != nil {
		return err
	}
	fmt.Print(exp.Model().Tree(true))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	exp, err := buildExperiment(cmd)
	if err != nil {
		return err
	}
	x, ok := exp.Action().(sweep.Xaxis)
	if !ok {
		return fmt.Errorf("live view needs a single-axis sweep, got %s", exp.Action().ActionName())
	}
	sm, err := viz.NewScanModel(exp.Model(), exp.Solver(), x.Target, x.Start, x.Stop)
	if err != nil {
		return err
	}
	sm.SelectDetector(exp.Detector())
	return viz.RunLive(sm)
}

func lockCavity(cmd *cobra.Command, args []string) error {
	exp, err := buildExperiment(cmd)
	if err != nil {
		return err
	}
	x, ok := exp.Action().(sweep.Xaxis)
	if !ok {
		return fmt.Errorf("lock needs a single-axis sweep, got %s", exp.Action().ActionName())
	}
	n := x.Steps
	if n > 1000 || n < 2 {
		n = 1000
	}
	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stopSignals()

	det := exp.Detector()
	best, p, err := experiment.FindResonance(ctx, exp.Model(), exp.Solver(), x.Target, det, x.Start, x.Stop, n)
	if err != nil {
		return err
	}
	fmt.Printf("%s = %.9g maximises %s (%s)\n", x.Target, best, det, viz.FormatSI(p, "W"))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tACTION\tTARGET\tSAMPLES\tFINESSE")

	for _, run := range runs {
		finesse := "-"
		if run.Cavity != nil {
			finesse = fmt.Sprintf("%.1f", run.Cavity.Finesse)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Action,
			run.Target,
			run.Samples,
			finesse,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	res, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if res.Len() == 0 {
		return errors.New("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("sweep: %s %s [%g, %g]\n", meta.Action, meta.Target, meta.Start, meta.Stop)
	fmt.Printf("samples: %d\n\n", res.Len())

	names := res.Detectors()
	if detector != "" {
		names = []string{detector}
	}
	for _, name := range names {
		values, err := res.Detector(name)
		if err != nil {
			return err
		}
		opts := viz.PlotOptions{
			Height:  10,
			Caption: fmt.Sprintf("%s vs %s", name, meta.Target),
			Log10:   logScale,
		}
		if braille {
			fmt.Println(opts.Caption)
			fmt.Print(viz.Braille(values, opts).String())
		} else {
			fmt.Println(viz.Plot(values, opts))
		}
		fmt.Println()
	}

	if svgFile != "" {
		values, err := res.Detector(names[0])
		if err != nil {
			return err
		}
		var svg string
		if braille {
			svg = viz.CanvasToSVG(viz.Braille(values, viz.PlotOptions{Height: 10, Log10: logScale}), 5)
		} else {
			if logScale {
				values = viz.Log10(values)
			}
			svg = viz.SeriesToSVG(res.X, values, 800, 400, "#00ffff")
		}
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	res, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, res)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	res, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, res)
}

func fitTrace(cmd *cobra.Command, args []string) error {
	tr, err := scope.Load(args[0], channel)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("t0") || cmd.Flags().Changed("t1") {
		hi := t1
		if !cmd.Flags().Changed("t1") {
			hi = tr.Time[tr.Len()-1]
		}
		tr = tr.Slice(t0, hi)
	}
	log.Debug("loaded trace", "path", args[0], "samples", tr.Len())

	res, err := analysis.MeasureFinesse(tr, analysis.FinesseOptions{Distance: distance})
	if err != nil {
		return err
	}
	fmt.Println(viz.Plot(tr.Voltage, viz.PlotOptions{Height: 10, Caption: "scope voltage"}))
	fmt.Println()
	fmt.Println(viz.FinesseReport(res))
	return nil
}
