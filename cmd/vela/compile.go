package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"vela/internal/config"
	"vela/internal/diagfmt"
	"vela/internal/driver"
	"vela/internal/ui"
)

var (
	compileFormat string
	compileUI     string
)

func init() {
	compileCmd.Flags().StringVar(&compileFormat, "format", "pretty", "diagnostics format (pretty|json)")
	compileCmd.Flags().StringVar(&compileUI, "ui", "auto", "progress display (auto|on|off)")
}

var compileCmd = &cobra.Command{
	Use:   "compile [dir]",
	Short: "Lower a parsed module into typed IR",
	Long: `Compile consumes the syntax trees the parser emitted (*.vtree files
next to their sources) and runs declaration building, override linking and
the lowering phase pipeline over them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		return runCompile(cmd, dir)
	},
}

func runCompile(cmd *cobra.Command, dir string) error {
	colorOn := useColor(cmd)
	quiet, _ := cmd.Flags().GetBool("quiet")
	timings, _ := cmd.Flags().GetBool("timings")
	maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")

	switch compileFormat {
	case "pretty", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", compileFormat)
	}

	cfg, root, err := loadManifest(dir)
	if err != nil {
		return err
	}
	inputs, err := collectInputs(dir)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no *.vtree files under %s; run the parser first", dir)
	}

	opts := driver.Options{
		Config:         cfg,
		Inputs:         inputs,
		MaxDiagnostics: maxDiags,
	}

	var res *driver.Result
	var compileErr error
	if showProgress(quiet) {
		res, compileErr = compileWithProgress(cmd, opts, inputs)
	} else {
		res, compileErr = driver.Compile(context.Background(), opts)
	}
	if compileErr != nil {
		return compileErr
	}

	res.Bag.Sort()
	res.Bag.Dedup()
	out := cmd.OutOrStdout()
	if compileFormat == "json" {
		err = diagfmt.WriteJSON(out, res.FileSet, res.Bag.Items(), diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
			Max:              maxDiags,
		})
	} else {
		err = diagfmt.WritePretty(out, res.FileSet, res.Bag.Items(), diagfmt.PrettyOpts{
			Color:     colorOn,
			ShowNotes: true,
			Max:       maxDiags,
		})
	}
	if err != nil {
		return err
	}

	if timings {
		fmt.Fprint(out, res.Timer.Summary())
	}
	if res.Bag.HasErrors() {
		return fmt.Errorf("compilation of %s failed", cfg.ModuleName)
	}
	if !quiet && compileFormat == "pretty" {
		fmt.Fprintf(out, "compiled %s: %d classes, %d top-level functions (root %s)\n",
			cfg.ModuleName, len(res.Module.Classes), len(res.Module.Functions), root)
	}
	return nil
}

func loadManifest(dir string) (config.Config, string, error) {
	path, found, err := config.Find(dir)
	if err != nil {
		return config.Config{}, "", err
	}
	if !found {
		cfg := config.Default()
		cfg.ModuleName = filepath.Base(absOrSelf(dir))
		return cfg, absOrSelf(dir), nil
	}
	m, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}
	return m.Config, m.Root, nil
}

func absOrSelf(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// collectInputs pairs every serialized tree with its source file. Sources
// are optional; diagnostics degrade to location-only output without them.
func collectInputs(dir string) ([]driver.Input, error) {
	var inputs []driver.Input
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".vtree") {
			return nil
		}
		tree, err := os.ReadFile(path) // #nosec G304 -- user-selected build dir
		if err != nil {
			return err
		}
		srcPath := strings.TrimSuffix(path, ".vtree") + ".vela"
		src, err := os.ReadFile(srcPath) // #nosec G304
		if err != nil {
			if !os.IsNotExist(err) {
				return err
			}
			src = nil
		}
		inputs = append(inputs, driver.Input{Path: srcPath, Source: src, Tree: tree})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Path < inputs[j].Path })
	return inputs, nil
}

func showProgress(quiet bool) bool {
	if quiet {
		return false
	}
	switch strings.TrimSpace(strings.ToLower(compileUI)) {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// compileWithProgress runs the pipeline on a worker goroutine and feeds
// its events into the Bubble Tea progress model until both finish.
func compileWithProgress(cmd *cobra.Command, opts driver.Options, inputs []driver.Input) (*driver.Result, error) {
	events := make(chan driver.Event, 64)
	opts.Observer = func(ev driver.Event) { events <- ev }

	files := make([]string, 0, len(inputs))
	for _, in := range inputs {
		files = append(files, in.Path)
	}
	model := ui.NewProgressModel("compiling "+opts.Config.ModuleName, files, events)
	prog := tea.NewProgram(model, tea.WithOutput(cmd.ErrOrStderr()))

	type outcome struct {
		res *driver.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := driver.Compile(context.Background(), opts)
		close(events)
		done <- outcome{res, err}
	}()

	if _, err := prog.Run(); err != nil {
		// The TUI failing must not lose the compilation result.
		fmt.Fprintf(cmd.ErrOrStderr(), "progress display failed: %v\n", err)
	}
	out := <-done
	return out.res, out.err
}
