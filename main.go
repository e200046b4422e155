package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"icon_studio/config"
	"icon_studio/export"
	"icon_studio/generator"
	"icon_studio/imageedit"
	"icon_studio/logging"
	"icon_studio/storage"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	verbose    bool
	jsonOutput bool

	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}
	root := &cobra.Command{
		Use:   "icon_studio",
		Short: "Generate SVG icons from text prompts and reference images",
		Long: `icon_studio asks a generative model for SVG icons in a chosen style,
keeps an undoable history per session, edits reference images and exports
the result as SVG, PNG or JPEG.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "path to config.json")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logs")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "output in JSON format")

	root.AddCommand(
		newServeCmd(a),
		newGenerateCmd(a),
		newEditCmd(a),
		newExportCmd(a),
		newSessionCmd(a),
		newLibraryCmd(a),
		newStylesCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log, a.errOut, a.verbose)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) newAgent() (*generator.Agent, error) {
	llm, err := buildLLM(a.cfg.LLM)
	if err != nil {
		return nil, err
	}
	return generator.NewAgent(llm, a.logger)
}

func (a *app) newExporter() (*export.Exporter, error) {
	return export.NewExporter(a.cfg.Export.Sizes, a.cfg.Export.DefaultSize)
}

func (a *app) scaleRange() imageedit.ScaleRange {
	return imageedit.ScaleRange{
		Min:  a.cfg.Editor.MinScale,
		Max:  a.cfg.Editor.MaxScale,
		Step: a.cfg.Editor.ScaleStep,
	}
}

// openStore opens the session database, creating its directory. An empty
// db_path disables persistence and yields a nil store.
func (a *app) openStore() (*storage.Store, error) {
	if a.cfg.DBPath == "" {
		return nil, nil
	}
	if dir := filepath.Dir(a.cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	return storage.Open(a.cfg.DBPath)
}

// requireStore is openStore for commands that cannot work without one.
func (a *app) requireStore() (*storage.Store, error) {
	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("db_path is not configured")
	}
	return st, nil
}

// print writes v as indented JSON with --json, else calls text.
func (a *app) print(v any, text func(w io.Writer)) error {
	if a.jsonOutput {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(a.out)
	return nil
}
