package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"icon_studio/catalog"
	"icon_studio/errclass"
	"icon_studio/export"
	"icon_studio/generator"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		sessionID string
		iconID    string
		format    string
		size      int
		out       string
	)
	cmd := &cobra.Command{
		Use:   "export [file.svg]",
		Short: "Export an icon as SVG, PNG or JPEG",
		Long: `Export converts one icon: an SVG file, the current entry of a stored
session (--session) or a library icon (--icon). Without --out the file is
written to the working directory under its derived name; "-" writes stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := len(args)
			if sessionID != "" {
				sources++
			}
			if iconID != "" {
				sources++
			}
			if sources != 1 {
				return fmt.Errorf("give exactly one of: an svg file, --session or --icon")
			}

			var label, svg string
			switch {
			case len(args) == 1:
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read svg: %w", err)
				}
				label = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				svg = string(data)
			case sessionID != "":
				store, err := a.requireStore()
				if err != nil {
					return err
				}
				defer store.Close()
				sess, err := restoreStored(store, sessionID)
				if err != nil {
					return err
				}
				cur, ok := sess.Current()
				if !ok {
					return errclass.ErrNotFound.WithDetails("session has no icon to export")
				}
				label, svg = cur.Label, cur.SVG
			default:
				cat, err := catalog.Load()
				if err != nil {
					return err
				}
				icon, ok := cat.Icon(iconID)
				if !ok {
					return errclass.ErrNotFound.WithDetailsf("library icon %s", iconID)
				}
				label, svg = generator.Label(icon.Prompt, icon.Style), icon.SVG
			}
			return a.writeExport(label, svg, format, size, out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&sessionID, "session", "", "export the current icon of a stored session")
	f.StringVar(&iconID, "icon", "", "export a library icon by id")
	f.StringVar(&format, "format", "svg", "output format: svg, png or jpeg")
	f.IntVar(&size, "size", 0, "raster size for png/jpeg (default from config)")
	f.StringVarP(&out, "out", "o", "", "output path, or - for stdout")
	return cmd
}

// writeExport encodes svg in the requested format and writes it to out. An
// empty out uses the derived filename; "-" writes the bytes to stdout.
func (a *app) writeExport(label, svg, format string, size int, out string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	exporter, err := a.newExporter()
	if err != nil {
		return err
	}
	file, err := exporter.Export(label, svg, f, size)
	if err != nil {
		return err
	}

	if out == "-" {
		_, err := a.out.Write(file.Data)
		return err
	}
	if out == "" {
		out = file.Name
	} else if info, err := os.Stat(out); err == nil && info.IsDir() {
		out = filepath.Join(out, file.Name)
	}
	if err := writeFile(out, file.Data); err != nil {
		return err
	}
	result := struct {
		Path      string `json:"path"`
		MediaType string `json:"media_type"`
		Bytes     int    `json:"bytes"`
	}{out, file.MediaType, len(file.Data)}
	return a.print(result, func(w io.Writer) { fmt.Fprintf(w, "wrote %s\n", out) })
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
