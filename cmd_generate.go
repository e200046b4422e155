package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"icon_studio/catalog"
	"icon_studio/errclass"
	"icon_studio/generator"
	"icon_studio/imageedit"
	"icon_studio/storage"
)

type generateOptions struct {
	req       generator.Request
	imagePath string
	scale     float64
	rotation  float64
	sessionID string
	out       string
	format    string
	size      int
}

func newGenerateCmd(a *app) *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one icon",
		Long: `Generate asks the model for one icon. With --session the result is
appended to that stored session's history; the session is created if needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), a, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.req.Prompt, "prompt", "p", "", "icon description")
	f.StringVarP(&opts.req.Style, "style", "s", generator.DefaultStyle, "icon style (see 'styles')")
	f.StringVarP(&opts.req.Color, "color", "c", "", "primary color as #RRGGBB")
	f.StringVar(&opts.imagePath, "image", "", "reference image file")
	f.Float64Var(&opts.scale, "scale", 1, "reference image zoom")
	f.Float64Var(&opts.rotation, "rotation", 0, "reference image rotation in degrees")
	f.StringVar(&opts.sessionID, "session", "", "append to a stored session")
	f.StringVarP(&opts.out, "out", "o", "", "write the icon to this file instead of stdout")
	f.StringVar(&opts.format, "format", "svg", "output format: svg, png or jpeg")
	f.IntVar(&opts.size, "size", 0, "raster size for png/jpeg (default from config)")
	return cmd
}

func runGenerate(ctx context.Context, a *app, opts generateOptions) error {
	cat, err := catalog.Load()
	if err != nil {
		return err
	}
	req := opts.req
	if req.Style, err = cat.ResolveStyle(req.Style); err != nil {
		return err
	}
	if opts.imagePath != "" {
		if req.ReferenceImage, err = a.referenceFromFile(opts.imagePath, opts.scale, opts.rotation); err != nil {
			return err
		}
	}

	agent, err := a.newAgent()
	if err != nil {
		return err
	}
	var store *storage.Store
	if opts.sessionID != "" {
		if store, err = a.requireStore(); err != nil {
			return err
		}
		defer store.Close()
	}
	sess, err := loadOrNewSession(store, opts.sessionID, agent)
	if err != nil {
		return err
	}

	timeout, err := a.cfg.Timeout()
	if err != nil {
		return err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	rec, err := sess.Generate(ctx, req)
	if err != nil {
		return err
	}
	if store != nil {
		if err := store.SaveSession(sess.ID, sess.CreatedAt, sess.State()); err != nil {
			return err
		}
	}
	a.logger.Info("icon generated", "label", rec.Label, "session", sess.ID, "fallback", rec.ExtractionFallback)

	if opts.out == "" && opts.format == "svg" {
		return a.print(rec, func(w io.Writer) { fmt.Fprintln(w, rec.SVG) })
	}
	return a.writeExport(rec.Label, rec.SVG, opts.format, opts.size, opts.out)
}

// referenceFromFile decodes an image file and commits it through the editor
// transform, yielding the PNG data URL attached to requests.
func (a *app) referenceFromFile(path string, scale, rotation float64) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read reference image: %w", err)
	}
	src, err := imageedit.Decode(data)
	if err != nil {
		return "", err
	}
	t := imageedit.NewTransform().WithScale(scale, a.scaleRange())
	t.Rotation = rotation
	return imageedit.Commit(src, t, a.cfg.Editor.CanvasSize)
}

func loadOrNewSession(store *storage.Store, id string, agent *generator.Agent) (*generator.Session, error) {
	if store == nil || id == "" {
		if id == "" {
			id = uuid.NewString()
		}
		return generator.NewSession(id, agent), nil
	}
	stored, err := store.LoadSession(id)
	if errors.Is(err, errclass.ErrNotFound) {
		return generator.NewSession(id, agent), nil
	}
	if err != nil {
		return nil, err
	}
	return generator.RestoreSession(stored.ID, stored.CreatedAt, agent, stored.Records, stored.Cursor)
}
