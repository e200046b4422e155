package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"icon_studio/catalog"
	"icon_studio/errclass"
	"icon_studio/export"
	"icon_studio/generator"
	"icon_studio/imageedit"
)

type generateResp struct {
	Record  generator.Record   `json:"record"`
	Session generator.Snapshot `json:"session"`
	// Warning is set when the markup was recovered without a strict <svg>
	// fragment; the record is still appended.
	Warning *errclass.Error `json:"warning,omitempty"`
}

type imageEditReq struct {
	Image    string  `json:"image"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
	Size     int     `json:"size,omitempty"` // at most the configured canvas size
}

type imageEditResp struct {
	Image    string  `json:"image"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
	Size     int     `json:"size"`
}

type stylesResp struct {
	Styles []catalog.Style `json:"styles"`
	Colors []string        `json:"colors"`
}

type libraryResp struct {
	Icons []catalog.Icon `json:"icons"`
}

type configResp struct {
	Editor struct {
		CanvasSize   int                  `json:"canvas_size"`
		Scale        imageedit.ScaleRange `json:"scale"`
		RotationStep int                  `json:"rotation_step"`
	} `json:"editor"`
	Export struct {
		Formats     []export.Format `json:"formats"`
		Sizes       []int           `json:"sizes"`
		DefaultSize int             `json:"default_size"`
	} `json:"export"`
}

// --- Sessions ---

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.create()
	s.logger.Info("session created", "session", sess.ID)
	writeJSONStatus(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, sess.Snapshot())
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.delete(r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req generator.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req, err = s.resolveStyle(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := s.modelContext(r.Context())
	defer cancel()
	rec, err := sess.Generate(ctx, req)
	s.respondGenerated(w, r, sess, rec, err)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.modelContext(r.Context())
	defer cancel()
	rec, err := sess.Regenerate(ctx)
	s.respondGenerated(w, r, sess, rec, err)
}

func (s *Server) respondGenerated(w http.ResponseWriter, r *http.Request, sess *generator.Session, rec generator.Record, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sessions.save(sess)
	resp := generateResp{Record: rec, Session: sess.Snapshot()}
	if rec.ExtractionFallback {
		resp.Warning = errclass.ErrExtractionFallback
	}
	s.logger.Info("icon generated", "session", sess.ID, "record", rec.ID, "style", rec.Style, "fallback", rec.ExtractionFallback)
	writeJSON(w, resp)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, (*generator.Session).Undo)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, (*generator.Session).Redo)
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request, move func(*generator.Session) generator.Snapshot) {
	sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap := move(sess)
	s.sessions.save(sess)
	writeJSON(w, snap)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cur, ok := sess.Current()
	if !ok {
		s.writeError(w, r, errclass.ErrNotFound.WithDetails("session has no icon to export"))
		return
	}

	q := r.URL.Query()
	format := export.FormatSVG
	if v := q.Get("format"); v != "" {
		if format, err = export.ParseFormat(v); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	size := 0
	if v := q.Get("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil {
			s.writeError(w, r, errclass.ErrInvalidRequest.WithDetailsf("size %q is not a number", v))
			return
		}
	}

	file, err := s.exporter.Export(cur.Label, cur.SVG, format, size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", file.MediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	_, _ = w.Write(file.Data)
}

// --- Reference image editor ---

func (s *Server) handleImageEdit(w http.ResponseWriter, r *http.Request) {
	var req imageEditReq
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	size := req.Size
	if size == 0 {
		size = s.canvasSize
	}
	if size > s.canvasSize {
		s.writeError(w, r, errclass.ErrInvalidRequest.WithDetailsf("size %d exceeds the %d px canvas", size, s.canvasSize))
		return
	}
	src, err := imageedit.DecodeDataURL(req.Image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	t := imageedit.NewTransform().WithScale(req.Scale, s.scaleRange)
	t.Rotation = req.Rotation
	out, err := imageedit.Commit(src, t, size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, imageEditResp{Image: out, Scale: t.Scale, Rotation: t.Rotation, Size: size})
}

// --- Catalog ---

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, stylesResp{Styles: s.catalog.Styles, Colors: s.catalog.Colors})
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	icons := s.catalog.Search(r.URL.Query().Get("q"))
	if icons == nil {
		icons = []catalog.Icon{}
	}
	writeJSON(w, libraryResp{Icons: icons})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	var resp configResp
	resp.Editor.CanvasSize = s.canvasSize
	resp.Editor.Scale = s.scaleRange
	resp.Editor.RotationStep = imageedit.RotationStep
	resp.Export.Formats = []export.Format{export.FormatSVG, export.FormatPNG, export.FormatJPEG}
	resp.Export.Sizes = s.exporter.Sizes()
	resp.Export.DefaultSize = s.exporter.DefaultSize()
	writeJSON(w, resp)
}

// --- Helpers ---

func (s *Server) resolveStyle(req generator.Request) (generator.Request, error) {
	id, err := s.catalog.ResolveStyle(req.Style)
	if err != nil {
		return req, err
	}
	req.Style = id
	return req, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errclass.ErrInvalidRequest.WithDetails("request body is empty")
		}
		return errclass.ErrInvalidRequest.Wrap(err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
