package server

import (
	"cmp"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/astview/pkg/diagram"
	apierr "github.com/matzehuels/astview/pkg/errors"
	"github.com/matzehuels/astview/pkg/inspect"
	"github.com/matzehuels/astview/pkg/pipeline"
	"github.com/matzehuels/astview/pkg/render"
	"github.com/matzehuels/astview/pkg/source"
	"github.com/matzehuels/astview/pkg/view"
	"github.com/matzehuels/astview/pkg/viewstore"
)

// =============================================================================
// Request / Response Types
// =============================================================================

type openRequest struct {
	Path     string `json:"path"`
	Language string `json:"language,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type renderRequest struct {
	Path        string `json:"path"`
	Language    string `json:"language,omitempty"`
	Source      string `json:"source,omitempty"`
	Format      string `json:"format,omitempty"`
	Style       string `json:"style,omitempty"`
	ExpandDepth int    `json:"expand_depth,omitempty"`
	ExpandAll   bool   `json:"expand_all,omitempty"`
	LeafText    int    `json:"leaf_text,omitempty"`
	MaxDepth    int    `json:"max_depth,omitempty"`
	MaxNodes    int    `json:"max_nodes,omitempty"`
}

type viewResponse struct {
	ID        string          `json:"id"`
	Path      string          `json:"path"`
	Mode      string          `json:"mode"`
	NoContent bool            `json:"no_content,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Selected  string          `json:"selected,omitempty"`
	Expanded  []string        `json:"expanded"`
	Diagram   diagram.Diagram `json:"diagram"`
}

type nodeResponse struct {
	ID         string             `json:"id"`
	Label      string             `json:"label"`
	Synthetic  bool               `json:"synthetic,omitempty"`
	Collapsed  bool               `json:"collapsed"`
	Properties []inspect.Property `json:"properties"`
}

func newViewResponse(v *view.View) viewResponse {
	resp := viewResponse{
		ID:        v.ID(),
		Path:      v.Source(),
		Mode:      v.Mode().String(),
		NoContent: v.NoContent(),
		Selected:  v.Selected(),
		Expanded:  v.Expanded(),
		Diagram:   v.Diagram(),
	}
	if resp.Expanded == nil {
		resp.Expanded = []string{}
	}
	if err := v.Reason(); err != nil {
		resp.Reason = err.Error()
	}
	return resp
}

// =============================================================================
// Middleware
// =============================================================================

func (s *Server) validateViewID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := apierr.ValidateViewID(chi.URLParam(r, "id")); err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func validateNodeID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := apierr.ValidateNodeID(chi.URLParam(r, "node")); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: apierr.GetCode(err), Message: apierr.UserMessage(err)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apierr.Wrap(apierr.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

// resolve maps a request path onto the served root.
func (s *Server) resolve(path string) (string, error) {
	if err := apierr.ValidatePath(path); err != nil {
		return "", err
	}
	return filepath.Join(s.cfg.Root, filepath.FromSlash(path)), nil
}

// =============================================================================
// View Handlers
// =============================================================================

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	path, err := s.resolve(req.Path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	mode, err := view.ParseMode(req.Mode)
	if err != nil {
		s.writeError(w, r, apierr.Wrap(apierr.ErrCodeInvalidInput, err, "invalid mode"))
		return
	}
	var lang source.Language
	if req.Language != "" {
		if lang, err = source.ParseLanguage(req.Language); err != nil {
			s.writeError(w, r, err)
			return
		}
	} else if lang, err = source.LanguageFor(path); err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.views.Open(r.Context(), path, lang, mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var resp viewResponse
	err = s.views.With(r.Context(), id, func(v *view.View) error {
		resp = newViewResponse(v)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/views/"+id)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.views.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []*viewstore.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// withView runs fn under the view's lock and writes the resulting state.
func (s *Server) withView(w http.ResponseWriter, r *http.Request, fn func(*view.View) error) {
	var resp viewResponse
	err := s.views.With(r.Context(), chi.URLParam(r, "id"), func(v *view.View) error {
		if err := fn(v); err != nil {
			return err
		}
		resp = newViewResponse(v)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.withView(w, r, func(*view.View) error { return nil })
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	if err := s.views.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.withView(w, r, func(v *view.View) error { return v.Refresh(r.Context()) })
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	mode, err := view.ParseMode(req.Mode)
	if err != nil || req.Mode == "" {
		s.writeError(w, r, apierr.New(apierr.ErrCodeInvalidInput, "invalid mode %q", req.Mode))
		return
	}
	s.withView(w, r, func(v *view.View) error { return v.SetMode(mode) })
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	node := chi.URLParam(r, "node")
	s.withView(w, r, func(v *view.View) error { return v.Activate(node) })
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	node := chi.URLParam(r, "node")
	var resp nodeResponse
	err := s.views.With(r.Context(), chi.URLParam(r, "id"), func(v *view.View) error {
		n, err := v.Node(node)
		if err != nil {
			return err
		}
		props, err := v.Inspect(node)
		if err != nil {
			return err
		}
		resp = nodeResponse{
			ID:         node,
			Label:      n.Label,
			Synthetic:  n.Synthetic,
			Collapsed:  n.Collapsed,
			Properties: props,
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Render Handlers
// =============================================================================

func (s *Server) handleViewRender(w http.ResponseWriter, r *http.Request) {
	f, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := pipeline.Options{Formats: []string{string(f)}, Style: r.URL.Query().Get("style")}
	if err := opts.ValidateForRender(); err != nil {
		s.writeError(w, r, apierr.Wrap(apierr.ErrCodeInvalidInput, err, "invalid render options"))
		return
	}

	var d diagram.Diagram
	err = s.views.With(r.Context(), chi.URLParam(r, "id"), func(v *view.View) error {
		d = v.Diagram()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, err := s.runner.Render(r.Context(), d, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, f, artifacts[string(f)])
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := render.ParseFormat(cmp.Or(req.Format, pipeline.FormatSVG))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := pipeline.Options{
		Path:        req.Path,
		Language:    req.Language,
		Formats:     []string{string(f)},
		Style:       req.Style,
		ExpandDepth: req.ExpandDepth,
		ExpandAll:   req.ExpandAll,
		LeafText:    req.LeafText,
		MaxDepth:    req.MaxDepth,
		MaxNodes:    req.MaxNodes,
	}
	if req.Source != "" {
		opts.Source = []byte(req.Source)
	} else if opts.Path, err = s.resolve(req.Path); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, apierr.Wrap(apierr.ErrCodeInvalidInput, err, "invalid render options"))
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Diagram-Hash", res.DiagramHash)
	w.Header().Set("X-Cache-Hit", strconv.FormatBool(res.CacheInfo.DiagramHit && res.CacheInfo.RenderHit))
	writeArtifact(w, f, res.Artifacts[string(f)])
}

func writeArtifact(w http.ResponseWriter, f render.Format, data []byte) {
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
