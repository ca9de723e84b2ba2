package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/treemap/pkg/color"
	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/export"
	"github.com/matzehuels/treemap/pkg/observability"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/session"
	"github.com/matzehuels/treemap/pkg/source"
	"github.com/matzehuels/treemap/pkg/treemap"
	"github.com/matzehuels/treemap/pkg/treemap/split"
)

// mapResponse is returned by every route that changes geometry.
type mapResponse struct {
	ID     string        `json:"id,omitempty"`
	Layout export.Layout `json:"layout"`
}

// hitResponse describes the node under a point.
type hitResponse struct {
	Hit     bool    `json:"hit"`
	Changed bool    `json:"changed"`
	Path    string  `json:"path,omitempty"`
	Label   string  `json:"label,omitempty"`
	Tooltip string  `json:"tooltip,omitempty"`
	Weight  float64 `json:"weight,omitempty"`
	Value   float64 `json:"value,omitempty"`
	Leaf    bool    `json:"leaf,omitempty"`

	Rect *treemap.Rect `json:"rect,omitempty"`
}

// zoomRequest is the optional JSON body of POST /maps/{id}/zoom.
type zoomRequest struct {
	Path *string `json:"path"`
}

func routeID(r *http.Request) string { return chi.URLParam(r, "id") }

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"strategies": split.Names(),
		"default":    split.DefaultName,
		"colors":     color.Names(),
		"formats":    source.Formats(),
	})
}

// handleLayout runs the cached one-shot pipeline over the request body.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.uploadOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheHeader(res.CacheInfo.LayoutHit))
	writeJSON(w, http.StatusOK, mapResponse{Layout: res.Layout})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	opts, err := s.uploadOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := r.Context()
	root, err := s.runner.Load(ctx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.runner.BuildMap(ctx, root, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.runner.Export(m, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// the document is parsed; keep the session small
	opts.Data = nil
	sess, err := session.New(m, opts, s.cfg.SessionTTL)
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInternal, err, "create session"))
		return
	}
	if err := s.store.Set(ctx, sess); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInternal, err, "store session"))
		return
	}
	s.logger.Debug("created map session", "id", sess.ID, "nodes", root.Len())

	w.Header().Set("Location", "/maps/"+sess.ID)
	writeJSON(w, http.StatusCreated, mapResponse{ID: sess.ID, Layout: l})
}

// handleGet returns the session's layout, first applying any strategy,
// viewport, border or proportion overrides from the query.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), routeID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var l export.Layout
	err = sess.Do(func(m *treemap.Map) error {
		opts := sess.Options
		if err := layoutQuery(&opts, r); err != nil {
			return err
		}
		if err := opts.ValidateForLayout(); err != nil {
			return err
		}
		if err := apply(m, opts); err != nil {
			return err
		}
		if m.Dirty() {
			if err := s.relayout(r, m, opts); err != nil {
				return err
			}
		}
		sess.Options = opts
		l, err = s.runner.Export(m, opts)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapResponse{ID: sess.ID, Layout: l})
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), routeID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	x, y, err := point(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var resp hitResponse
	_ = sess.Do(func(m *treemap.Map) error {
		p := sess.Options.Provider()
		_, changed := m.Hover(x, y)
		n, ok := m.Hit(x, y)
		resp.Changed = changed
		observability.Layout().OnHit(r.Context(), x, y, ok)
		if !ok {
			return nil
		}
		b := n.Bounds()
		resp = hitResponse{
			Hit:     true,
			Changed: resp.Changed,
			Path:    source.PathOf(n, p),
			Label:   p.Label(n),
			Tooltip: p.Tooltip(n),
			Weight:  n.Weight(),
			Value:   p.NumericValue(n.Value()),
			Leaf:    n.IsLeaf(),
			Rect:    &b,
		}
		return nil
	})
	writeJSON(w, http.StatusOK, resp)
}

// handleZoom zooms to ?path= or, given ?x=&y=, to the displayed node's
// child under the point.
func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), routeID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var l export.Layout
	err = sess.Do(func(m *treemap.Map) error {
		opts := sess.Options
		dest, err := zoomTarget(m, opts.Provider(), r)
		if err != nil {
			return err
		}
		if err := m.ZoomTo(dest); err != nil {
			return err
		}
		if err := s.relayout(r, m, opts); err != nil {
			return err
		}
		opts.Zoom = source.PathOf(m.Displayed(), opts.Provider())
		sess.Options = opts
		observability.Layout().OnZoom(r.Context(), opts.Zoom, m.Zoom().Zoomed())
		l, err = s.runner.Export(m, opts)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapResponse{ID: sess.ID, Layout: l})
}

func (s *Server) handleUnzoom(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), routeID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var l export.Layout
	err = sess.Do(func(m *treemap.Map) error {
		m.Unzoom()
		if err := s.relayout(r, m, sess.Options); err != nil {
			return err
		}
		sess.Options.Zoom = ""
		observability.Layout().OnZoom(r.Context(), "", false)
		l, err = s.runner.Export(m, sess.Options)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapResponse{ID: sess.ID, Layout: l})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), routeID(r)); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInternal, err, "delete session"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

// uploadOptions reads the request body as a tree document and the layout
// options from the query.
func (s *Server) uploadOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Format:      q.Get("format"),
		WeightField: q.Get("weight_field"),
		ValueField:  q.Get("value_field"),
		Color:       q.Get("color"),
		Zoom:        q.Get("zoom"),
		Refresh:     q.Get("refresh") == "true",
		Logger:      s.logger,
	}
	if opts.Format == "" {
		opts.Format = source.FormatJSON
	}
	if err := layoutQuery(&opts, r); err != nil {
		return opts, err
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		return opts, err
	}
	if len(data) == 0 {
		return opts, errs.New(errs.ErrCodeInvalidInput, "request body is empty")
	}
	opts.Data = data
	return opts, nil
}

// layoutQuery overrides layout options present in the query.
func layoutQuery(opts *pipeline.Options, r *http.Request) error {
	q := r.URL.Query()
	if v := q.Get("strategy"); v != "" {
		opts.Strategy = v
	}
	if v := q.Get("color"); v != "" {
		opts.Color = v
	}
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
	} {
		if v := q.Get(f.name); v != "" {
			n, err := parseFloat(f.name, v)
			if err != nil {
				return err
			}
			*f.dst = n
		}
	}
	if v := q.Get("border"); v != "" {
		n, err := parseFloat("border", v)
		if err != nil {
			return err
		}
		opts.Border = pipeline.Float(n)
	}
	if v := q.Get("keep_proportion"); v != "" {
		keep, err := strconv.ParseBool(v)
		if err != nil {
			return errs.New(errs.ErrCodeInvalidInput, "keep_proportion must be a boolean, got %q", v)
		}
		opts.KeepProportion = keep
	}
	return nil
}

// apply pushes opts onto m, marking it dirty only where something changed.
func apply(m *treemap.Map, opts pipeline.Options) error {
	strategy, err := split.ByName(opts.Strategy)
	if err != nil {
		return err
	}
	if split.NameOf(m.Strategy()) != split.NameOf(strategy) {
		m.SetStrategy(strategy)
	}
	if vp := (treemap.Rect{W: opts.Width, H: opts.Height}); vp != m.Viewport() {
		m.SetViewport(vp)
	}
	if *opts.Border != m.Border() {
		if err := m.SetBorder(*opts.Border); err != nil {
			return err
		}
	}
	if opts.KeepProportion != m.Zoom().KeepProportion() {
		m.SetKeepProportion(opts.KeepProportion)
	}
	return nil
}

// relayout lays m out again, reporting to the layout hooks.
func (s *Server) relayout(r *http.Request, m *treemap.Map, opts pipeline.Options) error {
	hooks := observability.Layout()
	hooks.OnLayoutStart(r.Context(), opts.Strategy, m.Displayed().Len())
	start := time.Now()
	err := m.Layout()
	hooks.OnLayoutComplete(r.Context(), opts.Strategy, time.Since(start), err)
	return err
}

func zoomTarget(m *treemap.Map, p treemap.Provider, r *http.Request) (*treemap.Node, error) {
	q := r.URL.Query()
	if q.Has("path") {
		return source.Find(m.Root(), p, q.Get("path"))
	}
	var body zoomRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&body); err == nil && body.Path != nil {
		return source.Find(m.Root(), p, *body.Path)
	}
	if !q.Has("x") || !q.Has("y") {
		return nil, errs.New(errs.ErrCodeInvalidInput, "zoom needs either path or x and y")
	}
	x, y, err := point(r)
	if err != nil {
		return nil, err
	}
	n, ok := treemap.NewHitTester(m.Zoom()).Child(x, y)
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "no node at (%v, %v)", x, y)
	}
	return n, nil
}

func point(r *http.Request) (x, y float64, err error) {
	q := r.URL.Query()
	if x, err = parseFloat("x", q.Get("x")); err != nil {
		return 0, 0, err
	}
	if y, err = parseFloat("y", q.Get("y")); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func parseFloat(name, v string) (float64, error) {
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "%s must be a number, got %q", name, v)
	}
	return n, nil
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
