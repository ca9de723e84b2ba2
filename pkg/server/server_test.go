package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treemap/pkg/cache"
	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/pipeline"
)

const diskJSON = `{
  "label": "disk",
  "children": [
    {
      "label": "photos",
      "children": [
        {"label": "a.jpg", "weight": 120},
        {"label": "b.jpg", "weight": 80}
      ]
    },
    {"label": "notes", "weight": 10}
  ]
}`

const createQuery = "/maps?format=json&strategy=slice&width=100&height=100&border=0"

func newTestServer(t *testing.T, runner *pipeline.Runner) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := New(Config{}, runner, nil, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp
}

func createMap(t *testing.T, ts *httptest.Server) mapResponse {
	t.Helper()
	var created mapResponse
	resp := do(t, ts, http.MethodPost, createQuery, diskJSON, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	return created
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	var body map[string]any
	resp := do(t, ts, http.MethodGet, "/healthz", "", &body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", resp.StatusCode, body)
	}
}

func TestStrategies(t *testing.T) {
	ts := newTestServer(t, nil)
	var body struct {
		Strategies []string `json:"strategies"`
		Default    string   `json:"default"`
	}
	do(t, ts, http.MethodGet, "/strategies", "", &body)
	if body.Default != "squarified" || len(body.Strategies) != 5 {
		t.Errorf("strategies = %+v", body)
	}
}

func TestCreateAndGet(t *testing.T) {
	ts := newTestServer(t, nil)
	created := createMap(t, ts)
	if created.ID == "" {
		t.Fatal("no session id")
	}
	if created.Layout.Strategy != "slice" || len(created.Layout.Rects) != 5 {
		t.Errorf("layout = %s with %d rects", created.Layout.Strategy, len(created.Layout.Rects))
	}

	var got mapResponse
	resp := do(t, ts, http.MethodGet, "/maps/"+created.ID+"?strategy=squarified", "", &got)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	if got.Layout.Strategy != "squarified" {
		t.Errorf("strategy = %q after override", got.Layout.Strategy)
	}

	// the override sticks to the session
	do(t, ts, http.MethodGet, "/maps/"+created.ID, "", &got)
	if got.Layout.Strategy != "squarified" {
		t.Errorf("strategy = %q on plain get", got.Layout.Strategy)
	}
}

func TestHit(t *testing.T) {
	ts := newTestServer(t, nil)
	id := createMap(t, ts).ID

	tests := []struct {
		query   string
		hit     bool
		path    string
		changed bool
	}{
		{"x=50&y=10", true, "photos/a.jpg", true},
		{"x=50&y=20", true, "photos/a.jpg", false},
		{"x=50&y=99", true, "notes", true},
		{"x=500&y=500", false, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got hitResponse
			do(t, ts, http.MethodGet, "/maps/"+id+"/hit?"+tt.query, "", &got)
			if got.Hit != tt.hit || got.Path != tt.path || got.Changed != tt.changed {
				t.Errorf("hit = %+v, want hit=%v path=%q changed=%v", got, tt.hit, tt.path, tt.changed)
			}
		})
	}
}

func TestZoomRoundTrip(t *testing.T) {
	ts := newTestServer(t, nil)
	id := createMap(t, ts).ID

	var zoomed mapResponse
	resp := do(t, ts, http.MethodPost, "/maps/"+id+"/zoom?path=photos", "", &zoomed)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("zoom status = %d", resp.StatusCode)
	}
	if zoomed.Layout.Displayed != "photos" || len(zoomed.Layout.Rects) != 3 {
		t.Errorf("zoomed layout: displayed %q, %d rects", zoomed.Layout.Displayed, len(zoomed.Layout.Rects))
	}
	if b := zoomed.Layout.Rects[0]; b.W != 100 || b.H != 100 {
		t.Errorf("focus = %+v, want full viewport", b.Bounds())
	}

	var hit hitResponse
	do(t, ts, http.MethodGet, "/maps/"+id+"/hit?x=50&y=99", "", &hit)
	if hit.Path != "photos/b.jpg" {
		t.Errorf("hit while zoomed = %q, want photos/b.jpg", hit.Path)
	}

	var back mapResponse
	do(t, ts, http.MethodDelete, "/maps/"+id+"/zoom", "", &back)
	if back.Layout.Displayed != "" || len(back.Layout.Rects) != 5 {
		t.Errorf("unzoomed layout: displayed %q, %d rects", back.Layout.Displayed, len(back.Layout.Rects))
	}
}

func TestZoomByBody(t *testing.T) {
	ts := newTestServer(t, nil)
	id := createMap(t, ts).ID

	var zoomed mapResponse
	do(t, ts, http.MethodPost, "/maps/"+id+"/zoom", `{"path": "photos"}`, &zoomed)
	if zoomed.Layout.Displayed != "photos" {
		t.Errorf("displayed %q, want photos", zoomed.Layout.Displayed)
	}
}

func TestZoomByPoint(t *testing.T) {
	ts := newTestServer(t, nil)
	id := createMap(t, ts).ID

	var zoomed mapResponse
	do(t, ts, http.MethodPost, "/maps/"+id+"/zoom?x=50&y=99", "", &zoomed)
	if zoomed.Layout.Displayed != "notes" || len(zoomed.Layout.Rects) != 1 {
		t.Errorf("displayed %q with %d rects", zoomed.Layout.Displayed, len(zoomed.Layout.Rects))
	}
}

func TestDelete(t *testing.T) {
	ts := newTestServer(t, nil)
	id := createMap(t, ts).ID

	if resp := do(t, ts, http.MethodDelete, "/maps/"+id, "", nil); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	var body errorBody
	resp := do(t, ts, http.MethodGet, "/maps/"+id, "", &body)
	if resp.StatusCode != http.StatusNotFound || body.Code != errs.ErrCodeNotFound {
		t.Errorf("get after delete = %d %+v", resp.StatusCode, body)
	}
}

func TestErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	id := createMap(t, ts).ID

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   errs.Code
	}{
		{"unknown strategy", http.MethodPost, "/maps?strategy=spiral", diskJSON, 400, errs.ErrCodeInvalidStrategy},
		{"empty body", http.MethodPost, "/maps", "", 400, errs.ErrCodeInvalidInput},
		{"malformed json", http.MethodPost, "/maps", "{", 400, errs.ErrCodeParse},
		{"unknown format", http.MethodPost, "/maps?format=csv", diskJSON, 400, errs.ErrCodeInvalidFormat},
		{"bad width", http.MethodGet, "/maps/" + id + "?width=wide", "", 400, errs.ErrCodeInvalidInput},
		{"bad point", http.MethodGet, "/maps/" + id + "/hit?x=1", "", 400, errs.ErrCodeInvalidInput},
		{"unknown zoom path", http.MethodPost, "/maps/" + id + "/zoom?path=videos", "", 404, errs.ErrCodeNotFound},
		{"zoom without target", http.MethodPost, "/maps/" + id + "/zoom", "", 400, errs.ErrCodeInvalidInput},
		{"unknown session", http.MethodGet, "/maps/nope/hit?x=1&y=1", "", 404, errs.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			resp := do(t, ts, tt.method, tt.path, tt.body, &body)
			if resp.StatusCode != tt.status || body.Code != tt.code {
				t.Errorf("got %d %+v, want %d %s", resp.StatusCode, body, tt.status, tt.code)
			}
		})
	}
}

func TestLayoutCached(t *testing.T) {
	fc, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, pipeline.NewRunner(fc, nil, nil))

	for i, want := range []string{"MISS", "HIT"} {
		var got mapResponse
		resp := do(t, ts, http.MethodPost, "/layout?format=json&width=200&height=100", diskJSON, &got)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("run %d status = %d", i, resp.StatusCode)
		}
		if h := resp.Header.Get("X-Cache"); h != want {
			t.Errorf("run %d X-Cache = %q, want %q", i, h, want)
		}
		if got.Layout.Width != 200 || len(got.Layout.Rects) != 5 {
			t.Errorf("run %d layout %vx%v with %d rects", i, got.Layout.Width, got.Layout.Height, len(got.Layout.Rects))
		}
	}
}
