package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"inspection-portal/config"
	"inspection-portal/internal/hierarchy"
	"inspection-portal/internal/session"
	"inspection-portal/internal/upstream"
)

// memStore is an in-memory treestate.Store for router tests.
type memStore struct {
	mu    sync.Mutex
	flags map[string]map[string]bool
}

func newMemStore() *memStore {
	return &memStore{flags: make(map[string]map[string]bool)}
}

func (s *memStore) Flags(_ context.Context, deviceID string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.flags[deviceID]))
	for k, v := range s.flags[deviceID] {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) Set(_ context.Context, deviceID string, kind hierarchy.Kind, id string, expanded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flags[deviceID] == nil {
		s.flags[deviceID] = make(map[string]bool)
	}
	s.flags[deviceID][hierarchy.ExpandKey(kind, id)] = expanded
	return nil
}

// fakeUpstream is a scripted inspection API. It records every request
// and serves its in-memory forest, mutating it on deletes so the
// post-delete refetch returns the reconciled view.
type fakeUpstream struct {
	mu       sync.Mutex
	forest   hierarchy.Forest
	requests []string
	failAuth bool
	lastForm map[string]string
}

func (f *fakeUpstream) record(r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()
}

func (f *fakeUpstream) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeUpstream) countNestedFetches() int {
	n := 0
	for _, r := range f.seen() {
		if strings.HasPrefix(r, "GET /api/partners/nested") {
			n++
		}
	}
	return n
}

func (f *fakeUpstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/partners/nested", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if f.failAuth {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(f.forest)
	})
	mux.HandleFunc("/api/reports/", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		id := strings.TrimPrefix(r.URL.Path, "/api/reports/")
		switch r.Method {
		case http.MethodDelete:
			f.mu.Lock()
			hierarchy.Remove(&f.forest, hierarchy.KindReport, id)
			f.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			json.NewEncoder(w).Encode(hierarchy.Report{ID: id, ReportNumber: "WO1", VNNumber: "VN1", Status: "Active"})
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/api/reports", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			f.mu.Lock()
			f.lastForm = make(map[string]string)
			for k, v := range r.MultipartForm.Value {
				f.lastForm[k] = v[0]
			}
			f.mu.Unlock()
		}
		json.NewEncoder(w).Encode(hierarchy.Report{ID: "new", ReportNumber: "WO123"})
	})
	mux.HandleFunc("/api/auth/admin/login", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-admin"})
	})
	mux.HandleFunc("/api/units", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		json.NewEncoder(w).Encode(map[string]hierarchy.Unit{"unit": {ID: "u-new"}})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "not found"})
	})
	return mux
}

func testForest() hierarchy.Forest {
	return hierarchy.Forest{
		{
			ID:   "p1",
			Name: "Acme Partner",
			Customers: []hierarchy.Customer{
				{
					ID:   "c1",
					Name: "Bob's Garage",
					Reports: []hierarchy.Report{
						{ID: "r1", ReportNumber: "WO1", IsNew: true},
					},
				},
			},
		},
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB
}

func newTestRouter(t *testing.T, up *fakeUpstream) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(up.handler())
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Server.TemplateGlob = "../../templates/*.tmpl"
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 60
	cfg.Upstream.BaseURL = srv.URL
	cfg.Upstream.Timeout = 5 * time.Second
	cfg.Auth.CookieTTLDays = 7

	client := upstream.New(&cfg.Upstream)
	sessions := session.NewManager(&cfg.Auth)
	state := newMemStore()

	router := NewRouter(cfg, client, sessions, state, newTestDB(t), nil, nil)
	return router, state
}

func adminCookies(req *http.Request) {
	req.AddCookie(&http.Cookie{Name: session.CookieToken, Value: "tok-admin"})
	req.AddCookie(&http.Cookie{Name: session.CookieRole, Value: "admin"})
	req.AddCookie(&http.Cookie{Name: session.CookieDevice, Value: "dev-1"})
}

func get(router *gin.Engine, path string, withCookies func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if withCookies != nil {
		withCookies(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postForm(router *gin.Engine, path string, form map[string]string, withCookies func(*http.Request)) *httptest.ResponseRecorder {
	values := make([]string, 0, len(form))
	for k, v := range form {
		values = append(values, k+"="+v)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(strings.Join(values, "&")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if withCookies != nil {
		withCookies(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAdminDashboardRendersTree(t *testing.T) {
	up := &fakeUpstream{forest: testForest()}
	router, state := newTestRouter(t, up)

	// Expand the branch so the customer row renders too.
	require.NoError(t, state.Set(context.Background(), "dev-1", hierarchy.KindPartner, "p1", true))

	w := get(router, "/admin/dashboard", adminCookies)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Acme Partner")
	assert.Contains(t, body, "Bob&#39;s Garage")
	assert.Equal(t, 1, up.countNestedFetches())
}

func TestAdminLoginIssuesCookies(t *testing.T) {
	up := &fakeUpstream{forest: testForest()}
	router, _ := newTestRouter(t, up)

	w := postForm(router, "/admin", map[string]string{"email": "a@b.c", "password": "pw"}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	var token, role string
	for _, c := range cookies {
		switch c.Name {
		case session.CookieToken:
			token = c.Value
			assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
			assert.Equal(t, 7*24*3600, c.MaxAge)
		case session.CookieRole:
			role = c.Value
		}
	}
	assert.Equal(t, "tok-admin", token)
	assert.Equal(t, "admin", role)
}

func TestDeleteReportReconciles(t *testing.T) {
	up := &fakeUpstream{forest: testForest()}
	router, _ := newTestRouter(t, up)

	// Prime the snapshot.
	get(router, "/admin/dashboard", adminCookies)

	w := postForm(router, "/admin/reports/r1/delete", nil, adminCookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))

	// The delete is followed by an unconditional full refetch.
	seen := up.seen()
	assert.Contains(t, seen, "DELETE /api/reports/r1")
	assert.Equal(t, 2, up.countNestedFetches())

	// The reconciled snapshot no longer contains the report.
	w = get(router, "/admin/dashboard", adminCookies)
	assert.NotContains(t, w.Body.String(), "WO1")
	// And rendering from the snapshot did not fetch again.
	assert.Equal(t, 2, up.countNestedFetches())
}

func TestReselectTriggersOneExtraFetch(t *testing.T) {
	up := &fakeUpstream{forest: testForest()}
	router, _ := newTestRouter(t, up)

	get(router, "/admin/dashboard", adminCookies)
	require.Equal(t, 1, up.countNestedFetches())

	// First selection: renders from the snapshot, only the detail is
	// fetched.
	get(router, "/admin/dashboard?kind=report&id=r1", adminCookies)
	assert.Equal(t, 1, up.countNestedFetches())

	// Selecting the selected node again is the refresh gesture.
	get(router, "/admin/dashboard?kind=report&id=r1", adminCookies)
	assert.Equal(t, 2, up.countNestedFetches())
}

func TestAuthFailureClearsSessionAndRedirects(t *testing.T) {
	up := &fakeUpstream{forest: testForest(), failAuth: true}
	router, _ := newTestRouter(t, up)

	w := get(router, "/admin/dashboard", adminCookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	cleared := map[string]bool{}
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieToken || c.Name == session.CookieRole {
			assert.Empty(t, c.Value)
			assert.Negative(t, c.MaxAge)
			cleared[c.Name] = true
		}
	}
	assert.Len(t, cleared, 2)
}

func TestCreateUnitRejectsAmbiguousParent(t *testing.T) {
	up := &fakeUpstream{forest: testForest()}
	router, _ := newTestRouter(t, up)

	w := postForm(router, "/admin/units", map[string]string{
		"unitName":   "Truck",
		"customerId": "c1",
		"partnerId":  "p1",
	}, adminCookies)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "error=")
	// The invalid parent pair never reaches the network.
	assert.Empty(t, up.seen())
}

func TestCreateReportNormalizesNumber(t *testing.T) {
	up := &fakeUpstream{forest: testForest()}
	router, _ := newTestRouter(t, up)

	var buf bytes.Buffer
	mp := multipart.NewWriter(&buf)
	require.NoError(t, mp.WriteField("reportNumber", "WO 123"))
	require.NoError(t, mp.WriteField("vnNumber", "VN9"))
	require.NoError(t, mp.WriteField("partnerId", "p1"))
	fw, err := mp.CreateFormFile("files", "report.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, mp.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/reports", &buf)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	adminCookies(req)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	up.mu.Lock()
	defer up.mu.Unlock()
	assert.Equal(t, "WO123", up.lastForm["reportNumber"])
	assert.Equal(t, "VN9", up.lastForm["vnNumber"])
}

func TestToggleTreeNodePersistsFlag(t *testing.T) {
	up := &fakeUpstream{forest: testForest()}
	router, state := newTestRouter(t, up)

	payload, _ := json.Marshal(map[string]any{"kind": "partner", "id": "p1", "expanded": true})
	req := httptest.NewRequest(http.MethodPost, "/api/tree/toggle", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	adminCookies(req)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	flags, err := state.Flags(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.True(t, flags["treeview_expanded_partner_p1"])
}

func TestToggleTreeNodeRequiresSession(t *testing.T) {
	up := &fakeUpstream{forest: testForest()}
	router, _ := newTestRouter(t, up)

	payload, _ := json.Marshal(map[string]any{"kind": "partner", "id": "p1", "expanded": true})
	req := httptest.NewRequest(http.MethodPost, "/api/tree/toggle", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
