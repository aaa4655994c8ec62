package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/model"
	"github.com/Zachkp/portfolio/internal/store"
)

type fakeAdminStore struct {
	visits []store.Visit
	cutoff time.Time
}

func (f *fakeAdminStore) RecordVisit(_ context.Context, v store.Visit) error {
	f.visits = append(f.visits, v)
	return nil
}

func (f *fakeAdminStore) PurgeVisitsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, nil
}

func (f *fakeAdminStore) RecentVisits(_ context.Context, _ int) ([]store.Visit, error) {
	return f.visits, nil
}

func (f *fakeAdminStore) Stats(_ context.Context, _ time.Time) (*store.Stats, error) {
	return &store.Stats{
		TotalVisitors:  int64(len(f.visits)),
		UniqueVisitors: 1,
		TotalMessages:  2,
		TopPaths:       []store.PathStat{{Path: "/", Views: 4}},
	}, nil
}

func (f *fakeAdminStore) ListContactMessages(_ context.Context, _ int) ([]model.ContactMessage, error) {
	return []model.ContactMessage{{ID: 1, Name: "Jane", Email: "jane@x.com", Message: "Hello from the inbox"}}, nil
}

func login(t *testing.T, app *testApp) *http.Cookie {
	t.Helper()
	w := app.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"s3cret"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))

	for _, c := range w.Result().Cookies() {
		if c.Name == adminCookie {
			return c
		}
	}
	t.Fatal("no admin cookie set")
	return nil
}

func authed(path string, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(cookie)
	return req
}

func TestTrackingRecordsHashedVisits(t *testing.T) {
	app := newTestApp(t, sampleContent(), true)

	req := httptest.NewRequest(http.MethodGet, "/about/", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	req.Header.Set("User-Agent", "test-agent")
	app.do(req)

	require.Len(t, app.visits.visits, 1)
	v := app.visits.visits[0]
	assert.Equal(t, "/about/", v.Path)
	assert.Equal(t, "test-agent", v.UserAgent)
	assert.Len(t, v.HashedIP, 16)
	assert.NotContains(t, v.HashedIP, "203.0.113.7")
}

func TestTrackingSkipsDNTAndPrivatePaths(t *testing.T) {
	app := newTestApp(t, sampleContent(), true)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("DNT", "1")
	app.do(req)
	app.get("/privacy")
	app.get("/admin/login")

	assert.Empty(t, app.visits.visits)
}

func TestHashIPIsStable(t *testing.T) {
	a, err := NewAdmin(&fakeAdminStore{}, AdminOptions{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, a.hashIP("198.51.100.1"), a.hashIP("198.51.100.1"))
	assert.NotEqual(t, a.hashIP("198.51.100.1"), a.hashIP("198.51.100.2"))
}

func TestDashboardRequiresLogin(t *testing.T) {
	app := newTestApp(t, sampleContent(), true)

	w := app.get("/admin/dashboard")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	req := authed("/admin/dashboard", &http.Cookie{Name: adminCookie, Value: "forged"})
	w = app.do(req)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t, sampleContent(), true)
	w := app.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	a, err := NewAdmin(&fakeAdminStore{}, AdminOptions{Username: "admin"}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, a.validCredentials("admin", ""))
}

func TestDashboardAndInbox(t *testing.T) {
	app := newTestApp(t, sampleContent(), true)
	cookie := login(t, app)

	w := app.do(authed("/admin/dashboard", cookie))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Unique visitors")

	w = app.do(authed("/admin/messages", cookie))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hello from the inbox")

	w = app.do(authed("/admin/visitors", cookie))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatsAPIAndExport(t *testing.T) {
	app := newTestApp(t, sampleContent(), true)
	cookie := login(t, app)

	w := app.do(authed("/admin/api/stats", cookie))
	require.Equal(t, http.StatusOK, w.Code)
	var stats store.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(2), stats.TotalMessages)
	assert.Equal(t, []store.PathStat{{Path: "/", Views: 4}}, stats.TopPaths)

	w = app.do(authed("/admin/export/stats", cookie))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=admin-stats.json", w.Header().Get("Content-Disposition"))
}

func TestLogoutClearsCookie(t *testing.T) {
	app := newTestApp(t, sampleContent(), true)
	w := app.get("/admin/logout")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), adminCookie+"=;")
}

func TestPurgeUsesRetention(t *testing.T) {
	st := &fakeAdminStore{}
	a, err := NewAdmin(st, AdminOptions{Retention: 48 * time.Hour}, zap.NewNop())
	require.NoError(t, err)
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	n, err := a.Purge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, now.Add(-48*time.Hour), st.cutoff)
}

func TestPurgeDisabledWithoutRetention(t *testing.T) {
	st := &fakeAdminStore{}
	a, err := NewAdmin(st, AdminOptions{}, zap.NewNop())
	require.NoError(t, err)

	n, err := a.Purge(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, st.cutoff.IsZero())
}
