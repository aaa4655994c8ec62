package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/model"
	"github.com/Zachkp/portfolio/internal/schema"
	"github.com/Zachkp/portfolio/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeContent struct {
	projects []model.Project
	skills   []model.Skill
	exps     []model.Experience
	resume   *model.Resume
	err      error
	lastQ    store.ProjectQuery
}

func (f *fakeContent) ListProjects(_ context.Context, q store.ProjectQuery) ([]model.Project, error) {
	f.lastQ = q
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Project
	for _, p := range f.projects {
		if q.FeaturedOnly && !p.IsFeatured {
			continue
		}
		out = append(out, p)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeContent) ProjectByKey(_ context.Context, key string) (*model.Project, error) {
	for _, p := range f.projects {
		if p.Key() == key {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeContent) ListSkills(context.Context) ([]model.Skill, error) {
	return f.skills, f.err
}

func (f *fakeContent) ListExperiences(context.Context) ([]model.Experience, error) {
	return f.exps, f.err
}

func (f *fakeContent) ListEducation(context.Context) ([]model.Education, error) {
	return []model.Education{{Institution: "State University", Degree: "BSc", Focus: "Systems, Networks"}}, f.err
}

func (f *fakeContent) ListCertificates(context.Context) ([]model.Certificate, error) {
	return []model.Certificate{{Title: "CKA", Issuer: "CNCF"}}, f.err
}

func (f *fakeContent) LatestResume(context.Context) (*model.Resume, error) {
	return f.resume, f.err
}

type memMessages struct {
	saved []*model.ContactMessage
}

func (m *memMessages) CreateContactMessage(_ context.Context, msg *model.ContactMessage) error {
	msg.ID = int64(len(m.saved) + 1)
	m.saved = append(m.saved, msg)
	return nil
}

type failingMailer struct{}

func (failingMailer) Send(context.Context, contact.Email) error {
	return errors.New("smtp down")
}

func sampleContent() *fakeContent {
	start := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	return &fakeContent{
		projects: []model.Project{
			{ID: 1, Title: "Terminal Mail", Slug: "terminal-mail", Description: "## Features\n\nFuzzy search.", TechStack: "Go, Bubble Tea", IsFeatured: true},
			{ID: 2, Title: "Hidden Draft", Slug: "hidden-draft"},
		},
		skills: []model.Skill{
			{Name: "Teamwork", Category: "SP"},
			{Name: "Go", Category: "PL"},
			{Name: "Docker", Category: "TT"},
		},
		exps: []model.Experience{
			{Role: "Engineer", Organization: "Acme", StartDate: &start, IsCurrent: true, Description: "Built things\nShipped things"},
		},
		resume: &model.Resume{Title: "Resume", FileURL: "/static/resume.pdf"},
	}
}

type testApp struct {
	router   *gin.Engine
	content  *fakeContent
	messages *memMessages
	visits   *fakeAdminStore
}

func newTestApp(t *testing.T, c *fakeContent, withAdmin bool) *testApp {
	t.Helper()
	sch := schema.Default(config.DefaultSkillCategories)
	pages := NewComposer(c, content.NewSkillGrouper(sch), content.NewMarkdown(), 6)
	messages := &memMessages{}
	intake := contact.NewService(messages, failingMailer{}, contact.Options{Recipient: "owner@example.com"}, zap.NewNop())

	app := &testApp{content: c, messages: messages}
	deps := Deps{Pages: pages, Intake: intake, Logger: zap.NewNop()}
	if withAdmin {
		app.visits = &fakeAdminStore{}
		admin, err := NewAdmin(app.visits, AdminOptions{Username: "admin", Password: "s3cret", Retention: 24 * time.Hour}, zap.NewNop())
		require.NoError(t, err)
		deps.Admin = admin
	}

	router, err := NewRouter(deps)
	require.NoError(t, err)
	app.router = router
	return app
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func janeForm() url.Values {
	return url.Values{
		"name":    {"Jane"},
		"email":   {"jane@x.com"},
		"message": {"Hi"},
	}
}

func TestHomeComposesSections(t *testing.T) {
	app := newTestApp(t, sampleContent(), false)

	w := app.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, "Muay Thai")
	assert.Contains(t, body, "Terminal Mail")
	assert.NotContains(t, body, "Hidden Draft")
	assert.Contains(t, body, "/static/resume.pdf")
	assert.Contains(t, body, "Jun 2021")
	assert.Contains(t, body, "Shipped things")
	assert.Contains(t, body, "Systems")
	assert.Equal(t, store.ProjectQuery{FeaturedOnly: true, Limit: 6}, app.content.lastQ)

	pl := strings.Index(body, "Programming Languages")
	tt := strings.Index(body, "Tools &amp; Technologies")
	sp := strings.Index(body, "Soft Skills")
	require.True(t, pl >= 0 && tt >= 0 && sp >= 0)
	assert.Less(t, pl, tt)
	assert.Less(t, tt, sp)
}

func TestHomePostRedirectsToContactAnchor(t *testing.T) {
	app := newTestApp(t, sampleContent(), false)

	w := app.postForm("/", janeForm())
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/#contact", w.Header().Get("Location"))
	require.Len(t, app.messages.saved, 1)
	assert.Equal(t, "Jane", app.messages.saved[0].Name)
}

func TestHomePostInvalidRerendersWithErrors(t *testing.T) {
	app := newTestApp(t, sampleContent(), false)

	form := janeForm()
	form.Set("message", "")
	w := app.postForm("/", form)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="field-error"`)
	assert.Contains(t, w.Body.String(), `value="jane@x.com"`)
	assert.Empty(t, app.messages.saved)
}

func TestContactPostRedirectsToSuccess(t *testing.T) {
	app := newTestApp(t, sampleContent(), false)

	w := app.postForm("/contact/", janeForm())
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/contact/success/", w.Header().Get("Location"))
	assert.Len(t, app.messages.saved, 1)

	w = app.get("/contact/success/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Your message has been received")
}

func TestContactPostInvalidEmail(t *testing.T) {
	app := newTestApp(t, sampleContent(), false)

	form := janeForm()
	form.Set("email", "nope")
	w := app.postForm("/contact/", form)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="field-error"`)
	assert.Empty(t, app.messages.saved)
}

func TestContactGetRendersForm(t *testing.T) {
	app := newTestApp(t, sampleContent(), false)
	w := app.get("/contact/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/contact/"`)
}

func TestProjectDetail(t *testing.T) {
	app := newTestApp(t, sampleContent(), false)

	w := app.get("/projects/terminal-mail/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<h2 id="features">Features</h2>`)
	assert.Contains(t, w.Body.String(), "<li>Bubble Tea</li>")
}

func TestProjectDetailMissingIs404(t *testing.T) {
	app := newTestApp(t, sampleContent(), false)
	w := app.get("/projects/nope/")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found")
}

func TestProjectsListsFeaturedOnly(t *testing.T) {
	app := newTestApp(t, sampleContent(), false)
	w := app.get("/projects/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Terminal Mail")
	assert.NotContains(t, w.Body.String(), "Hidden Draft")
	assert.Equal(t, store.ProjectQuery{FeaturedOnly: true}, app.content.lastQ)
}

func TestSimplePages(t *testing.T) {
	app := newTestApp(t, sampleContent(), false)
	for path, want := range map[string]string{
		"/about/":      "Muay Thai",
		"/skills/":     "Programming Languages",
		"/experience/": "Built things",
		"/privacy":     "Privacy Policy",
	} {
		w := app.get(path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), want, path)
	}
}

func TestMissingTrailingSlashRedirects(t *testing.T) {
	app := newTestApp(t, sampleContent(), false)
	w := app.get("/about")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/about/", w.Header().Get("Location"))
}

func TestStoreErrorIs500(t *testing.T) {
	c := sampleContent()
	c.err = errors.New("database is locked")
	app := newTestApp(t, c, false)

	w := app.get("/")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went wrong")
}

func TestUnknownRouteIs404(t *testing.T) {
	app := newTestApp(t, sampleContent(), false)
	w := app.get("/nowhere")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	app := newTestApp(t, sampleContent(), false)
	req := httptest.NewRequest(http.MethodGet, "/about/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := app.do(req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}
