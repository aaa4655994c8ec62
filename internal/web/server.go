// Package web serves the portfolio pages, the contact form and the admin
// dashboard over gin.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Submitter accepts contact form submissions.
type Submitter interface {
	Submit(ctx context.Context, sub contact.Submission) (*contact.Outcome, error)
}

type Deps struct {
	Pages     *Composer
	Intake    Submitter
	Admin     *Admin // nil disables the dashboard and visitor tracking
	StaticDir string // empty disables /static
	Logger    *zap.Logger
}

type server struct {
	pages  *Composer
	intake Submitter
	logger *zap.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(d Deps) (*gin.Engine, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &server{pages: d.Pages, intake: d.Intake, logger: d.Logger}

	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(d.Logger))
	if d.Admin != nil {
		r.Use(d.Admin.Track())
	}
	r.SetHTMLTemplate(tmpl)

	if d.StaticDir != "" {
		r.Static("/static", d.StaticDir)
	}

	r.GET("/", s.home)
	r.POST("/", s.submitHome)
	r.GET("/about/", s.about)
	r.GET("/projects/", s.projects)
	r.GET("/projects/:slug/", s.project)
	r.GET("/skills/", s.skills)
	r.GET("/experience/", s.experience)
	r.GET("/contact/", s.contactForm)
	r.POST("/contact/", s.submitContact)
	r.GET("/contact/success/", s.contactSuccess)
	r.GET("/privacy", s.privacy)

	if d.Admin != nil {
		d.Admin.routes(r)
	}

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "404.html", gin.H{"title": "Not Found"})
	})
	return r, nil
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"monthYear": monthYear,
		"year":      yearOf,
		"stamp":     stamp,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func monthYear(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("Jan 2006")
}

func yearOf(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006")
}

func stamp(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// contactForm carries submitted values and field errors back to the page.
type contactForm struct {
	Values contact.Submission
	Errors map[string]string
}

func (s *server) home(c *gin.Context) {
	s.renderHome(c, contactForm{})
}

func (s *server) renderHome(c *gin.Context, form contactForm) {
	page, err := s.pages.Home(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "home.html", gin.H{
		"title":  "Home",
		"page":   page,
		"form":   form,
		"action": "/",
	})
}

func (s *server) submitHome(c *gin.Context) {
	form, ok := s.submit(c)
	if ok {
		c.Redirect(http.StatusFound, "/#contact")
		return
	}
	if form != nil {
		s.renderHome(c, *form)
	}
}

func (s *server) about(c *gin.Context) {
	c.HTML(http.StatusOK, "about.html", gin.H{
		"title": "About",
		"about": s.pages.About(),
	})
}

func (s *server) projects(c *gin.Context) {
	projects, err := s.pages.Projects(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "projects.html", gin.H{
		"title":    "Projects",
		"projects": projects,
	})
}

func (s *server) project(c *gin.Context) {
	page, err := s.pages.Project(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "project.html", gin.H{
		"title": page.Project.Title,
		"page":  page,
	})
}

func (s *server) skills(c *gin.Context) {
	page, err := s.pages.Skills(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "skills.html", gin.H{
		"title": "Skills",
		"page":  page,
	})
}

func (s *server) experience(c *gin.Context) {
	experiences, err := s.pages.Experience(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "experience.html", gin.H{
		"title":       "Experience",
		"experiences": experiences,
	})
}

func (s *server) contactForm(c *gin.Context) {
	s.renderContact(c, contactForm{})
}

func (s *server) renderContact(c *gin.Context, form contactForm) {
	c.HTML(http.StatusOK, "contact.html", gin.H{
		"title":  "Contact",
		"form":   form,
		"action": "/contact/",
	})
}

func (s *server) submitContact(c *gin.Context) {
	form, ok := s.submit(c)
	if ok {
		c.Redirect(http.StatusFound, "/contact/success/")
		return
	}
	if form != nil {
		s.renderContact(c, *form)
	}
}

func (s *server) contactSuccess(c *gin.Context) {
	c.HTML(http.StatusOK, "contact_success.html", gin.H{"title": "Message Sent"})
}

func (s *server) privacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacy.html", gin.H{"title": "Privacy Policy"})
}

// submit runs the contact intake for the posted form. It reports ok on
// success. On a validation failure it returns the form to re-render; any
// other failure has already been answered.
func (s *server) submit(c *gin.Context) (*contactForm, bool) {
	var sub contact.Submission
	if err := c.ShouldBind(&sub); err != nil {
		c.String(http.StatusBadRequest, "malformed form")
		return nil, false
	}

	_, err := s.intake.Submit(c.Request.Context(), sub)
	if err == nil {
		return nil, true
	}

	var invalid *contact.ValidationError
	if errors.As(err, &invalid) {
		sub.Normalize()
		return &contactForm{Values: sub, Errors: invalid.Fields}, false
	}
	s.fail(c, err)
	return nil, false
}

// fail answers a request whose page could not be built. Missing records
// become 404; anything else is logged and answered with 500.
func (s *server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, store.ErrNotFound) {
		c.HTML(http.StatusNotFound, "404.html", gin.H{"title": "Not Found"})
		return
	}
	s.logger.Error("Failed to build page",
		zap.String("request_id", logging.RequestID(c)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{"title": "Server Error"})
}
