package web

import (
	"context"
	"html/template"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/model"
	"github.com/Zachkp/portfolio/internal/store"
)

// Content is the read side of the content store used to build pages.
type Content interface {
	ListProjects(ctx context.Context, q store.ProjectQuery) ([]model.Project, error)
	ProjectByKey(ctx context.Context, key string) (*model.Project, error)
	ListSkills(ctx context.Context) ([]model.Skill, error)
	ListExperiences(ctx context.Context) ([]model.Experience, error)
	ListEducation(ctx context.Context) ([]model.Education, error)
	ListCertificates(ctx context.Context) ([]model.Certificate, error)
	LatestResume(ctx context.Context) (*model.Resume, error)
}

// HomePage is the single-page composite served at /.
type HomePage struct {
	About         string
	SkillSections []content.SkillSection
	Experiences   []model.Experience
	Education     []model.Education
	Certificates  []model.Certificate
	Projects      []model.Project
	Resume        *model.Resume
}

type SkillsPage struct {
	Sections []content.SkillSection
	Skills   []model.Skill
}

type ProjectPage struct {
	Project      *model.Project
	Description  template.HTML
	Technologies []string
}

// Composer builds one view model per page from the content store.
type Composer struct {
	content   Content
	skills    content.SkillGrouper
	markdown  *content.Markdown
	homeLimit int
}

func NewComposer(c Content, grouper content.SkillGrouper, md *content.Markdown, homeLimit int) *Composer {
	return &Composer{
		content:   c,
		skills:    grouper,
		markdown:  md,
		homeLimit: homeLimit,
	}
}

func (p *Composer) Home(ctx context.Context) (*HomePage, error) {
	skills, err := p.content.ListSkills(ctx)
	if err != nil {
		return nil, err
	}
	experiences, err := p.content.ListExperiences(ctx)
	if err != nil {
		return nil, err
	}
	education, err := p.content.ListEducation(ctx)
	if err != nil {
		return nil, err
	}
	certificates, err := p.content.ListCertificates(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := p.content.ListProjects(ctx, store.ProjectQuery{FeaturedOnly: true, Limit: p.homeLimit})
	if err != nil {
		return nil, err
	}
	resume, err := p.content.LatestResume(ctx)
	if err != nil {
		return nil, err
	}

	return &HomePage{
		About:         AboutMe,
		SkillSections: p.skills.Group(skills),
		Experiences:   experiences,
		Education:     education,
		Certificates:  certificates,
		Projects:      projects,
		Resume:        resume,
	}, nil
}

func (p *Composer) About() string {
	return AboutMe
}

// Projects lists every featured project.
func (p *Composer) Projects(ctx context.Context) ([]model.Project, error) {
	return p.content.ListProjects(ctx, store.ProjectQuery{FeaturedOnly: true})
}

// Project returns store.ErrNotFound when no project matches key.
func (p *Composer) Project(ctx context.Context, key string) (*ProjectPage, error) {
	project, err := p.content.ProjectByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	description, err := p.markdown.Render(project.Description)
	if err != nil {
		return nil, err
	}
	return &ProjectPage{
		Project:      project,
		Description:  description,
		Technologies: project.Technologies(),
	}, nil
}

func (p *Composer) Skills(ctx context.Context) (*SkillsPage, error) {
	skills, err := p.content.ListSkills(ctx)
	if err != nil {
		return nil, err
	}
	return &SkillsPage{Sections: p.skills.Group(skills), Skills: skills}, nil
}

func (p *Composer) Experience(ctx context.Context) ([]model.Experience, error) {
	return p.content.ListExperiences(ctx)
}
