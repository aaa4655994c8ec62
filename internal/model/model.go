// Package model holds the portfolio records. Optional attributes are pointers
// or blank strings; a column missing from the deployed schema leaves its field
// at the zero value.
package model

import (
	"strconv"
	"strings"
	"time"
)

type Project struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	IntroBlurb  string    `json:"intro_blurb"`
	Description string    `json:"description"`
	TechStack   string    `json:"tech_stack"`
	GithubURL   string    `json:"github_url,omitempty"`
	LiveURL     string    `json:"live_url,omitempty"`
	IsFeatured  bool      `json:"is_featured"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}

// Technologies splits the free-text tech stack on commas.
func (p Project) Technologies() []string {
	return splitList(p.TechStack, ",")
}

// Key is the URL path segment identifying the project: its slug when set,
// otherwise its id.
func (p Project) Key() string {
	if p.Slug != "" {
		return p.Slug
	}
	return formatID(p.ID)
}

type Skill struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Level     string `json:"level,omitempty"`
	SortOrder int    `json:"sort_order"`
}

type Experience struct {
	ID           int64      `json:"id"`
	Role         string     `json:"role"`
	Organization string     `json:"organization"`
	Location     string     `json:"location,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	IsCurrent    bool       `json:"is_current"`
	Description  string     `json:"description"`
	SortOrder    int        `json:"sort_order"`
}

// Bullets returns the non-empty description lines.
func (e Experience) Bullets() []string {
	return splitList(e.Description, "\n")
}

// Ends returns the end date to display; current positions have none.
func (e Experience) Ends() *time.Time {
	if e.IsCurrent {
		return nil
	}
	return e.EndDate
}

type Education struct {
	ID          int64      `json:"id"`
	Institution string     `json:"institution"`
	Degree      string     `json:"degree"`
	Field       string     `json:"field,omitempty"`
	StartYear   *time.Time `json:"start_year,omitempty"`
	EndYear     *time.Time `json:"end_year,omitempty"`
	GPA         string     `json:"gpa,omitempty"`
	Focus       string     `json:"focus"`
	SortOrder   int        `json:"sort_order"`
}

// FocusAreas splits the comma-separated focus list.
func (e Education) FocusAreas() []string {
	return splitList(e.Focus, ",")
}

type Certificate struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Issuer        string     `json:"issuer"`
	IssuedDate    *time.Time `json:"issued_date,omitempty"`
	CredentialURL string     `json:"credential_url,omitempty"`
	SortOrder     int        `json:"sort_order"`
}

type Resume struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	FileURL   string    `json:"file_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ContactMessage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
