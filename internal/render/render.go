// Package render produces the personalized outreach message for a contact.
// Rendering is deterministic: the same contact always yields the same
// message for a given template set.
package render

import (
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"outreachbot/internal/outreach"
)

// Config carries the renderer's site-level settings.
type Config struct {
	SiteURL    string // e.g. https://www.firstcityfoundry.com
	OptOutBase string // opt-out page; the recipient address is appended
}

// Renderer selects a template by contact category and fills it in. It
// implements outreach.Renderer.
type Renderer struct {
	cfg  Config
	tmpl map[string]*template.Template
}

type templateData struct {
	Greeting     string
	Organization string
	FocusArea    string
	SiteURL      string
	OptOutLink   string
}

// New parses the built-in template set.
func New(cfg Config) (*Renderer, error) {
	if cfg.SiteURL == "" {
		cfg.SiteURL = "https://www.firstcityfoundry.com"
	}
	if cfg.OptOutBase == "" {
		cfg.OptOutBase = cfg.SiteURL + "/opt-out.html"
	}

	r := &Renderer{cfg: cfg, tmpl: make(map[string]*template.Template, len(templates))}
	for id, text := range templates {
		t, err := template.New(id).Parse(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", id, err)
		}
		r.tmpl[id] = t
	}
	return r, nil
}

// Render produces the message for a contact. Unknown categories fall back
// to the publication template.
func (r *Renderer) Render(c outreach.Contact) (outreach.Message, error) {
	id := string(c.Category)
	t, ok := r.tmpl[id]
	if !ok {
		id = string(outreach.CategoryPublication)
		t = r.tmpl[id]
	}

	data := templateData{
		Greeting:     greeting(c),
		Organization: c.Organization,
		FocusArea:    focusArea(c.Organization),
		SiteURL:      r.cfg.SiteURL,
		OptOutLink:   r.optOutLink(c.Email),
	}

	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return outreach.Message{}, fmt.Errorf("render %s: %w", id, err)
	}

	subject, body := splitSubject(b.String())
	return outreach.Message{Subject: subject, Body: body, TemplateID: id}, nil
}

// optOutLink builds the personalized unsubscribe URL.
func (r *Renderer) optOutLink(email string) string {
	return r.cfg.OptOutBase + "?email=" + url.QueryEscape(email) + "&auto=true"
}

// greeting picks a salutation; generic inbox addresses get a team greeting
// instead of a bogus personal name.
func greeting(c outreach.Contact) string {
	name := strings.TrimSpace(c.Name)
	switch strings.ToLower(name) {
	case "", "unknown", "null", "none":
		local := c.Email
		if i := strings.IndexByte(local, '@'); i > 0 {
			local = local[:i]
		}
		local = strings.ToLower(local)
		for _, prefix := range genericPrefixes {
			if strings.Contains(local, prefix) {
				return "Hello team"
			}
		}
		return "Hello"
	}
	return name
}

var genericPrefixes = []string{
	"info", "contact", "support", "help", "admin",
	"hello", "hi", "team", "mail", "office",
	"press", "media", "news", "editor", "tips",
	"marketing", "sales", "business", "partnerships",
	"events", "community", "careers",
}

// focusArea maps well-known organizations to the wording used in the pitch.
func focusArea(organization string) string {
	org := strings.ToLower(organization)
	for key, area := range focusAreas {
		if strings.Contains(org, key) {
			return area
		}
	}
	return "entrepreneurship and startup development"
}

var focusAreas = map[string]string{
	"techcrunch":    "startup funding and innovation",
	"product hunt":  "product launches and startup discovery",
	"hacker news":   "developer community and tech discussions",
	"indie hackers": "solo founders and bootstrapping",
	"angellist":     "startup funding and talent",
	"wellfound":     "startup funding and talent",
	"dev.to":        "developer community and technical content",
	"github":        "open source and developer tools",
	"venturebeat":   "AI and enterprise technology",
	"entrepreneur":  "small business and entrepreneurship",
}

// splitSubject separates the "Subject: ..." first line from the body.
func splitSubject(msg string) (string, string) {
	lines := strings.SplitN(msg, "\n", 2)
	subject := "Partnership Opportunity: Buildly Labs Foundry"
	body := msg
	if strings.HasPrefix(lines[0], "Subject: ") {
		subject = strings.TrimPrefix(lines[0], "Subject: ")
		if len(lines) > 1 {
			body = strings.TrimLeft(lines[1], "\n")
		} else {
			body = ""
		}
	}
	return subject, body
}

var _ outreach.Renderer = (*Renderer)(nil)
