package render

import (
	"strings"
	"testing"

	"outreachbot/internal/outreach"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestRenderPerCategoryTemplates(t *testing.T) {
	t.Parallel()
	r := testRenderer(t)

	tests := []struct {
		category outreach.Category
		wantID   string
	}{
		{outreach.CategoryPublication, "publication"},
		{outreach.CategoryInfluencer, "influencer"},
		{outreach.CategoryPlatform, "platform"},
		{outreach.CategoryCommunity, "community"},
		{outreach.CategoryPodcast, "publication"}, // no dedicated template
		{outreach.Category("something-else"), "publication"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.category), func(t *testing.T) {
			t.Parallel()
			msg, err := r.Render(outreach.Contact{
				Name:         "Jane Smith",
				Email:        "jane@techdaily.io",
				Organization: "TechDaily",
				Category:     tt.category,
			})
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if msg.TemplateID != tt.wantID {
				t.Fatalf("TemplateID = %q, want %q", msg.TemplateID, tt.wantID)
			}
			if msg.Subject == "" || strings.HasPrefix(msg.Body, "Subject:") {
				t.Fatalf("subject not split from body: subject=%q", msg.Subject)
			}
			if !strings.Contains(msg.Body, "Jane Smith") {
				t.Fatal("body missing greeting name")
			}
		})
	}
}

func TestRenderOptOutLink(t *testing.T) {
	t.Parallel()
	r := testRenderer(t)
	msg, err := r.Render(outreach.Contact{
		Name:         "Jane Smith",
		Email:        "jane+news@techdaily.io",
		Organization: "TechDaily",
		Category:     outreach.CategoryPublication,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "opt-out.html?email=jane%2Bnews%40techdaily.io&auto=true"
	if !strings.Contains(msg.Body, want) {
		t.Fatalf("body missing personalized opt-out link %q", want)
	}
}

func TestRenderDeterministic(t *testing.T) {
	t.Parallel()
	r := testRenderer(t)
	c := outreach.Contact{
		Name:         "Jane Smith",
		Email:        "jane@techdaily.io",
		Organization: "TechCrunch",
		Category:     outreach.CategoryPublication,
	}
	a, err := r.Render(c)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := r.Render(c)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if a != b {
		t.Fatal("re-rendering the same contact produced different output")
	}
}

func TestRenderFocusArea(t *testing.T) {
	t.Parallel()
	r := testRenderer(t)
	msg, err := r.Render(outreach.Contact{
		Name:         "Jane Smith",
		Email:        "jane@techcrunch.com",
		Organization: "TechCrunch",
		Category:     outreach.CategoryPublication,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(msg.Body, "startup funding and innovation") {
		t.Fatal("body missing organization-specific focus area")
	}
}

func TestGreeting(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"Jane Smith", "jane@x.io", "Jane Smith"},
		{"", "info@x.io", "Hello team"},
		{"Unknown", "contact@x.io", "Hello team"},
		{"unknown", "press@x.io", "Hello team"},
		{"", "jane@x.io", "Hello"},
		{"None", "partnerships@x.io", "Hello team"},
	}
	for _, tt := range tests {
		got := greeting(outreach.Contact{Name: tt.name, Email: tt.email})
		if got != tt.want {
			t.Errorf("greeting(%q, %q) = %q, want %q", tt.name, tt.email, got, tt.want)
		}
	}
}
