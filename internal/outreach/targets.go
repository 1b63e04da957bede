package outreach

import (
	"errors"
	"fmt"
	"strings"

	"outreachbot/pkg/logx"
)

// AddTarget registers an ad-hoc scrape target and persists the target list.
// Website is the identity: returns false without modification when a target
// with the same website is already known.
func (e *Engine) AddTarget(t Target) (bool, error) {
	t.Name = strings.TrimSpace(t.Name)
	t.Website = strings.TrimSpace(t.Website)
	if t.Name == "" {
		return false, errors.New("target name is empty")
	}
	if t.Website == "" {
		return false, errors.New("target website is empty")
	}
	if t.Category == "" {
		t.Category = CategoryPublication
	}
	if t.Priority <= 0 {
		t.Priority = 3
	}

	for _, cur := range e.targets {
		if strings.EqualFold(strings.TrimSpace(cur.Website), t.Website) {
			return false, nil
		}
	}

	e.targets = append(e.targets, t)
	if err := e.store.SaveTargets(e.targets); err != nil {
		return false, fmt.Errorf("save targets: %w", err)
	}
	e.log.Info("target added",
		logx.String("name", t.Name),
		logx.String("website", t.Website),
		logx.String("category", string(t.Category)))
	return true, nil
}

// DefaultTargets returns the seed target list used when the target store is
// empty: startup-focused publications, platforms, and communities.
func DefaultTargets() []Target {
	return []Target{
		{
			Name:           "TechCrunch",
			Website:        "https://techcrunch.com",
			Category:       CategoryPublication,
			FocusAreas:     []string{"startups", "funding", "AI", "enterprise"},
			ContactMethods: []string{"email", "twitter", "contact_form"},
			Priority:       5,
			Region:         "US/Global",
		},
		{
			Name:           "Product Hunt",
			Website:        "https://producthunt.com",
			Category:       CategoryPlatform,
			FocusAreas:     []string{"product_launches", "startups", "indie_makers"},
			ContactMethods: []string{"platform_message", "email"},
			Priority:       5,
			Region:         "US/Global",
		},
		{
			Name:           "Hacker News",
			Website:        "https://news.ycombinator.com",
			Category:       CategoryCommunity,
			FocusAreas:     []string{"tech", "startups", "programming", "entrepreneurship"},
			ContactMethods: []string{"submission", "comments"},
			Priority:       4,
			Region:         "US/Global",
		},
		{
			Name:           "AngelList (Wellfound)",
			Website:        "https://wellfound.com",
			Category:       CategoryPlatform,
			FocusAreas:     []string{"startups", "jobs", "funding", "accelerators"},
			ContactMethods: []string{"platform_message", "email"},
			Priority:       5,
			Region:         "US/Global",
		},
		{
			Name:           "Indie Hackers",
			Website:        "https://indiehackers.com",
			Category:       CategoryCommunity,
			FocusAreas:     []string{"solo_founders", "bootstrapping", "SaaS", "indie_makers"},
			ContactMethods: []string{"platform_message", "email"},
			Priority:       5,
			Region:         "US/Global",
		},
		{
			Name:           "VentureBeat AI",
			Website:        "https://venturebeat.com/ai/",
			Category:       CategoryPublication,
			FocusAreas:     []string{"AI", "machine_learning", "startups", "enterprise"},
			ContactMethods: []string{"email", "twitter"},
			Priority:       4,
			Region:         "US/Global",
		},
		{
			Name:           "First Round Review",
			Website:        "https://review.firstround.com",
			Category:       CategoryPublication,
			FocusAreas:     []string{"early_stage", "founders", "leadership", "growth"},
			ContactMethods: []string{"email", "twitter"},
			Priority:       5,
			Region:         "US/Global",
		},
		{
			Name:           "Dev.to",
			Website:        "https://dev.to",
			Category:       CategoryCommunity,
			FocusAreas:     []string{"developers", "programming", "startup_tools", "open_source"},
			ContactMethods: []string{"platform_message", "email"},
			Priority:       4,
			Region:         "US/Global",
		},
		{
			Name:           "GitHub Blog",
			Website:        "https://github.blog",
			Category:       CategoryPublication,
			FocusAreas:     []string{"open_source", "developers", "startups", "enterprise"},
			ContactMethods: []string{"email", "github"},
			Priority:       4,
			Region:         "US/Global",
		},
		{
			Name:           "The Startup Magazine",
			Website:        "https://thestartupmagazine.co.uk",
			Category:       CategoryPublication,
			FocusAreas:     []string{"UK_startups", "entrepreneurship", "small_business"},
			ContactMethods: []string{"email", "contact_form"},
			Priority:       3,
			Region:         "UK",
		},
		{
			Name:           "StartupGrind",
			Website:        "https://startupgrind.com",
			Category:       CategoryCommunity,
			FocusAreas:     []string{"global_community", "events", "founders"},
			ContactMethods: []string{"email", "platform_message"},
			Priority:       4,
			Region:         "US/Global",
		},
		{
			Name:           "Entrepreneur.com",
			Website:        "https://entrepreneur.com",
			Category:       CategoryPublication,
			FocusAreas:     []string{"entrepreneurship", "small_business", "startups"},
			ContactMethods: []string{"email", "contact_form"},
			Priority:       4,
			Region:         "US/Global",
		},
		{
			Name:           "Bootstrapped.fm",
			Website:        "https://bootstrapped.fm",
			Category:       CategoryPodcast,
			FocusAreas:     []string{"bootstrapping", "solo_founders", "SaaS"},
			ContactMethods: []string{"email", "twitter"},
			Priority:       4,
			Region:         "US/Global",
		},
		{
			Name:           "MicroConf",
			Website:        "https://microconf.com",
			Category:       CategoryCommunity,
			FocusAreas:     []string{"SaaS", "bootstrapping", "solo_founders"},
			ContactMethods: []string{"email", "contact_form"},
			Priority:       4,
			Region:         "US/Global",
		},
	}
}
