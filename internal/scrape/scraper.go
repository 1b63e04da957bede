// Package scrape implements best-effort contact discovery for a target
// website: it fetches the pages most likely to list contact addresses and
// extracts emails plus name/role guesses from the page text.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"outreachbot/internal/outreach"
	logx "outreachbot/pkg/logx"
)

// Config tunes one scrape session.
type Config struct {
	HTTPTimeout    time.Duration
	RequestsPerSec float64
	MaxPerTarget   int
	UserAgent      string
}

// Scraper fetches and extracts contacts. Outbound requests are paced with a
// shared rate limiter so a session never hammers a host, on top of the
// engine's inter-target delays.
type Scraper struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     Config
	log     logx.Logger
}

// New builds a scraper. It implements outreach.Discoverer.
func New(cfg Config, log logx.Logger) *Scraper {
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 15 * time.Second
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 0.25
	}
	if cfg.MaxPerTarget <= 0 {
		cfg.MaxPerTarget = 4
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Scraper{
		client:  &http.Client{Timeout: cfg.HTTPTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		cfg:     cfg,
		log:     log,
	}
}

// commonPaths are tried for every target.
var commonPaths = []string{
	"/contact", "/contact-us", "/about", "/about-us", "/team", "/staff",
	"/contributors", "/authors", "/press", "/media", "/partnerships",
	"/advertising", "/submit", "/tips",
}

// categoryPaths adds paths specific to the kind of organization.
var categoryPaths = map[outreach.Category][]string{
	outreach.CategoryPublication: {"/pitch", "/submit-story", "/tip-us", "/editorial", "/newsroom", "/contribute"},
	outreach.CategoryPlatform:    {"/partners", "/partnership", "/business", "/enterprise"},
	outreach.CategoryCommunity:   {"/organizers", "/moderators", "/events", "/speakers"},
	outreach.CategoryPodcast:     {"/guests", "/be-a-guest", "/sponsors"},
}

// Discover fetches a target's likely contact pages and returns the contacts
// found. Per-URL failures are swallowed; the pass is best-effort. Only a
// cancelled context is propagated as an error.
func (s *Scraper) Discover(ctx context.Context, target outreach.Target) ([]outreach.Contact, error) {
	urls, err := s.candidateURLs(target)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", target.Name, err)
	}

	var (
		contacts []outreach.Contact
		seen     = make(map[string]struct{})
	)
	for _, u := range urls {
		if len(contacts) >= s.cfg.MaxPerTarget {
			break
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return contacts, err
		}

		body, err := s.fetch(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return contacts, ctx.Err()
			}
			s.log.Debug("page fetch failed", logx.String("url", u), logx.Err(err))
			continue
		}

		for _, c := range extractContacts(body, target, u) {
			key := outreach.NormalizeEmail(c.Email)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			contacts = append(contacts, c)
			if len(contacts) >= s.cfg.MaxPerTarget {
				break
			}
		}
	}

	s.log.Info("scrape finished",
		logx.String("target", target.Name),
		logx.Int("pages", len(urls)),
		logx.Int("contacts", len(contacts)))
	return contacts, nil
}

func (s *Scraper) candidateURLs(target outreach.Target) ([]string, error) {
	base, err := url.Parse(target.Website)
	if err != nil {
		return nil, err
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid website %q", target.Website)
	}

	paths := append([]string{}, commonPaths...)
	paths = append(paths, categoryPaths[target.Category]...)

	urls := make([]string, 0, len(paths)+1)
	for _, p := range paths {
		ref, err := url.Parse(p)
		if err != nil {
			continue
		}
		urls = append(urls, base.ResolveReference(ref).String())
	}
	urls = append(urls, target.Website)
	return urls, nil
}

func (s *Scraper) fetch(ctx context.Context, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	// Contact pages are small; cap the read anyway.
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var _ outreach.Discoverer = (*Scraper)(nil)
