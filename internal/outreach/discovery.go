package outreach

import (
	"context"
	"errors"
	"fmt"

	logx "outreachbot/pkg/logx"
)

// ErrNoDiscoverer is returned by RunDiscovery when no scraper collaborator
// has been installed.
var ErrNoDiscoverer = errors.New("no discoverer configured")

// RunDiscovery iterates the target list, scrapes each target that is past
// its re-scrape cooldown, and merges newly found contacts into the store
// with case-insensitive email dedup.
//
// A single target's failure is logged and does not abort the pass. Stores
// are persisted once at the end of the full pass, so a crash mid-pass loses
// that pass's progress but never corrupts prior state.
func (e *Engine) RunDiscovery(ctx context.Context) error {
	if e.discoverer == nil {
		return ErrNoDiscoverer
	}

	known := make(map[string]struct{}, len(e.contacts))
	for _, c := range e.contacts {
		known[NormalizeEmail(c.Email)] = struct{}{}
	}

	added := 0
	scraped := 0
	for i := range e.targets {
		if err := ctx.Err(); err != nil {
			break
		}
		t := &e.targets[i]

		if t.LastScraped != nil && e.now().Sub(*t.LastScraped) < e.opts.ScrapeCooldown {
			e.log.Debug("skipping target, recently scraped",
				logx.String("target", t.Name),
				logx.Time("last_scraped", *t.LastScraped))
			continue
		}

		if scraped > 0 {
			delay := e.randDelay(e.opts.MinScrapeDelay, e.opts.MaxScrapeDelay)
			e.log.Debug("pausing before next target", logx.Duration("delay", delay))
			e.sleep(ctx, delay)
			if ctx.Err() != nil {
				break
			}
		}

		candidates, err := e.discoverer.Discover(ctx, *t)
		scraped++
		if err != nil {
			e.log.Warn("target scrape failed",
				logx.String("target", t.Name),
				logx.String("website", t.Website),
				logx.Err(err))
			continue
		}

		fresh := 0
		for _, c := range candidates {
			key := NormalizeEmail(c.Email)
			if key == "" {
				continue
			}
			if _, dup := known[key]; dup {
				continue
			}
			known[key] = struct{}{}
			e.contacts = append(e.contacts, c)
			fresh++
		}
		added += fresh

		now := e.now()
		t.LastScraped = &now
		t.ContactsFound = len(candidates)

		e.log.Info("target scraped",
			logx.String("target", t.Name),
			logx.Int("candidates", len(candidates)),
			logx.Int("new", fresh))
	}

	if err := e.store.SaveContacts(e.contacts); err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}
	if err := e.store.SaveTargets(e.targets); err != nil {
		return fmt.Errorf("save targets: %w", err)
	}

	e.log.Info("discovery pass complete",
		logx.Int("targets_scraped", scraped),
		logx.Int("contacts_added", added),
		logx.Int("contacts_total", len(e.contacts)))
	return nil
}
