// Package app assembles the configured application: config, logger, store,
// engine, and collaborators. Commands in cmd/outreachbot are thin wrappers
// over App methods.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"outreachbot/internal/config"
	"outreachbot/internal/mail"
	"outreachbot/internal/notify"
	"outreachbot/internal/outreach"
	"outreachbot/internal/render"
	"outreachbot/internal/scrape"
	"outreachbot/internal/storage"
	"outreachbot/pkg/logx"
)

// App holds the wired application. Build with New, release with Close.
type App struct {
	Cfg    *config.Config
	Log    logx.Logger
	Store  storage.Store
	Engine *outreach.Engine

	// Notifier is nil when Telegram reporting is disabled or unconfigured.
	Notifier *notify.Notifier

	transportErr error
}

// New loads config, opens the store, and wires the engine with its
// collaborators. dataDir, when non-empty, overrides the configured data
// directory. A missing SMTP account is not fatal here; send paths check
// RequireTransport before dispatching.
func New(cfgPath, dataDir string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = cfg.DataDir
	}
	if cfg.Logging.FileEnabled && cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = filepath.Join(cfg.DataDir, "outreach.log")
	}

	log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.FileEnabled,
			Path:    cfg.Logging.FilePath,
		},
	})

	store, err := storage.Open(storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: cfg.Storage.BusyTimeout,
	}, log)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	eng, err := outreach.New(store, outreach.Options{
		MaxAttemptsPerContact: cfg.Limits.MaxAttemptsPerContact,
		MinPerOrg:             cfg.Limits.MinPerOrg,
		MaxPerOrg:             cfg.Limits.MaxPerOrg,
		ContactCooldown:       cfg.Limits.ContactCooldown,
		DomainCooldown:        cfg.Limits.DomainCooldown,
		MinSendDelay:          cfg.Limits.MinSendDelay,
		MaxSendDelay:          cfg.Limits.MaxSendDelay,
		ScrapeCooldown:        cfg.Scrape.Cooldown,
		MinScrapeDelay:        cfg.Scrape.MinDelay,
		MaxScrapeDelay:        cfg.Scrape.MaxDelay,
	}, log)
	if err != nil {
		store.Close()
		log.Close()
		return nil, err
	}

	eng.SetDiscoverer(scrape.New(scrape.Config{
		HTTPTimeout:    cfg.Scrape.HTTPTimeout,
		RequestsPerSec: cfg.Scrape.RequestsPerSec,
		MaxPerTarget:   cfg.Scrape.MaxPerTarget,
		UserAgent:      cfg.Scrape.UserAgent,
	}, log))

	renderer, err := render.New(render.Config{})
	if err != nil {
		store.Close()
		log.Close()
		return nil, fmt.Errorf("renderer: %w", err)
	}
	eng.SetRenderer(renderer)

	a := &App{Cfg: cfg, Log: log, Store: store, Engine: eng}

	sender, err := mail.New(cfg.Email)
	if err != nil {
		a.transportErr = err
		log.Debug("smtp transport unavailable", logx.Err(err))
	} else {
		eng.SetTransport(sender)
		eng.SetBCC(cfg.Email.BCC)
	}

	if cfg.Notifier.Enabled {
		n, err := notify.New(cfg.Notifier, log)
		if err != nil {
			log.Warn("telegram notifier disabled", logx.Err(err))
		} else {
			a.Notifier = n
		}
	}

	return a, nil
}

// RequireTransport reports why live sending is impossible, nil when it is
// configured. Dry runs never need it.
func (a *App) RequireTransport() error {
	return a.transportErr
}

// Close releases the store and flushes the log sinks.
func (a *App) Close() error {
	err := a.Store.Close()
	a.Log.Close()
	return err
}

// Stage selects eligible contacts and composes a new batch on top of the
// existing queue. Returns the number of entries added.
func (a *App) Stage(ctx context.Context) (int, error) {
	eligible := a.Engine.SelectEligible()
	if len(eligible) == 0 {
		return 0, nil
	}
	return a.Engine.ComposeBatch(ctx, eligible)
}

// FullRun is the unattended cycle: discover, stage, send everything. Used
// by the automate daemon and by --non-interactive --auto-send.
func (a *App) FullRun(ctx context.Context) (outreach.Summary, error) {
	if err := a.Engine.RunDiscovery(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return outreach.Summary{}, err
		}
		// A failed discovery pass still leaves previously known contacts
		// usable for sending.
		a.Log.Warn("discovery pass failed", logx.Err(err))
	}
	if _, err := a.Stage(ctx); err != nil {
		return outreach.Summary{}, err
	}
	return a.Engine.SendAllPending(ctx)
}

// Status writes a human-readable snapshot of the data files.
func (a *App) Status(w io.Writer) {
	var sent, failed int
	for _, entry := range a.Engine.Logbook() {
		switch entry.Status {
		case outreach.StatusSent:
			sent++
		case outreach.StatusFailed:
			failed++
		}
	}
	fmt.Fprintf(w, "Data directory:   %s\n", a.Cfg.DataDir)
	fmt.Fprintf(w, "Contacts:         %d\n", len(a.Engine.Contacts()))
	fmt.Fprintf(w, "Targets:          %d\n", len(a.Engine.Targets()))
	fmt.Fprintf(w, "Queued (staged):  %d\n", a.Engine.StagedCount())
	fmt.Fprintf(w, "Sent total:       %d\n", sent)
	fmt.Fprintf(w, "Failed total:     %d\n", failed)
	fmt.Fprintf(w, "Opt-outs:         %d\n", a.Engine.Registry().Len())
	fmt.Fprintf(w, "Eligible now:     %d\n", len(a.Engine.SelectEligible()))
	if a.transportErr != nil {
		fmt.Fprintf(w, "SMTP:             not configured (%v)\n", a.transportErr)
	} else {
		fmt.Fprintf(w, "SMTP:             %s:%d as %s\n", a.Cfg.Email.Host, a.Cfg.Email.Port, a.Cfg.Email.FromEmail)
	}
	fmt.Fprintf(w, "Schedule:         %s\n", a.Cfg.Automation.Schedule)
}
