// Package automation runs the unattended daily outreach cycle. It wires a
// cron schedule to a full discover/compose/send run, watches the opt-out
// inbox file, and reports liveness to systemd when running under it.
package automation

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"outreachbot/internal/config"
	"outreachbot/internal/outreach"
	"outreachbot/pkg/logx"
)

// RunFunc executes one full outreach cycle.
type RunFunc func(ctx context.Context) (outreach.Summary, error)

// OptOutFunc records one opt-out request.
type OptOutFunc func(email, reason string) error

// Reporter receives run outcomes. Optional.
type Reporter interface {
	RunSummary(sum outreach.Summary, started time.Time)
	Alert(msg string)
}

// Daemon schedules outreach runs and consumes the opt-out inbox.
type Daemon struct {
	cfg      config.AutomationConfig
	run      RunFunc
	optOut   OptOutFunc
	reporter Reporter
	log      logx.Logger

	mu      sync.Mutex
	running bool
}

func New(cfg config.AutomationConfig, run RunFunc, optOut OptOutFunc, log logx.Logger) *Daemon {
	return &Daemon{cfg: cfg, run: run, optOut: optOut, log: log}
}

// SetReporter attaches an optional run reporter.
func (d *Daemon) SetReporter(r Reporter) { d.reporter = r }

// Run blocks until ctx is cancelled. It installs the cron schedule,
// watches the opt-out inbox, and keeps the systemd watchdog fed.
func (d *Daemon) Run(ctx context.Context) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser.Parse(d.cfg.Schedule)
	if err != nil {
		return fmt.Errorf("automation schedule %q: %w", d.cfg.Schedule, err)
	}

	c := cron.New(cron.WithParser(parser))
	c.Schedule(sched, cron.FuncJob(func() { d.cycle(ctx) }))

	var wg sync.WaitGroup
	if d.cfg.OptOutInbox != "" {
		// Drain anything that arrived while we were down.
		d.drainInbox()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.watchInbox(ctx); err != nil {
				d.log.Error("opt-out inbox watcher stopped", logx.Err(err))
			}
		}()
	}

	c.Start()
	d.log.Info("automation started",
		logx.String("schedule", d.cfg.Schedule),
		logx.String("optout_inbox", d.cfg.OptOutInbox))

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.feedWatchdog(ctx)
	}()

	<-ctx.Done()
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		d.log.Warn("cron jobs still running at shutdown")
	}
	wg.Wait()
	d.log.Info("automation stopped")
	return nil
}

// cycle runs one scheduled pass. Overlapping triggers are skipped rather
// than queued.
func (d *Daemon) cycle(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		d.log.Warn("previous run still in progress, skipping trigger")
		return
	}
	d.running = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	started := time.Now()
	d.log.Info("scheduled outreach run starting")
	sum, err := d.run(ctx)
	if err != nil {
		d.log.Error("scheduled outreach run failed", logx.Err(err))
		if d.reporter != nil {
			d.reporter.Alert("Outreach run failed: " + err.Error())
		}
		return
	}
	d.log.Info("scheduled outreach run finished",
		logx.Int("sent", sum.Sent),
		logx.Int("failed", sum.Failed),
		logx.Int("remaining", sum.Remaining),
		logx.Duration("took", time.Since(started)))
	if d.reporter != nil {
		d.reporter.RunSummary(sum, started)
	}
}

// watchInbox follows the opt-out inbox file. Writes are debounced because
// editors and web hooks land partial writes.
func (d *Daemon) watchInbox(ctx context.Context) error {
	dir := filepath.Dir(d.cfg.OptOutInbox)
	file := filepath.Base(d.cfg.OptOutInbox)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(250*time.Millisecond, d.drainInbox)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) == file && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce()
			}
		case <-w.Errors:
			// keep watching
		}
	}
}

// drainInbox consumes the inbox file: each line is "email" or
// "email,reason". The file is truncated after a clean pass so requests
// are processed once.
func (d *Daemon) drainInbox() {
	f, err := os.Open(d.cfg.OptOutInbox)
	if err != nil {
		if !os.IsNotExist(err) {
			d.log.Warn("opt-out inbox open failed", logx.Err(err))
		}
		return
	}

	var processed, failed int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		email, reason, _ := strings.Cut(line, ",")
		email = strings.TrimSpace(email)
		reason = strings.TrimSpace(reason)
		if reason == "" {
			reason = "inbox request"
		}
		if err := d.optOut(email, reason); err != nil {
			d.log.Warn("opt-out request failed", logx.String("email", email), logx.Err(err))
			failed++
			continue
		}
		processed++
	}
	scanErr := sc.Err()
	f.Close()
	if scanErr != nil {
		d.log.Warn("opt-out inbox read failed", logx.Err(scanErr))
		return
	}
	if processed == 0 && failed == 0 {
		return
	}
	if failed == 0 {
		if err := os.Truncate(d.cfg.OptOutInbox, 0); err != nil {
			d.log.Warn("opt-out inbox truncate failed", logx.Err(err))
		}
	}
	d.log.Info("opt-out inbox drained", logx.Int("processed", processed), logx.Int("failed", failed))
}

// feedWatchdog pings systemd at half the configured watchdog interval.
// A no-op outside systemd or with the watchdog disabled.
func (d *Daemon) feedWatchdog(ctx context.Context) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	t := time.NewTicker(interval / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}
	}
}
