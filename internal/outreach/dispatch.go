package outreach

import (
	"context"
	"errors"
	"fmt"
	"time"

	logx "outreachbot/pkg/logx"
)

// ErrNoTransport is returned by dispatch when no delivery collaborator has
// been installed.
var ErrNoTransport = errors.New("no transport configured")

type dispatchResult int

const (
	dispatchSent dispatchResult = iota
	dispatchFailed
	dispatchRefused
)

// dispatch performs the per-message transition: deliver the message, and on
// success mark the entry sent+approved, bump the contact's outreach count,
// and append a sent log record. On transport failure only a failed log
// record is appended; the contact stays eligible for a future attempt.
//
// The opt-out registry is re-checked immediately before transport even
// though the entry was filtered at staging time. A late opt-out is refused
// silently: not logged as failed, not counted as sent.
func (e *Engine) dispatch(ctx context.Context, p *Pending) dispatchResult {
	if e.registry.IsOptedOut(p.Contact.Email) {
		e.log.Warn("refusing send to opted-out recipient",
			logx.String("email", NormalizeEmail(p.Contact.Email)))
		return dispatchRefused
	}
	if e.dryRun {
		e.log.Info("[dry-run] would send",
			logx.String("email", p.Contact.Email),
			logx.String("subject", p.Message.Subject))
		return dispatchRefused
	}
	if e.transport == nil {
		e.log.Error("dispatch without transport", logx.Err(ErrNoTransport))
		return dispatchFailed
	}

	now := e.now()
	err := e.transport.Deliver(ctx, p.Message, p.Contact.Email, e.bccList())

	entry := LogEntry{
		Timestamp:    now,
		ContactName:  p.Contact.Name,
		ContactEmail: NormalizeEmail(p.Contact.Email),
		Organization: p.Contact.Organization,
		Subject:      p.Message.Subject,
		TemplateID:   p.Message.TemplateID,
	}

	if err != nil {
		entry.Status = StatusFailed
		entry.Error = err.Error()
		e.appendLog(entry)
		e.log.Error("send failed",
			logx.String("email", p.Contact.Email), logx.Err(err))
		return dispatchFailed
	}

	entry.Status = StatusSent
	e.appendLog(entry)

	p.Sent = true
	p.Approved = true
	e.touchContact(p.Contact.Email, now)

	e.log.Info("message sent",
		logx.String("email", p.Contact.Email),
		logx.String("organization", p.Contact.Organization),
		logx.String("template", p.Message.TemplateID))
	return dispatchSent
}

// touchContact records a successful send on the canonical contact record.
func (e *Engine) touchContact(email string, now time.Time) {
	key := NormalizeEmail(email)
	for i := range e.contacts {
		if NormalizeEmail(e.contacts[i].Email) == key {
			e.contacts[i].OutreachCount++
			t := now
			e.contacts[i].LastContact = &t
			e.contacts[i].ContactDate = &t
			return
		}
	}
}

func (e *Engine) appendLog(entry LogEntry) {
	e.logbook = append(e.logbook, entry)
	if err := e.store.AppendLog(entry); err != nil {
		// The in-memory copy still holds the record; surfacing the write
		// error is all that is possible mid-session.
		e.log.Error("append outreach log failed", logx.Err(err))
	}
}

func (e *Engine) bccList() []string {
	if e.bcc == "" {
		return nil
	}
	return []string{e.bcc}
}

// SendAllPending dispatches every staged queue entry in queue order with a
// randomized pause between consecutive sends. Already-sent entries are never
// resent, so re-invoking after an interruption processes only the
// remainder. State is checkpointed when the session ends.
func (e *Engine) SendAllPending(ctx context.Context) (Summary, error) {
	var sum Summary
	first := true
	for i := range e.pending {
		p := &e.pending[i]
		if !p.Staged() {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if !first {
			delay := e.randDelay(e.opts.MinSendDelay, e.opts.MaxSendDelay)
			e.log.Debug("pausing before next send", logx.Duration("delay", delay))
			e.sleep(ctx, delay)
			if ctx.Err() != nil {
				break
			}
		}
		first = false

		switch e.dispatch(ctx, p) {
		case dispatchSent:
			sum.Sent++
		case dispatchFailed:
			sum.Failed++
		case dispatchRefused:
			// not counted
		}
	}
	sum.Remaining = e.StagedCount()

	if err := e.checkpointDispatch(); err != nil {
		return sum, fmt.Errorf("dispatch checkpoint: %w", err)
	}
	e.log.Info("dispatch session complete",
		logx.Int("sent", sum.Sent),
		logx.Int("failed", sum.Failed),
		logx.Int("remaining", sum.Remaining))
	return sum, nil
}
