package outreach

import (
	"context"
	"fmt"

	logx "outreachbot/pkg/logx"
)

// Decision is the operator's choice for a single staged entry.
type Decision int

const (
	DecisionSend Decision = iota
	DecisionEdit
	DecisionSkip
	DecisionQuit
)

// Mode selects how the queue is worked through.
type Mode int

const (
	// ModeIndividual presents one entry at a time with send/edit/skip/quit.
	ModeIndividual Mode = iota
	// ModeBatch shows the whole staged list plus a sample message, then
	// lets the operator send all, fall through to individual review, or
	// pick a subset.
	ModeBatch
	// ModeSelective sends an explicit index selection.
	ModeSelective
	// ModeAuto sends every staged entry without further prompts.
	ModeAuto
)

// BatchAction is the operator's choice on the batch overview screen.
type BatchAction int

const (
	BatchSendAll BatchAction = iota
	BatchReviewIndividually
	BatchSelect
	BatchCancel
)

// Prompter abstracts the operator terminal so the workflow logic runs
// without one. Implementations block until the operator answers.
type Prompter interface {
	ChooseMode(staged int) (Mode, error)
	Review(p Pending, index, total int) (Decision, error)
	EditMessage(m Message) (Message, error)
	ShowQueue(entries []Pending) (BatchAction, error)
	// SelectEntries returns indices into entries; an empty slice with
	// all=true selects everything.
	SelectEntries(entries []Pending) (indices []int, all bool, err error)
	Confirm(prompt string) (bool, error)
	Notice(msg string)
	ShowSummary(s Summary)
}

// ReviewSession runs the approval workflow over the persisted queue in the
// given mode. Every path converges on the same per-message dispatch
// transition, and every path checkpoints the queue, contact store, and log
// when the session ends or is interrupted.
func (e *Engine) ReviewSession(ctx context.Context, prompter Prompter, mode Mode) (Summary, error) {
	staged := e.stagedRefs()
	if len(staged) == 0 {
		if prompter != nil {
			prompter.Notice("No pending outreach messages to review.")
		}
		return Summary{}, nil
	}

	if mode == ModeAuto {
		return e.SendAllPending(ctx)
	}
	if prompter == nil {
		return Summary{}, fmt.Errorf("review mode %d requires a prompter", mode)
	}

	var (
		sum Summary
		err error
	)
	switch mode {
	case ModeIndividual:
		sum, err = e.individualSession(ctx, prompter, staged)
	case ModeBatch:
		sum, err = e.batchSession(ctx, prompter, staged)
	case ModeSelective:
		sum, err = e.selectiveSession(ctx, prompter, staged)
	default:
		return Summary{}, fmt.Errorf("unknown review mode %d", mode)
	}
	if err != nil {
		return sum, err
	}

	sum.Remaining = e.StagedCount()
	if cerr := e.checkpointDispatch(); cerr != nil {
		return sum, fmt.Errorf("review checkpoint: %w", cerr)
	}
	prompter.ShowSummary(sum)
	return sum, nil
}

// stagedRefs returns pointers to queue entries still awaiting a decision,
// in queue order.
func (e *Engine) stagedRefs() []*Pending {
	var refs []*Pending
	for i := range e.pending {
		if e.pending[i].Staged() {
			refs = append(refs, &e.pending[i])
		}
	}
	return refs
}

func (e *Engine) individualSession(ctx context.Context, prompter Prompter, staged []*Pending) (Summary, error) {
	var sum Summary

	for i, p := range staged {
		if ctx.Err() != nil {
			break
		}

		decision, err := prompter.Review(*p, i+1, len(staged))
		if err != nil {
			return sum, err
		}

		if decision == DecisionEdit {
			edited, err := prompter.EditMessage(p.Message)
			if err != nil {
				return sum, err
			}
			p.Message = edited
			// A second send/skip decision after the edit.
			decision, err = prompter.Review(*p, i+1, len(staged))
			if err != nil {
				return sum, err
			}
			if decision == DecisionEdit {
				decision = DecisionSkip
			}
		}

		switch decision {
		case DecisionSend:
			e.sendWithPacing(ctx, p, &sum)
		case DecisionSkip:
			sum.Skipped++
			e.log.Debug("entry skipped", logx.String("email", p.Contact.Email))
		case DecisionQuit:
			e.log.Info("review session quit by operator")
			return sum, nil
		}
	}
	return sum, nil
}

func (e *Engine) batchSession(ctx context.Context, prompter Prompter, staged []*Pending) (Summary, error) {
	entries := make([]Pending, len(staged))
	for i, p := range staged {
		entries[i] = *p
	}

	action, err := prompter.ShowQueue(entries)
	if err != nil {
		return Summary{}, err
	}

	switch action {
	case BatchSendAll:
		ok, err := prompter.Confirm(fmt.Sprintf("Send all %d messages?", len(staged)))
		if err != nil || !ok {
			return Summary{}, err
		}
		return e.sendEntries(ctx, staged), nil
	case BatchReviewIndividually:
		return e.individualSession(ctx, prompter, staged)
	case BatchSelect:
		return e.selectiveSession(ctx, prompter, staged)
	default:
		prompter.Notice("Cancelled batch approval.")
		return Summary{}, nil
	}
}

func (e *Engine) selectiveSession(ctx context.Context, prompter Prompter, staged []*Pending) (Summary, error) {
	entries := make([]Pending, len(staged))
	for i, p := range staged {
		entries[i] = *p
	}

	indices, all, err := prompter.SelectEntries(entries)
	if err != nil {
		return Summary{}, err
	}

	var selected []*Pending
	if all {
		selected = staged
	} else {
		for _, idx := range indices {
			if idx >= 0 && idx < len(staged) {
				selected = append(selected, staged[idx])
			}
		}
	}
	if len(selected) == 0 {
		prompter.Notice("Nothing selected.")
		return Summary{}, nil
	}

	ok, err := prompter.Confirm(fmt.Sprintf("Send %d selected messages?", len(selected)))
	if err != nil || !ok {
		return Summary{}, err
	}
	return e.sendEntries(ctx, selected), nil
}

// sendEntries dispatches a chosen set with inter-send pacing.
func (e *Engine) sendEntries(ctx context.Context, entries []*Pending) Summary {
	var sum Summary
	for _, p := range entries {
		if ctx.Err() != nil {
			break
		}
		if !p.Staged() {
			continue
		}
		e.sendWithPacing(ctx, p, &sum)
	}
	return sum
}

// sendWithPacing dispatches one entry and, if anything was actually
// attempted, sleeps the configured randomized delay before returning.
func (e *Engine) sendWithPacing(ctx context.Context, p *Pending, sum *Summary) {
	switch e.dispatch(ctx, p) {
	case dispatchSent:
		sum.Sent++
	case dispatchFailed:
		sum.Failed++
	case dispatchRefused:
		return
	}
	delay := e.randDelay(e.opts.MinSendDelay, e.opts.MaxSendDelay)
	e.log.Debug("pausing before next send", logx.Duration("delay", delay))
	e.sleep(ctx, delay)
}
