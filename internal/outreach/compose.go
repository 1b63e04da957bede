package outreach

import (
	"context"
	"errors"
	"fmt"

	logx "outreachbot/pkg/logx"
)

// ErrNoRenderer is returned by ComposeBatch when no renderer collaborator
// has been installed.
var ErrNoRenderer = errors.New("no renderer configured")

// ComposeBatch groups eligible contacts by organization, samples a bounded
// random number per organization, renders a message for each selection, and
// appends the results to the persisted queue (never replacing unsent
// entries).
//
// A running set of claimed emails and claimed domains is enforced across the
// whole batch: a contact's domain and its organization label are not always
// the same, so both checks are independently necessary.
func (e *Engine) ComposeBatch(ctx context.Context, eligible []Contact) (int, error) {
	if e.renderer == nil {
		return 0, ErrNoRenderer
	}

	// Group by organization, preserving first-seen org order so output is
	// stable for a fixed random seed.
	byOrg := make(map[string][]Contact)
	var orgOrder []string
	for _, c := range eligible {
		if _, ok := byOrg[c.Organization]; !ok {
			orgOrder = append(orgOrder, c.Organization)
		}
		byOrg[c.Organization] = append(byOrg[c.Organization], c)
	}

	claimedEmails := make(map[string]struct{})
	claimedDomains := make(map[string]struct{})
	composed := 0

	for _, org := range orgOrder {
		if err := ctx.Err(); err != nil {
			break
		}

		var available []Contact
		for _, c := range byOrg[org] {
			email := NormalizeEmail(c.Email)
			if _, taken := claimedEmails[email]; taken {
				continue
			}
			if _, taken := claimedDomains[EmailDomain(email)]; taken {
				continue
			}
			available = append(available, c)
		}
		if len(available) == 0 {
			continue
		}

		k := e.opts.MinPerOrg
		if e.opts.MaxPerOrg > e.opts.MinPerOrg {
			k += e.rng.Intn(e.opts.MaxPerOrg - e.opts.MinPerOrg + 1)
		}
		if k > len(available) {
			k = len(available)
		}

		// Sample k without replacement.
		e.rng.Shuffle(len(available), func(i, j int) {
			available[i], available[j] = available[j], available[i]
		})
		selected := available[:k]

		e.log.Info("composing outreach for organization",
			logx.String("organization", org),
			logx.Int("selected", len(selected)))

		for _, c := range selected {
			email := NormalizeEmail(c.Email)
			domain := EmailDomain(email)
			if _, taken := claimedEmails[email]; taken {
				continue
			}
			if _, taken := claimedDomains[domain]; taken {
				continue
			}

			msg, err := e.renderer.Render(c)
			if err != nil {
				e.log.Error("message render failed",
					logx.String("email", email), logx.Err(err))
				continue
			}

			e.pending = append(e.pending, Pending{
				ID:        e.newID(),
				Contact:   c,
				Message:   msg,
				Timestamp: e.now(),
			})
			claimedEmails[email] = struct{}{}
			claimedDomains[domain] = struct{}{}
			composed++
		}
	}

	if err := e.store.SavePending(e.pending); err != nil {
		return composed, fmt.Errorf("save pending outreach: %w", err)
	}

	e.log.Info("batch composed",
		logx.Int("new_messages", composed),
		logx.Int("queue_size", len(e.pending)))
	return composed, nil
}
