package outreach

import (
	"time"

	logx "outreachbot/pkg/logx"
)

// testDomains are disposable/honeypot domains that are never contacted.
var testDomains = map[string]struct{}{
	"example.com": {}, "example.org": {}, "example.net": {},
	"test.com": {}, "test.org": {}, "test.net": {},
	"localhost": {}, "127.0.0.1": {},
	"noreply.com": {}, "no-reply.com": {},
	"fake.com": {}, "dummy.com": {},
	"spam.com": {}, "honeypot.com": {},
	"mailinator.com": {}, "10minutemail.com": {},
	"tempmail.org": {}, "guerrillamail.com": {},
}

// IsTestEmail reports whether the address is malformed or belongs to a
// test/disposable domain.
func IsTestEmail(email string) bool {
	d := EmailDomain(email)
	if d == "" {
		return true
	}
	_, bad := testDomains[d]
	return bad
}

// domainContactedSince reports whether any successful send to the domain
// appears in the log after the cutoff.
func domainContactedSince(logbook []LogEntry, domain string, cutoff time.Time) bool {
	for _, entry := range logbook {
		if entry.Status != StatusSent {
			continue
		}
		if entry.Timestamp.After(cutoff) && EmailDomain(entry.ContactEmail) == domain {
			return true
		}
	}
	return false
}

// SelectEligible computes the contacts eligible for a new batch. It is a
// pure function over current state: nothing is mutated.
//
// A contact survives only if every rule holds: not a test address, not
// opted out, not a duplicate email or duplicate domain within this call,
// past the per-contact cooldown, under the attempt cap, and its domain has
// no successful send within the domain cooldown window.
func SelectEligible(contacts []Contact, registry *Registry, logbook []LogEntry, now time.Time, opts Options, log logx.Logger) []Contact {
	opts.applyDefaults()
	if log.IsZero() {
		log = logx.Nop()
	}

	var eligible []Contact
	seenEmails := make(map[string]struct{})
	seenDomains := make(map[string]struct{})
	domainCutoff := now.Add(-opts.DomainCooldown)

	for _, c := range contacts {
		email := NormalizeEmail(c.Email)

		if IsTestEmail(email) {
			log.Debug("skipping test address", logx.String("email", email))
			continue
		}
		if registry != nil && registry.IsOptedOut(email) {
			log.Debug("skipping opted-out contact", logx.String("email", email))
			continue
		}
		if _, dup := seenEmails[email]; dup {
			log.Debug("skipping duplicate in batch", logx.String("email", email))
			continue
		}
		if c.LastContact != nil && now.Sub(*c.LastContact) < opts.ContactCooldown {
			log.Debug("skipping contact in cooldown",
				logx.String("email", email),
				logx.Time("last_contact", *c.LastContact))
			continue
		}
		if c.OutreachCount >= opts.MaxAttemptsPerContact {
			log.Debug("skipping contact at attempt cap",
				logx.String("email", email),
				logx.Int("attempts", c.OutreachCount))
			continue
		}

		domain := EmailDomain(email)
		if _, dup := seenDomains[domain]; dup {
			log.Debug("skipping domain already selected for batch",
				logx.String("email", email), logx.String("domain", domain))
			continue
		}
		if domainContactedSince(logbook, domain, domainCutoff) {
			log.Debug("skipping domain contacted recently",
				logx.String("email", email), logx.String("domain", domain))
			continue
		}

		eligible = append(eligible, c)
		seenEmails[email] = struct{}{}
		seenDomains[domain] = struct{}{}
	}

	return eligible
}

// SelectEligible runs the eligibility filter over the engine's current
// in-memory state.
func (e *Engine) SelectEligible() []Contact {
	return SelectEligible(e.contacts, e.registry, e.logbook, e.now(), e.opts, e.log)
}
