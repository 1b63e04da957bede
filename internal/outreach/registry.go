package outreach

import "time"

// Registry is the authoritative suppression list. Presence overrides every
// other eligibility signal. Opt-outs are permanent: there is no removal
// operation.
type Registry struct {
	entries []OptOutEntry
	index   map[string]struct{} // lowercased emails
}

// NewRegistry builds a registry from persisted entries.
func NewRegistry(entries []OptOutEntry) *Registry {
	r := &Registry{index: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		e.Email = NormalizeEmail(e.Email)
		if _, dup := r.index[e.Email]; dup || e.Email == "" {
			continue
		}
		r.entries = append(r.entries, e)
		r.index[e.Email] = struct{}{}
	}
	return r
}

// IsOptedOut reports whether the address is suppressed. Case-insensitive.
func (r *Registry) IsOptedOut(email string) bool {
	_, ok := r.index[NormalizeEmail(email)]
	return ok
}

// Add inserts a suppression entry. Returns false without modification if
// the address is already present.
func (r *Registry) Add(email, reason string, source OptOutSource, now time.Time) bool {
	key := NormalizeEmail(email)
	if key == "" {
		return false
	}
	if _, ok := r.index[key]; ok {
		return false
	}
	r.entries = append(r.entries, OptOutEntry{
		Email:     key,
		Reason:    reason,
		Timestamp: now,
		Source:    source,
	})
	r.index[key] = struct{}{}
	return true
}

// Entries returns the current suppression list for persistence.
func (r *Registry) Entries() []OptOutEntry { return r.entries }

// Len reports the number of suppressed addresses.
func (r *Registry) Len() int { return len(r.entries) }
