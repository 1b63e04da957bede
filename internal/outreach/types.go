package outreach

import (
	"strings"
	"time"
)

// Category buckets a contact or target by the kind of organization it
// belongs to. The set is fixed; unknown values fall back to
// CategoryPublication at render time.
type Category string

const (
	CategoryPublication Category = "publication"
	CategoryInfluencer  Category = "influencer"
	CategoryPlatform    Category = "platform"
	CategoryCommunity   Category = "community"
	CategoryPodcast     Category = "podcast"
)

// Contact is a discovered person/address eligible for outreach.
//
// Email is the identity (case-insensitive, globally unique). OutreachCount
// and LastContact are mutated only by the dispatcher on a successful send.
// Contacts are never deleted, only suppressed via the opt-out registry.
type Contact struct {
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Organization     string     `json:"organization"`
	Role             string     `json:"role"`
	Source           string     `json:"source"`
	Category         Category   `json:"category"`
	SocialLinks      []string   `json:"social_links"`
	ContactDate      *time.Time `json:"contact_date,omitempty"`
	ResponseReceived bool       `json:"response_received"`
	Notes            string     `json:"notes"`
	OutreachCount    int        `json:"outreach_count"`
	LastContact      *time.Time `json:"last_contact,omitempty"`
}

// Domain returns the lowercased email domain, or "" for a malformed address.
func (c Contact) Domain() string { return EmailDomain(c.Email) }

// EmailDomain extracts the lowercased domain part of an address.
func EmailDomain(email string) string {
	i := strings.LastIndexByte(email, '@')
	if i < 0 || i == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[i+1:])
}

// NormalizeEmail lowercases and trims an address for identity comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Target is an organization/website the system scrapes for contacts.
// Website is the identity. LastScraped and ContactsFound are updated after
// each discovery pass.
type Target struct {
	Name           string     `json:"name"`
	Website        string     `json:"website"`
	Category       Category   `json:"category"`
	FocusAreas     []string   `json:"focus_areas"`
	ContactMethods []string   `json:"contact_methods"`
	Priority       int        `json:"priority"` // 1-5, 5 highest
	ContactsFound  int        `json:"contacts_found"`
	LastScraped    *time.Time `json:"last_scraped,omitempty"`
	Region         string     `json:"region"`
}

// Message is a rendered outreach message.
type Message struct {
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	TemplateID string `json:"template_id"`
}

// Pending is a staged outreach message awaiting an approval decision.
//
// Invariant: Sent implies Approved. A pending entry is never deleted after
// sending; it stays in the queue as an audit trail, only marked.
type Pending struct {
	ID        string    `json:"id"` // uuid handle used in logs and selection
	Contact   Contact   `json:"contact"`
	Message   Message   `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Approved  bool      `json:"approved"`
	Sent      bool      `json:"sent"`
}

// Staged reports whether the entry still awaits a decision.
func (p Pending) Staged() bool { return !p.Sent && !p.Approved }

// LogStatus is the outcome recorded for one dispatch attempt.
type LogStatus string

const (
	StatusSent   LogStatus = "sent"
	StatusFailed LogStatus = "failed"
)

// LogEntry is an immutable append-only outreach log record.
type LogEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	ContactName  string    `json:"contact_name"`
	ContactEmail string    `json:"contact_email"`
	Organization string    `json:"organization"`
	Subject      string    `json:"subject"`
	TemplateID   string    `json:"template_id"`
	Status       LogStatus `json:"status"`
	Error        string    `json:"error,omitempty"`
}

// OptOutSource records how an opt-out entered the registry.
type OptOutSource string

const (
	OptOutWeb    OptOutSource = "web"
	OptOutManual OptOutSource = "manual"
	OptOutBounce OptOutSource = "bounce"
)

// OptOutEntry is a permanent suppression record. Email is stored lowercased.
type OptOutEntry struct {
	Email     string       `json:"email"`
	Reason    string       `json:"reason"`
	Timestamp time.Time    `json:"timestamp"`
	Source    OptOutSource `json:"source"`
}
