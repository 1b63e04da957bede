package scrape

import (
	"regexp"
	"strings"

	"outreachbot/internal/outreach"
)

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)

	mailtoRe = regexp.MustCompile(`(?i)mailto:([^"'?\s>]+)`)

	// Simple de-obfuscation: "user [at] host [dot] tld".
	obfuscatedRe = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+\-]+\s*\[at\]\s*[A-Za-z0-9.\-]+\s*\[dot\]\s*[A-Za-z]{2,}\b`)

	// "First Last" immediately around an address or a Contact: label.
	nameRe = regexp.MustCompile(`\b([A-Z][a-z]+ [A-Z][a-z]+)\b`)

	tagRe = regexp.MustCompile(`<[^>]*>`)
)

// skipLocalParts are address prefixes that never belong to a person.
var skipLocalParts = []string{
	"noreply", "no-reply", "donotreply", "mailer-daemon",
	"postmaster", "abuse", "security", "legal",
	"privacy", "gdpr", "unsubscribe", "bounces",
}

// roleWords maps a target category to the role keywords worth looking for
// in the text near an address.
var roleWords = map[outreach.Category][]string{
	outreach.CategoryPublication: {"editor", "writer", "journalist", "reporter", "contributor", "author", "correspondent"},
	outreach.CategoryPlatform:    {"founder", "ceo", "cto", "product", "marketing", "business development", "partnerships"},
	outreach.CategoryCommunity:   {"organizer", "moderator", "community manager", "event coordinator", "ambassador"},
	outreach.CategoryInfluencer:  {"founder", "consultant", "advisor", "speaker"},
	outreach.CategoryPodcast:     {"host", "producer", "editor"},
}

// extractContacts pulls contact records out of one page body.
func extractContacts(body string, target outreach.Target, sourceURL string) []outreach.Contact {
	text := tagRe.ReplaceAllString(body, " ")

	found := make(map[string]struct{})
	var order []string

	add := func(email string) {
		email = outreach.NormalizeEmail(email)
		if email == "" || !emailRe.MatchString(email) {
			return
		}
		if _, dup := found[email]; dup {
			return
		}
		found[email] = struct{}{}
		order = append(order, email)
	}

	for _, m := range emailRe.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range mailtoRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	for _, m := range obfuscatedRe.FindAllString(text, -1) {
		clean := strings.NewReplacer("[at]", "@", "[AT]", "@", "[dot]", ".", "[DOT]", ".", " ", "").Replace(m)
		add(clean)
	}

	var contacts []outreach.Contact
	for _, email := range order {
		if skipAddress(email) || outreach.IsTestEmail(email) {
			continue
		}
		name, role := guessNameAndRole(text, email, target.Category)
		contacts = append(contacts, outreach.Contact{
			Name:         name,
			Email:        email,
			Organization: target.Name,
			Role:         role,
			Source:       sourceURL,
			Category:     target.Category,
			SocialLinks:  []string{},
		})
		// Limit per page; the scraper caps per target on top of this.
		if len(contacts) >= 5 {
			break
		}
	}
	return contacts
}

func skipAddress(email string) bool {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	for _, bad := range skipLocalParts {
		if strings.Contains(local, bad) {
			return true
		}
	}
	return false
}

// guessNameAndRole inspects a window of text around the address for a
// capitalized full name and a category-appropriate role keyword.
func guessNameAndRole(text, email string, category outreach.Category) (string, string) {
	name := "Unknown"
	role := "Contact"

	idx := strings.Index(strings.ToLower(text), email)
	if idx >= 0 {
		lo := idx - 200
		if lo < 0 {
			lo = 0
		}
		hi := idx + 200
		if hi > len(text) {
			hi = len(text)
		}
		window := text[lo:hi]

		if m := nameRe.FindString(window); m != "" {
			name = m
		}

		words := roleWords[category]
		if words == nil {
			words = roleWords[outreach.CategoryPublication]
		}
		lower := strings.ToLower(window)
		for _, w := range words {
			if strings.Contains(lower, w) {
				role = titleCase(w)
				break
			}
		}
	}
	return name, role
}

func titleCase(s string) string {
	parts := strings.Fields(s)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
