package outreach

import (
	"context"
	"math/rand"
	"testing"
)

func TestComposeBatchNoRenderer(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, &memStore{}, Options{})
	if _, err := e.ComposeBatch(context.Background(), []Contact{contact("A", "a@one.io", "One")}); err != ErrNoRenderer {
		t.Fatalf("err = %v, want ErrNoRenderer", err)
	}
}

func TestComposeBatchClaimsEmailAndDomainAcrossOrgs(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	e := newTestEngine(t, store, Options{MinPerOrg: 2, MaxPerOrg: 2})
	e.SetRenderer(stubRenderer{})

	// Two orgs sharing a domain: only one of the shared-domain contacts may
	// be staged even though they sit in different org groups.
	eligible := []Contact{
		contact("A", "a@shared.io", "OrgOne"),
		contact("B", "b@solo.io", "OrgOne"),
		contact("C", "c@shared.io", "OrgTwo"),
		contact("D", "d@other.io", "OrgTwo"),
	}
	n, err := e.ComposeBatch(context.Background(), eligible)
	if err != nil {
		t.Fatalf("ComposeBatch: %v", err)
	}

	domains := make(map[string]int)
	addrs := make(map[string]int)
	for _, p := range e.Pending() {
		domains[p.Contact.Domain()]++
		addrs[NormalizeEmail(p.Contact.Email)]++
	}
	for d, c := range domains {
		if c > 1 {
			t.Fatalf("domain %s staged %d times", d, c)
		}
	}
	for a, c := range addrs {
		if c > 1 {
			t.Fatalf("address %s staged %d times", a, c)
		}
	}
	if n != len(e.Pending()) {
		t.Fatalf("returned count %d != queue size %d", n, len(e.Pending()))
	}
	if store.savePendingCalls == 0 {
		t.Fatal("queue was not persisted")
	}
}

func TestComposeBatchDeterministicForSeed(t *testing.T) {
	t.Parallel()
	eligible := []Contact{
		contact("A", "a@one.io", "One"),
		contact("B", "b@two.io", "One"),
		contact("C", "c@three.io", "One"),
		contact("D", "d@four.io", "Two"),
		contact("E", "e@five.io", "Two"),
		contact("F", "f@six.io", "Two"),
	}

	run := func() []string {
		e := newTestEngine(t, &memStore{}, Options{MinPerOrg: 1, MaxPerOrg: 2})
		e.SetRenderer(stubRenderer{})
		e.SetRand(rand.New(rand.NewSource(42)))
		if _, err := e.ComposeBatch(context.Background(), eligible); err != nil {
			t.Fatalf("ComposeBatch: %v", err)
		}
		var out []string
		for _, p := range e.Pending() {
			out = append(out, p.Contact.Email)
		}
		return out
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("runs differ in size: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("runs differ at %d: %v vs %v", i, first, second)
		}
	}
}

func TestComposeBatchBoundsPerOrg(t *testing.T) {
	t.Parallel()
	var eligible []Contact
	for _, c := range []struct{ name, email string }{
		{"A", "a@a1.io"}, {"B", "b@a2.io"}, {"C", "c@a3.io"},
		{"D", "d@a4.io"}, {"E", "e@a5.io"}, {"F", "f@a6.io"},
	} {
		eligible = append(eligible, contact(c.name, c.email, "BigOrg"))
	}

	e := newTestEngine(t, &memStore{}, Options{MinPerOrg: 2, MaxPerOrg: 4})
	e.SetRenderer(stubRenderer{})
	if _, err := e.ComposeBatch(context.Background(), eligible); err != nil {
		t.Fatalf("ComposeBatch: %v", err)
	}
	if n := len(e.Pending()); n < 2 || n > 4 {
		t.Fatalf("staged %d for one org, want within [2, 4]", n)
	}
}

func TestComposeBatchAppendsToExistingQueue(t *testing.T) {
	t.Parallel()
	existing := staged("keep-me", contact("Old", "old@kept.io", "Kept"))
	store := &memStore{pending: []Pending{existing}}
	e := newTestEngine(t, store, Options{MinPerOrg: 1, MaxPerOrg: 1})
	e.SetRenderer(stubRenderer{})

	if _, err := e.ComposeBatch(context.Background(), []Contact{contact("N", "n@new.io", "New")}); err != nil {
		t.Fatalf("ComposeBatch: %v", err)
	}
	if len(e.Pending()) != 2 {
		t.Fatalf("queue size = %d, want 2", len(e.Pending()))
	}
	if e.Pending()[0].ID != "keep-me" {
		t.Fatal("existing staged entry was replaced")
	}
}

func TestComposeBatchAssignsUniqueIDs(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, &memStore{}, Options{MinPerOrg: 1, MaxPerOrg: 1})
	e.SetRenderer(stubRenderer{})
	eligible := []Contact{
		contact("A", "a@one.io", "One"),
		contact("B", "b@two.io", "Two"),
	}
	if _, err := e.ComposeBatch(context.Background(), eligible); err != nil {
		t.Fatalf("ComposeBatch: %v", err)
	}
	seen := make(map[string]bool)
	for _, p := range e.Pending() {
		if p.ID == "" || seen[p.ID] {
			t.Fatalf("bad or duplicate id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Timestamp.IsZero() {
			t.Fatal("staged entry missing timestamp")
		}
		if p.Sent || p.Approved {
			t.Fatal("new entry must start unapproved and unsent")
		}
	}
}
