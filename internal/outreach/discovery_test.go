package outreach

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptDiscoverer serves canned results per target website.
type scriptDiscoverer struct {
	results map[string][]Contact
	errs    map[string]error
	visited []string
}

func (s *scriptDiscoverer) Discover(_ context.Context, t Target) ([]Contact, error) {
	s.visited = append(s.visited, t.Website)
	if err := s.errs[t.Website]; err != nil {
		return nil, err
	}
	return s.results[t.Website], nil
}

func TestRunDiscoveryNoDiscoverer(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, &memStore{}, Options{})
	if err := e.RunDiscovery(context.Background()); !errors.Is(err, ErrNoDiscoverer) {
		t.Fatalf("err = %v, want ErrNoDiscoverer", err)
	}
}

func TestRunDiscoveryMergesAndDedupes(t *testing.T) {
	t.Parallel()
	store := &memStore{
		contacts: []Contact{contact("Known", "known@one.io", "One")},
		targets: []Target{
			{Name: "One", Website: "https://one.io"},
			{Name: "Two", Website: "https://two.io"},
		},
	}
	e := newTestEngine(t, store, Options{})
	d := &scriptDiscoverer{results: map[string][]Contact{
		"https://one.io": {
			contact("Known Again", "KNOWN@one.io", "One"), // case-insensitive dup
			contact("Fresh", "fresh@one.io", "One"),
		},
		"https://two.io": {
			contact("Fresh", "fresh@one.io", "One"), // dup across targets
			contact("New", "new@two.io", "Two"),
		},
	}}
	e.SetDiscoverer(d)

	if err := e.RunDiscovery(context.Background()); err != nil {
		t.Fatalf("RunDiscovery: %v", err)
	}
	if len(e.Contacts()) != 3 {
		t.Fatalf("contacts = %d, want 3 (known + fresh + new)", len(e.Contacts()))
	}
	if store.saveContactCalls == 0 {
		t.Fatal("contacts were not persisted")
	}
	for _, tg := range e.Targets() {
		if tg.LastScraped == nil || !tg.LastScraped.Equal(testEpoch) {
			t.Fatalf("target %s missing LastScraped", tg.Name)
		}
	}
}

func TestRunDiscoverySkipsTargetsInCooldown(t *testing.T) {
	t.Parallel()
	recent := testEpoch.Add(-24 * time.Hour)
	stale := testEpoch.Add(-30 * 24 * time.Hour)
	store := &memStore{targets: []Target{
		{Name: "Recent", Website: "https://recent.io", LastScraped: &recent},
		{Name: "Stale", Website: "https://stale.io", LastScraped: &stale},
		{Name: "Never", Website: "https://never.io"},
	}}
	e := newTestEngine(t, store, Options{ScrapeCooldown: 7 * 24 * time.Hour})
	d := &scriptDiscoverer{}
	e.SetDiscoverer(d)

	if err := e.RunDiscovery(context.Background()); err != nil {
		t.Fatalf("RunDiscovery: %v", err)
	}
	if len(d.visited) != 2 {
		t.Fatalf("visited = %v, want stale and never only", d.visited)
	}
	for _, v := range d.visited {
		if v == "https://recent.io" {
			t.Fatal("recently scraped target was revisited")
		}
	}
}

func TestRunDiscoveryTargetFailureContinues(t *testing.T) {
	t.Parallel()
	store := &memStore{targets: []Target{
		{Name: "Bad", Website: "https://bad.io"},
		{Name: "Good", Website: "https://good.io"},
	}}
	e := newTestEngine(t, store, Options{})
	d := &scriptDiscoverer{
		errs:    map[string]error{"https://bad.io": errors.New("dial tcp: timeout")},
		results: map[string][]Contact{"https://good.io": {contact("G", "g@good.io", "Good")}},
	}
	e.SetDiscoverer(d)

	if err := e.RunDiscovery(context.Background()); err != nil {
		t.Fatalf("RunDiscovery: %v", err)
	}
	if len(d.visited) != 2 {
		t.Fatalf("visited = %v, want both targets", d.visited)
	}
	if len(e.Contacts()) != 1 || e.Contacts()[0].Email != "g@good.io" {
		t.Fatalf("contacts = %+v", e.Contacts())
	}
}

func TestRunDiscoverySkipsEmptyEmails(t *testing.T) {
	t.Parallel()
	store := &memStore{targets: []Target{{Name: "One", Website: "https://one.io"}}}
	e := newTestEngine(t, store, Options{})
	e.SetDiscoverer(&scriptDiscoverer{results: map[string][]Contact{
		"https://one.io": {contact("Blank", "", "One"), contact("OK", "ok@one.io", "One")},
	}})

	if err := e.RunDiscovery(context.Background()); err != nil {
		t.Fatalf("RunDiscovery: %v", err)
	}
	if len(e.Contacts()) != 1 {
		t.Fatalf("contacts = %+v, want the one with an address", e.Contacts())
	}
}
