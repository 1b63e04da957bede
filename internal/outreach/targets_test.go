package outreach

import "testing"

func TestAddTargetPersists(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	e := newTestEngine(t, store, Options{})

	added, err := e.AddTarget(Target{
		Name:       "SaaStr",
		Website:    "https://saastr.com",
		Category:   CategoryCommunity,
		FocusAreas: []string{"SaaS", "funding"},
		Priority:   5,
	})
	if err != nil || !added {
		t.Fatalf("AddTarget = (%v, %v), want (true, nil)", added, err)
	}
	if len(e.Targets()) != 2 {
		t.Fatalf("Targets = %d entries, want 2", len(e.Targets()))
	}
	if len(store.targets) != 2 {
		t.Fatalf("store has %d targets, want the new one persisted", len(store.targets))
	}
	got := store.targets[1]
	if got.Name != "SaaStr" || got.Category != CategoryCommunity || got.Priority != 5 {
		t.Fatalf("persisted target = %+v", got)
	}
}

func TestAddTargetDedupesByWebsite(t *testing.T) {
	t.Parallel()
	store := &memStore{targets: []Target{
		{Name: "TechCrunch", Website: "https://techcrunch.com", Category: CategoryPublication, Priority: 5},
	}}
	e := newTestEngine(t, store, Options{})

	added, err := e.AddTarget(Target{Name: "TC Again", Website: "HTTPS://TECHCRUNCH.COM"})
	if err != nil {
		t.Fatalf("AddTarget: %v", err)
	}
	if added {
		t.Fatal("duplicate website was added")
	}
	if len(e.Targets()) != 1 || e.Targets()[0].Name != "TechCrunch" {
		t.Fatalf("Targets = %+v, want the original entry only", e.Targets())
	}
}

func TestAddTargetValidatesAndDefaults(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, &memStore{}, Options{})

	if _, err := e.AddTarget(Target{Website: "https://x.io"}); err == nil {
		t.Fatal("missing name accepted")
	}
	if _, err := e.AddTarget(Target{Name: "X"}); err == nil {
		t.Fatal("missing website accepted")
	}

	added, err := e.AddTarget(Target{Name: "X", Website: "https://x.io"})
	if err != nil || !added {
		t.Fatalf("AddTarget = (%v, %v), want (true, nil)", added, err)
	}
	got := e.Targets()[len(e.Targets())-1]
	if got.Category != CategoryPublication {
		t.Fatalf("Category = %q, want publication default", got.Category)
	}
	if got.Priority != 3 {
		t.Fatalf("Priority = %d, want 3 default", got.Priority)
	}
}
