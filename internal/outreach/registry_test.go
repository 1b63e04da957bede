package outreach

import (
	"testing"
	"time"
)

func TestRegistryCaseInsensitive(t *testing.T) {
	t.Parallel()
	r := NewRegistry([]OptOutEntry{{Email: "Ann@One.IO"}})
	for _, probe := range []string{"ann@one.io", "ANN@ONE.IO", " ann@one.io "} {
		if !r.IsOptedOut(probe) {
			t.Errorf("IsOptedOut(%q) = false, want true", probe)
		}
	}
	if r.IsOptedOut("other@one.io") {
		t.Error("unrelated address reported as opted out")
	}
}

func TestRegistryAddIdempotent(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if !r.Add("ann@one.io", "asked", OptOutManual, now) {
		t.Fatal("first Add returned false")
	}
	if r.Add("ANN@one.io", "asked twice", OptOutWeb, now) {
		t.Fatal("second Add of same address returned true")
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	got := r.Entries()[0]
	if got.Email != "ann@one.io" || got.Reason != "asked" || got.Source != OptOutManual {
		t.Fatalf("entry = %+v, want the first insertion preserved", got)
	}
}

func TestRegistryRejectsEmpty(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	if r.Add("   ", "blank", OptOutManual, time.Now()) {
		t.Fatal("blank address was added")
	}
	if r.Len() != 0 {
		t.Fatalf("Len = %d, want 0", r.Len())
	}
}

func TestNewRegistryDedupes(t *testing.T) {
	t.Parallel()
	r := NewRegistry([]OptOutEntry{
		{Email: "a@one.io"},
		{Email: "A@ONE.IO"},
		{Email: ""},
		{Email: "b@two.io"},
	})
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
}
