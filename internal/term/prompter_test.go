package term

import (
	"strings"
	"testing"

	"outreachbot/internal/outreach"
)

func entry(name, email string) outreach.Pending {
	return outreach.Pending{
		ID:      "p1",
		Contact: outreach.Contact{Name: name, Email: email, Organization: "Org"},
		Message: outreach.Message{Subject: "Hi", Body: "Body"},
	}
}

func TestChooseMode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  outreach.Mode
	}{
		{"1\n", outreach.ModeIndividual},
		{"2\n", outreach.ModeBatch},
		{"3\n", outreach.ModeAuto},
		{"\n", outreach.ModeIndividual}, // default
		{"x\n2\n", outreach.ModeBatch},  // invalid then valid
	}
	for _, tt := range tests {
		var out strings.Builder
		p := New(strings.NewReader(tt.input), &out)
		got, err := p.ChooseMode(3)
		if err != nil {
			t.Fatalf("ChooseMode(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ChooseMode(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestReviewDecisions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  outreach.Decision
	}{
		{"s\n", outreach.DecisionSend},
		{"e\n", outreach.DecisionEdit},
		{"k\n", outreach.DecisionSkip},
		{"q\n", outreach.DecisionQuit},
		{"\n", outreach.DecisionSend},
		{"S\n", outreach.DecisionSend}, // case-insensitive
	}
	for _, tt := range tests {
		var out strings.Builder
		p := New(strings.NewReader(tt.input), &out)
		got, err := p.Review(entry("Ann", "ann@one.io"), 1, 1)
		if err != nil {
			t.Fatalf("Review(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Review(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestReviewEOF(t *testing.T) {
	t.Parallel()
	p := New(strings.NewReader(""), &strings.Builder{})
	if _, err := p.Review(entry("Ann", "ann@one.io"), 1, 1); err == nil {
		t.Fatal("expected error at EOF")
	}
}

func TestEditMessageSubjectOnly(t *testing.T) {
	t.Parallel()
	p := New(strings.NewReader("New Subject\nn\n"), &strings.Builder{})
	got, err := p.EditMessage(outreach.Message{Subject: "Old", Body: "Body"})
	if err != nil {
		t.Fatalf("EditMessage: %v", err)
	}
	if got.Subject != "New Subject" || got.Body != "Body" {
		t.Fatalf("message = %+v", got)
	}
}

func TestEditMessageBody(t *testing.T) {
	t.Parallel()
	input := "\ny\nline one\nline two\nEND\n"
	p := New(strings.NewReader(input), &strings.Builder{})
	got, err := p.EditMessage(outreach.Message{Subject: "Keep", Body: "Old"})
	if err != nil {
		t.Fatalf("EditMessage: %v", err)
	}
	if got.Subject != "Keep" {
		t.Fatalf("subject = %q, want unchanged on empty input", got.Subject)
	}
	if got.Body != "line one\nline two" {
		t.Fatalf("body = %q", got.Body)
	}
}

func TestSelectEntries(t *testing.T) {
	t.Parallel()
	entries := []outreach.Pending{entry("A", "a@x.io"), entry("B", "b@x.io"), entry("C", "c@x.io")}

	tests := []struct {
		input       string
		wantIndices []int
		wantAll     bool
	}{
		{"all\n", nil, true},
		{"\n", nil, true},
		{"1,3\n", []int{0, 2}, false},
		{" 2 \n", []int{1}, false},
		{"0\n", nil, false}, // out of range cancels
		{"9\n", nil, false}, // out of range cancels
		{"1,oops\n", nil, false},
	}
	for _, tt := range tests {
		p := New(strings.NewReader(tt.input), &strings.Builder{})
		indices, all, err := p.SelectEntries(entries)
		if err != nil {
			t.Fatalf("SelectEntries(%q): %v", tt.input, err)
		}
		if all != tt.wantAll {
			t.Errorf("SelectEntries(%q) all = %v, want %v", tt.input, all, tt.wantAll)
			continue
		}
		if len(indices) != len(tt.wantIndices) {
			t.Errorf("SelectEntries(%q) = %v, want %v", tt.input, indices, tt.wantIndices)
			continue
		}
		for i := range indices {
			if indices[i] != tt.wantIndices[i] {
				t.Errorf("SelectEntries(%q) = %v, want %v", tt.input, indices, tt.wantIndices)
			}
		}
	}
}

func TestShowQueueActions(t *testing.T) {
	t.Parallel()
	entries := []outreach.Pending{entry("A", "a@x.io")}
	tests := []struct {
		input string
		want  outreach.BatchAction
	}{
		{"1\n", outreach.BatchSendAll},
		{"2\n", outreach.BatchReviewIndividually},
		{"3\n", outreach.BatchSelect},
		{"4\n", outreach.BatchCancel},
		{"\n", outreach.BatchSendAll},
	}
	for _, tt := range tests {
		p := New(strings.NewReader(tt.input), &strings.Builder{})
		got, err := p.ShowQueue(entries)
		if err != nil {
			t.Fatalf("ShowQueue(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ShowQueue(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestShowQueueEmpty(t *testing.T) {
	t.Parallel()
	var out strings.Builder
	p := New(strings.NewReader(""), &out)
	got, err := p.ShowQueue(nil)
	if err != nil {
		t.Fatalf("ShowQueue(nil): %v", err)
	}
	if got != outreach.BatchCancel {
		t.Fatalf("ShowQueue(nil) = %v, want cancel", got)
	}
	if out.Len() != 0 {
		t.Fatalf("empty queue printed output: %q", out.String())
	}
}

func TestConfirmDefaultsNo(t *testing.T) {
	t.Parallel()
	p := New(strings.NewReader("\n"), &strings.Builder{})
	ok, err := p.Confirm("sure?")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if ok {
		t.Fatal("empty input confirmed, want default no")
	}
}

func TestClip(t *testing.T) {
	t.Parallel()
	if got := clip("short", 10); got != "short" {
		t.Fatalf("clip = %q", got)
	}
	if got := clip("a very long string", 10); got != "a very ..." {
		t.Fatalf("clip = %q", got)
	}
	if len(clip("abcdef", 3)) != 3 {
		t.Fatal("clip below ellipsis width")
	}
}
