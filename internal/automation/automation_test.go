package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"outreachbot/internal/config"
	"outreachbot/internal/outreach"
	"outreachbot/pkg/logx"
)

type recordedOptOut struct {
	email  string
	reason string
}

func inboxDaemon(t *testing.T, failFor map[string]error) (*Daemon, string, *[]recordedOptOut) {
	t.Helper()
	inbox := filepath.Join(t.TempDir(), "optouts.txt")
	var recorded []recordedOptOut
	optOut := func(email, reason string) error {
		if err := failFor[email]; err != nil {
			return err
		}
		recorded = append(recorded, recordedOptOut{email, reason})
		return nil
	}
	run := func(context.Context) (outreach.Summary, error) { return outreach.Summary{}, nil }
	d := New(config.AutomationConfig{Schedule: "0 9 * * *", OptOutInbox: inbox}, run, optOut, logx.Nop())
	return d, inbox, &recorded
}

func TestDrainInboxProcessesAndTruncates(t *testing.T) {
	t.Parallel()
	d, inbox, recorded := inboxDaemon(t, nil)

	content := "ann@one.io,unsubscribed via web\n\n# comment line\nbob@two.io\n"
	if err := os.WriteFile(inbox, []byte(content), 0o600); err != nil {
		t.Fatalf("write inbox: %v", err)
	}

	d.drainInbox()

	got := *recorded
	if len(got) != 2 {
		t.Fatalf("recorded = %+v, want 2", got)
	}
	if got[0].email != "ann@one.io" || got[0].reason != "unsubscribed via web" {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].email != "bob@two.io" || got[1].reason != "inbox request" {
		t.Fatalf("second = %+v, want default reason", got[1])
	}

	b, err := os.ReadFile(inbox)
	if err != nil {
		t.Fatalf("read inbox: %v", err)
	}
	if len(b) != 0 {
		t.Fatalf("inbox not truncated after clean pass: %q", b)
	}
}

func TestDrainInboxKeepsFileOnFailure(t *testing.T) {
	t.Parallel()
	d, inbox, recorded := inboxDaemon(t, map[string]error{
		"bad@two.io": errors.New("store unavailable"),
	})

	content := "ok@one.io\nbad@two.io\n"
	if err := os.WriteFile(inbox, []byte(content), 0o600); err != nil {
		t.Fatalf("write inbox: %v", err)
	}

	d.drainInbox()

	if len(*recorded) != 1 || (*recorded)[0].email != "ok@one.io" {
		t.Fatalf("recorded = %+v", *recorded)
	}
	// The file stays for a retry when any request failed.
	b, err := os.ReadFile(inbox)
	if err != nil {
		t.Fatalf("read inbox: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("inbox truncated despite a failed request")
	}
}

func TestDrainInboxMissingFile(t *testing.T) {
	t.Parallel()
	d, _, recorded := inboxDaemon(t, nil)
	d.drainInbox()
	if len(*recorded) != 0 {
		t.Fatalf("recorded = %+v, want none", *recorded)
	}
}

func TestRunRejectsBadSchedule(t *testing.T) {
	t.Parallel()
	run := func(context.Context) (outreach.Summary, error) { return outreach.Summary{}, nil }
	optOut := func(string, string) error { return nil }
	d := New(config.AutomationConfig{Schedule: "whenever"}, run, optOut, logx.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Run(ctx); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestCycleSkipsWhenAlreadyRunning(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	started := make(chan struct{})
	runs := 0
	run := func(ctx context.Context) (outreach.Summary, error) {
		runs++
		close(started)
		<-release
		return outreach.Summary{}, nil
	}
	d := New(config.AutomationConfig{Schedule: "0 9 * * *"}, run, func(string, string) error { return nil }, logx.Nop())

	go d.cycle(context.Background())
	<-started

	// Overlapping trigger while the first run blocks.
	d.cycle(context.Background())
	close(release)

	if runs != 1 {
		t.Fatalf("runs = %d, want the overlap skipped", runs)
	}
}
