package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"outreachbot/internal/app"
	"outreachbot/internal/automation"
	"outreachbot/internal/outreach"
	"outreachbot/internal/term"
)

const usage = `usage: outreachbot [-config PATH] [-data-dir DIR] COMMAND

Commands:
  discover   scrape targets once and merge new contacts
  outreach   compose a new batch and review it
               [-dry-run] [-non-interactive] [-auto-send] [-batch-mode]
  review     resume review over the persisted queue
  send       auto-send the persisted queue (no new composition)
  opt-out    record a suppression: -email E [-reason R]
  add-target register a scrape target: -name N -website URL
               [-category C] [-priority P] [-region R] [-focus A,B]
  automate   run the scheduled daemon [-dry-run]
  status     print a snapshot of the data files
`

func main() {
	var (
		cfgPath string
		dataDir string
	)
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config file")
	flag.StringVar(&dataDir, "data-dir", "", "override data directory")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	// Secrets come from the environment; .env is a convenience for dev.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgPath, dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	err = run(ctx, a, cmd, args)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, cmd string, args []string) error {
	switch cmd {
	case "discover":
		return a.Engine.RunDiscovery(ctx)
	case "outreach":
		return cmdOutreach(ctx, a, args)
	case "review":
		return cmdReview(ctx, a)
	case "send":
		return cmdSend(ctx, a)
	case "opt-out":
		return cmdOptOut(a, args)
	case "add-target":
		return cmdAddTarget(a, args)
	case "automate":
		return cmdAutomate(ctx, a, args)
	case "status":
		a.Status(os.Stdout)
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdOutreach(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("outreach", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "compose but never dispatch")
	nonInteractive := fs.Bool("non-interactive", false, "stage without prompts; nothing is sent unless -auto-send")
	autoSend := fs.Bool("auto-send", false, "send everything without review")
	batchMode := fs.Bool("batch-mode", false, "start in batch review")
	if err := fs.Parse(args); err != nil {
		return err
	}

	staged, err := a.Stage(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Composed %d new message(s); %d staged in total.\n", staged, a.Engine.StagedCount())

	if *dryRun {
		a.Engine.SetDryRun(true)
		fmt.Println("Dry run: nothing will be dispatched.")
	}

	if *autoSend {
		if !*dryRun {
			if err := a.RequireTransport(); err != nil {
				return err
			}
		}
		sum, err := a.Engine.SendAllPending(ctx)
		printSummary(sum)
		return err
	}

	// Without auto-send, a non-interactive run only stages: the queue waits
	// for a later review or send.
	if *nonInteractive {
		fmt.Println("Staged only; review or send them with the review/send commands.")
		return nil
	}

	if *dryRun {
		return nil
	}

	if err := a.RequireTransport(); err != nil {
		return err
	}
	prompter := term.New(os.Stdin, os.Stdout)
	mode := outreach.ModeIndividual
	if *batchMode {
		mode = outreach.ModeBatch
	} else {
		m, err := prompter.ChooseMode(a.Engine.StagedCount())
		if err != nil {
			return err
		}
		mode = m
	}
	_, err = a.Engine.ReviewSession(ctx, prompter, mode)
	return err
}

func cmdReview(ctx context.Context, a *app.App) error {
	if a.Engine.StagedCount() == 0 {
		fmt.Println("Queue is empty; nothing to review.")
		return nil
	}
	if err := a.RequireTransport(); err != nil {
		return err
	}
	prompter := term.New(os.Stdin, os.Stdout)
	mode, err := prompter.ChooseMode(a.Engine.StagedCount())
	if err != nil {
		return err
	}
	_, err = a.Engine.ReviewSession(ctx, prompter, mode)
	return err
}

func cmdSend(ctx context.Context, a *app.App) error {
	if err := a.RequireTransport(); err != nil {
		return err
	}
	sum, err := a.Engine.SendAllPending(ctx)
	printSummary(sum)
	return err
}

func cmdOptOut(a *app.App, args []string) error {
	fs := flag.NewFlagSet("opt-out", flag.ExitOnError)
	email := fs.String("email", "", "address to suppress")
	reason := fs.String("reason", "manual", "why")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("opt-out: -email is required")
	}
	added, err := a.Engine.AddOptOut(*email, *reason, outreach.OptOutManual)
	if err != nil {
		return err
	}
	if added {
		fmt.Printf("Opted out %s.\n", *email)
	} else {
		fmt.Printf("%s was already opted out.\n", *email)
	}
	return nil
}

func cmdAddTarget(a *app.App, args []string) error {
	fs := flag.NewFlagSet("add-target", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	website := fs.String("website", "", "site URL to scrape")
	category := fs.String("category", "publication", "publication, influencer, platform, community, or podcast")
	priority := fs.Int("priority", 3, "1 (low) to 5 (high)")
	region := fs.String("region", "US/Global", "audience region")
	focus := fs.String("focus", "", "comma-separated focus areas")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t := outreach.Target{
		Name:           *name,
		Website:        *website,
		Category:       outreach.Category(*category),
		Priority:       *priority,
		Region:         *region,
		ContactMethods: []string{"email"},
	}
	for _, f := range strings.Split(*focus, ",") {
		if f = strings.TrimSpace(f); f != "" {
			t.FocusAreas = append(t.FocusAreas, f)
		}
	}

	added, err := a.Engine.AddTarget(t)
	if err != nil {
		return err
	}
	if added {
		fmt.Printf("Added target %s (%s).\n", t.Name, t.Website)
	} else {
		fmt.Printf("%s is already a target.\n", t.Website)
	}
	return nil
}

func cmdAutomate(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("automate", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "scheduled runs compose but never dispatch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dryRun {
		a.Engine.SetDryRun(true)
	} else if err := a.RequireTransport(); err != nil {
		return err
	}

	optOut := func(email, reason string) error {
		_, err := a.Engine.AddOptOut(email, reason, outreach.OptOutWeb)
		return err
	}
	d := automation.New(a.Cfg.Automation, a.FullRun, optOut, a.Log)
	if a.Notifier != nil {
		d.SetReporter(a.Notifier)
	}
	return d.Run(ctx)
}

func printSummary(sum outreach.Summary) {
	fmt.Printf("sent=%d failed=%d remaining=%d\n", sum.Sent, sum.Failed, sum.Remaining)
}
