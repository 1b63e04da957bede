package outreach

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	logx "outreachbot/pkg/logx"
)

// Discoverer is the scraper collaborator: best-effort contact extraction for
// one target. Per-URL network failures are swallowed internally; a returned
// error marks the whole target as failed for this pass.
type Discoverer interface {
	Discover(ctx context.Context, target Target) ([]Contact, error)
}

// Renderer produces a personalized message for a contact. It must be
// deterministic enough that re-rendering the same contact yields comparable
// content.
type Renderer interface {
	Render(contact Contact) (Message, error)
}

// Transport delivers one message synchronously. Any non-nil error is a
// delivery failure.
type Transport interface {
	Deliver(ctx context.Context, msg Message, recipient string, bcc []string) error
}

// Options binds the throttling policy and pacing knobs.
type Options struct {
	MaxAttemptsPerContact int
	MinPerOrg             int
	MaxPerOrg             int
	ContactCooldown       time.Duration
	DomainCooldown        time.Duration

	MinSendDelay time.Duration
	MaxSendDelay time.Duration

	ScrapeCooldown time.Duration
	MinScrapeDelay time.Duration
	MaxScrapeDelay time.Duration
}

func (o *Options) applyDefaults() {
	if o.MaxAttemptsPerContact <= 0 {
		o.MaxAttemptsPerContact = 4
	}
	if o.MinPerOrg <= 0 {
		o.MinPerOrg = 2
	}
	if o.MaxPerOrg < o.MinPerOrg {
		o.MaxPerOrg = o.MinPerOrg
	}
	if o.ContactCooldown <= 0 {
		o.ContactCooldown = 30 * 24 * time.Hour
	}
	if o.DomainCooldown <= 0 {
		o.DomainCooldown = 7 * 24 * time.Hour
	}
	if o.ScrapeCooldown <= 0 {
		o.ScrapeCooldown = 7 * 24 * time.Hour
	}
	if o.MinSendDelay <= 0 {
		o.MinSendDelay = 30 * time.Second
	}
	if o.MaxSendDelay <= 0 {
		o.MaxSendDelay = time.Minute
	}
	if o.MaxSendDelay < o.MinSendDelay {
		o.MaxSendDelay = o.MinSendDelay
	}
	if o.MinScrapeDelay <= 0 {
		o.MinScrapeDelay = 30 * time.Second
	}
	if o.MaxScrapeDelay <= 0 {
		o.MaxScrapeDelay = time.Minute
	}
	if o.MaxScrapeDelay < o.MinScrapeDelay {
		o.MaxScrapeDelay = o.MinScrapeDelay
	}
}

// Summary reports the outcome of one dispatch session.
type Summary struct {
	Sent      int
	Failed    int
	Skipped   int
	Remaining int
}

// Engine is the outreach orchestration core. It is strictly sequential: one
// target scraped at a time, one message composed at a time, one message
// dispatched at a time. Rate limiting is blocking sleeps between sequential
// operations, not a scheduler.
type Engine struct {
	store Store
	log   logx.Logger
	opts  Options

	contacts []Contact
	targets  []Target
	pending  []Pending
	logbook  []LogEntry
	registry *Registry

	discoverer Discoverer
	renderer   Renderer
	transport  Transport

	rng    *rand.Rand
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration)
	newID  func() string
	dryRun bool
	bcc    string
}

// New loads every store into memory and builds the engine. A malformed store
// is a fatal load error: the engine refuses to operate on partial state.
func New(store Store, opts Options, log logx.Logger) (*Engine, error) {
	opts.applyDefaults()
	if log.IsZero() {
		log = logx.Nop()
	}

	e := &Engine{
		store: store,
		log:   log,
		opts:  opts,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:   time.Now,
		sleep: sleepCtx,
		newID: randomID,
	}

	var err error
	if e.contacts, err = store.LoadContacts(); err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	if e.targets, err = store.LoadTargets(); err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}
	if e.pending, err = store.LoadPending(); err != nil {
		return nil, fmt.Errorf("load pending outreach: %w", err)
	}
	if e.logbook, err = store.LoadLog(); err != nil {
		return nil, fmt.Errorf("load outreach log: %w", err)
	}
	optOuts, err := store.LoadOptOuts()
	if err != nil {
		return nil, fmt.Errorf("load opt-outs: %w", err)
	}
	e.registry = NewRegistry(optOuts)

	if len(e.targets) == 0 {
		e.targets = DefaultTargets()
		if err := store.SaveTargets(e.targets); err != nil {
			return nil, fmt.Errorf("seed targets: %w", err)
		}
		e.log.Info("seeded default targets", logx.Int("count", len(e.targets)))
	}

	return e, nil
}

// SetDiscoverer installs the scraper collaborator.
func (e *Engine) SetDiscoverer(d Discoverer) { e.discoverer = d }

// SetRenderer installs the message renderer collaborator.
func (e *Engine) SetRenderer(r Renderer) { e.renderer = r }

// SetTransport installs the delivery collaborator.
func (e *Engine) SetTransport(t Transport) { e.transport = t }

// SetDryRun makes dispatch log what it would send without touching the
// transport or mutating any state.
func (e *Engine) SetDryRun(v bool) { e.dryRun = v }

// SetBCC adds a blind-copy recipient to every outgoing message.
func (e *Engine) SetBCC(addr string) { e.bcc = addr }

// SetRand installs a seedable random source so tests can assert
// deterministic batch composition.
func (e *Engine) SetRand(r *rand.Rand) { e.rng = r }

// SetClock overrides the time source.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// SetSleep overrides the pacer so tests skip real sleeps.
func (e *Engine) SetSleep(fn func(ctx context.Context, d time.Duration)) { e.sleep = fn }

// Contacts returns the in-memory contact set.
func (e *Engine) Contacts() []Contact { return e.contacts }

// Targets returns the in-memory target set.
func (e *Engine) Targets() []Target { return e.targets }

// Pending returns the in-memory outreach queue.
func (e *Engine) Pending() []Pending { return e.pending }

// Logbook returns the in-memory dispatch history.
func (e *Engine) Logbook() []LogEntry { return e.logbook }

// Registry exposes the opt-out registry.
func (e *Engine) Registry() *Registry { return e.registry }

// StagedCount reports how many queue entries still await a decision.
func (e *Engine) StagedCount() int {
	n := 0
	for _, p := range e.pending {
		if p.Staged() {
			n++
		}
	}
	return n
}

// AddOptOut inserts a suppression entry and persists the registry
// immediately. Returns false if the address was already suppressed.
func (e *Engine) AddOptOut(email, reason string, source OptOutSource) (bool, error) {
	added := e.registry.Add(email, reason, source, e.now())
	if !added {
		return false, nil
	}
	if err := e.store.SaveOptOuts(e.registry.Entries()); err != nil {
		return true, fmt.Errorf("save opt-outs: %w", err)
	}
	e.log.Info("opt-out recorded",
		logx.String("email", NormalizeEmail(email)),
		logx.String("source", string(source)))
	return true, nil
}

// checkpointDispatch persists queue, contacts, and log after a dispatch
// session ends or is interrupted.
func (e *Engine) checkpointDispatch() error {
	if err := e.store.SavePending(e.pending); err != nil {
		return fmt.Errorf("save pending outreach: %w", err)
	}
	if err := e.store.SaveContacts(e.contacts); err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}
	return nil
}

// randDelay samples a uniform delay in [min, max].
func (e *Engine) randDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(e.rng.Int63n(int64(max-min)))
}

func randomID() string { return uuid.NewString() }

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
