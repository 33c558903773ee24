// Package like implements the anonymous like toggle and the heuristics that
// keep scripted clients from inflating like counts.
package like

import (
	"errors"
	"regexp"
	"time"
)

const (
	// DailyAddLimit is how many likes one identifier may add per UTC day.
	DailyAddLimit = 10
	// MinUserAgentLength is the shortest user agent accepted for a new like.
	MinUserAgentLength = 20
)

var (
	ErrIdentifierRequired = errors.New("identifier is required")
	ErrDailyLimit         = errors.New("daily interaction limit reached")
	ErrInvalidUserAgent   = errors.New("invalid user agent")
	ErrBotUserAgent       = errors.New("automated client detected")
)

var botSignatures = regexp.MustCompile(`(?i)bot|crawl|spider|headless|scrape|python|http|request|curl|wget`)

// State is the like bookkeeping persisted with an article.
type State struct {
	Ledger   Ledger
	Attempts DayBuckets
	Daily    DailyTally
}

// Request identifies an anonymous caller toggling a like.
type Request struct {
	Identifier  string
	UserAgent   string
	Fingerprint string
}

// Result is the like state after a toggle.
type Result struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// Guard applies toggle semantics and abuse checks to a State.
type Guard struct {
	now func() time.Time
}

// Option configures a Guard.
type Option func(*Guard)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// NewGuard creates a Guard using the wall clock unless overridden.
func NewGuard(opts ...Option) *Guard {
	g := &Guard{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Toggle removes the caller's like when present, otherwise validates the
// caller and adds one. State is mutated in place; on error the caller must
// discard it.
func (g *Guard) Toggle(st *State, req Request) (Result, error) {
	if req.Identifier == "" {
		return Result{}, ErrIdentifierRequired
	}

	if st.Ledger.Remove(req.Identifier) {
		return Result{Liked: false, Count: st.Ledger.Len()}, nil
	}

	now := g.now().UTC()
	today := DayKey(now)
	st.Attempts.Increment(today)

	// The ledger holds at most one entry per identifier and Remove just missed,
	// so the ledger term is zero here and the tally alone drives the cap.
	addedToday := st.Daily.Count(req.Identifier, today) + st.Ledger.CountUpdatedOn(req.Identifier, today)
	if addedToday >= DailyAddLimit {
		return Result{}, ErrDailyLimit
	}

	if len(req.UserAgent) < MinUserAgentLength {
		return Result{}, ErrInvalidUserAgent
	}
	if botSignatures.MatchString(req.UserAgent) {
		return Result{}, ErrBotUserAgent
	}

	st.Ledger.Append(Entry{
		Identifier:  req.Identifier,
		UserAgent:   req.UserAgent,
		Fingerprint: req.Fingerprint,
		CreatedAt:   now,
		UpdatedAt:   &now,
	})
	st.Daily.Add(req.Identifier, today)

	return Result{Liked: true, Count: st.Ledger.Len()}, nil
}
