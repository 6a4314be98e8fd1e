package layout

import (
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"media-stage/internal/aspect"
	"media-stage/internal/mediatypes"
)

// ErrSuperseded is returned by Finish when a newer render pass began for the
// same owner after the ticket was issued.
var ErrSuperseded = errors.New("layout superseded by a newer render pass")

// CommitOutcome describes what a commit did to the owner's plan.
type CommitOutcome string

const (
	// OutcomeNew means the owner had no committed plan.
	OutcomeNew CommitOutcome = "new"
	// OutcomeReused means the inputs matched and the committed plan was kept.
	OutcomeReused CommitOutcome = "reused"
	// OutcomeSuperseded means a different plan replaced the committed one.
	OutcomeSuperseded CommitOutcome = "superseded"
	// OutcomeDiscarded means the plan was computed for a stale ticket.
	OutcomeDiscarded CommitOutcome = "discarded"
)

// StoreObserver records plan commits.
type StoreObserver interface {
	ObserveCommit(outcome CommitOutcome)
}

// Ticket identifies one render pass for an owner.
type Ticket struct {
	Owner      string
	Generation uint64
}

type entry struct {
	generation uint64
	plan       *Plan
}

// Store holds the committed plan per owner. Entries for owners that are not
// touched within the expiration window are evicted.
type Store struct {
	planner  *Planner
	observer StoreObserver

	mu      sync.Mutex
	seq     uint64
	entries *cache.Cache
}

// NewStore creates a Store backed by planner. expiration <= 0 keeps entries
// forever; otherwise expired entries are swept every expiration interval.
func NewStore(planner *Planner, expiration time.Duration, observer StoreObserver) *Store {
	cleanup := expiration
	if expiration <= 0 {
		expiration = cache.NoExpiration
		cleanup = 0
	}
	return &Store{
		planner:  planner,
		observer: observer,
		entries:  cache.New(expiration, cleanup),
	}
}

// OnEvicted registers fn to run when an owner's entry expires or is
// forgotten. generation is the last render pass begun for the owner, so a
// caller can ignore evictions that a newer pass has already overtaken.
// fn may run while the store is locked and must not call back into it.
func (s *Store) OnEvicted(fn func(owner string, generation uint64)) {
	s.entries.OnEvicted(func(owner string, v interface{}) {
		if e, ok := v.(entry); ok {
			fn(owner, e.generation)
		}
	})
}

// Begin starts a render pass for owner. Any ticket issued earlier for the
// same owner can no longer commit.
func (s *Store) Begin(owner string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	e := s.load(owner)
	e.generation = s.seq
	s.entries.SetDefault(owner, e)
	return Ticket{Owner: owner, Generation: e.generation}
}

// Finish plans the inputs and commits the result for the ticket's owner.
// When the committed plan has the same key it is returned unchanged.
func (s *Store) Finish(ticket Ticket, attachments []mediatypes.Attachment, ratios map[string]aspect.Ratio, containerWidth float64) (Plan, error) {
	plan := s.planner.Plan(attachments, ratios, containerWidth)

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.load(ticket.Owner)
	if e.generation != ticket.Generation {
		s.observe(OutcomeDiscarded)
		if e.plan != nil {
			return e.plan.clone(), ErrSuperseded
		}
		return Plan{}, ErrSuperseded
	}

	switch {
	case e.plan == nil:
		s.observe(OutcomeNew)
	case e.plan.Key == plan.Key:
		s.observe(OutcomeReused)
		s.entries.SetDefault(ticket.Owner, e)
		return e.plan.clone(), nil
	default:
		s.observe(OutcomeSuperseded)
	}

	committed := plan.clone()
	e.plan = &committed
	s.entries.SetDefault(ticket.Owner, e)
	return plan, nil
}

// Commit is Begin followed by Finish.
func (s *Store) Commit(owner string, attachments []mediatypes.Attachment, ratios map[string]aspect.Ratio, containerWidth float64) (Plan, error) {
	return s.Finish(s.Begin(owner), attachments, ratios, containerWidth)
}

// Lookup returns the committed plan for owner.
func (s *Store) Lookup(owner string) (Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.load(owner)
	if e.plan == nil {
		return Plan{}, false
	}
	return e.plan.clone(), true
}

// Touch restarts the expiration window of owner's entry, if any.
func (s *Store) Touch(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.entries.Get(owner); ok {
		s.entries.SetDefault(owner, v)
	}
}

// Forget drops the committed plan for owner.
func (s *Store) Forget(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Delete(owner)
}

// Len returns the number of owners with a committed plan. Owners with a
// render pass in flight but nothing committed are not counted.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, item := range s.entries.Items() {
		if e, ok := item.Object.(entry); ok && e.plan != nil {
			n++
		}
	}
	return n
}

// load returns a copy of owner's entry; changes are stored with SetDefault.
func (s *Store) load(owner string) entry {
	if v, ok := s.entries.Get(owner); ok {
		return v.(entry)
	}
	return entry{}
}

func (s *Store) observe(outcome CommitOutcome) {
	if s.observer != nil {
		s.observer.ObserveCommit(outcome)
	}
}
