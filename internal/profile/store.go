package profile

import (
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nutriverse/nutribot/internal/segment"
)

// DefaultHistoryCap is the maximum number of turns kept per user.
const DefaultHistoryCap = 20

// InteractionSymptomReport is the event recorded when a user describes symptoms.
const InteractionSymptomReport = "symptom_report"

// ErrEmptyUserID is returned for an empty user identifier. It signals a
// caller bug rather than a runtime condition.
var ErrEmptyUserID = errors.New("user id must not be empty")

type entry struct {
	profile Profile
	history []Turn
}

// turnLock counts the callers holding or waiting for mu. refs is guarded by
// Store.lockMu.
type turnLock struct {
	mu   sync.Mutex
	refs int
}

// Store keeps profiles and histories in memory. mu guards the map and every
// entry; turn locks serialize whole conversation turns per user.
type Store struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	order     []string
	lockMu    sync.Mutex
	turnLocks map[string]*turnLock

	historyCap int
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithHistoryCap overrides DefaultHistoryCap.
func WithHistoryCap(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.historyCap = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty Store.
func NewStore(logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Store{
		entries:    make(map[string]*entry),
		turnLocks:  make(map[string]*turnLock),
		historyCap: DefaultHistoryCap,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.With("component", "profile_store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lock acquires the per-user turn lock and returns its release function.
// Turns for the same user run one at a time; different users do not block
// each other.
func (s *Store) Lock(userID string) func() {
	s.lockMu.Lock()
	l, ok := s.turnLocks[userID]
	if !ok {
		l = &turnLock{}
		s.turnLocks[userID] = l
	}
	l.refs++
	s.lockMu.Unlock()

	l.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			s.lockMu.Lock()
			l.refs--
			s.lockMu.Unlock()
		})
	}
}

// getOrCreateLocked must be called with mu held for writing.
func (s *Store) getOrCreateLocked(userID string) *entry {
	e, ok := s.entries[userID]
	if ok {
		return e
	}
	now := s.now()
	e = &entry{profile: Profile{
		UserID:            userID,
		AgeGroup:          AgeGroupAdult,
		MedicalConditions: []string{},
		Allergies:         []string{},
		DietPreferences:   []string{},
		CreatedAt:         now,
		LastActive:        now,
	}}
	e.profile.Segment = segment.Classify(e.profile.segmentInput())
	s.entries[userID] = e
	s.order = append(s.order, userID)
	s.logger.Debug("Created profile", "user_id", userID, "segment", e.profile.Segment)
	return e
}

// GetOrCreate returns the user's profile, creating it with defaults on first
// access. Every call counts as an interaction and refreshes LastActive.
func (s *Store) GetOrCreate(userID string) (Profile, error) {
	if userID == "" {
		return Profile{}, ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.getOrCreateLocked(userID)
	e.profile.Interactions++
	e.profile.LastActive = s.now()
	return e.profile.clone(), nil
}

// Ensure creates the profile if it does not exist, without counting an
// interaction.
func (s *Store) Ensure(userID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(userID)
	return nil
}

// Get returns a copy of the profile without counting an interaction.
func (s *Store) Get(userID string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[userID]
	if !ok {
		return Profile{}, false
	}
	return e.profile.clone(), true
}

// Update applies fn to the profile and then re-runs segment classification.
// A missing profile is created first.
func (s *Store) Update(userID string, fn func(p *Profile)) (Profile, error) {
	if userID == "" {
		return Profile{}, ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.getOrCreateLocked(userID)
	before := e.profile.Segment
	if fn != nil {
		fn(&e.profile)
	}
	e.profile.UserID = userID
	e.profile.Segment = segment.Classify(e.profile.segmentInput())
	if before != e.profile.Segment {
		s.logger.Info("Profile segment changed", "user_id", userID, "from", before, "to", e.profile.Segment)
	}
	return e.profile.clone(), nil
}

// RecordInteraction records a chat interaction event on the profile.
func (s *Store) RecordInteraction(userID, kind, sentiment string) (Profile, error) {
	s.logger.Debug("Recording interaction", "user_id", userID, "kind", kind, "sentiment", sentiment)
	return s.Update(userID, func(p *Profile) {
		if kind != InteractionSymptomReport {
			return
		}
		// TODO: both checks inspect the event kind, which is always
		// "symptom_report" here, so neither can fire. Confirm with product
		// whether they were meant to inspect the user's message instead.
		k := strings.ToLower(kind)
		if strings.Contains(k, "bloating") && !slices.Contains(p.Complaints, "bloating") {
			p.Complaints = append(p.Complaints, "bloating")
			p.MedicalConditions = append(p.MedicalConditions, "digestive_issues")
		}
		if strings.Contains(k, "baby") && !p.HasChildren {
			p.HasChildren = true
		}
	})
}

// AddAnalysis appends a product analysis to the profile.
func (s *Store) AddAnalysis(userID string, rec AnalysisRecord) error {
	if rec.At.IsZero() {
		rec.At = s.now()
	}
	_, err := s.Update(userID, func(p *Profile) {
		p.PreviousAnalyses = append(p.PreviousAnalyses, rec)
	})
	return err
}

// AddRecommendation records a recommendation that worked for the user.
func (s *Store) AddRecommendation(userID, text string) error {
	at := s.now()
	_, err := s.Update(userID, func(p *Profile) {
		p.SuccessfulRecommendations = append(p.SuccessfulRecommendations, Recommendation{Text: text, At: at})
	})
	return err
}

// appendLocked must be called with mu held for writing.
func (s *Store) appendLocked(e *entry, role Role, text string) {
	e.history = append(e.history, Turn{Role: role, Text: text, At: s.now()})
	if over := len(e.history) - s.historyCap; over > 0 {
		e.history = slices.Clone(e.history[over:])
	}
}

// AppendHistory appends one turn, evicting the oldest turns beyond the cap.
func (s *Store) AppendHistory(userID string, role Role, text string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(s.getOrCreateLocked(userID), role, text)
	return nil
}

// CommitTurn appends the user message and the reply, records the given
// recommendations and counts one interaction, all under a single lock
// acquisition.
func (s *Store) CommitTurn(userID, userText, reply string, recommendations ...string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.getOrCreateLocked(userID)
	s.appendLocked(e, RoleUser, userText)
	s.appendLocked(e, RoleAssistant, reply)
	now := s.now()
	for _, text := range recommendations {
		e.profile.SuccessfulRecommendations = append(e.profile.SuccessfulRecommendations, Recommendation{Text: text, At: now})
	}
	e.profile.Interactions++
	e.profile.LastActive = now
	return nil
}

// History returns the last n turns in chronological order. n <= 0 returns
// the whole history.
func (s *Store) History(userID string, n int) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[userID]
	if !ok {
		return nil
	}
	h := e.history
	if n > 0 && len(h) > n {
		h = h[len(h)-n:]
	}
	return slices.Clone(h)
}

// ClearHistory drops the user's conversation history and keeps the profile.
func (s *Store) ClearHistory(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[userID]; ok {
		e.history = nil
	}
}

// All returns copies of every profile in creation order.
func (s *Store) All() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id].profile.clone())
	}
	return out
}

// Members returns copies of the profiles in the given segment, in creation order.
func (s *Store) Members(segmentName string) []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Profile
	for _, id := range s.order {
		if p := s.entries[id].profile; p.Segment == segmentName {
			out = append(out, p.clone())
		}
	}
	return out
}

// Len returns the number of profiles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes profiles that have been idle for longer than idle and
// returns how many were removed. Users holding or waiting for their turn
// lock are kept.
func (s *Store) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.order[:0]
	removed := 0
	for _, id := range s.order {
		if !s.entries[id].profile.LastActive.Before(cutoff) {
			kept = append(kept, id)
			continue
		}
		if l, ok := s.turnLocks[id]; ok {
			if l.refs > 0 {
				kept = append(kept, id)
				continue
			}
			delete(s.turnLocks, id)
		}
		delete(s.entries, id)
		removed++
	}
	s.order = kept

	if removed > 0 {
		s.logger.Info("Swept idle profiles", "removed", removed, "remaining", len(kept))
	}
	return removed
}
