package store

import (
	"log"
	"sync"
)

// CreditLedger abstracts the credit-score collaborator.  The core only
// needs to read a user's score and apply adjustable-integer deltas; the
// scoring formula itself lives elsewhere.
type CreditLedger interface {
	// Score returns the user's current credit score.
	Score(userID uint64) int
	// Adjust applies a signed delta and returns the new score.
	Adjust(userID uint64, delta int, reason string) int
}

// initialCredit is granted to users the ledger has not seen before.
const initialCredit = 100

// MemoryLedger is the in-process CreditLedger used in single-instance
// deployments and tests.  Scores are clamped to [0, initialCredit].
type MemoryLedger struct {
	mu     sync.Mutex
	scores map[uint64]int
}

// NewMemoryLedger returns an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{scores: make(map[uint64]int)}
}

func (l *MemoryLedger) Score(userID uint64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.score(userID)
}

func (l *MemoryLedger) Adjust(userID uint64, delta int, reason string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.score(userID) + delta
	if s < 0 {
		s = 0
	}
	if s > initialCredit {
		s = initialCredit
	}
	l.scores[userID] = s
	log.Printf("credit: user=%d delta=%+d score=%d reason=%s", userID, delta, s, reason)
	return s
}

func (l *MemoryLedger) score(userID uint64) int {
	if s, ok := l.scores[userID]; ok {
		return s
	}
	return initialCredit
}
