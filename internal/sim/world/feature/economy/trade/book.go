// Package trade tracks player-to-player trade negotiation: a request pairs
// two players once both have asked, and the trade completes when both
// sides accept.
package trade

import (
	"fmt"
	"time"
)

type Outcome int

const (
	None Outcome = iota
	Pending
	Opened
	Accepted
	Completed
	Declined
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Opened:
		return "opened"
	case Accepted:
		return "accepted"
	case Completed:
		return "completed"
	case Declined:
		return "declined"
	}
	return "none"
}

type Session struct {
	ID        string
	From      int
	To        int
	Open      bool
	Accepted  [2]bool
	CreatedAt time.Time
}

// Counterpart returns the other side of the session for instance.
func (s *Session) Counterpart(instance int) int {
	if s.From == instance {
		return s.To
	}
	return s.From
}

func (s *Session) side(instance int) int {
	if s.From == instance {
		return 0
	}
	return 1
}

// Book holds every live trade session. A player takes part in at most one.
type Book struct {
	next     int
	byID     map[string]*Session
	byPlayer map[int]*Session
}

func NewBook() *Book {
	return &Book{
		byID:     map[string]*Session{},
		byPlayer: map[int]*Session{},
	}
}

func (b *Book) Len() int { return len(b.byID) }

func (b *Book) Get(instance int) *Session { return b.byPlayer[instance] }

// Request records that from wants to trade with to. A request answering a
// pending request in the other direction opens the session. A new request
// replaces any other session from is part of.
func (b *Book) Request(from, to int, now time.Time) (*Session, Outcome) {
	if cur := b.byPlayer[from]; cur != nil {
		if cur.Counterpart(from) == to {
			if !cur.Open && cur.To == from {
				cur.Open = true
				return cur, Opened
			}
			return cur, None
		}
		b.drop(cur)
	}
	if other := b.byPlayer[to]; other != nil {
		return nil, None
	}
	b.next++
	s := &Session{
		ID:        fmt.Sprintf("TR%06d", b.next),
		From:      from,
		To:        to,
		CreatedAt: now,
	}
	b.byID[s.ID] = s
	b.byPlayer[from] = s
	b.byPlayer[to] = s
	return s, Pending
}

// Accept marks instance's side as accepted. Only open sessions with the named
// counterpart can be accepted; the session is removed once both sides agree.
func (b *Book) Accept(instance, counterpart int) (*Session, Outcome) {
	s := b.byPlayer[instance]
	if s == nil || !s.Open || s.Counterpart(instance) != counterpart {
		return nil, None
	}
	s.Accepted[s.side(instance)] = true
	if s.Accepted[0] && s.Accepted[1] {
		b.drop(s)
		return s, Completed
	}
	return s, Accepted
}

// Decline cancels whatever session instance is part of.
func (b *Book) Decline(instance int) (*Session, Outcome) {
	s := b.byPlayer[instance]
	if s == nil {
		return nil, None
	}
	b.drop(s)
	return s, Declined
}

// Leave is Decline for a disconnecting player.
func (b *Book) Leave(instance int) *Session {
	s, _ := b.Decline(instance)
	return s
}

func (b *Book) drop(s *Session) {
	delete(b.byID, s.ID)
	if b.byPlayer[s.From] == s {
		delete(b.byPlayer, s.From)
	}
	if b.byPlayer[s.To] == s {
		delete(b.byPlayer, s.To)
	}
}
