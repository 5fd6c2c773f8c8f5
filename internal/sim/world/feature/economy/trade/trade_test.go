package trade

import (
	"testing"
	"time"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/session"
	"realmgate.io/internal/sim/slots"
)

func TestBook_RequestPairsAndCompletes(t *testing.T) {
	b := NewBook()
	now := time.Unix(10, 0)

	s, out := b.Request(1, 2, now)
	if out != Pending || s.ID != "TR000001" {
		t.Fatalf("first request: %v %+v", out, s)
	}
	if _, out := b.Accept(1, 2); out != None {
		t.Fatalf("accepting a pending trade: %v", out)
	}
	if _, out := b.Request(1, 2, now); out != None {
		t.Fatalf("repeat request: %v", out)
	}
	if _, out := b.Request(2, 1, now); out != Opened {
		t.Fatalf("answering request: %v", out)
	}
	if _, out := b.Accept(2, 1); out != Accepted {
		t.Fatalf("first accept: %v", out)
	}
	if _, out := b.Accept(1, 2); out != Completed {
		t.Fatalf("second accept: %v", out)
	}
	if b.Len() != 0 || b.Get(1) != nil || b.Get(2) != nil {
		t.Fatalf("completed trade still in book")
	}
}

func TestBook_BusyCounterpartAndReplace(t *testing.T) {
	b := NewBook()
	now := time.Unix(0, 0)
	b.Request(1, 2, now)
	if _, out := b.Request(3, 2, now); out != None {
		t.Fatalf("request to busy player: %v", out)
	}
	if _, out := b.Request(1, 3, now); out != Pending {
		t.Fatalf("replacement request: %v", out)
	}
	if b.Get(2) != nil || b.Len() != 1 {
		t.Fatalf("old session not dropped")
	}
}

func TestBook_LeaveClears(t *testing.T) {
	b := NewBook()
	b.Request(1, 2, time.Unix(0, 0))
	b.Request(2, 1, time.Unix(0, 0))
	s := b.Leave(2)
	if s == nil || s.Counterpart(2) != 1 || b.Len() != 0 {
		t.Fatalf("leave: %+v len=%d", s, b.Len())
	}
	if b.Leave(2) != nil {
		t.Fatalf("second leave found a session")
	}
}

type stubTradeEnv struct {
	book    *Book
	players map[int]*model.Player
	sent    map[int][]protocol.Message
	notes   map[int][]string
}

func newStubTradeEnv() *stubTradeEnv {
	return &stubTradeEnv{
		book:    NewBook(),
		players: map[int]*model.Player{},
		sent:    map[int][]protocol.Message{},
		notes:   map[int][]string{},
	}
}

func (e *stubTradeEnv) Now() time.Time                        { return time.Unix(0, 0) }
func (e *stubTradeEnv) Trades() *Book                         { return e.book }
func (e *stubTradeEnv) PlayerByInstance(id int) *model.Player { return e.players[id] }
func (e *stubTradeEnv) Send(p *model.Player, m protocol.Message) {
	e.sent[p.Instance] = append(e.sent[p.Instance], m)
}
func (e *stubTradeEnv) Notify(p *model.Player, text string) {
	e.notes[p.Instance] = append(e.notes[p.Instance], text)
}

func (e *stubTradeEnv) join(instance int, name string) *session.Context {
	rules := slots.RulesFunc(func(int) int { return 1 })
	p := model.NewPlayer(instance, name, slots.NewStore(1, rules), slots.NewStore(1, rules))
	e.players[instance] = p
	s := session.New(nil, time.Unix(0, 0))
	s.Player = p
	return s
}

func TestHandle_MissingCounterpartDropped(t *testing.T) {
	env := newStubTradeEnv()
	alice := env.join(1, "alice")
	if v := Handle(env, alice, protocol.Trade{Action: protocol.TradeRequest, Counterpart: 9}); v.Accepted {
		t.Fatalf("missing counterpart accepted")
	}
	if v := Handle(env, alice, protocol.Trade{Action: protocol.TradeRequest, Counterpart: 1}); v.Accepted {
		t.Fatalf("self trade accepted")
	}
	if env.book.Len() != 0 {
		t.Fatalf("book mutated")
	}
}

func TestHandle_FullNegotiation(t *testing.T) {
	env := newStubTradeEnv()
	alice := env.join(1, "alice")
	bob := env.join(2, "bob")

	Handle(env, alice, protocol.Trade{Action: protocol.TradeRequest, Counterpart: 2})
	if len(env.sent[2]) != 1 || len(env.notes[2]) != 1 || env.notes[2][0] != "alice wants to trade with you." {
		t.Fatalf("bob not told: sent=%v notes=%v", env.sent[2], env.notes[2])
	}
	Handle(env, bob, protocol.Trade{Action: protocol.TradeRequest, Counterpart: 1})
	Handle(env, alice, protocol.Trade{Action: protocol.TradeAccept, Counterpart: 2})
	v := Handle(env, bob, protocol.Trade{Action: protocol.TradeAccept, Counterpart: 1})
	if !v.Accepted || env.book.Len() != 0 {
		t.Fatalf("verdict=%+v len=%d", v, env.book.Len())
	}
	if got := env.notes[1]; len(got) != 1 || got[0] != "Trade completed." {
		t.Fatalf("alice notes=%v", got)
	}
}

func TestHandle_DeclineTellsCounterpart(t *testing.T) {
	env := newStubTradeEnv()
	alice := env.join(1, "alice")
	bob := env.join(2, "bob")
	Handle(env, alice, protocol.Trade{Action: protocol.TradeRequest, Counterpart: 2})
	before := len(env.sent[1])
	if v := Handle(env, bob, protocol.Trade{Action: protocol.TradeDecline, Counterpart: 1}); !v.Accepted {
		t.Fatalf("decline: %+v", v)
	}
	if len(env.sent[1]) != before+1 || env.book.Len() != 0 {
		t.Fatalf("decline not delivered")
	}
}
