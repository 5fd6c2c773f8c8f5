package world

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/catalogs"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/router"
	"realmgate.io/internal/sim/session"
	"realmgate.io/internal/sim/tuning"
	"realmgate.io/internal/sim/world/feature/economy/trade"
	"realmgate.io/internal/sim/world/feature/lifecycle"
)

type WorldConfig struct {
	ID     string
	Tuning tuning.Tuning
	Logger *log.Logger
}

// JoinRequest attaches a new connection. Out receives encoded frames and is
// never closed by the world; Kick receives the reason when the world wants
// the connection closed.
type JoinRequest struct {
	Out  chan []byte
	Kick chan string
	Resp chan JoinResponse
}

type JoinResponse struct {
	SessionID string
}

type Envelope struct {
	SessionID string
	Cmd       protocol.Command
}

// Store persists accounts and player saves. Implemented in
// internal/persistence/accounts.
type Store interface {
	lifecycle.Accounts
	LoadPlayer(username string) (model.PlayerSave, bool, error)
	SavePlayer(save model.PlayerSave) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

// World is the authoritative game state. All state must be accessed only
// from the world loop goroutine.
type World struct {
	cfg  WorldConfig
	tun  tuning.Tuning
	cats *catalogs.Catalogs
	log  *log.Logger
	now  func() time.Time

	router *router.Router

	tick atomic.Uint64

	entities     map[int]*model.Entity
	players      map[int]*model.Player
	sessions     map[string]*session.Context
	byName       map[string]*session.Context
	regions      map[string]map[int]bool
	nextInstance int

	shops   *shopBook
	trades  *trade.Book
	homes   map[int]*home
	lastHit map[int]time.Time
	npcText map[int][]string
	talks   map[[2]int]int
	closing map[string]bool

	store       Store
	auditLogger AuditLogger

	inbox chan Envelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	metrics atomic.Value
	audits  atomic.Uint64
	kicks   atomic.Uint64
	dropped atomic.Uint64
}

var ErrNoCatalogs = errors.New("world: catalogs are required")

func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	if cats == nil {
		return nil, ErrNoCatalogs
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("world %s: %w", cfg.ID, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	w := &World{
		cfg:      cfg,
		tun:      cfg.Tuning,
		cats:     cats,
		log:      logger,
		now:      time.Now,
		entities: map[int]*model.Entity{},
		players:  map[int]*model.Player{},
		sessions: map[string]*session.Context{},
		byName:   map[string]*session.Context{},
		regions:  map[string]map[int]bool{},
		trades:   trade.NewBook(),
		homes:    map[int]*home{},
		lastHit:  map[int]time.Time{},
		npcText:  map[int][]string{},
		talks:    map[[2]int]int{},
		closing:  map[string]bool{},
		inbox:    make(chan Envelope, 1024),
		join:     make(chan JoinRequest, 64),
		leave:    make(chan string, 64),
		stop:     make(chan struct{}),
	}
	w.shops = newShopBook(w, cats.Shops, cfg.Tuning.ShopSize)
	w.router = router.New(w)
	w.populate()
	w.publishMetrics(0)
	return w, nil
}

func (w *World) SetAuditLogger(l AuditLogger) { w.auditLogger = l }
func (w *World) SetStore(s Store)             { w.store = s }

// SetClock replaces the wall clock. Call before Run.
func (w *World) SetClock(now func() time.Time) { w.now = now }

func (w *World) Inbox() chan<- Envelope     { return w.inbox }
func (w *World) Join() chan<- JoinRequest { return w.join }
func (w *World) Leave() chan<- string     { return w.leave }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

// Run processes commands as they arrive and runs housekeeping on the ticker.
// Commands from one session are handled strictly in arrival order.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.tun.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.saveAll()
			return ctx.Err()
		case <-w.stop:
			w.saveAll()
			return nil
		case req := <-w.join:
			w.handleJoin(req)
		case id := <-w.leave:
			w.handleLeave(id)
		case env := <-w.inbox:
			w.handleEnvelope(env)
		case <-ticker.C:
			w.step()
		}
	}
}

func (w *World) Stop() { close(w.stop) }

func (w *World) handleJoin(req JoinRequest) {
	s := session.New(&clientConn{out: req.Out, kick: req.Kick, dropped: &w.dropped}, w.now())
	w.sessions[s.ID] = s
	w.writeAudit(s, "JOIN", session.Accept())
	s.Send(protocol.Handshake())
	if req.Resp != nil {
		req.Resp <- JoinResponse{SessionID: s.ID}
	}
}

func (w *World) handleLeave(id string) {
	s, ok := w.sessions[id]
	if !ok {
		return
	}
	delete(w.sessions, id)
	delete(w.closing, id)
	p := s.Player
	if p == nil {
		w.writeAudit(s, "LEAVE", session.Accept())
		return
	}
	if ts := w.trades.Leave(p.Instance); ts != nil {
		if other := w.players[ts.Counterpart(p.Instance)]; other != nil {
			w.Send(other, protocol.TradeMsg(protocol.TradeDecline, p.Instance))
		}
	}
	w.Save(p)
	w.removePlayer(p)
	if w.byName[p.Username] == s {
		delete(w.byName, p.Username)
	}
	for key := range w.talks {
		if key[0] == p.Instance {
			delete(w.talks, key)
		}
	}
	w.writeAudit(s, "LEAVE", session.Accept())
}

func (w *World) handleEnvelope(env Envelope) {
	s, ok := w.sessions[env.SessionID]
	if !ok || env.Cmd == nil {
		return
	}
	w.router.Dispatch(s, env.Cmd)
}

// StepOnce applies joins, leaves and commands in order and then runs one
// housekeeping tick. Used by tests and tools that drive the world without Run.
func (w *World) StepOnce(joins []JoinRequest, leaves []string, cmds []Envelope) uint64 {
	for _, j := range joins {
		w.handleJoin(j)
	}
	for _, c := range cmds {
		w.handleEnvelope(c)
	}
	for _, id := range leaves {
		w.handleLeave(id)
	}
	w.step()
	return w.tick.Load()
}

func (w *World) step() {
	start := time.Now()
	tick := w.tick.Add(1)
	now := w.now()

	w.systemModeration(now)
	w.systemCombat(now)
	w.systemItems(now)
	w.systemRespawns(now)
	if every := uint64(w.tun.SaveEveryTicks); every > 0 && tick%every == 0 {
		w.saveAll()
	}
	if tick%uint64(w.tun.TickRateHz*60) == 0 {
		w.shops.restock()
	}
	w.publishMetrics(time.Since(start))
}

// clientConn adapts a transport's outbound channel to session.Conn.
type clientConn struct {
	out     chan []byte
	kick    chan string
	dropped *atomic.Uint64
}

func (c *clientConn) Send(msg protocol.Message) bool {
	if c == nil || c.out == nil {
		return false
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return false
	}
	if len(c.out) == cap(c.out) && c.dropped != nil {
		c.dropped.Add(1)
	}
	return sendLatest(c.out, b)
}

func (c *clientConn) Close(reason string) {
	if c == nil || c.kick == nil {
		return
	}
	select {
	case c.kick <- reason:
	default:
	}
}

// sendLatest never blocks: when the client queue is full the oldest frame is
// dropped. It reports false if nothing could be queued.
func sendLatest(ch chan []byte, b []byte) bool {
	select {
	case ch <- b:
		return true
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
		return true
	default:
		return false
	}
}
