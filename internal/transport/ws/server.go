package ws

import (
	"context"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/world"
)

const (
	writeWait = 5 * time.Second
	readWait  = 60 * time.Second
	// maxBadFrames closes a connection that keeps sending unreadable frames.
	maxBadFrames = 20
)

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
	queueLen int

	conns     atomic.Int64
	badFrames atomic.Uint64
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	s := &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		queueLen: w.Tuning().ClientQueueLen,
	}
	return s
}

// Connections is the number of open websocket connections.
func (s *Server) Connections() int64 { return s.conns.Load() }

// BadFrames counts frames whose header could not be decoded.
func (s *Server) BadFrames() uint64 { return s.badFrames.Load() }

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		s.conns.Add(1)
		defer s.conns.Add(-1)
		conn.SetReadLimit(protocol.MaxFrameBytes + 1)

		out := make(chan []byte, s.queueLen)
		kick := make(chan string, 1)
		sessionID := s.join(out, kick)
		if sessionID == "" {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case reason := <-kick:
					// Flush what the world queued before asking to close.
					drain(conn, out)
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
						time.Now().Add(time.Second))
					cancel()
					_ = conn.Close()
					return
				case b := <-out:
					if err := write(conn, b); err != nil {
						cancel()
						_ = conn.Close()
						return
					}
				}
			}
		}()

		// Reader loop.
		bad := 0
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readWait))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
					s.log.Printf("session %s read: %v", sessionID, err)
				}
				break
			}
			cmd, err := protocol.Decode(msg)
			if err != nil {
				s.badFrames.Add(1)
				if bad++; bad >= maxBadFrames {
					s.log.Printf("session %s: closing after %d bad frames (last: %v)", sessionID, bad, err)
					break
				}
				continue
			}
			select {
			case s.world.Inbox() <- world.Envelope{SessionID: sessionID, Cmd: cmd}:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}

		// Cleanup.
		cancel()
		s.world.Leave() <- sessionID
	}
}

func (s *Server) join(out chan []byte, kick chan string) string {
	respCh := make(chan world.JoinResponse, 1)
	s.world.Join() <- world.JoinRequest{Out: out, Kick: kick, Resp: respCh}
	resp := <-respCh
	return resp.SessionID
}

func write(conn *websocket.Conn, b []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func drain(conn *websocket.Conn, out chan []byte) {
	for {
		select {
		case b := <-out:
			if write(conn, b) != nil {
				return
			}
		default:
			return
		}
	}
}
