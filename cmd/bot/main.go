package main

import (
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"realmgate.io/internal/protocol"
)

// step directions paired with the orientation a walker faces.
var steps = []struct {
	dx, dy int
	o      protocol.Orientation
}{
	{0, -1, protocol.OrientationUp},
	{0, 1, protocol.OrientationDown},
	{-1, 0, protocol.OrientationLeft},
	{1, 0, protocol.OrientationRight},
}

func main() {
	var (
		url   = flag.String("url", "ws://localhost:8000/v1/ws", "ws url")
		every = flag.Duration("every", 2*time.Second, "pause between steps")
		user  = flag.String("user", "", "username (empty logs in as a guest)")
		pass  = flag.String("pass", "", "password")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	frames := make(chan frame, 64)
	go func() {
		defer close(frames)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				logger.Printf("read: %v", err)
				return
			}
			var f frame
			if err := f.decode(msg); err != nil {
				continue
			}
			frames <- f
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	var (
		me      protocol.WelcomePayload
		walking <-chan time.Time
		r       = rand.New(rand.NewSource(time.Now().UnixNano()))
	)
	for {
		select {
		case <-stop:
			return

		case f, ok := <-frames:
			if !ok {
				return
			}
			switch f.Op {
			case protocol.OpHandshake:
				intro := protocol.Message{Op: protocol.OpIntro, Fields: []any{int(protocol.IntroGuest), "", ""}}
				if *user != "" {
					intro.Fields = []any{int(protocol.IntroLogin), *user, *pass}
				}
				send(conn, logger, intro)

			case protocol.OpWelcome:
				if len(f.Fields) == 0 {
					logger.Fatalf("welcome without payload")
				}
				if err := json.Unmarshal(f.Fields[0], &me); err != nil {
					logger.Fatalf("welcome: %v", err)
				}
				logger.Printf("WELCOME %s instance=%d at (%d,%d)", me.Username, me.Instance, me.X, me.Y)
				send(conn, logger, protocol.Message{Op: protocol.OpReady, Fields: []any{true, false, "realmgate-bot"}})
				walking = time.Tick(*every)

			case protocol.OpIntro:
				logger.Fatalf("login refused: %s", f.Fields)

			case protocol.OpTeleport:
				var inst, x, y int
				if len(f.Fields) >= 3 && json.Unmarshal(f.Fields[0], &inst) == nil && inst == me.Instance {
					_ = json.Unmarshal(f.Fields[1], &x)
					_ = json.Unmarshal(f.Fields[2], &y)
					me.X, me.Y = x, y
				}

			case protocol.OpNotification:
				logger.Printf("notice: %s", f.Fields)
			}

		case <-walking:
			s := steps[r.Intn(len(steps))]
			tx, ty := me.X+s.dx, me.Y+s.dy
			send(conn, logger, protocol.Movement(protocol.MovementRequest, tx, ty, me.X, me.Y))
			send(conn, logger, protocol.Movement(protocol.MovementStarted, tx, ty, me.X, me.Y))
			time.Sleep(time.Duration(me.MovementSpeed) * time.Millisecond)
			send(conn, logger, protocol.Movement(protocol.MovementStep, tx, ty))
			send(conn, logger, protocol.Movement(protocol.MovementStop, tx, ty, nil, false, int(s.o)))
			me.X, me.Y = tx, ty
		}
	}
}

type frame struct {
	Op     protocol.Opcode
	Fields []json.RawMessage
}

func (f *frame) decode(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw[0], &f.Op); err != nil {
			return err
		}
	}
	if len(raw) > 1 {
		return json.Unmarshal(raw[1], &f.Fields)
	}
	return nil
}

func send(conn *websocket.Conn, logger *log.Logger, m protocol.Message) {
	if err := conn.WriteJSON(m); err != nil {
		logger.Fatalf("send %s: %v", m.Op, err)
	}
}
