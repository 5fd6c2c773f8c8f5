package lifecycle

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/session"
)

const (
	MutedNotice   = "You are currently muted."
	NoTalkNotice  = "You are not allowed to talk for the duration of this event."
	UnknownNotice = "Unknown command."
)

// Chat caps and escapes the text, then either runs an in-game command or
// broadcasts the line to the speaker's region.
func Chat(env Env, s *session.Context, c protocol.Chat) session.Verdict {
	p := s.Player
	text := escapeCapped(strings.TrimSpace(c.Text), env.Tuning().MaxChatLength)
	if text == "" {
		return ignored("empty chat")
	}
	if text[0] == '/' || text[0] == ';' {
		return runCommand(env, p, text[1:])
	}
	if p.Muted {
		env.Notify(p, MutedNotice)
		return session.Reject(protocol.ErrNoPermission, "muted")
	}
	if !p.CanTalk {
		env.Notify(p, NoTalkNotice)
		return session.Reject(protocol.ErrNoPermission, "cannot talk")
	}
	env.Push(protocol.PushRegions, protocol.Push{
		RegionID: p.Region,
		Message: protocol.ChatMessage(protocol.ChatLine{
			ID:         p.Instance,
			Name:       p.Username,
			WithBubble: true,
			Text:       text,
			Duration:   env.Tuning().ChatDurationMs,
		}),
	})
	return session.Accept()
}

// escapeCapped HTML-escapes s, keeping at most limit runes of escaped output.
// An entity is never split. A limit of zero or less means no cap.
func escapeCapped(s string, limit int) string {
	if limit <= 0 {
		return strings.TrimSpace(html.EscapeString(s))
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		e := html.EscapeString(string(r))
		w := utf8.RuneCountInString(e)
		if n+w > limit {
			break
		}
		b.WriteString(e)
		n += w
	}
	return strings.TrimSpace(b.String())
}

type command func(env Env, p *model.Player, args []string) session.Verdict

var commands = map[string]command{
	"pvp": func(env Env, p *model.Player, _ []string) session.Verdict {
		p.PvP = !p.PvP
		state := "disabled"
		if p.PvP {
			state = "enabled"
		}
		env.Notify(p, "PvP is now "+state+".")
		env.Sync(p)
		return session.Accept()
	},
	"coords": func(env Env, p *model.Player, _ []string) session.Verdict {
		env.Notify(p, fmt.Sprintf("x: %d y: %d", p.Pos.X, p.Pos.Y))
		return session.Accept()
	},
	"players": func(env Env, p *model.Player, _ []string) session.Verdict {
		n := env.PlayerCount()
		noun := "players"
		if n == 1 {
			noun = "player"
		}
		env.Notify(p, fmt.Sprintf("There are currently %d online %s.", n, noun))
		return session.Accept()
	},
}

func runCommand(env Env, p *model.Player, line string) session.Verdict {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ignored("empty command")
	}
	cmd, ok := commands[strings.ToLower(fields[0])]
	if !ok {
		env.Notify(p, UnknownNotice)
		return session.Reject(protocol.ErrBadRequest, "unknown command "+fields[0])
	}
	return cmd(env, p, fields[1:])
}
