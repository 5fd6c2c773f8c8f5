package lifecycle

import (
	"strings"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/session"
)

const (
	maxCredentialLen = 32
	maxEmailLen      = 128
)

// Intro authenticates a connection. Only the first intro on a session is
// processed; every refusal closes the connection.
func Intro(env Env, s *session.Context, c protocol.Intro) session.Verdict {
	if s.Introduced || s.Player != nil {
		return session.Reject(protocol.ErrLoggedIn, "already introduced")
	}
	username := strings.ToLower(truncate(strings.TrimSpace(c.Username), maxCredentialLen))
	password := truncate(c.Password, maxCredentialLen)
	email := ""
	if c.Type == protocol.IntroRegister {
		email = strings.ToLower(truncate(c.Email, maxEmailLen))
	}

	if c.Type != protocol.IntroGuest && env.Online(username) {
		refuse(s, "loggedin", "player already logged in")
		return session.Reject(protocol.ErrLoggedIn, username)
	}
	s.Introduced = true

	if env.Tuning().OfflineMode {
		return enter(env, s, username, "", false, true)
	}

	switch c.Type {
	case protocol.IntroGuest:
		return enter(env, s, env.GuestName(), "", true, true)

	case protocol.IntroRegister:
		if username == "" || password == "" {
			refuse(s, "invalidlogin", "empty credentials")
			return session.Reject(protocol.ErrInvalidLogin, "empty credentials")
		}
		exists, err := env.Accounts().Exists(username)
		if err != nil {
			refuse(s, "error", "account lookup failed")
			return session.Reject(protocol.ErrInternal, err.Error())
		}
		if exists {
			refuse(s, "userexists", "username is not available")
			return session.Reject(protocol.ErrUserExists, username)
		}
		if err := env.Accounts().Register(username, password, email); err != nil {
			refuse(s, "error", "registration failed")
			return session.Reject(protocol.ErrInternal, err.Error())
		}
		return enter(env, s, username, email, false, true)

	default:
		ok, err := env.Accounts().Verify(username, password)
		if err != nil {
			refuse(s, "error", "account lookup failed")
			return session.Reject(protocol.ErrInternal, err.Error())
		}
		if !ok {
			refuse(s, "invalidlogin", "wrong password entered for "+username)
			return session.Reject(protocol.ErrInvalidLogin, username)
		}
		return enter(env, s, username, "", false, false)
	}
}

func enter(env Env, s *session.Context, username, email string, guest, fresh bool) session.Verdict {
	if err := env.Enter(s, username, email, guest, fresh); err != nil {
		refuse(s, "error", "could not load player")
		return session.Reject(protocol.ErrInternal, err.Error())
	}
	return session.Accept()
}

func refuse(s *session.Context, reason, closeReason string) {
	s.Send(protocol.IntroFailure(reason))
	if s.Conn != nil {
		s.Conn.Close(closeReason)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
