package protocol

const (
	// Boundary validation.
	ErrMalformed     = "E_MALFORMED"
	ErrUnknownOpcode = "E_UNKNOWN_OPCODE"

	// Entity references that no longer resolve.
	ErrStale = "E_STALE"

	// Policy.
	ErrNoClip       = "E_NO_CLIP"
	ErrSpeed        = "E_SPEED"
	ErrStopIdle     = "E_STOP_IDLE"
	ErrTooFast      = "E_TOO_FAST"
	ErrNotAllowed   = "E_NOT_ALLOWED"
	ErrInvalidState = "E_INVALID_STATE"
	ErrNoPermission = "E_NO_PERMISSION"
	ErrSuspicious   = "E_SUSPICIOUS"
	ErrIdle         = "E_IDLE"

	// Container transfers.
	ErrNoSpace    = "E_NO_SPACE"
	ErrEmptySlot  = "E_EMPTY_SLOT"
	ErrNoCurrency = "E_NO_CURRENCY"
	ErrBadRequest = "E_BAD_REQUEST"

	// Session.
	ErrLoggedIn     = "E_LOGGED_IN"
	ErrInvalidLogin = "E_INVALID_LOGIN"
	ErrUserExists   = "E_USER_EXISTS"
	ErrInternal     = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrMalformed:     {},
	ErrUnknownOpcode: {},
	ErrStale:         {},
	ErrNoClip:        {},
	ErrSpeed:         {},
	ErrStopIdle:      {},
	ErrTooFast:       {},
	ErrNotAllowed:    {},
	ErrInvalidState:  {},
	ErrNoPermission:  {},
	ErrSuspicious:    {},
	ErrIdle:          {},
	ErrNoSpace:       {},
	ErrEmptySlot:     {},
	ErrNoCurrency:    {},
	ErrBadRequest:    {},
	ErrLoggedIn:      {},
	ErrInvalidLogin:  {},
	ErrUserExists:    {},
	ErrInternal:      {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
