package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxFrameBytes bounds a single client frame.
const MaxFrameBytes = 16 << 10

var ErrBadFrame = errors.New("bad frame")

// Decode turns one wire frame `[opcode, [fields...]]` into a typed Command.
//
// It returns an error only when the frame header itself cannot be read. A
// frame with an opcode clients may not send decodes to Unknown, and a frame
// whose fields do not match the opcode's layout decodes to Malformed; both
// are still routed so the caller can log them and refresh the idle timer.
func Decode(data []byte) (Command, error) {
	if len(data) > MaxFrameBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadFrame, len(data))
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var frame []any
	if err := dec.Decode(&frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	if len(frame) == 0 || len(frame) > 2 {
		return nil, fmt.Errorf("%w: want [opcode, fields], got %d elements", ErrBadFrame, len(frame))
	}
	n, ok := toInt(frame[0])
	if !ok {
		return nil, fmt.Errorf("%w: opcode is not an integer", ErrBadFrame)
	}
	op := Opcode(n)

	fn, ok := decoders[op]
	if !ok {
		return Unknown{Op: op}, nil
	}
	var fields []any
	if len(frame) == 2 && frame[1] != nil {
		fields, ok = frame[1].([]any)
		if !ok {
			return Malformed{Op: op, Reason: "fields must be an array"}, nil
		}
	}
	r := &fieldReader{fields: fields}
	cmd := fn(r)
	if r.err != nil {
		return Malformed{Op: op, Reason: r.err.Error()}, nil
	}
	if r.pos < len(r.fields) {
		return Malformed{Op: op, Reason: fmt.Sprintf("%d trailing fields", len(r.fields)-r.pos)}, nil
	}
	return cmd, nil
}

var decoders = map[Opcode]func(*fieldReader) Command{
	OpIntro:      decodeIntro,
	OpReady:      decodeReady,
	OpWho:        decodeWho,
	OpEquipment:  decodeEquipment,
	OpMovement:   decodeMovement,
	OpRequest:    func(r *fieldReader) Command { return RegionRequest{Instance: r.int("instance")} },
	OpTarget:     decodeTarget,
	OpCombat:     decodeCombat,
	OpProjectile: decodeProjectile,
	OpNetwork:    decodeNetwork,
	OpChat:       func(r *fieldReader) Command { return Chat{Text: r.str("text")} },
	OpInventory:  decodeInventory,
	OpBank:       decodeBank,
	OpRespawn:    func(r *fieldReader) Command { return Respawn{Instance: r.int("instance")} },
	OpTrade:      decodeTrade,
	OpEnchant:    decodeEnchant,
	OpClick:      decodeClick,
	OpWarp:       func(r *fieldReader) Command { return Warp{ID: r.looseInt("id")} },
	OpShop:       decodeShop,
	OpRegion:     func(r *fieldReader) Command { r.skipRest(); return Region{} },
	OpCamera:     func(r *fieldReader) Command { r.skipRest(); return Camera{} },
}

func decodeIntro(r *fieldReader) Command {
	c := Intro{Type: IntroType(r.int("login_type"))}
	switch c.Type {
	case IntroLogin, IntroRegister, IntroGuest:
	default:
		r.fail("unknown login type %d", c.Type)
		return nil
	}
	c.Username = r.str("username")
	c.Password = r.str("password")
	if c.Type == IntroRegister {
		c.Email = r.str("email")
	}
	return c
}

func decodeReady(r *fieldReader) Command {
	c := Ready{Ready: r.flag("ready"), Preloaded: r.flag("preloaded")}
	if r.more() {
		c.UserAgent = r.str("user_agent")
	}
	return c
}

func decodeWho(r *fieldReader) Command {
	return Who{Instances: r.ints("instances")}
}

func decodeEquipment(r *fieldReader) Command {
	if sub := r.int("opcode"); sub != EquipmentOpUnequip {
		r.unsupported(sub)
		return nil
	}
	name := r.str("type")
	slot, ok := ParseEquipSlot(name)
	if !ok {
		r.fail("unknown equipment type %q", name)
		return nil
	}
	return Unequip{Slot: slot}
}

func decodeMovement(r *fieldReader) Command {
	sub := MovementOp(r.int("opcode"))
	switch sub {
	case MovementRequest:
		return MoveRequest{
			RequestX:  r.int("request_x"),
			RequestY:  r.int("request_y"),
			ReportedX: r.int("player_x"),
			ReportedY: r.int("player_y"),
		}
	case MovementStarted:
		c := MoveStarted{
			SelectedX: r.int("selected_x"),
			SelectedY: r.int("selected_y"),
			ReportedX: r.int("player_x"),
			ReportedY: r.int("player_y"),
		}
		if r.more() {
			c.Speed, c.HasSpeed = r.optInt("movement_speed")
		}
		return c
	case MovementStep:
		return MoveStep{X: r.int("x"), Y: r.int("y")}
	case MovementStop:
		c := MoveStop{X: r.int("x"), Y: r.int("y")}
		c.Target, _ = r.optInt("target")
		c.HasTarget = r.flag("has_target")
		c.Orientation = r.orientation()
		return c
	case MovementEntity:
		return MoveEntity{Instance: r.int("instance"), X: r.int("x"), Y: r.int("y")}
	case MovementOrientate:
		return Orientate{Orientation: r.orientation()}
	case MovementFreeze:
		return Freeze{Frozen: r.flag("frozen")}
	case MovementZone:
		return Zone{Direction: r.int("direction")}
	}
	r.unsupported(int(sub))
	return nil
}

func decodeTarget(r *fieldReader) Command {
	action := TargetAction(r.int("opcode"))
	switch action {
	case TargetTalk, TargetAttack, TargetNone:
	default:
		r.unsupported(int(action))
		return nil
	}
	inst, _ := r.optInt("instance")
	return Target{Action: action, Instance: inst}
}

func decodeCombat(r *fieldReader) Command {
	if sub := r.int("opcode"); sub != CombatOpInitiate {
		r.unsupported(sub)
		return nil
	}
	return CombatInitiate{Attacker: r.int("attacker"), Target: r.int("target")}
}

func decodeProjectile(r *fieldReader) Command {
	if sub := r.int("type"); sub != ProjectileOpImpact {
		r.unsupported(sub)
		return nil
	}
	return ProjectileImpact{Projectile: r.int("projectile"), Target: r.int("target")}
}

func decodeNetwork(r *fieldReader) Command {
	if sub := r.int("opcode"); sub != NetworkOpPong {
		r.unsupported(sub)
		return nil
	}
	return Pong{}
}

func decodeInventory(r *fieldReader) Command {
	switch sub := r.int("opcode"); sub {
	case InventoryOpRemove:
		c := InventoryRemove{Index: r.int("index")}
		if r.more() {
			c.Count, c.HasCount = r.optInt("count")
		}
		return c
	case InventoryOpSelect:
		return InventorySelect{Index: r.int("index")}
	default:
		r.unsupported(sub)
		return nil
	}
}

func decodeBank(r *fieldReader) Command {
	if sub := r.int("opcode"); sub != BankOpSelect {
		r.unsupported(sub)
		return nil
	}
	name := r.str("type")
	side, ok := ParseBankSide(name)
	if !ok {
		r.fail("unknown bank side %q", name)
		return nil
	}
	return BankSelect{Side: side, Index: r.int("index")}
}

func decodeTrade(r *fieldReader) Command {
	action := TradeAction(r.int("opcode"))
	switch action {
	case TradeRequest, TradeAccept, TradeDecline:
	default:
		r.unsupported(int(action))
		return nil
	}
	return Trade{Action: action, Counterpart: r.int("instance")}
}

func decodeEnchant(r *fieldReader) Command {
	switch sub := r.int("opcode"); sub {
	case EnchantOpSelect:
		return EnchantSelect{Index: r.int("index")}
	case EnchantOpRemove:
		return EnchantRemove{Kind: r.str("type")}
	case EnchantOpApply:
		return EnchantApply{}
	default:
		r.unsupported(sub)
		return nil
	}
}

func decodeClick(r *fieldReader) Command {
	name := r.str("type")
	target, ok := ParseClickTarget(name)
	if !ok {
		r.fail("unknown click target %q", name)
		return nil
	}
	return Click{Target: target, State: r.flag("state")}
}

func decodeShop(r *fieldReader) Command {
	sub := r.int("opcode")
	shop := r.int("npc")
	switch sub {
	case ShopOpBuy:
		c := ShopBuy{Shop: shop}
		if r.more() {
			c.ItemID, _ = r.optInt("buy_id")
		}
		if r.more() {
			c.Amount, _ = r.optInt("amount")
		}
		return c
	case ShopOpSell:
		return ShopSell{Shop: shop}
	case ShopOpSelect:
		c := ShopSelect{Shop: shop}
		if r.more() {
			c.Slot = r.looseIntOrZero("slot_id")
		}
		return c
	case ShopOpRemove:
		return ShopRemove{Shop: shop}
	default:
		r.unsupported(sub)
		return nil
	}
}

// fieldReader consumes positional fields in order. The first failure sticks;
// later reads return zero values so decoders can stay linear.
type fieldReader struct {
	fields []any
	pos    int
	err    error
}

func (r *fieldReader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf(format, args...)
	}
}

func (r *fieldReader) unsupported(sub int) {
	r.fail("unsupported sub-opcode %d", sub)
}

func (r *fieldReader) more() bool {
	return r.err == nil && r.pos < len(r.fields)
}

func (r *fieldReader) next(name string) (any, bool) {
	if r.err != nil {
		return nil, false
	}
	if r.pos >= len(r.fields) {
		r.fail("missing field %s", name)
		return nil, false
	}
	v := r.fields[r.pos]
	r.pos++
	return v, true
}

func (r *fieldReader) skipRest() {
	r.pos = len(r.fields)
}

func (r *fieldReader) int(name string) int {
	v, ok := r.next(name)
	if !ok {
		return 0
	}
	n, ok := toInt(v)
	if !ok {
		r.fail("field %s: want integer, got %T", name, v)
	}
	return n
}

// optInt reads an integer that the client may send as null.
func (r *fieldReader) optInt(name string) (int, bool) {
	v, ok := r.next(name)
	if !ok || v == nil {
		return 0, false
	}
	n, ok := toInt(v)
	if !ok {
		r.fail("field %s: want integer or null, got %T", name, v)
		return 0, false
	}
	return n, true
}

// looseInt accepts a number or a numeric string.
func (r *fieldReader) looseInt(name string) int {
	v, ok := r.next(name)
	if !ok {
		return 0
	}
	if s, isStr := v.(string); isStr {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			r.fail("field %s: %q is not numeric", name, s)
		}
		return n
	}
	n, ok := toInt(v)
	if !ok {
		r.fail("field %s: want integer, got %T", name, v)
	}
	return n
}

// looseIntOrZero is looseInt where null, "" and non-numeric strings read as
// zero (absent).
func (r *fieldReader) looseIntOrZero(name string) int {
	v, ok := r.next(name)
	if !ok || v == nil {
		return 0
	}
	if s, isStr := v.(string); isStr {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0
		}
		return n
	}
	n, ok := toInt(v)
	if !ok {
		r.fail("field %s: want integer, got %T", name, v)
	}
	return n
}

func (r *fieldReader) str(name string) string {
	v, ok := r.next(name)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail("field %s: want string, got %T", name, v)
	}
	return s
}

// flag reads a boolean; 0/1 integers are accepted since some clients send them.
func (r *fieldReader) flag(name string) bool {
	v, ok := r.next(name)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case nil:
		return false
	}
	n, ok := toInt(v)
	if !ok || (n != 0 && n != 1) {
		r.fail("field %s: want boolean, got %v", name, v)
		return false
	}
	return n == 1
}

func (r *fieldReader) ints(name string) []int {
	v, ok := r.next(name)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		r.fail("field %s: want array, got %T", name, v)
		return nil
	}
	out := make([]int, 0, len(arr))
	for i, e := range arr {
		n, ok := toInt(e)
		if !ok {
			r.fail("field %s[%d]: want integer, got %T", name, i, e)
			return nil
		}
		out = append(out, n)
	}
	return out
}

func (r *fieldReader) orientation() Orientation {
	o := Orientation(r.int("orientation"))
	if r.err == nil && !o.Valid() {
		r.fail("orientation %d out of range", o)
	}
	return o
}

func toInt(v any) (int, bool) {
	num, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	n, err := num.Int64()
	if err != nil || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}
