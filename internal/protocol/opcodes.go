package protocol

// Sub-opcodes. The second element of a frame for opcodes that multiplex.

type IntroType int

const (
	IntroLogin    IntroType = 0
	IntroRegister IntroType = 1
	IntroGuest    IntroType = 2
)

const (
	EquipmentOpBatch   = 0
	EquipmentOpEquip   = 1
	EquipmentOpUnequip = 2
)

type MovementOp int

const (
	MovementRequest   MovementOp = 0
	MovementStarted   MovementOp = 1
	MovementStep      MovementOp = 2
	MovementStop      MovementOp = 3
	MovementMove      MovementOp = 4
	MovementOrientate MovementOp = 5
	MovementFollow    MovementOp = 6
	MovementEntity    MovementOp = 7
	MovementFreeze    MovementOp = 8
	MovementStunned   MovementOp = 9
	MovementZone      MovementOp = 10
)

type TargetAction int

const (
	TargetTalk   TargetAction = 0
	TargetAttack TargetAction = 1
	TargetNone   TargetAction = 2
)

const (
	CombatOpInitiate = 0
	CombatOpHit      = 1
	CombatOpFinish   = 2
)

const (
	ProjectileOpCreate = 1
	ProjectileOpImpact = 3
)

const (
	NetworkOpPing = 0
	NetworkOpPong = 1
)

const (
	InventoryOpBatch  = 0
	InventoryOpAdd    = 1
	InventoryOpRemove = 2
	InventoryOpSelect = 3
)

const (
	BankOpBatch  = 0
	BankOpAdd    = 1
	BankOpRemove = 2
	BankOpSelect = 3
)

// TradeAction values start at 1: a zero action is rejected as malformed.
type TradeAction int

const (
	TradeRequest TradeAction = 1
	TradeAccept  TradeAction = 2
	TradeDecline TradeAction = 3
)

const (
	EnchantOpSelect = 0
	EnchantOpRemove = 1
	EnchantOpApply  = 2
	EnchantOpUpdate = 3
)

const (
	ShopOpOpen    = 0
	ShopOpBuy     = 1
	ShopOpSell    = 2
	ShopOpRefresh = 3
	ShopOpSelect  = 4
	ShopOpRemove  = 5
)

const (
	NotificationOpOK   = 0
	NotificationOpText = 2
)

// PushScope selects the audience of a world push.
type PushScope int

const (
	PushBroadcast PushScope = iota
	PushPlayer
	PushRegions
)

type Orientation int

const (
	OrientationUp    Orientation = 0
	OrientationDown  Orientation = 1
	OrientationLeft  Orientation = 2
	OrientationRight Orientation = 3
)

func (o Orientation) Valid() bool { return o >= OrientationUp && o <= OrientationRight }

// EquipSlot is the closed set of equipment slots a client may name.
type EquipSlot int

const (
	EquipWeapon EquipSlot = iota
	EquipArmour
	EquipPendant
	EquipRing
	EquipBoots

	equipSlotCount
)

// EquipSlotCount is the number of equipment slots.
const EquipSlotCount = int(equipSlotCount)

var equipSlotNames = [...]string{"weapon", "armour", "pendant", "ring", "boots"}

func (s EquipSlot) String() string {
	if s < 0 || int(s) >= len(equipSlotNames) {
		return "unknown"
	}
	return equipSlotNames[s]
}

func ParseEquipSlot(s string) (EquipSlot, bool) {
	for i, n := range equipSlotNames {
		if n == s {
			return EquipSlot(i), true
		}
	}
	return 0, false
}

// ClickTarget is the closed set of UI panels a click toggles.
type ClickTarget int

const (
	ClickProfile ClickTarget = iota
	ClickInventory
	ClickWarp
)

var clickTargetNames = [...]string{"profile", "inventory", "warp"}

func (c ClickTarget) String() string {
	if c < 0 || int(c) >= len(clickTargetNames) {
		return "unknown"
	}
	return clickTargetNames[c]
}

func ParseClickTarget(s string) (ClickTarget, bool) {
	for i, n := range clickTargetNames {
		if n == s {
			return ClickTarget(i), true
		}
	}
	return 0, false
}

// BankSide names the container a bank select reads from.
type BankSide int

const (
	BankSideBank BankSide = iota
	BankSideInventory
)

func (b BankSide) String() string {
	if b == BankSideBank {
		return "bank"
	}
	return "inventory"
}

func ParseBankSide(s string) (BankSide, bool) {
	switch s {
	case "bank":
		return BankSideBank, true
	case "inventory":
		return BankSideInventory, true
	}
	return 0, false
}
