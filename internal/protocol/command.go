package protocol

// Command is one decoded client frame. Every variant is a plain struct; the
// router switches on the concrete type, never on raw fields.
type Command interface {
	Opcode() Opcode
}

type Intro struct {
	Type     IntroType
	Username string
	Password string
	Email    string
}

type Ready struct {
	Ready     bool
	Preloaded bool
	UserAgent string
}

type Who struct {
	Instances []int
}

type Unequip struct {
	Slot EquipSlot
}

type MoveRequest struct {
	RequestX, RequestY   int
	ReportedX, ReportedY int
}

type MoveStarted struct {
	SelectedX, SelectedY int
	ReportedX, ReportedY int
	Speed                int
	HasSpeed             bool
}

type MoveStep struct {
	X, Y int
}

type MoveStop struct {
	X, Y        int
	Target      int
	HasTarget   bool
	Orientation Orientation
}

type MoveEntity struct {
	Instance int
	X, Y     int
}

type Orientate struct {
	Orientation Orientation
}

type Freeze struct {
	Frozen bool
}

type Zone struct {
	Direction int
}

// RegionRequest asks for a region re-push; only honoured for the sender's
// own instance.
type RegionRequest struct {
	Instance int
}

type Target struct {
	Action   TargetAction
	Instance int
}

type CombatInitiate struct {
	Attacker int
	Target   int
}

type ProjectileImpact struct {
	Projectile int
	Target     int
}

type Pong struct{}

type Chat struct {
	Text string
}

type InventoryRemove struct {
	Index    int
	Count    int
	HasCount bool
}

type InventorySelect struct {
	Index int
}

type BankSelect struct {
	Side  BankSide
	Index int
}

type Respawn struct {
	Instance int
}

type Trade struct {
	Action      TradeAction
	Counterpart int
}

type EnchantSelect struct {
	Index int
}

// EnchantRemove clears one side of the enchant selection ("item" or "shards").
type EnchantRemove struct {
	Kind string
}

type EnchantApply struct{}

type Click struct {
	Target ClickTarget
	State  bool
}

// Warp carries the 1-based warp id exactly as the client sent it.
type Warp struct {
	ID int
}

// Shop fields that a client may omit decode to zero; the handlers treat zero
// as absent.
type ShopBuy struct {
	Shop   int
	ItemID int
	Amount int
}

type ShopSell struct {
	Shop int
}

type ShopSelect struct {
	Shop int
	Slot int
}

type ShopRemove struct {
	Shop int
}

type Region struct{}

type Camera struct{}

// Unknown is a frame whose opcode is not accepted from clients.
type Unknown struct {
	Op Opcode
}

// Malformed is a frame with a known opcode whose fields did not decode.
type Malformed struct {
	Op     Opcode
	Reason string
}

func (Intro) Opcode() Opcode            { return OpIntro }
func (Ready) Opcode() Opcode            { return OpReady }
func (Who) Opcode() Opcode              { return OpWho }
func (Unequip) Opcode() Opcode          { return OpEquipment }
func (MoveRequest) Opcode() Opcode      { return OpMovement }
func (MoveStarted) Opcode() Opcode      { return OpMovement }
func (MoveStep) Opcode() Opcode         { return OpMovement }
func (MoveStop) Opcode() Opcode         { return OpMovement }
func (MoveEntity) Opcode() Opcode       { return OpMovement }
func (Orientate) Opcode() Opcode        { return OpMovement }
func (Freeze) Opcode() Opcode           { return OpMovement }
func (Zone) Opcode() Opcode             { return OpMovement }
func (RegionRequest) Opcode() Opcode    { return OpRequest }
func (Target) Opcode() Opcode           { return OpTarget }
func (CombatInitiate) Opcode() Opcode   { return OpCombat }
func (ProjectileImpact) Opcode() Opcode { return OpProjectile }
func (Pong) Opcode() Opcode             { return OpNetwork }
func (Chat) Opcode() Opcode             { return OpChat }
func (InventoryRemove) Opcode() Opcode  { return OpInventory }
func (InventorySelect) Opcode() Opcode  { return OpInventory }
func (BankSelect) Opcode() Opcode       { return OpBank }
func (Respawn) Opcode() Opcode          { return OpRespawn }
func (Trade) Opcode() Opcode            { return OpTrade }
func (EnchantSelect) Opcode() Opcode    { return OpEnchant }
func (EnchantRemove) Opcode() Opcode    { return OpEnchant }
func (EnchantApply) Opcode() Opcode     { return OpEnchant }
func (Click) Opcode() Opcode            { return OpClick }
func (Warp) Opcode() Opcode             { return OpWarp }
func (ShopBuy) Opcode() Opcode          { return OpShop }
func (ShopSell) Opcode() Opcode         { return OpShop }
func (ShopSelect) Opcode() Opcode       { return OpShop }
func (ShopRemove) Opcode() Opcode       { return OpShop }
func (Region) Opcode() Opcode           { return OpRegion }
func (Camera) Opcode() Opcode           { return OpCamera }
func (c Unknown) Opcode() Opcode        { return c.Op }
func (c Malformed) Opcode() Opcode      { return c.Op }
