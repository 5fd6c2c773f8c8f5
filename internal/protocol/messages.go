package protocol

import "encoding/json"

// Message is one server -> client frame, encoded as `[opcode, [fields...]]`.
type Message struct {
	Op     Opcode
	Fields []any
}

func (m Message) MarshalJSON() ([]byte, error) {
	fields := m.Fields
	if fields == nil {
		fields = []any{}
	}
	return json.Marshal([]any{int(m.Op), fields})
}

// Push is a scoped broadcast request. RegionID is read for PushRegions and
// Target for PushPlayer.
type Push struct {
	RegionID string
	Target   int
	Message  Message
	// IgnoreID excludes one instance from the audience; zero excludes nobody.
	IgnoreID int
}

type WelcomePayload struct {
	ProtocolVersion string `json:"protocol_version"`
	SessionID       string `json:"session_id"`
	Instance        int    `json:"instance"`
	Username        string `json:"username"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	HitPoints       int    `json:"hit_points"`
	MaxHitPoints    int    `json:"max_hit_points"`
	MovementSpeed   int    `json:"movement_speed"`
	PvP             bool   `json:"pvp"`
	ItemsDigest     string `json:"items_digest,omitempty"`
	MapDigest       string `json:"map_digest,omitempty"`
}

// EntityState is the spawn payload for any visible entity.
type EntityState struct {
	Instance     int    `json:"instance"`
	Kind         string `json:"type"`
	Key          string `json:"key,omitempty"`
	Name         string `json:"name,omitempty"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Orientation  int    `json:"orientation"`
	HitPoints    int    `json:"hit_points,omitempty"`
	MaxHitPoints int    `json:"max_hit_points,omitempty"`
	Count        int    `json:"count,omitempty"`
	Ability      int    `json:"ability,omitempty"`
	AbilityLevel int    `json:"ability_level,omitempty"`
}

type SlotState struct {
	Index        int    `json:"index"`
	ItemID       int    `json:"id"`
	Key          string `json:"string,omitempty"`
	Count        int    `json:"count"`
	Ability      int    `json:"ability"`
	AbilityLevel int    `json:"ability_level"`
}

type EquipmentState struct {
	Type         string `json:"type"`
	ItemID       int    `json:"id"`
	Count        int    `json:"count"`
	Ability      int    `json:"ability"`
	AbilityLevel int    `json:"ability_level"`
}

type ChatLine struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	WithBubble bool   `json:"withBubble"`
	Text       string `json:"text"`
	Duration   int    `json:"duration"`
}

type ShopSelection struct {
	ID       int    `json:"id"`
	SlotID   int    `json:"slotId"`
	Currency string `json:"currency"`
	Price    int    `json:"price"`
}

type SyncState struct {
	Instance     int  `json:"instance"`
	HitPoints    int  `json:"hit_points"`
	MaxHitPoints int  `json:"max_hit_points"`
	PvP          bool `json:"pvp"`
	Frozen       bool `json:"frozen"`
}

type EnchantState struct {
	Item   *SlotState `json:"item,omitempty"`
	Shards *SlotState `json:"shards,omitempty"`
}

// Handshake is the first frame on every connection.
func Handshake() Message {
	return Message{Op: OpHandshake, Fields: []any{Version}}
}

func Welcome(p WelcomePayload) Message {
	return Message{Op: OpWelcome, Fields: []any{p}}
}

// IntroFailure carries the plain reason strings clients already understand
// ("loggedin", "invalidlogin", "userexists").
func IntroFailure(reason string) Message {
	return Message{Op: OpIntro, Fields: []any{reason}}
}

func Notification(text string) Message {
	return Message{Op: OpNotification, Fields: []any{NotificationOpText, text}}
}

func Spawn(e EntityState) Message {
	return Message{Op: OpSpawn, Fields: []any{e}}
}

func Despawn(instance int) Message {
	return Message{Op: OpDespawn, Fields: []any{instance}}
}

func Teleport(instance, x, y int, withAnimation bool) Message {
	return Message{Op: OpTeleport, Fields: []any{instance, x, y, withAnimation}}
}

func Movement(sub MovementOp, data ...any) Message {
	return Message{Op: OpMovement, Fields: append([]any{int(sub)}, data...)}
}

func Sync(s SyncState) Message {
	return Message{Op: OpSync, Fields: []any{s}}
}

func Points(instance, hp, maxHP int) Message {
	return Message{Op: OpPoints, Fields: []any{instance, hp, maxHP}}
}

func CombatStart(attacker, target int) Message {
	return Message{Op: OpCombat, Fields: []any{CombatOpInitiate, attacker, target}}
}

func CombatHit(attacker, target, damage int) Message {
	return Message{Op: OpCombat, Fields: []any{CombatOpHit, attacker, target, damage}}
}

func ProjectileCreate(e EntityState, target int) Message {
	return Message{Op: OpProjectile, Fields: []any{ProjectileOpCreate, e, target}}
}

func ChatMessage(c ChatLine) Message {
	return Message{Op: OpChat, Fields: []any{c}}
}

func EquipmentBatchMsg(items []EquipmentState) Message {
	return Message{Op: OpEquipment, Fields: []any{EquipmentOpBatch, items}}
}

func EquipmentEquipMsg(item EquipmentState) Message {
	return Message{Op: OpEquipment, Fields: []any{EquipmentOpEquip, item}}
}

func EquipmentUnequipMsg(slot EquipSlot) Message {
	return Message{Op: OpEquipment, Fields: []any{EquipmentOpUnequip, slot.String()}}
}

func InventoryBatchMsg(size int, slots []SlotState) Message {
	return Message{Op: OpInventory, Fields: []any{InventoryOpBatch, size, slots}}
}

func InventorySlotMsg(sub int, slot SlotState) Message {
	return Message{Op: OpInventory, Fields: []any{sub, slot}}
}

func BankBatchMsg(size int, slots []SlotState) Message {
	return Message{Op: OpBank, Fields: []any{BankOpBatch, size, slots}}
}

func BankSlotMsg(sub int, slot SlotState) Message {
	return Message{Op: OpBank, Fields: []any{sub, slot}}
}

func RespawnMsg(instance, x, y int) Message {
	return Message{Op: OpRespawn, Fields: []any{instance, x, y}}
}

func TradeMsg(action TradeAction, from int) Message {
	return Message{Op: OpTrade, Fields: []any{int(action), from}}
}

func EnchantUpdateMsg(s EnchantState) Message {
	return Message{Op: OpEnchant, Fields: []any{EnchantOpUpdate, s}}
}

func ShopSelectMsg(s ShopSelection) Message {
	return Message{Op: OpShop, Fields: []any{ShopOpSelect, s}}
}

func ShopRemoveMsg(shop int) Message {
	return Message{Op: OpShop, Fields: []any{ShopOpRemove, shop}}
}

func ShopOpenMsg(shop int, stock []SlotState) Message {
	return Message{Op: OpShop, Fields: []any{ShopOpOpen, shop, stock}}
}

func ShopRefreshMsg(shop int, stock []SlotState) Message {
	return Message{Op: OpShop, Fields: []any{ShopOpRefresh, shop, stock}}
}

func RegionMsg(regionID string, entities []EntityState) Message {
	return Message{Op: OpRegion, Fields: []any{regionID, entities}}
}

func ListMsg(instances []int) Message {
	return Message{Op: OpList, Fields: []any{instances}}
}
