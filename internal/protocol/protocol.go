package protocol

import "strconv"

const Version = "1.0"

// Opcode is the first element of every frame, in both directions.
// Values are part of the wire contract and must never be renumbered.
type Opcode int

const (
	OpHandshake    Opcode = 0
	OpIntro        Opcode = 1
	OpWelcome      Opcode = 2
	OpSpawn        Opcode = 3
	OpList         Opcode = 4
	OpWho          Opcode = 5
	OpEquipment    Opcode = 6
	OpReady        Opcode = 7
	OpSync         Opcode = 8
	OpMovement     Opcode = 9
	OpTeleport     Opcode = 10
	OpRequest      Opcode = 11
	OpDespawn      Opcode = 12
	OpTarget       Opcode = 13
	OpCombat       Opcode = 14
	OpProjectile   Opcode = 16
	OpPoints       Opcode = 18
	OpNetwork      Opcode = 19
	OpChat         Opcode = 20
	OpInventory    Opcode = 22
	OpBank         Opcode = 23
	OpNotification Opcode = 26
	OpRespawn      Opcode = 33
	OpTrade        Opcode = 34
	OpEnchant      Opcode = 35
	OpClick        Opcode = 39
	OpWarp         Opcode = 40
	OpShop         Opcode = 41
	OpRegion       Opcode = 43
	OpCamera       Opcode = 45
)

var opcodeNames = map[Opcode]string{
	OpHandshake:    "HANDSHAKE",
	OpIntro:        "INTRO",
	OpWelcome:      "WELCOME",
	OpSpawn:        "SPAWN",
	OpList:         "LIST",
	OpWho:          "WHO",
	OpEquipment:    "EQUIPMENT",
	OpReady:        "READY",
	OpSync:         "SYNC",
	OpMovement:     "MOVEMENT",
	OpTeleport:     "TELEPORT",
	OpRequest:      "REQUEST",
	OpDespawn:      "DESPAWN",
	OpTarget:       "TARGET",
	OpCombat:       "COMBAT",
	OpProjectile:   "PROJECTILE",
	OpPoints:       "POINTS",
	OpNetwork:      "NETWORK",
	OpChat:         "CHAT",
	OpInventory:    "INVENTORY",
	OpBank:         "BANK",
	OpNotification: "NOTIFICATION",
	OpRespawn:      "RESPAWN",
	OpTrade:        "TRADE",
	OpEnchant:      "ENCHANT",
	OpClick:        "CLICK",
	OpWarp:         "WARP",
	OpShop:         "SHOP",
	OpRegion:       "REGION",
	OpCamera:       "CAMERA",
}

func (o Opcode) String() string {
	if s, ok := opcodeNames[o]; ok {
		return s
	}
	return "OPCODE_" + strconv.Itoa(int(o))
}

// Valid reports whether o is part of the protocol at all (either direction).
func (o Opcode) Valid() bool {
	_, ok := opcodeNames[o]
	return ok
}
