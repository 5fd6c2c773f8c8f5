package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"realmgate.io/internal/protocol"
)

// Unbounded is the max-stack sentinel for items that stack without limit.
const Unbounded = -1

type Catalogs struct {
	Items ItemCatalog
	Map   MapCatalog
	Shops ShopCatalog
}

type ItemCatalog struct {
	ByID   map[int]ItemDef
	ByKey  map[string]int
	Digest string
}

type ItemDef struct {
	ID   int    `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	// MaxStack: 0 or 1 means not stackable, -1 means unbounded.
	MaxStack int    `json:"max_stack,omitempty"`
	Equip    string `json:"equip,omitempty"` // "weapon","armour","pendant","ring","boots"
	EdibleHP int    `json:"edible_hp,omitempty"`
	Shard    bool   `json:"shard,omitempty"`
	Price    int    `json:"price,omitempty"`
}

type MapCatalog struct {
	Width   int
	Height  int
	Blocked map[[2]int]bool
	Doors   map[[2]int]DoorDef
	NPCs    []NPCDef
	Chests  []ChestDef
	Mobs    []MobDef
	Digest  string
}

type mapFile struct {
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Collisions [][2]int   `json:"collisions"`
	Doors      []DoorDef  `json:"doors"`
	NPCs       []NPCDef   `json:"npcs"`
	Chests     []ChestDef `json:"chests"`
	Mobs       []MobDef   `json:"mobs"`
}

type DoorDef struct {
	X           int `json:"x"`
	Y           int `json:"y"`
	ToX         int `json:"to_x"`
	ToY         int `json:"to_y"`
	Orientation int `json:"orientation"`
}

type NPCDef struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Shop int    `json:"shop,omitempty"`

	// Text lines are spoken in turn when a player talks to a non-shop NPC.
	Text []string `json:"text,omitempty"`
}

type ChestDef struct {
	X     int   `json:"x"`
	Y     int   `json:"y"`
	Items []int `json:"items"`
}

type MobDef struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	HitPoints int    `json:"hit_points"`
	Damage    int    `json:"damage"`
}

type ShopCatalog struct {
	ByID   map[int]ShopDef
	Digest string
}

type ShopDef struct {
	ID       int         `json:"id"`
	Name     string      `json:"name"`
	Currency int         `json:"currency"`
	Stock    []StockLine `json:"stock"`
}

type StockLine struct {
	Item  int `json:"item"`
	Count int `json:"count"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadItems(filepath.Join(configDir, "items.json"), &c.Items); err != nil {
		return nil, err
	}
	if err := loadMap(filepath.Join(configDir, "map.json"), &c.Map); err != nil {
		return nil, err
	}
	if err := loadShops(filepath.Join(configDir, "shops.json"), &c.Shops, &c.Items); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadItems(path string, out *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.ByID = make(map[int]ItemDef, len(defs))
	out.ByKey = make(map[string]int, len(defs))
	for _, d := range defs {
		if d.ID <= 0 {
			return fmt.Errorf("items.json: item %q has id %d", d.Key, d.ID)
		}
		if d.Key == "" {
			return fmt.Errorf("items.json: item %d has empty key", d.ID)
		}
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("items.json: duplicate id %d", d.ID)
		}
		if d.Equip != "" {
			if _, ok := protocol.ParseEquipSlot(d.Equip); !ok {
				return fmt.Errorf("items.json: item %d has unknown equip slot %q", d.ID, d.Equip)
			}
		}
		if d.Equip != "" && d.MaxStack > 1 {
			return fmt.Errorf("items.json: equippable item %d cannot stack", d.ID)
		}
		out.ByID[d.ID] = d
		out.ByKey[d.Key] = d.ID
	}
	return nil
}

func loadMap(path string, out *MapCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var f mapFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("map.json: %w", err)
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("map.json: bad dimensions %dx%d", f.Width, f.Height)
	}
	out.Width, out.Height = f.Width, f.Height
	out.Blocked = make(map[[2]int]bool, len(f.Collisions))
	for _, c := range f.Collisions {
		out.Blocked[c] = true
	}
	out.Doors = make(map[[2]int]DoorDef, len(f.Doors))
	for _, d := range f.Doors {
		if out.OutOfBounds(d.ToX, d.ToY) {
			return fmt.Errorf("map.json: door at %d,%d leads out of bounds", d.X, d.Y)
		}
		out.Doors[[2]int{d.X, d.Y}] = d
	}
	out.NPCs = f.NPCs
	out.Chests = f.Chests
	out.Mobs = f.Mobs
	return nil
}

func loadShops(path string, out *ShopCatalog, items *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			out.ByID = map[int]ShopDef{}
			out.Digest = sha256Hex(nil)
			return nil
		}
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ShopDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("shops.json: %w", err)
	}
	out.ByID = make(map[int]ShopDef, len(defs))
	for _, s := range defs {
		if _, ok := items.ByID[s.Currency]; !ok {
			return fmt.Errorf("shops.json: shop %d uses unknown currency %d", s.ID, s.Currency)
		}
		for _, l := range s.Stock {
			if _, ok := items.ByID[l.Item]; !ok {
				return fmt.Errorf("shops.json: shop %d stocks unknown item %d", s.ID, l.Item)
			}
		}
		out.ByID[s.ID] = s
	}
	return nil
}

// MaxStack returns the stack limit for id: 1 for non-stackable or unknown
// items, Unbounded for infinite stacks.
func (c *ItemCatalog) MaxStack(id int) int {
	d, ok := c.ByID[id]
	if !ok {
		return 1
	}
	if d.MaxStack == Unbounded {
		return Unbounded
	}
	if d.MaxStack <= 1 {
		return 1
	}
	return d.MaxStack
}

func (c *ItemCatalog) EquipSlot(id int) (protocol.EquipSlot, bool) {
	d, ok := c.ByID[id]
	if !ok || d.Equip == "" {
		return 0, false
	}
	return protocol.ParseEquipSlot(d.Equip)
}

func (c *ItemCatalog) Edible(id int) bool {
	d, ok := c.ByID[id]
	return ok && d.EdibleHP > 0
}

func (c *ItemCatalog) IsShard(id int) bool {
	return c.ByID[id].Shard
}

func (c *ItemCatalog) Key(id int) string {
	return c.ByID[id].Key
}

func (c *ItemCatalog) Price(id int) int {
	return c.ByID[id].Price
}

// IDs returns the catalog's item ids in ascending order.
func (c *ItemCatalog) IDs() []int {
	ids := make([]int, 0, len(c.ByID))
	for id := range c.ByID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (m *MapCatalog) OutOfBounds(x, y int) bool {
	return x < 0 || y < 0 || x >= m.Width || y >= m.Height
}

// Colliding reports static collisions; out-of-bounds tiles always collide.
func (m *MapCatalog) Colliding(x, y int) bool {
	return m.OutOfBounds(x, y) || m.Blocked[[2]int{x, y}]
}

func (m *MapCatalog) Door(x, y int) (DoorDef, bool) {
	d, ok := m.Doors[[2]int{x, y}]
	return d, ok
}
