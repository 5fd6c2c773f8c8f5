package catalogs

import (
	"os"
	"path/filepath"
	"testing"

	"realmgate.io/internal/protocol"
)

func TestLoad_RepoConfigs(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "..", "configs"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Items.Digest == "" || c.Map.Digest == "" || c.Shops.Digest == "" {
		t.Fatalf("expected digests")
	}
	if got := c.Items.MaxStack(c.Items.ByKey["gold"]); got != Unbounded {
		t.Fatalf("gold max stack = %d", got)
	}
	if got := c.Items.MaxStack(c.Items.ByKey["sword1"]); got != 1 {
		t.Fatalf("sword max stack = %d", got)
	}
	if slot, ok := c.Items.EquipSlot(114); !ok || slot != protocol.EquipArmour {
		t.Fatalf("item 114 should be armour, got %v %v", slot, ok)
	}
	if !c.Items.Edible(c.Items.ByKey["burger"]) {
		t.Fatalf("burger should be edible")
	}
	if !c.Items.IsShard(c.Items.ByKey["shardt1"]) {
		t.Fatalf("shardt1 should be a shard")
	}
}

func TestMap_CollisionBoundsDoors(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "..", "configs"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m := &c.Map
	if !m.Colliding(12, 10) {
		t.Fatalf("expected collision at 12,10")
	}
	if m.Colliding(11, 10) {
		t.Fatalf("11,10 should be open")
	}
	if !m.OutOfBounds(-1, 0) || !m.Colliding(m.Width, 0) {
		t.Fatalf("out of bounds tiles must collide")
	}
	d, ok := m.Door(40, 40)
	if !ok || d.ToX != 70 || d.ToY != 70 {
		t.Fatalf("door: %+v %v", d, ok)
	}
}

func TestLoadItems_RejectsStackableEquipment(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "items.json")
	if err := os.WriteFile(p, []byte(`[{"id":1,"key":"x","equip":"ring","max_stack":5}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var ic ItemCatalog
	if err := loadItems(p, &ic); err == nil {
		t.Fatalf("expected error")
	}
}
