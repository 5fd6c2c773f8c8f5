package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz   int `yaml:"tick_rate_hz"`
	RegionWidth  int `yaml:"region_width"`
	RegionHeight int `yaml:"region_height"`

	// MovementSpeedMs is the authoritative time a player needs per tile.
	MovementSpeedMs int `yaml:"movement_speed_ms"`
	HitPoints       int `yaml:"hit_points"`

	InventorySize int `yaml:"inventory_size"`
	BankSize      int `yaml:"bank_size"`
	ShopSize      int `yaml:"shop_size"`

	Spawn Point   `yaml:"spawn"`
	Warps []Point `yaml:"warps"`

	Cheat Cheat `yaml:"cheat"`

	IdleTimeoutMs  int `yaml:"idle_timeout_ms"`
	ItemTTLMs      int `yaml:"item_ttl_ms"`
	MaxChatLength  int `yaml:"max_chat_length"`
	ChatDurationMs int `yaml:"chat_duration_ms"`

	ShardCost       int `yaml:"shard_cost"`
	MaxAbilityLevel int `yaml:"max_ability_level"`

	OfflineMode    bool `yaml:"offline_mode"`
	ClientQueueLen int  `yaml:"client_queue_len"`
	SaveEveryTicks int  `yaml:"save_every_ticks"`
}

type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Cheat controls what happens outside the handler when a session's
// suspicion score grows.
type Cheat struct {
	Threshold int  `yaml:"threshold"`
	Kick      bool `yaml:"kick"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      10,
		RegionWidth:     16,
		RegionHeight:    12,
		MovementSpeedMs: 250,
		HitPoints:       69,
		InventorySize:   20,
		BankSize:        56,
		ShopSize:        20,
		Spawn:           Point{X: 50, Y: 89},
		Cheat:           Cheat{Threshold: 10},
		IdleTimeoutMs:   10 * 60 * 1000,
		ItemTTLMs:       60 * 1000,
		MaxChatLength:   256,
		ChatDurationMs:  7000,
		ShardCost:       1,
		MaxAbilityLevel: 5,
		ClientQueueLen:  64,
		SaveEveryTicks:  600,
	}
}

// Load reads tuning.yaml over Defaults(); keys missing from the file keep
// their default value.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	switch {
	case t.TickRateHz <= 0:
		return fmt.Errorf("tick_rate_hz must be > 0")
	case t.RegionWidth <= 0 || t.RegionHeight <= 0:
		return fmt.Errorf("region size must be > 0")
	case t.MovementSpeedMs <= 0:
		return fmt.Errorf("movement_speed_ms must be > 0")
	case t.InventorySize <= 0 || t.BankSize <= 0 || t.ShopSize <= 0:
		return fmt.Errorf("container sizes must be > 0")
	case t.Cheat.Threshold <= 0:
		return fmt.Errorf("cheat.threshold must be > 0")
	case t.ClientQueueLen <= 0:
		return fmt.Errorf("client_queue_len must be > 0")
	}
	return nil
}
