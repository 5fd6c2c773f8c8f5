package model

import (
	"time"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/slots"
)

// PlayerSave is the persisted part of a player. Session-only state (regions,
// open panels, trade and shop selections) is not saved.
type PlayerSave struct {
	Username  string       `json:"username"`
	Email     string       `json:"email,omitempty"`
	Pos       Pos          `json:"pos"`
	Spawn     Pos          `json:"spawn"`
	HitPoints int          `json:"hit_points"`
	PvP       bool         `json:"pvp"`
	Muted     bool         `json:"muted"`
	UserAgent string       `json:"user_agent,omitempty"`
	Equipment []Equipped   `json:"equipment"`
	Inventory []slots.Slot `json:"inventory"`
	Bank      []slots.Slot `json:"bank"`
	SavedAt   time.Time    `json:"saved_at"`
}

func SaveOf(p *Player, now time.Time) PlayerSave {
	return PlayerSave{
		Username:  p.Username,
		Email:     p.Email,
		Pos:       p.Pos,
		Spawn:     p.Spawn,
		HitPoints: p.HitPoints,
		PvP:       p.PvP,
		Muted:     p.Muted,
		UserAgent: p.UserAgent,
		Equipment: append([]Equipped(nil), p.Equipment[:]...),
		Inventory: p.Inventory.Slots(),
		Bank:      p.Bank.Slots(),
		SavedAt:   now.UTC(),
	}
}

// Restore copies a save onto p. Zero positions keep p's defaults, and saved
// hit points outside (0, max) keep the current value.
func (s PlayerSave) Restore(p *Player) {
	p.Email = s.Email
	if s.Pos != (Pos{}) {
		p.Pos = s.Pos
	}
	if s.Spawn != (Pos{}) {
		p.Spawn = s.Spawn
	}
	p.PvP = s.PvP
	p.Muted = s.Muted
	p.UserAgent = s.UserAgent
	if s.HitPoints > 0 && s.HitPoints < p.MaxHitPoints {
		p.HitPoints = s.HitPoints
	}
	for i, e := range s.Equipment {
		if i >= len(p.Equipment) {
			break
		}
		if e.ItemID <= 0 {
			e = EmptyEquipment(protocol.EquipSlot(i))
		}
		p.Equipment[i] = e
	}
	p.Inventory.Load(s.Inventory)
	p.Bank.Load(s.Bank)
}
