package world

import (
	"fmt"
	"sort"

	"realmgate.io/internal/protocol"
	"realmgate.io/internal/sim/model"
)

// Regions are fixed RegionWidth x RegionHeight rectangles of the map. A
// player observes its own region and the eight around it.

func (w *World) regionOf(pos model.Pos) string {
	x, y := max(pos.X, 0), max(pos.Y, 0)
	return regionID(x/w.tun.RegionWidth, y/w.tun.RegionHeight)
}

func regionID(rx, ry int) string {
	return fmt.Sprintf("%d-%d", rx, ry)
}

func parseRegion(id string) (rx, ry int, ok bool) {
	if _, err := fmt.Sscanf(id, "%d-%d", &rx, &ry); err != nil {
		return 0, 0, false
	}
	return rx, ry, true
}

// surrounding returns id and its in-bounds neighbours, row by row.
func (w *World) surrounding(id string) []string {
	rx, ry, ok := parseRegion(id)
	if !ok {
		return nil
	}
	cols := (w.cats.Map.Width + w.tun.RegionWidth - 1) / w.tun.RegionWidth
	rows := (w.cats.Map.Height + w.tun.RegionHeight - 1) / w.tun.RegionHeight
	out := make([]string, 0, 9)
	for y := ry - 1; y <= ry+1; y++ {
		for x := rx - 1; x <= rx+1; x++ {
			if x < 0 || y < 0 || x >= cols || y >= rows {
				continue
			}
			out = append(out, regionID(x, y))
		}
	}
	return out
}

// index files e under the region of its current position and returns the
// region it was filed under before.
func (w *World) index(e *model.Entity) (old string) {
	old = e.Region
	next := w.regionOf(e.Pos)
	if old == next {
		return old
	}
	w.unindex(e)
	set := w.regions[next]
	if set == nil {
		set = map[int]bool{}
		w.regions[next] = set
	}
	set[e.Instance] = true
	e.Region = next
	return old
}

func (w *World) unindex(e *model.Entity) {
	if set := w.regions[e.Region]; set != nil {
		delete(set, e.Instance)
		if len(set) == 0 {
			delete(w.regions, e.Region)
		}
	}
	e.Region = ""
}

// relocate re-files e after its position changed. Observers that lose sight
// of e get a despawn and observers that gain it get a spawn.
func (w *World) relocate(e *model.Entity) {
	old := w.index(e)
	if old == e.Region || old == "" {
		return
	}
	before := map[string]bool{}
	for _, id := range w.surrounding(old) {
		before[id] = true
	}
	after := map[string]bool{}
	for _, id := range w.surrounding(e.Region) {
		after[id] = true
	}
	for _, inst := range w.observers(before) {
		if p := w.players[inst]; p != nil && !after[p.Region] && inst != e.Instance {
			w.Send(p, protocol.Despawn(e.Instance))
		}
	}
	if e.Dead {
		return
	}
	for _, inst := range w.observers(after) {
		if p := w.players[inst]; p != nil && !before[p.Region] && inst != e.Instance {
			w.Send(p, protocol.Spawn(e.State()))
		}
	}
}

// observers lists ready players standing in any of the given regions, in
// instance order.
func (w *World) observers(regions map[string]bool) []int {
	var out []int
	for id := range regions {
		for inst := range w.regions[id] {
			if p := w.players[inst]; p != nil && p.Ready {
				out = append(out, inst)
			}
		}
	}
	sort.Ints(out)
	return out
}

func (w *World) Push(scope protocol.PushScope, push protocol.Push) {
	switch scope {
	case protocol.PushBroadcast:
		ids := make([]int, 0, len(w.players))
		for inst, p := range w.players {
			if p.Ready {
				ids = append(ids, inst)
			}
		}
		sort.Ints(ids)
		for _, inst := range ids {
			if inst != push.IgnoreID {
				w.Send(w.players[inst], push.Message)
			}
		}
	case protocol.PushPlayer:
		if p := w.players[push.Target]; p != nil && push.Target != push.IgnoreID {
			w.Send(p, push.Message)
		}
	case protocol.PushRegions:
		regions := map[string]bool{}
		for _, id := range w.surrounding(push.RegionID) {
			regions[id] = true
		}
		for _, inst := range w.observers(regions) {
			if inst != push.IgnoreID {
				w.Send(w.players[inst], push.Message)
			}
		}
	default:
		w.log.Printf("push: unknown scope %d", scope)
	}
}

// UpdateRegions sends every surrounding region the client has not loaded yet.
func (w *World) UpdateRegions(p *model.Player) {
	if p.Regions == nil {
		p.Regions = map[string]bool{}
	}
	for _, id := range w.surrounding(p.Region) {
		if p.Regions[id] {
			continue
		}
		p.Regions[id] = true
		w.Send(p, protocol.RegionMsg(id, w.regionStates(id, p.Instance)))
	}
}

// PushRegions resends all surrounding regions.
func (w *World) PushRegions(p *model.Player) {
	p.Regions = map[string]bool{}
	w.UpdateRegions(p)
}

func (w *World) regionStates(id string, skip int) []protocol.EntityState {
	ids := make([]int, 0, len(w.regions[id]))
	for inst := range w.regions[id] {
		if inst != skip {
			ids = append(ids, inst)
		}
	}
	sort.Ints(ids)
	out := make([]protocol.EntityState, 0, len(ids))
	for _, inst := range ids {
		e := w.entities[inst]
		if e == nil || e.Dead {
			continue
		}
		if p := w.players[inst]; p != nil && !p.Ready {
			continue
		}
		out = append(out, e.State())
	}
	return out
}
