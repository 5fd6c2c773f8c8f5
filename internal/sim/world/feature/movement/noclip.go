package movement

import "realmgate.io/internal/sim/model"

// PreventNoClip rejects (x, y) when the map or the player's instance
// obstacles collide there. On rejection the player is stopped, warned and
// teleported to the first open tile of: previous position, current position,
// spawn.
func PreventNoClip(env Env, p *model.Player, x, y int) bool {
	if !blocked(env, p, x, y) {
		return true
	}

	env.StopMovement(p)
	env.Notify(p, NoClipNotice)

	fallback := p.Pos
	if p.Previous.Valid() && !blocked(env, p, p.Previous.X, p.Previous.Y) {
		fallback = p.Previous
	}
	if blocked(env, p, fallback.X, fallback.Y) {
		fallback = p.Spawn
	}
	env.Teleport(p, fallback, false, true)
	return false
}

func blocked(env Env, p *model.Player, x, y int) bool {
	return env.Colliding(x, y) || p.InstanceColliding(x, y)
}
