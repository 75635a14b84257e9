package game

import rl "github.com/gen2brain/raylib-go/raylib"

// handleInput processes keyboard input and HUD buttons.
func (g *Game) handleInput() {
	if rl.IsKeyPressed(rl.KeyH) {
		g.showHUD = !g.showHUD
	}

	if rl.IsKeyPressed(rl.KeyG) || g.ffwdPressed {
		g.ffwdPressed = false
		g.sess.Loop.FastForward()
	}

	pick := float32(g.cfg.Render.AnimalSide) * 1.5
	g.inspector.HandleInput(rl.GetMousePosition(), g.vp, g.sess.Sim, pick)
}
