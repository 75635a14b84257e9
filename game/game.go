// Package game runs a session inside a raylib window: a setup form collects
// the construction parameters, then every frame steps the simulation once
// and draws it into a high-DPI render texture.
package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/inspector"
	"github.com/pthm-cable/forage/session"
	"github.com/pthm-cable/forage/ui"
	"github.com/pthm-cable/forage/viewport"
)

const (
	hudWidth   = 240
	setupWidth = 320
)

// Game holds the window-side state around a session.
type Game struct {
	cfg  *config.Config
	opts session.Options

	vp     *viewport.Viewport
	target rl.RenderTexture2D
	canvas *rlCanvas

	setup     *ui.SetupForm
	hud       *ui.HUD
	showHUD   bool
	inspector *inspector.Inspector

	sess *session.Session

	// Button presses seen during Draw, handled on the next Update
	startPressed bool
	ffwdPressed  bool
}

// NewGame creates the game. The window must already be open.
// With autostart the setup form is skipped and params are used directly.
func NewGame(cfg *config.Config, params config.SimulationConfig, opts session.Options, autostart bool) (*Game, error) {
	ratio := float32(cfg.Screen.PixelRatio)
	if ratio <= 0 {
		ratio = rl.GetWindowScaleDPI().X
	}

	vp := viewport.New(cfg.Screen.Width, cfg.Screen.Height, ratio)
	vp.ClearMargin = cfg.Derived.ClearMargin

	bw, bh := vp.BufferSize()
	g := &Game{
		cfg:       cfg,
		opts:      opts,
		vp:        vp,
		target:    rl.LoadRenderTexture(bw, bh),
		canvas:    &rlCanvas{background: rl.Black},
		setup:     ui.NewSetupForm(int32(vp.Width)/2-setupWidth/2, int32(vp.Height)/3, setupWidth, params),
		hud:       ui.NewHUD(10, 10, hudWidth),
		showHUD:   true,
		inspector: inspector.NewInspector(int32(vp.Width)),
	}
	rl.SetTextureFilter(g.target.Texture, rl.FilterBilinear)

	slog.Info("display",
		"width", vp.Width,
		"height", vp.Height,
		"pixel_ratio", vp.Scale,
		"buffer_width", bw,
		"buffer_height", bh,
	)

	if autostart {
		if err := g.start(params); err != nil {
			g.Unload()
			return nil, err
		}
	}
	return g, nil
}

func (g *Game) start(params config.SimulationConfig) error {
	sess, err := session.New(g.cfg, params, g.vp, g.opts)
	if err != nil {
		return err
	}
	g.sess = sess
	return nil
}

// Update handles input. It returns an error if starting a session fails.
func (g *Game) Update() error {
	if g.sess == nil {
		if g.startPressed {
			g.startPressed = false
			return g.start(g.setup.Values())
		}
		return nil
	}

	g.handleInput()
	return nil
}

// Draw renders one frame. While a session runs, every frame is exactly one
// simulation step.
func (g *Game) Draw() {
	if g.sess != nil {
		g.sess.Perf.RecordFrame()

		rl.BeginTextureMode(g.target)
		rl.BeginMode2D(rl.Camera2D{Zoom: g.vp.Scale})
		g.sess.Loop.Tick(g.canvas)
		rl.EndMode2D()
		rl.EndTextureMode()

		g.inspector.Update(g.sess.Sim)
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	if g.sess != nil {
		g.drawBuffer()

		simCfg := g.sess.Sim.Config()
		g.inspector.DrawSelection(g.vp, simCfg.FOVRange, simCfg.FOVAngle)
		g.inspector.Draw()

		if g.showHUD {
			g.ffwdPressed = g.hud.Draw(g.hudData())
		}
	} else {
		g.startPressed = g.setup.Draw()
	}

	rl.EndDrawing()
}

// drawBuffer blits the render texture to the window at logical size.
// Render textures are stored upside down, hence the negative source height.
func (g *Game) drawBuffer() {
	tex := g.target.Texture
	rl.DrawTexturePro(
		tex,
		rl.Rectangle{X: 0, Y: 0, Width: float32(tex.Width), Height: -float32(tex.Height)},
		rl.Rectangle{X: 0, Y: 0, Width: g.vp.Width, Height: g.vp.Height},
		rl.Vector2{},
		0,
		rl.White,
	)
}

func (g *Game) hudData() ui.HUDData {
	s := g.sess.Sim
	cfg := s.Config()
	data := ui.HUDData{
		Generation:       s.Generation(),
		Age:              s.Age(),
		GenerationLength: cfg.GenerationLength,
		Tick:             s.Tick(),
		Animals:          cfg.Animals,
		Foods:            cfg.Foods,
		FPS:              rl.GetFPS(),
		BestEver:         g.sess.Collector.HallOfFame().TopFitness(),
	}
	if last, ok := g.sess.Collector.Last(); ok {
		data.HasStats = true
		data.MinFitness = last.MinFitness
		data.AvgFitness = last.AvgFitness
		data.MaxFitness = last.MaxFitness
	}
	return data
}

// Done reports whether the running session hit a tick or generation limit.
func (g *Game) Done() bool {
	return g.sess != nil && g.sess.Done()
}

// Unload releases GPU resources and closes the session.
func (g *Game) Unload() {
	if g.sess != nil {
		if err := g.sess.Close(); err != nil {
			slog.Error("failed to close session", "error", err)
		}
		g.sess = nil
	}
	rl.UnloadRenderTexture(g.target)
}
