package main

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-water/internal/config"
	"github.com/Faultbox/midgard-water/internal/engine/camera"
	"github.com/Faultbox/midgard-water/internal/engine/gldevice"
	"github.com/Faultbox/midgard-water/internal/engine/input"
	"github.com/Faultbox/midgard-water/internal/engine/scene"
	"github.com/Faultbox/midgard-water/internal/engine/shader"
	"github.com/Faultbox/midgard-water/internal/engine/water"
	"github.com/Faultbox/midgard-water/internal/engine/window"
	"github.com/Faultbox/midgard-water/internal/logger"
)

// panSpeed is the camera pan rate in world units per second at distance 100.
const panSpeed = 40

type viewer struct {
	cfg   *config.Config
	store *config.FileStore
	log   *zap.Logger

	window   *window.Window
	input    *input.Input
	device   *gldevice.Device
	program  *shader.Program
	textures water.Textures
	engine   *water.Engine
	scene    *scene.Scene
	camera   *camera.OrbitCamera
}

func newViewer(cfg *config.Config) (*viewer, error) {
	v := &viewer{
		cfg:   cfg,
		store: &config.FileStore{Config: cfg},
		log:   logger.Named("viewer"),
		input: input.New(),
	}

	win, err := window.New(window.Config{
		Title:      "Midgard Water",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		Samples:    cfg.Graphics.MSAA,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}
	v.window = win

	if v.device, err = gldevice.New(); err != nil {
		win.Close()
		return nil, fmt.Errorf("creating GL device: %w", err)
	}
	facts := gldevice.ProbeFacts()
	v.log.Info("graphics facts", zap.Any("facts", facts))

	if v.scene, err = scene.Load(cfg.Map); err != nil {
		win.Close()
		return nil, err
	}

	v.program = shader.Load("water", shader.WaterVertexShader, shader.WaterFragmentShader)
	v.textures = gldevice.LoadTextures(cfg.Water.TextureDir)

	v.engine = water.New(v.device,
		water.WithPersister(v.store),
		water.WithProgram(v.program),
	)
	v.engine.SetTextures(v.textures)
	v.engine.Initialize(cfg.Water, facts)
	if err := v.engine.SetTopology(v.scene.Topology()); err != nil {
		v.Close()
		return nil, fmt.Errorf("setting water topology: %w", err)
	}

	v.camera = camera.NewOrbitCamera()
	v.camera.FitToBounds(v.scene.Bounds())
	v.resize(win.DrawableSize())

	v.log.Info("scene ready",
		zap.String("map", v.scene.Name),
		zap.Int("bodies", len(v.scene.Bodies)),
		zap.Stringer("technique", v.engine.Capabilities().Technique()),
	)
	return v, nil
}

// Run drives the frame loop until the window closes.
func (v *viewer) Run() {
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	for {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if v.input.Update() {
			return
		}
		v.handleEvents()
		v.moveCamera(dt)

		v.engine.Advance(dt)

		v.device.BeginFrame(v.camera.Projection(), v.camera.ViewMatrix())
		f := v.camera.Frustum()
		stats := v.engine.Render(water.Frame{Frustum: &f, Light: v.scene.Sun})
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.window.SetTitle(fmt.Sprintf("Midgard Water - %s - %d fps - %d chunks",
				v.engine.Capabilities().Technique(), frameCount, stats.Chunks))
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("chunks", stats.Chunks),
				zap.Int("quads", stats.Quads),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
}

func (v *viewer) handleEvents() {
	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			v.resize(v.window.DrawableSize())
		case input.EventMouseDrag:
			v.camera.HandleDrag(e.DX, e.DY)
		case input.EventMouseWheel:
			v.camera.HandleZoom(e.DY)
		case input.EventKeyDown:
			v.handleKey(e.Key)
		}
	}
}

func (v *viewer) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_R:
		next, err := v.cfg.Reload()
		if err != nil {
			v.log.Error("config reload failed", zap.Error(err))
			return
		}
		v.cfg = next
		v.store.Config = next
		v.engine.ReloadConfiguration(next.Water)
		v.log.Info("config reloaded", zap.Stringer("technique", v.engine.Capabilities().Technique()))
	case sdl.SCANCODE_T:
		v.cfg.Water.Translucency = !v.cfg.Water.Translucency
		v.engine.ReloadConfiguration(v.cfg.Water)
		v.log.Info("translucency toggled", zap.Bool("enabled", v.engine.Capabilities().Translucency))
	case sdl.SCANCODE_F:
		if r, ok := v.scene.RevealAll(); ok {
			v.engine.CellExploredChanged(r)
		}
	}
}

func (v *viewer) moveCamera(dt float32) {
	var forward, right float32
	if v.input.IsKeyHeld(sdl.SCANCODE_W) || v.input.IsKeyHeld(sdl.SCANCODE_UP) {
		forward++
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_S) || v.input.IsKeyHeld(sdl.SCANCODE_DOWN) {
		forward--
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_D) || v.input.IsKeyHeld(sdl.SCANCODE_RIGHT) {
		right++
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_A) || v.input.IsKeyHeld(sdl.SCANCODE_LEFT) {
		right--
	}
	if forward == 0 && right == 0 {
		return
	}
	step := panSpeed * dt
	v.camera.HandleMovement(forward*step, right*step)
}

func (v *viewer) resize(width, height int) {
	v.device.Resize(width, height)
	v.camera.SetViewport(width, height)
}

// Close releases GPU resources and the window.
func (v *viewer) Close() {
	if v.engine != nil {
		v.engine.Shutdown()
	}
	gldevice.DeleteTextures(v.textures)
	if v.program != nil {
		v.program.Delete()
	}
	if v.window != nil {
		v.window.Close()
	}
}
