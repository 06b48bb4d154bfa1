package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Akamitori/nes-emulator-sub000/emu/log"
	"github.com/Akamitori/nes-emulator-sub000/hw"
	"github.com/Akamitori/nes-emulator-sub000/hw/hwio"
)

// Memory cells shared between snake programs and their host.
const (
	snakeRandom = 0x00FE // random byte, refreshed before each instruction
	snakeKey    = 0x00FF // ASCII code of the last key pressed
	snakeScreen = 0x0200 // 32x32 framebuffer of color indices
)

const snakeSize = 32

var snakeKeys = map[sdl.Scancode]uint8{
	sdl.SCANCODE_W: 'w',
	sdl.SCANCODE_S: 's',
	sdl.SCANCODE_A: 'a',
	sdl.SCANCODE_D: 'd',
}

// snakeColor maps a framebuffer color index to RGB.
func snakeColor(b uint8) sdl.Color {
	switch b {
	case 0:
		return sdl.Color{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
	case 1:
		return sdl.Color{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	case 2, 9:
		return sdl.Color{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	case 3, 10:
		return sdl.Color{R: 0xFF, G: 0x00, B: 0x00, A: 0xFF}
	case 4, 11:
		return sdl.Color{R: 0x00, G: 0xFF, B: 0x00, A: 0xFF}
	case 5, 12:
		return sdl.Color{R: 0x00, G: 0x00, B: 0xFF, A: 0xFF}
	case 6, 13:
		return sdl.Color{R: 0xFF, G: 0x00, B: 0xFF, A: 0xFF}
	case 7, 14:
		return sdl.Color{R: 0xFF, G: 0xFF, B: 0x00, A: 0xFF}
	}
	return sdl.Color{R: 0x00, G: 0xFF, B: 0xFF, A: 0xFF}
}

type snakeFrame [snakeSize * snakeSize]sdl.Color

// update reads the framebuffer from bus and reports whether it changed.
func (f *snakeFrame) update(bus hwio.BankIO8) bool {
	changed := false
	for i := range f {
		c := snakeColor(bus.Read8(snakeScreen+uint16(i), true))
		if f[i] != c {
			f[i] = c
			changed = true
		}
	}
	return changed
}

type snakeHost struct {
	renderer *sdl.Renderer
	scale    int32
	delay    time.Duration
	frame    snakeFrame
	rng      *rand.Rand
	quit     bool
}

// step is called before each instruction.
func (h *snakeHost) step(cpu *hw.CPU) {
	h.handleEvents(cpu)
	if h.quit {
		return
	}
	cpu.Write8(snakeRandom, uint8(h.rng.IntN(15)+1))

	if h.frame.update(cpu.Bus) {
		h.render()
	}
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
}

func (h *snakeHost) handleEvents(cpu *hw.CPU) {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			h.quit = true
		case *sdl.KeyboardEvent:
			if e.State != sdl.PRESSED {
				continue
			}
			if e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
				h.quit = true
			}
			if key, ok := snakeKeys[e.Keysym.Scancode]; ok {
				log.ModInput.DebugZ("key pressed").String("key", string(rune(key))).End()
				cpu.Write8(snakeKey, key)
			}
		}
	}
}

func (h *snakeHost) render() {
	for i, c := range h.frame {
		h.renderer.SetDrawColor(c.R, c.G, c.B, c.A)
		h.renderer.FillRect(&sdl.Rect{
			X: int32(i%snakeSize) * h.scale,
			Y: int32(i/snakeSize) * h.scale,
			W: h.scale,
			H: h.scale,
		})
	}
	h.renderer.Present()
}

// snakeMain runs a raw 6502 program in a 32x32 window.
func snakeMain(args Snake, cfg Config) error {
	prog, err := os.ReadFile(args.ProgPath)
	if err != nil {
		return fmt.Errorf("error reading program: %w", err)
	}

	bus, err := hw.NewBus(nil)
	if err != nil {
		return err
	}
	cpu := hw.NewCPU(bus)
	cpu.LoadAddr = uint16(cfg.CPU.LoadAddr)
	if err := cpu.Load(prog); err != nil {
		return err
	}
	if err := cpu.Reset(); err != nil {
		return err
	}

	scale := cfg.Snake.Scale
	if args.Scale > 0 {
		scale = args.Scale
	}

	var runErr error
	sdl.Main(func() {
		sdl.Do(func() {
			runErr = runSnake(cpu, int32(scale), time.Duration(cfg.Snake.StepDelayUS)*time.Microsecond)
		})
	})
	return runErr
}

func runSnake(cpu *hw.CPU, scale int32, delay time.Duration) error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("failed to initialize SDL: %s", err)
	}
	defer sdl.Quit()

	w, err := sdl.CreateWindow("Snake game",
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		snakeSize*scale, snakeSize*scale,
		sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("failed to create window: %s", err)
	}
	defer w.Destroy()

	renderer, err := sdl.CreateRenderer(w, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %s", err)
	}
	defer renderer.Destroy()

	host := &snakeHost{
		renderer: renderer,
		scale:    scale,
		delay:    delay,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	host.render()

	log.ModEmu.InfoZ("starting snake").
		Hex16("pc", cpu.PC).
		Duration("step_delay", delay).
		End()
	for {
		host.step(cpu)
		if host.quit {
			log.ModEmu.InfoZ("snake window closed").End()
			return nil
		}
		running, err := cpu.Step()
		if err != nil {
			return err
		}
		if !running {
			log.ModEmu.InfoZ("game over").Int64("cycles", cpu.Cycles).End()
			return nil
		}
	}
}
