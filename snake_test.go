package main

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Akamitori/nes-emulator-sub000/hw"
)

func TestSnakeColor(t *testing.T) {
	var (
		black   = sdl.Color{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
		white   = sdl.Color{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
		grey    = sdl.Color{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
		red     = sdl.Color{R: 0xFF, G: 0x00, B: 0x00, A: 0xFF}
		green   = sdl.Color{R: 0x00, G: 0xFF, B: 0x00, A: 0xFF}
		blue    = sdl.Color{R: 0x00, G: 0x00, B: 0xFF, A: 0xFF}
		magenta = sdl.Color{R: 0xFF, G: 0x00, B: 0xFF, A: 0xFF}
		yellow  = sdl.Color{R: 0xFF, G: 0xFF, B: 0x00, A: 0xFF}
		cyan    = sdl.Color{R: 0x00, G: 0xFF, B: 0xFF, A: 0xFF}
	)

	want := map[uint8]sdl.Color{
		0: black, 1: white,
		2: grey, 9: grey,
		3: red, 10: red,
		4: green, 11: green,
		5: blue, 12: blue,
		6: magenta, 13: magenta,
		7: yellow, 14: yellow,
		8: cyan, 15: cyan, 0xFF: cyan,
	}
	for b, c := range want {
		if got := snakeColor(b); got != c {
			t.Errorf("snakeColor(%d) = %v, want %v", b, got, c)
		}
	}
}

func TestSnakeFrameUpdate(t *testing.T) {
	bus, err := hw.NewBus(nil)
	if err != nil {
		t.Fatal(err)
	}

	var frame snakeFrame
	if !frame.update(bus) {
		t.Fatalf("first update reported no change")
	}
	if frame.update(bus) {
		t.Errorf("update reported a change with an unchanged screen")
	}

	// bottom right cell
	bus.Write8(snakeScreen+snakeSize*snakeSize-1, 3)
	if !frame.update(bus) {
		t.Fatalf("update missed a screen write")
	}
	if got := frame[len(frame)-1]; got != snakeColor(3) {
		t.Errorf("last cell = %v, want %v", got, snakeColor(3))
	}
}
