package hwio

import (
	"errors"
	"testing"
)

func faultOf(f func()) (err *AccessError) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok || !errors.As(e, &err) {
				panic(r)
			}
		}
	}()
	f()
	return nil
}

func TestReg8(t *testing.T) {
	r := Reg8{Name: "reg", Value: 0x11}

	if got := r.Read8(0, false); got != 0x11 {
		t.Errorf("invalid read: %x", got)
	}

	var old, cur uint8
	r.WriteCb = func(o, v uint8) { old, cur = o, v }
	r.Write8(0, 0x77)
	if r.Value != 0x77 || old != 0x11 || cur != 0x77 {
		t.Errorf("write callback got (%02x,%02x), value %02x", old, cur, r.Value)
	}

	r.ReadCb = func(v uint8) uint8 { return v + 1 }
	if got := r.Read8(0, false); got != 0x78 {
		t.Errorf("read callback: got %02x want 78", got)
	}
	// peek bypasses the read callback
	if got := r.Read8(0, true); got != 0x77 {
		t.Errorf("peek: got %02x want 77", got)
	}
}

func TestReg8Flags(t *testing.T) {
	wo := Reg8{Name: "wo", Value: 0x42, Flags: WriteOnlyFlag}
	if err := faultOf(func() { wo.Read8(0x2000, false) }); err == nil {
		t.Errorf("reading write-only register should fault")
	} else if err.Addr != 0x2000 || err.Op != "read" {
		t.Errorf("got fault %+v", err)
	}
	if got := wo.Read8(0x2000, true); got != 0 {
		t.Errorf("peek of write-only register = %02x, want 0", got)
	}

	ro := Reg8{Name: "ro", Flags: ReadOnlyFlag}
	if err := faultOf(func() { ro.Write8(0x2002, 1) }); err == nil {
		t.Errorf("writing read-only register should fault")
	}
}
