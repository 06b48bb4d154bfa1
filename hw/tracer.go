package hw

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/jx"

	"github.com/Akamitori/nes-emulator-sub000/emu/log"
)

// TraceFormat selects the layout of execution trace lines.
type TraceFormat uint8

const (
	TraceText TraceFormat = iota // nestest.log style
	TraceJSON                    // one JSON object per line
)

func (f TraceFormat) String() string {
	switch f {
	case TraceText:
		return "text"
	case TraceJSON:
		return "json"
	}
	return fmt.Sprintf("TraceFormat(%d)", uint8(f))
}

// ParseTraceFormat parses "text" or "json".
func ParseTraceFormat(s string) (TraceFormat, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return TraceText, nil
	case "json":
		return TraceJSON, nil
	}
	return 0, fmt.Errorf("unknown trace format %q", s)
}

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	A, X, Y uint8
	P       P
	SP      uint8
	PC      uint16

	Cycles int64
}

func (c *CPU) state() cpuState {
	return cpuState{
		A:      c.A,
		X:      c.X,
		Y:      c.Y,
		P:      c.P,
		SP:     c.SP,
		PC:     c.PC,
		Cycles: c.Cycles,
	}
}

type disasmer interface {
	Disasm(pc uint16) DisasmOp
}

type tracer struct {
	d      disasmer
	w      io.Writer
	format TraceFormat

	buf []byte
	enc jx.Encoder
	err error // first write error, tracing stops after it
}

func newTracer(d disasmer, w io.Writer, format TraceFormat) *tracer {
	return &tracer{d: d, w: w, format: format}
}

// Trace returns the trace line of the instruction about to execute, in the
// nestest.log format (up to the SP column).
func Trace(c *CPU) string {
	return string(appendTrace(nil, c.Disasm(c.PC), c.state()))
}

func appendTrace(buf []byte, dis DisasmOp, state cpuState) []byte {
	buf = dis.appendTo(buf, true)

	regs := [...]struct {
		name string
		val  uint8
	}{
		{"A", state.A},
		{"X", state.X},
		{"Y", state.Y},
		{"P", uint8(state.P)},
		{"SP", state.SP},
	}
	for _, r := range regs {
		buf = append(buf, ' ')
		buf = append(buf, r.name...)
		buf = append(buf, ':', 0, 0)
		hexEncode(buf[len(buf)-2:], r.val)
	}
	return buf
}

// write the execution trace of the instruction at state.PC.
func (t *tracer) write(state cpuState) {
	if t.err != nil {
		return
	}
	dis := t.d.Disasm(state.PC)

	switch t.format {
	case TraceJSON:
		t.writeJSON(dis, state)
	default:
		t.buf = appendTrace(t.buf[:0], dis, state)
		t.buf = append(t.buf, '\n')
		t.flush()
	}
}

func (t *tracer) writeJSON(dis DisasmOp, state cpuState) {
	e := &t.enc
	e.Reset()

	e.ObjStart()
	e.FieldStart("pc")
	e.UInt16(state.PC)
	e.FieldStart("bytes")
	e.Str(hex.EncodeToString(dis.Buf))
	e.FieldStart("op")
	e.Str(dis.Opcode)
	e.FieldStart("oper")
	e.Str(dis.Oper)
	e.FieldStart("a")
	e.UInt8(state.A)
	e.FieldStart("x")
	e.UInt8(state.X)
	e.FieldStart("y")
	e.UInt8(state.Y)
	e.FieldStart("p")
	e.UInt8(uint8(state.P))
	e.FieldStart("sp")
	e.UInt8(state.SP)
	e.FieldStart("cycles")
	e.Int64(state.Cycles)
	e.ObjEnd()

	t.buf = append(append(t.buf[:0], e.Bytes()...), '\n')
	t.flush()
}

func (t *tracer) flush() {
	if _, err := t.w.Write(t.buf); err != nil {
		t.err = err
		log.ModCPU.ErrorZ("trace write failed, tracing stopped").Error("err", err).End()
	}
}
