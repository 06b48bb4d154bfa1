// package ines implements a Reader for roms in the iNES file format, used for
// the distribution of NES binary programs.
package ines

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrNotINES = errors.New("not an iNES file")
	ErrNES20   = errors.New("NES 2.0 format is not supported")
	ErrTrunc   = errors.New("truncated rom")
)

type NTMirroring uint8

const (
	HorzMirroring NTMirroring = iota
	VertMirroring
	FourScreen
)

func (m NTMirroring) String() string {
	switch m {
	case HorzMirroring:
		return "horizontal"
	case VertMirroring:
		return "vertical"
	case FourScreen:
		return "four-screen"
	}
	return fmt.Sprintf("NTMirroring(%d)", uint8(m))
}

// Rom is an immutable cartridge image.
type Rom struct {
	header
	Trainer []byte // Trainer, 512 bytes if present, or empty.
	PRG     []byte // PRG is PRG ROM data (length is multiples of 16k)
	CHR     []byte // CHR is CHR ROM data (length is multiples of 8k)
}

// Open loads a rom from file.
func Open(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rom := new(Rom)
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rom, nil
}

// Decode decodes a rom from an in-memory iNES image.
func Decode(buf []byte) (*Rom, error) {
	rom := new(Rom)
	if err := rom.decode(buf); err != nil {
		return nil, err
	}
	return rom, nil
}

// ReadFrom implements io.ReaderFrom interface
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if err := rom.decode(buf); err != nil {
		return 0, err
	}
	return int64(len(buf)), nil
}

func (rom *Rom) decode(buf []byte) error {
	// header
	var off int
	if err := rom.header.decode(buf); err != nil {
		return fmt.Errorf("failed to decode header: %w", err)
	}
	off += 16

	// trainer
	if rom.HasTrainer() {
		if len(buf) < off+512 {
			return fmt.Errorf("incomplete TRAINER section: %w", ErrTrunc)
		}
		rom.Trainer = buf[off : off+512]
		off += 512
	}

	// PRG rom data
	if len(buf) < off+rom.prgsz {
		return fmt.Errorf("incomplete PRG section: %w", ErrTrunc)
	}
	rom.PRG = buf[off : off+rom.prgsz]
	off += rom.prgsz

	// CHR rom data
	if len(buf) < off+rom.chrsz {
		return fmt.Errorf("incomplete CHR section: %w", ErrTrunc)
	}
	rom.CHR = buf[off : off+rom.chrsz]
	return nil
}

const Magic = "NES\x1a"

func (hdr *header) decode(p []byte) error {
	if len(p) < 16 {
		return fmt.Errorf("too small, needs 16 bytes: %w", ErrNotINES)
	}
	if string(p[:4]) != Magic {
		return fmt.Errorf("invalid magic number: %w", ErrNotINES)
	}
	copy(hdr.raw[:], p[:16])
	if hdr.IsNES20() {
		return ErrNES20
	}

	hdr.prgsz = int(hdr.raw[4]) * 16384
	hdr.chrsz = int(hdr.raw[5]) * 8192
	return nil
}

type header struct {
	raw   [16]byte
	prgsz int
	chrsz int
}

// IsNES20 reports whether the header uses the NES 2.0 format (or any other
// non iNES version), indicated by flags 7 bits 2-3.
func (hdr *header) IsNES20() bool {
	return (hdr.raw[7]>>2)&0b11 != 0
}

// HasTrainer indicates the presence of a trainer section in the rom.
func (hdr *header) HasTrainer() bool {
	return hdr.raw[6]&0x04 != 0
}

// HasPersistent indicates the presence of persistent memory in the rom.
func (hdr *header) HasPersistent() bool {
	return hdr.raw[6]&0x02 != 0
}

// Mapper returns the mapper number.
func (hdr *header) Mapper() uint8 {
	return hdr.raw[7]&0xF0 | hdr.raw[6]>>4
}

// Mirroring returns the nametable mirroring hardwired on the cartridge.
func (hdr *header) Mirroring() NTMirroring {
	switch {
	case hdr.raw[6]&0x08 != 0:
		return FourScreen
	case hdr.raw[6]&0x01 != 0:
		return VertMirroring
	}
	return HorzMirroring
}

// PrintInfos writes a human readable description of the rom header.
func (rom *Rom) PrintInfos(w io.Writer) {
	fmt.Fprintf(w, "PRG ROM:    %d x 16KB\n", rom.prgsz/16384)
	fmt.Fprintf(w, "CHR ROM:    %d x 8KB\n", rom.chrsz/8192)
	fmt.Fprintf(w, "Mapper:     %d\n", rom.Mapper())
	fmt.Fprintf(w, "Mirroring:  %s\n", rom.Mirroring())
	fmt.Fprintf(w, "Trainer:    %t\n", rom.HasTrainer())
	fmt.Fprintf(w, "Persistent: %t\n", rom.HasPersistent())
}
