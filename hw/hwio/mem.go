package hwio

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlagReadOnly  MemFlags = (1 << iota) // writes fault
)

// Mem is a linear memory area. Its size must be a power of 2: addresses are
// masked with size-1, so a smaller area mapped over a larger address range is
// naturally mirrored.
type Mem struct {
	Name  string   // name of the memory area (for debugging)
	Data  []byte   // actual memory buffer
	Flags MemFlags // flags determining how the memory can be accessed

	mask uint16
}

func NewMem(name string, data []byte, flags MemFlags) *Mem {
	if len(data) == 0 || len(data)&(len(data)-1) != 0 || len(data) > 0x10000 {
		panic("memory buffer size is not pow2")
	}
	return &Mem{
		Name:  name,
		Data:  data,
		Flags: flags,
		mask:  uint16(len(data) - 1),
	}
}

func (m *Mem) Read8(addr uint16, _ bool) uint8 {
	return m.Data[addr&m.mask]
}

func (m *Mem) Write8(addr uint16, val uint8) {
	if m.Flags&MemFlagReadOnly != 0 {
		Fault(m.Name, "write", addr, "read-only memory")
	}
	m.Data[addr&m.mask] = val
}
