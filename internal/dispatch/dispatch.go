// Package dispatch provides a demonstration worker.Dispatcher: a flat
// byte-addressed Memory implementing fpconv.Memory, a minimal integer ALU,
// and the wiring between decoded opcodes and cpu.CPU.CompleteWrite /
// fpconv's Execute* functions.
//
// This is explicitly a demo adapter, not a production instruction set
// implementation: real opcode decode, the rest of the integer/FP
// instruction set, and the real memory subsystem remain the external
// contract the execution core was built against.
package dispatch

import (
	"encoding/binary"
	"fmt"

	"github.com/jasonKoogler/axpcore/internal/cpu"
	"github.com/jasonKoogler/axpcore/internal/fpconv"
	"github.com/jasonKoogler/axpcore/internal/rob"
)

// Opcode identifies which semantics a decoded instruction carries. The set
// here is intentionally small: enough integer ops to exercise the
// scoreboard/issue-queue/ROB plumbing, plus the four FP load/store formats
// fpconv converts.
type Opcode uint8

const (
	OpIntAdd Opcode = iota
	OpIntSub
	OpIntAnd
	OpIntOr
	OpIntXor
	OpLDF
	OpLDG
	OpLDS
	OpLDT
	OpSTF
	OpSTG
	OpSTS
	OpSTT
)

// FlatMemory is a fixed-size, byte-addressed little/big-endian memory
// implementing fpconv.Memory. Out-of-range accesses raise AccessViolation;
// misaligned accesses raise AlignmentFault.
type FlatMemory struct {
	bytes     []byte
	bigEndian bool
}

// NewFlatMemory returns a zero-filled memory of the given size.
func NewFlatMemory(size int, bigEndian bool) *FlatMemory {
	return &FlatMemory{bytes: make([]byte, size), bigEndian: bigEndian}
}

func (m *FlatMemory) order() binary.ByteOrder {
	if m.bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Load implements fpconv.Memory.
func (m *FlatMemory) Load(va uint64, width int) (uint64, rob.ExceptionMask) {
	n := width / 8
	if va%uint64(n) != 0 {
		return 0, rob.AlignmentFault
	}
	if va+uint64(n) > uint64(len(m.bytes)) {
		return 0, rob.AccessViolation
	}
	switch width {
	case 32:
		return uint64(m.order().Uint32(m.bytes[va : va+4])), rob.NoException
	case 64:
		return m.order().Uint64(m.bytes[va : va+8]), rob.NoException
	default:
		panic(fmt.Sprintf("dispatch: unsupported load width %d", width))
	}
}

// Store implements fpconv.Memory.
func (m *FlatMemory) Store(va uint64, width int, value uint64) rob.ExceptionMask {
	n := width / 8
	if va%uint64(n) != 0 {
		return rob.AlignmentFault
	}
	if va+uint64(n) > uint64(len(m.bytes)) {
		return rob.AccessViolation
	}
	switch width {
	case 32:
		m.order().PutUint32(m.bytes[va:va+4], uint32(value))
	case 64:
		m.order().PutUint64(m.bytes[va:va+8], value)
	default:
		panic(fmt.Sprintf("dispatch: unsupported store width %d", width))
	}
	return rob.NoException
}

// Dispatcher adapts a CPU and a Memory into a worker.Dispatcher. Opcode is
// read from ins.Opcode, cast to Opcode.
type Dispatcher struct {
	CPU       *cpu.CPU
	Memory    fpconv.Memory
	BigEndian bool
}

// New returns a Dispatcher closure suitable for cpu.New's dispatch
// parameter.
func New(c *cpu.CPU, mem fpconv.Memory, bigEndian bool) func(ins *rob.Instruction) {
	d := &Dispatcher{CPU: c, Memory: mem, BigEndian: bigEndian}
	return d.Dispatch
}

// Dispatch computes ins's semantics and completes it, per the Dispatcher
// contract. FP load/store opcodes route through fpconv and call rv methods
// directly (they manage their own ROB transition and fault path); integer
// opcodes compute a result and call CompleteWrite.
func (d *Dispatcher) Dispatch(ins *rob.Instruction) {
	switch Opcode(ins.Opcode) {
	case OpIntAdd:
		d.completeInt(ins, ins.Src1V+ins.Src2V)
	case OpIntSub:
		d.completeInt(ins, ins.Src1V-ins.Src2V)
	case OpIntAnd:
		d.completeInt(ins, ins.Src1V&ins.Src2V)
	case OpIntOr:
		d.completeInt(ins, ins.Src1V|ins.Src2V)
	case OpIntXor:
		d.completeInt(ins, ins.Src1V^ins.Src2V)
	case OpLDF:
		d.completeLoad(ins, fpconv.ExecuteLDF)
	case OpLDG:
		d.completeLoad(ins, fpconv.ExecuteLDG)
	case OpLDS:
		d.completeLoad(ins, fpconv.ExecuteLDS)
	case OpLDT:
		d.completeLoad(ins, fpconv.ExecuteLDT)
	case OpSTF:
		fpconv.ExecuteSTF(d.CPU.ROB, d.Memory, d.BigEndian, ins)
	case OpSTG:
		fpconv.ExecuteSTG(d.CPU.ROB, d.Memory, d.BigEndian, ins)
	case OpSTS:
		fpconv.ExecuteSTS(d.CPU.ROB, d.Memory, d.BigEndian, ins)
	case OpSTT:
		fpconv.ExecuteSTT(d.CPU.ROB, d.Memory, d.BigEndian, ins)
	default:
		panic(fmt.Sprintf("dispatch: unrecognized opcode %d", ins.Opcode))
	}
}

func (d *Dispatcher) completeInt(ins *rob.Instruction, result uint64) {
	ins.DestV = result
	d.CPU.ROB.SetWaitingRetirement(ins)
	d.CPU.CompleteWrite(ins, result)
}

// completeLoad runs an fpconv load execution function and, if it completed
// without raising a fault, propagates ins.DestV into the destination
// scoreboard via CompleteWrite. fpconv itself only knows about the ROB view,
// not the scoreboard, so this is the seam where the register-file update
// protocol is closed for FP loads.
func (d *Dispatcher) completeLoad(ins *rob.Instruction, exec func(*rob.View, fpconv.Memory, bool, *rob.Instruction)) {
	exec(d.CPU.ROB, d.Memory, d.BigEndian, ins)
	if ins.ExcRegMask == rob.NoException {
		d.CPU.CompleteWrite(ins, ins.DestV)
	}
}
