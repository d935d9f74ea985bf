// Package fpconv implements the floating-point load/store format converter:
// bit-level encoders/decoders between the four Alpha memory formats (VAX F,
// VAX G, IEEE S, IEEE T) and the common 64-bit in-register representation,
// plus the big-endian address-XOR rule for 32-bit-format accesses.
//
// Every conversion is an explicit shift-and-mask encode/decode operating on
// the exponent re-bias arithmetic and NaN-sentinel remapping the Alpha
// architecture manual defines for each format; there is no struct punning
// across the VAX word-swapped wire layout.
package fpconv

import "github.com/jasonKoogler/axpcore/internal/rob"

// Exponent biases, named after the Alpha architecture manual's own names.
const (
	fBias = 128
	gBias = 1024
	sBias = 127
	tBias = 1023
)

// NaN sentinels: an IEEE S-format exponent of all-ones (8 bits) denotes NaN
// in memory; the common register view re-encodes that as an all-ones
// 11-bit exponent (R-NaN).
const (
	sNaNExp = 0xFF
	rNaNExp = 0x7FF
)

const (
	frac32Bits = 23
	frac52Bits = 52
	fracShift  = frac52Bits - frac32Bits // 29
)

const (
	signBit  = 63
	expShift = 52
	expMask  = 0x7FF
	fracMask = (uint64(1) << frac52Bits) - 1
)

func packRegister(sign, exponent, fraction uint64) uint64 {
	return (sign&1)<<signBit | (exponent&expMask)<<expShift | (fraction & fracMask)
}

func unpackRegister(v uint64) (sign, exponent, fraction uint64) {
	sign = (v >> signBit) & 1
	exponent = (v >> expShift) & expMask
	fraction = v & fracMask
	return
}

// LoadF converts a 32-bit VAX F-floating memory word into the 64-bit
// register view.
func LoadF(mem uint32) uint64 {
	sign := uint64(mem>>31) & 1
	exp := uint64(mem>>frac32Bits) & 0xFF
	frac := uint64(mem) & ((1 << frac32Bits) - 1)

	if exp != 0 {
		exp += gBias - fBias
	}
	return packRegister(sign, exp, frac<<fracShift)
}

// StoreF converts a register-view value back into 32-bit VAX F-floating
// memory format. StoreF(LoadF(x)) == x for every representable x.
func StoreF(reg uint64) uint32 {
	sign, exp, frac := unpackRegister(reg)

	if exp != 0 {
		exp = exp - gBias + fBias
	}
	frac32 := frac >> fracShift
	return uint32(sign<<31 | (exp&0xFF)<<frac32Bits | frac32)
}

// LoadG converts a 64-bit VAX G-floating memory word into the register
// view. G's bit width and bias already match the register layout, so this
// is a direct copy.
func LoadG(mem uint64) uint64 { return mem }

// StoreG is the inverse of LoadG: a direct copy.
func StoreG(reg uint64) uint64 { return reg }

// LoadS converts a 32-bit IEEE S-floating memory word into the register
// view, remapping the S-format NaN sentinel to the register's R-NaN
// sentinel.
func LoadS(mem uint32) uint64 {
	sign := uint64(mem>>31) & 1
	exp := uint64(mem>>frac32Bits) & 0xFF
	frac := uint64(mem) & ((1 << frac32Bits) - 1)

	switch {
	case exp == sNaNExp:
		exp = rNaNExp
	case exp != 0:
		exp += tBias - sBias
	}
	return packRegister(sign, exp, frac<<fracShift)
}

// StoreS converts a register-view value back into 32-bit IEEE S-floating
// memory format, remapping R-NaN back to the S-format NaN sentinel.
// StoreS(LoadS(x)) == x for every representable x, including NaN payloads.
func StoreS(reg uint64) uint32 {
	sign, exp, frac := unpackRegister(reg)

	switch {
	case exp == rNaNExp:
		exp = sNaNExp
	case exp != 0:
		exp = exp - tBias + sBias
	}
	frac32 := frac >> fracShift
	return uint32(sign<<31 | (exp&0xFF)<<frac32Bits | frac32)
}

// LoadT converts a 64-bit IEEE T-floating (double-precision) memory word
// into the register view. T's bit width and bias already match the
// register layout, so this is a direct copy.
func LoadT(mem uint64) uint64 { return mem }

// StoreT is the inverse of LoadT: a direct copy.
func StoreT(reg uint64) uint64 { return reg }

// EffectiveAddress computes the address an FP load/store accesses, applying
// the big-endian long-word XOR rule to 32-bit-format accesses only.
func EffectiveAddress(base uint64, displacement int64, width int, bigEndian bool) uint64 {
	va := uint64(int64(base) + displacement)
	if bigEndian && width == 32 {
		va ^= 4
	}
	return va
}

// Memory is the external memory-subsystem contract FP load/store operations
// invoke: mem_load/mem_store, returning any of the four fault classes
// recognized at the core boundary.
type Memory interface {
	Load(va uint64, width int) (value uint64, fault rob.ExceptionMask)
	Store(va uint64, width int, value uint64) (fault rob.ExceptionMask)
}

const unmappedFPReg = 31

// ExecuteLDF performs a VAX F-floating load: compute the effective address
// from the base register (src1v), read 32 bits from memory, convert, and
// write the result to destv. Faults are surfaced via the ROB view and the
// instruction never reaches dispatch semantics beyond that.
func ExecuteLDF(rv *rob.View, mem Memory, bigEndian bool, ins *rob.Instruction) {
	va := EffectiveAddress(ins.Src1V, ins.Displacement, 32, bigEndian)
	raw, fault := mem.Load(va, 32)
	if fault != rob.NoException {
		rv.Fault(ins, fault)
		return
	}
	ins.DestV = LoadF(uint32(raw))
	rv.SetWaitingRetirement(ins)
}

// ExecuteLDG performs a VAX G-floating load.
func ExecuteLDG(rv *rob.View, mem Memory, bigEndian bool, ins *rob.Instruction) {
	va := EffectiveAddress(ins.Src1V, ins.Displacement, 64, bigEndian)
	raw, fault := mem.Load(va, 64)
	if fault != rob.NoException {
		rv.Fault(ins, fault)
		return
	}
	ins.DestV = LoadG(raw)
	rv.SetWaitingRetirement(ins)
}

// ExecuteLDS performs an IEEE S-floating load. When the destination is the
// unmapped FP register, this is architecturally a prefetch-EN: the memory
// access (and any fault it raises) still happens, but the loaded value is
// discarded rather than written to destv. Which variant applies is decided
// by the (external) issue/decode stage, not by this function; this function
// simply honors ins.Dest as given.
func ExecuteLDS(rv *rob.View, mem Memory, bigEndian bool, ins *rob.Instruction) {
	va := EffectiveAddress(ins.Src1V, ins.Displacement, 32, bigEndian)
	raw, fault := mem.Load(va, 32)
	if fault != rob.NoException {
		rv.Fault(ins, fault)
		return
	}
	if ins.Dest != unmappedFPReg {
		ins.DestV = LoadS(uint32(raw))
	}
	rv.SetWaitingRetirement(ins)
}

// ExecuteLDT performs an IEEE T-floating load. As with ExecuteLDS, an
// unmapped destination discards the loaded value (prefetch-MEN).
func ExecuteLDT(rv *rob.View, mem Memory, bigEndian bool, ins *rob.Instruction) {
	va := EffectiveAddress(ins.Src1V, ins.Displacement, 64, bigEndian)
	raw, fault := mem.Load(va, 64)
	if fault != rob.NoException {
		rv.Fault(ins, fault)
		return
	}
	if ins.Dest != unmappedFPReg {
		ins.DestV = LoadT(raw)
	}
	rv.SetWaitingRetirement(ins)
}

// ExecuteSTF performs a VAX F-floating store. The value to store is read
// from destv: src1v is reserved for the base address register on both
// loads and stores.
func ExecuteSTF(rv *rob.View, mem Memory, bigEndian bool, ins *rob.Instruction) {
	va := EffectiveAddress(ins.Src1V, ins.Displacement, 32, bigEndian)
	fault := mem.Store(va, 32, uint64(StoreF(ins.DestV)))
	if fault != rob.NoException {
		rv.Fault(ins, fault)
		return
	}
	rv.SetWaitingRetirement(ins)
}

// ExecuteSTG performs a VAX G-floating store.
func ExecuteSTG(rv *rob.View, mem Memory, bigEndian bool, ins *rob.Instruction) {
	va := EffectiveAddress(ins.Src1V, ins.Displacement, 64, bigEndian)
	fault := mem.Store(va, 64, StoreG(ins.DestV))
	if fault != rob.NoException {
		rv.Fault(ins, fault)
		return
	}
	rv.SetWaitingRetirement(ins)
}

// ExecuteSTS performs an IEEE S-floating store.
func ExecuteSTS(rv *rob.View, mem Memory, bigEndian bool, ins *rob.Instruction) {
	va := EffectiveAddress(ins.Src1V, ins.Displacement, 32, bigEndian)
	fault := mem.Store(va, 32, uint64(StoreS(ins.DestV)))
	if fault != rob.NoException {
		rv.Fault(ins, fault)
		return
	}
	rv.SetWaitingRetirement(ins)
}

// ExecuteSTT performs an IEEE T-floating store.
func ExecuteSTT(rv *rob.View, mem Memory, bigEndian bool, ins *rob.Instruction) {
	va := EffectiveAddress(ins.Src1V, ins.Displacement, 64, bigEndian)
	fault := mem.Store(va, 64, StoreT(ins.DestV))
	if fault != rob.NoException {
		rv.Fault(ins, fault)
		return
	}
	rv.SetWaitingRetirement(ins)
}
