// Package affinity implements the pipeline-affinity predicate: the static
// mapping from an execution worker's slot to the set of capability tokens a
// queued instruction may advertise in order to be eligible for that slot.
package affinity

import "fmt"

// Cap is the capability token a decoded instruction advertises, indicating
// which execution slots are authorized to run it.
type Cap uint8

const (
	CapNone Cap = iota
	CapU0
	CapU1
	CapU0U1
	CapL0
	CapL1
	CapL0L1
	CapL0L1U0U1
	CapMul
	CapOther
)

func (c Cap) String() string {
	switch c {
	case CapNone:
		return "None"
	case CapU0:
		return "U0"
	case CapU1:
		return "U1"
	case CapU0U1:
		return "U0U1"
	case CapL0:
		return "L0"
	case CapL1:
		return "L1"
	case CapL0L1:
		return "L0L1"
	case CapL0L1U0U1:
		return "L0L1U0U1"
	case CapMul:
		return "Mul"
	case CapOther:
		return "Other"
	default:
		return fmt.Sprintf("Cap(%d)", uint8(c))
	}
}

// Slot identifies one of the six execution worker pipelines: four integer
// (L0, L1, U0, U1) and two floating-point (Mul, Other).
type Slot uint8

const (
	SlotL0 Slot = iota
	SlotL1
	SlotU0
	SlotU1
	SlotMul
	SlotOther
)

func (s Slot) String() string {
	switch s {
	case SlotL0:
		return "L0"
	case SlotL1:
		return "L1"
	case SlotU0:
		return "U0"
	case SlotU1:
		return "U1"
	case SlotMul:
		return "Mul"
	case SlotOther:
		return "Other"
	default:
		return fmt.Sprintf("Slot(%d)", uint8(s))
	}
}

// IsFP reports whether the slot belongs to the floating-point cluster.
func (s Slot) IsFP() bool {
	return s == SlotMul || s == SlotOther
}

// matchSet holds the three capability tokens eligible for a slot. A slot
// whose set has fewer than three genuinely distinct members repeats the last
// one; Eligible always tests all three entries, never just the first two.
type matchSet [3]Cap

var matchTable = map[Slot]matchSet{
	SlotU0:    {CapU0, CapU0U1, CapL0L1U0U1},
	SlotU1:    {CapU1, CapU0U1, CapL0L1U0U1},
	SlotL0:    {CapL0, CapL0L1, CapL0L1U0U1},
	SlotL1:    {CapL1, CapL0L1, CapL0L1U0U1},
	SlotMul:   {CapMul, CapMul, CapMul},
	SlotOther: {CapOther, CapOther, CapOther},
}

// Eligible reports whether an entry advertising cap may be claimed by slot.
func Eligible(slot Slot, cap Cap) bool {
	set, ok := matchTable[slot]
	if !ok {
		panic(fmt.Sprintf("affinity: unrecognized slot %v", slot))
	}
	return cap == set[0] || cap == set[1] || cap == set[2]
}

// AffectedSlots returns every slot whose cluster-occupancy counter must be
// incremented on enqueue (and decremented on dequeue/flush) for an entry
// advertising cap. An unrecognized capability is a fatal programming error,
// never a silently-skipped default.
func AffectedSlots(cap Cap) []Slot {
	switch cap {
	case CapNone:
		return nil
	case CapU0:
		return []Slot{SlotU0}
	case CapU1:
		return []Slot{SlotU1}
	case CapU0U1:
		return []Slot{SlotU0, SlotU1}
	case CapL0:
		return []Slot{SlotL0}
	case CapL1:
		return []Slot{SlotL1}
	case CapL0L1:
		return []Slot{SlotL0, SlotL1}
	case CapL0L1U0U1:
		return []Slot{SlotL0, SlotL1, SlotU0, SlotU1}
	case CapMul:
		return []Slot{SlotMul}
	case CapOther:
		return []Slot{SlotOther}
	default:
		panic(fmt.Sprintf("affinity: unrecognized capability %v", cap))
	}
}
