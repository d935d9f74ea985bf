package cpu

import (
	"testing"

	"github.com/jasonKoogler/axpcore/internal/affinity"
	"github.com/jasonKoogler/axpcore/internal/config"
	"github.com/jasonKoogler/axpcore/internal/issuequeue"
	"github.com/jasonKoogler/axpcore/internal/rob"
	"github.com/jasonKoogler/axpcore/internal/scoreboard"
)

func newTestCPU() *CPU {
	cfg := config.DefaultConfig()
	return New(cfg, func(*rob.Instruction) {})
}

func TestRegistersReadyRequiresDistinctSrc1Src2(t *testing.T) {
	c := newTestCPU()

	// src1 and src2 name different physical registers holding different
	// values; RegistersReady must copy each into its own instruction field
	// rather than copying src1's value into both.
	c.IntRegs.CompleteUpdate(4, 100)
	c.IntRegs.CompleteUpdate(7, 200)
	c.IntRegs.MarkPendingUpdate(9)

	ins := rob.NewInstruction()
	ins.Src1, ins.Src2, ins.Dest = 4, 7, 9

	e := &issuequeue.Entry{Ins: ins}
	if !c.RegistersReady(e) {
		t.Fatal("RegistersReady() = false, want true")
	}
	if ins.Src1V != 100 {
		t.Errorf("Src1V = %d, want 100", ins.Src1V)
	}
	if ins.Src2V != 200 {
		t.Errorf("Src2V = %d, want 200 (not copied from src1)", ins.Src2V)
	}
}

func TestRegistersReadyUnmappedDestAlwaysValid(t *testing.T) {
	c := newTestCPU()
	c.IntRegs.CompleteUpdate(1, 1)
	c.IntRegs.CompleteUpdate(2, 2)

	ins := rob.NewInstruction()
	ins.Src1, ins.Src2, ins.Dest = 1, 2, c.UnmappedReg

	if !c.RegistersReady(&issuequeue.Entry{Ins: ins}) {
		t.Fatal("RegistersReady() = false for an unmapped destination, want true")
	}
}

func TestRegistersReadyFalseWhenSrcNotValid(t *testing.T) {
	c := newTestCPU()
	c.IntRegs.MarkPendingUpdate(1)
	c.IntRegs.CompleteUpdate(2, 2)

	ins := rob.NewInstruction()
	ins.Src1, ins.Src2, ins.Dest = 1, 2, 3
	c.IntRegs.MarkPendingUpdate(3)

	if c.RegistersReady(&issuequeue.Entry{Ins: ins}) {
		t.Fatal("RegistersReady() = true while src1 is PendingUpdate, want false")
	}
}

func TestIssueMarksDestPendingAndEnqueues(t *testing.T) {
	c := newTestCPU()
	ins := rob.NewInstruction()
	ins.Dest = 5

	c.Issue(ins, affinity.CapU0U1)

	if got := c.IntRegs.State(5); got != scoreboard.PendingUpdate {
		t.Errorf("IntRegs.State(5) = %v, want PendingUpdate", got)
	}
	if c.EBox.Len() != 1 {
		t.Errorf("EBox.Len() = %d, want 1", c.EBox.Len())
	}
}

func TestIssueFPClusterGoesToFBox(t *testing.T) {
	c := newTestCPU()
	ins := rob.NewInstruction()
	ins.Dest = 5
	ins.DestIsFP = true

	c.Issue(ins, affinity.CapMul)

	if c.FBox.Len() != 1 {
		t.Errorf("FBox.Len() = %d, want 1", c.FBox.Len())
	}
	if c.EBox.Len() != 0 {
		t.Errorf("EBox.Len() = %d, want 0", c.EBox.Len())
	}
}

func TestCompleteWriteMarksValidWithValue(t *testing.T) {
	c := newTestCPU()
	ins := rob.NewInstruction()
	ins.Dest = 5

	c.CompleteWrite(ins, 42)

	if got := c.IntRegs.State(5); got != scoreboard.Valid {
		t.Errorf("IntRegs.State(5) = %v, want Valid", got)
	}
	if got := c.IntRegs.Value(5); got != 42 {
		t.Errorf("IntRegs.Value(5) = %d, want 42", got)
	}
}

func TestShutdownIsObservable(t *testing.T) {
	c := newTestCPU()
	if c.ShuttingDown() {
		t.Fatal("ShuttingDown() = true before Shutdown was called")
	}
	c.Shutdown()
	if !c.ShuttingDown() {
		t.Fatal("ShuttingDown() = false after Shutdown was called")
	}
}

func TestNewWorkerFPGateReadsIPR(t *testing.T) {
	c := newTestCPU()
	c.IPR.SetFPE(false)

	w := c.NewWorker(affinity.SlotMul)
	if w.FPGate() {
		t.Error("FPGate() = true while IPR.FPE() is false")
	}

	c.IPR.SetFPE(true)
	if !w.FPGate() {
		t.Error("FPGate() = false while IPR.FPE() is true")
	}
}

func TestNewWorkerIntegerSlotIgnoresFPE(t *testing.T) {
	c := newTestCPU()
	c.IPR.SetFPE(false)

	w := c.NewWorker(affinity.SlotL0)
	if !w.FPGate() {
		t.Error("FPGate() = false for an integer slot regardless of IPR.FPE()")
	}
}
