package ipr

import "testing"

func TestNewBlockInitialState(t *testing.T) {
	if b := NewBlock(true); !b.FPE() {
		t.Error("NewBlock(true).FPE() = false, want true")
	}
	if b := NewBlock(false); b.FPE() {
		t.Error("NewBlock(false).FPE() = true, want false")
	}
}

func TestSetFPE(t *testing.T) {
	b := NewBlock(true)
	b.SetFPE(false)
	if b.FPE() {
		t.Error("FPE() = true after SetFPE(false)")
	}
	b.SetFPE(true)
	if !b.FPE() {
		t.Error("FPE() = false after SetFPE(true)")
	}
}
