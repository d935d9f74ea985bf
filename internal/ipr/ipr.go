// Package ipr models the single internal-processor-register bit the
// execution core consults directly: the floating-point-enable (FPE) bit
// that gates whether FP workers may dispatch or must raise
// FloatingDisabledFault.
package ipr

import "sync"

// Block guards the FPE bit. Integer workers never consult it.
type Block struct {
	mu  sync.Mutex
	fpe bool
}

// NewBlock returns a Block with FPE initialized to the given enabled value.
func NewBlock(enabled bool) *Block {
	return &Block{fpe: enabled}
}

// FPE reports whether floating-point execution is currently enabled.
func (b *Block) FPE() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fpe
}

// SetFPE updates the FPE bit. Called by external privileged-instruction
// handling, not by an execution worker.
func (b *Block) SetFPE(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fpe = enabled
}
