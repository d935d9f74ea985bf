package fpconv_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jasonKoogler/axpcore/internal/fpconv"
)

var _ = Describe("VAX F round-trip", func() {
	It("is lossless for an arbitrary 32-bit pattern", func() {
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 2000; i++ {
			mem := rng.Uint32()
			Expect(fpconv.StoreF(fpconv.LoadF(mem))).To(Equal(mem))
		}
	})

	It("leaves a zero exponent untouched", func() {
		mem := uint32(1)<<31 | 0x00000042 // signed zero-exponent denormal-ish pattern
		Expect(fpconv.StoreF(fpconv.LoadF(mem))).To(Equal(mem))
	})
})

var _ = Describe("IEEE S round-trip", func() {
	It("is lossless for an arbitrary 32-bit pattern, including NaN payloads", func() {
		rng := rand.New(rand.NewSource(2))
		for i := 0; i < 2000; i++ {
			mem := rng.Uint32()
			Expect(fpconv.StoreS(fpconv.LoadS(mem))).To(Equal(mem))
		}
	})

	It("remaps the S-NaN sentinel to R-NaN and back without losing the payload", func() {
		mem := uint32(0xFF)<<23 | uint32(0x55AA55)&0x7FFFFF
		Expect(fpconv.StoreS(fpconv.LoadS(mem))).To(Equal(mem))
	})
})

var _ = Describe("VAX G and IEEE T", func() {
	It("copy through the register view unchanged in both directions", func() {
		rng := rand.New(rand.NewSource(3))
		for i := 0; i < 500; i++ {
			mem := rng.Uint64()
			Expect(fpconv.LoadG(mem)).To(Equal(mem))
			Expect(fpconv.StoreG(mem)).To(Equal(mem))
			Expect(fpconv.LoadT(mem)).To(Equal(mem))
			Expect(fpconv.StoreT(mem)).To(Equal(mem))
		}
	})
})

var _ = Describe("big-endian effective address", func() {
	Context("32-bit format accesses", func() {
		It("XORs the address by 4", func() {
			Expect(fpconv.EffectiveAddress(0x100, 0, 32, true)).To(Equal(uint64(0x104)))
		})

		It("produces the same address family regardless of which side supplies the XOR", func() {
			a := fpconv.EffectiveAddress(0x104, 0, 32, false)
			b := fpconv.EffectiveAddress(0x100, 0, 32, true)
			Expect(a).To(Equal(b))
		})
	})

	Context("64-bit format accesses", func() {
		It("is unaffected by the big-endian flag", func() {
			withBE := fpconv.EffectiveAddress(0x100, 0, 64, true)
			withoutBE := fpconv.EffectiveAddress(0x100, 0, 64, false)
			Expect(withBE).To(Equal(withoutBE))
		})
	})
})
