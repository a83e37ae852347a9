// Package simd provides CPU-feature-aware byte primitives shared by the
// matchers: equality checks for hash verification and ASCII case folding
// for case-insensitive automata.
package simd

import (
	"golang.org/x/sys/cpu"
)

// CPUFeatures holds detected CPU capabilities
type CPUFeatures struct {
	HasAVX2   bool
	HasSSE42  bool
	HasSSE41  bool
	HasSSSE3  bool
	HasSSE2   bool
	HasPOPCNT bool
}

var cpuFeatures CPUFeatures

func init() {
	cpuFeatures = CPUFeatures{
		HasAVX2:   cpu.X86.HasAVX2,
		HasSSE42:  cpu.X86.HasSSE42,
		HasSSE41:  cpu.X86.HasSSE41,
		HasSSSE3:  cpu.X86.HasSSSE3,
		HasSSE2:   cpu.X86.HasSSE2,
		HasPOPCNT: cpu.X86.HasPOPCNT,
	}
}

// GetCPUFeatures returns detected CPU features
func GetCPUFeatures() CPUFeatures {
	return cpuFeatures
}

// wideThreshold is the input length at which the word-at-a-time paths
// outperform the scalar loops.
const wideThreshold = 16

// BytesEqual reports whether a and b hold the same bytes.
// It is used as the verification step after a rolling-hash hit, so it must
// never report a false positive.
func BytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}

	if wideEnabled() && len(a) >= wideThreshold {
		return bytesEqualWide(a, b)
	}
	return bytesEqualScalar(a, b)
}

// ToLower returns a lowercased copy of input. Only ASCII letters are folded;
// every other byte is copied unchanged so offsets stay aligned with the input.
func ToLower(input []byte) []byte {
	if len(input) == 0 {
		return input
	}

	result := make([]byte, len(input))
	if wideEnabled() && len(input) >= wideThreshold {
		toLowerWide(result, input)
		return result
	}
	toLowerScalar(result, input)
	return result
}

// LowerByte folds a single ASCII uppercase letter.
func LowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 32
	}
	return b
}

func bytesEqualScalar(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func toLowerScalar(dst, src []byte) {
	for i, b := range src {
		dst[i] = LowerByte(b)
	}
}
