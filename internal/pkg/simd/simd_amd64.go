//go:build amd64

package simd

import "encoding/binary"

func wideEnabled() bool {
	return cpuFeatures.HasSSE2
}

// bytesEqualWide compares 8 bytes per step.
func bytesEqualWide(a, b []byte) bool {
	i := 0
	for ; i+8 <= len(a); i += 8 {
		if binary.LittleEndian.Uint64(a[i:]) != binary.LittleEndian.Uint64(b[i:]) {
			return false
		}
	}
	for ; i < len(a); i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// toLowerWide folds 8 bytes per step using SWAR arithmetic: for each byte
// lane it computes whether the byte lies in 'A'..'Z' and, if so, sets bit 5.
func toLowerWide(dst, src []byte) {
	const (
		ones = 0x0101010101010101
		high = 0x8080808080808080
	)
	i := 0
	for ; i+8 <= len(src); i += 8 {
		w := binary.LittleEndian.Uint64(src[i:])
		// Lanes with the top bit set are never ASCII letters.
		ascii := ^w & high
		low7 := w &^ high
		// geA: lane >= 'A'; leZ: lane <= 'Z' (computed on 7-bit values).
		geA := (low7 + (0x80-'A')*ones) & high
		leZ := ((0x80+'Z')*ones - low7) & high
		mask := geA & leZ & ascii
		binary.LittleEndian.PutUint64(dst[i:], w|(mask>>2))
	}
	for ; i < len(src); i++ {
		dst[i] = LowerByte(src[i])
	}
}
