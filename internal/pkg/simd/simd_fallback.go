//go:build !amd64

package simd

func wideEnabled() bool {
	return false
}

func bytesEqualWide(a, b []byte) bool {
	return bytesEqualScalar(a, b)
}

func toLowerWide(dst, src []byte) {
	toLowerScalar(dst, src)
}
