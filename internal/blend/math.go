// Package blend provides integer mixing math for 8- and 16-bit samples.
//
// The div255 family avoids integer division by using shifts and addition.
// Transitions call these for every covered pixel of every frame, so the
// 8-bit paths stay division free.
//
// References:
//   - Alpha blending without division: https://arxiv.org/abs/2202.02864
//   - Alvy Ray Smith's technical memos: http://alvyray.com/Memos/
package blend

// div255 divides x by 255 exactly without using division.
//
// Formula: ((x + 1) + ((x + 1) >> 8)) >> 8
//
// Exact for all products of two bytes (0..65025).
func div255(x uint32) uint32 {
	t := x + 1
	return (t + (t >> 8)) >> 8
}

// div65535 divides x by 65535 with rounding, for products of two 16-bit
// samples.
func div65535(x uint64) uint64 {
	return (x + 32767) / 65535
}

// Mix8 mixes two 8-bit samples: cov = 0 yields a, cov = 255 yields b.
func Mix8(a, b, cov byte) byte {
	return byte(div255(uint32(a)*uint32(255-cov) + uint32(b)*uint32(cov) + 127))
}

// Mix16 mixes two 16-bit samples: cov = 0 yields a, cov = 65535 yields b.
func Mix16(a, b, cov uint16) uint16 {
	return uint16(div65535(uint64(a)*uint64(65535-cov) + uint64(b)*uint64(cov)))
}

// Mix mixes a and b by cov in [0, maxVal] for a sample range of [0, maxVal].
// maxVal must be 255 or 65535.
func Mix(a, b, cov, maxVal int) int {
	if maxVal == 255 {
		return int(Mix8(byte(a), byte(b), byte(cov)))
	}
	return int(Mix16(uint16(a), uint16(b), uint16(cov)))
}

// Lerp mixes a and b by the fraction t in [0, 1] with rounding.
// t is clamped.
func Lerp(a, b int, t float64) int {
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	v := float64(a) + (float64(b)-float64(a))*t
	if v < 0 {
		return 0
	}
	return int(v + 0.5)
}

// Premultiply scales a color sample by alpha in [0, maxVal].
func Premultiply(c, a, maxVal int) int {
	if maxVal == 255 {
		return int(div255(uint32(c)*uint32(a) + 127))
	}
	return int(div65535(uint64(c) * uint64(a)))
}

// Unpremultiply reverses Premultiply, clamping to maxVal.
// A zero alpha yields zero.
func Unpremultiply(c, a, maxVal int) int {
	if a == 0 {
		return 0
	}
	v := (c*maxVal + a/2) / a
	if v > maxVal {
		return maxVal
	}
	return v
}
