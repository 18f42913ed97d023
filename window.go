package rdt

import (
	"fmt"
	"strings"
)

func mod(value, modulus int) int {
	value %= modulus
	if value < 0 {
		value += modulus
	}
	return value
}

// inWindow reports whether value lies in [low, high) on the ring of size
// modulus. Bounds may be given unreduced (high = low + size); a window with
// low == high after reduction is empty.
func inWindow(low, high, modulus, value int) bool {
	low, high, value = mod(low, modulus), mod(high, modulus), mod(value, modulus)
	if low <= high {
		return low <= value && value < high
	}
	// wrapped: [low, modulus) followed by [0, high)
	return value >= low || value < high
}

// sequenceRange lists the sequence numbers of [low, high) in ascending
// window order.
func sequenceRange(low, high, modulus int) []int {
	var result []int
	for i := mod(low, modulus); i != mod(high, modulus); i = (i + 1) % modulus {
		result = append(result, i)
	}
	return result
}

func windowString(low, size, modulus int) string {
	numbers := make([]string, 0, size)
	for i := 0; i < size; i++ {
		numbers = append(numbers, fmt.Sprint(mod(low+i, modulus)))
	}
	return "[" + strings.Join(numbers, " ") + "]"
}
