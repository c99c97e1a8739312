// Package pad provides the generic pad-or-truncate routine used when
// batching index sequences.
package pad

// ToLength returns a copy of seq truncated or padded to exactly desired
// elements. When padOnRight is true the head of seq is kept and padding is
// appended; otherwise the tail is kept and padding is prepended. Padding
// values come from defaultValue. A negative desired length is treated as 0.
func ToLength[T any](seq []T, desired int, defaultValue func() T, padOnRight bool) []T {
	if desired < 0 {
		desired = 0
	}

	kept := seq
	if len(kept) > desired {
		if padOnRight {
			kept = kept[:desired]
		} else {
			kept = kept[len(kept)-desired:]
		}
	}

	out := make([]T, 0, desired)
	missing := desired - len(kept)
	if !padOnRight {
		for range missing {
			out = append(out, defaultValue())
		}
	}
	out = append(out, kept...)
	if padOnRight {
		for range missing {
			out = append(out, defaultValue())
		}
	}

	return out
}

// Const returns a defaultValue function that always yields v.
func Const[T any](v T) func() T {
	return func() T { return v }
}

// Mask returns a slice of length desired holding true for positions covered
// by a sequence of n real elements padded on the right.
func Mask(n, desired int) []bool {
	if desired < 0 {
		desired = 0
	}
	mask := make([]bool, desired)
	for i := 0; i < n && i < desired; i++ {
		mask[i] = true
	}
	return mask
}
