package series

// Decimate downsamples src to at most maxPoints points using uniform decimation.
// Destination-based: reuses dst's X/Y if they have sufficient capacity, otherwise allocates new.
// Returns the destination series (may share dst's arrays if reused).
// If src.Len() <= maxPoints, copies all points to dst.
func Decimate(dst Series, src Series, maxPoints int) Series {
	dst.SampleID = src.SampleID
	n := src.Len()

	if n <= maxPoints {
		dst.X = copyInto(dst.X, src.X)
		dst.Y = copyInto(dst.Y, src.Y)
		return dst
	}

	// Need to downsample
	dst.X = resetWithCapacity(dst.X, maxPoints)
	dst.Y = resetWithCapacity(dst.Y, maxPoints)

	// Calculate step size for decimation
	step := float64(n) / float64(maxPoints)

	for i := range maxPoints {
		idx := int(float64(i) * step)
		if idx < n {
			dst.X = append(dst.X, src.X[idx])
			dst.Y = append(dst.Y, src.Y[idx])
		}
	}

	return dst
}

// copyInto copies src into dst, reusing dst's array when it is large enough.
func copyInto(dst, src []float64) []float64 {
	if cap(dst) >= len(src) {
		dst = dst[:len(src)]
		copy(dst, src)
		return dst
	}
	// dst too small, allocate new
	result := make([]float64, len(src))
	copy(result, src)
	return result
}

// resetWithCapacity returns dst truncated to zero length if it can hold n values,
// or a new empty slice with capacity n.
func resetWithCapacity(dst []float64, n int) []float64 {
	if cap(dst) >= n {
		return dst[:0] // Reset length but keep capacity
	}
	return make([]float64, 0, n)
}
