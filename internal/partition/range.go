package partition

// Range is the half-open index interval [Start, End) walked with Stride.
type Range struct {
	Start  int
	End    int
	Stride int
}

// Len returns how many indices the range visits.
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	stride := r.Stride
	if stride < 1 {
		stride = 1
	}
	return (r.End - r.Start + stride - 1) / stride
}

// Empty reports whether the range visits no index.
func (r Range) Empty() bool {
	return r.Len() == 0
}

// Each calls fn for every index of the range in ascending order.
func (r Range) Each(fn func(n int)) {
	stride := r.Stride
	if stride < 1 {
		stride = 1
	}
	for n := r.Start; n < r.End; n += stride {
		fn(n)
	}
}

func contiguous(start, end, limit int) Range {
	start = min(start, limit)
	end = max(min(end, limit), start)
	return Range{Start: start, End: end, Stride: 1}
}
