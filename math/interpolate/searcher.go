package interpolate

// searcher finds the interval of a tabulated axis which contains a point.
type searcher struct {
	xs []float64
	n int
	incr bool
	last int
}

func (s *searcher) init(xs []float64) {
	s.xs = xs
	s.n = len(xs)
	s.incr = xs[s.n-1] > xs[0]
}

func (s *searcher) val(i int) float64 { return s.xs[i] }

// search returns the index i of the interval [val(i), val(i+1)] containing
// x. The caller is responsible for x lying within the axis.
func (s *searcher) search(x float64) int {
	// Lookups usually walk along the axis, so try the last interval and its
	// right neighbour first.
	for _, i := range [2]int{s.last, s.last + 1} {
		if i >= 0 && i < s.n-1 && s.in(x, i) {
			s.last = i
			return i
		}
	}

	lo, hi := 0, s.n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if s.incr == (x >= s.xs[mid]) {
			lo = mid
		} else {
			hi = mid
		}
	}
	s.last = lo
	return lo
}

func (s *searcher) in(x float64, i int) bool {
	if s.incr { return s.xs[i] <= x && x <= s.xs[i+1] }
	return s.xs[i] >= x && x >= s.xs[i+1]
}
