package logger

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// ratioSampler admits num out of every den calls. A zero ratio means
// sampling is off and everything passes.
type ratioSampler struct {
	mu  sync.RWMutex
	num int
	den int

	n atomic.Uint64
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

// Set replaces the ratio and restarts the cycle.
func (s *ratioSampler) Set(num, den int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if num <= 0 || den <= 0 {
		num, den = 0, 0
	}
	if den > 0 && num > den {
		num = den
	}
	s.num, s.den = num, den
	s.n.Store(0)
}

// Allow reports whether the current event passes sampling.
func (s *ratioSampler) Allow() bool {
	s.mu.RLock()
	num, den := s.num, s.den
	s.mu.RUnlock()
	if num <= 0 || den <= 0 {
		return true
	}
	i := s.n.Add(1) - 1
	return int(i%uint64(den)) < num
}

// parseRatioSpec understands "n/m" and the shorthand "m" for "1/m".
// Anything unparsable disables sampling.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0
	}
	if numStr, denStr, ok := strings.Cut(spec, "/"); ok {
		num, err1 := strconv.Atoi(strings.TrimSpace(numStr))
		den, err2 := strconv.Atoi(strings.TrimSpace(denStr))
		if err1 == nil && err2 == nil {
			return num, den
		}
		return 0, 0
	}
	if v, err := strconv.Atoi(spec); err == nil && v > 0 {
		return 1, v
	}
	return 0, 0
}
