package cache

// FlushPolicy decides when a cache's pending batch goes to disk. The two
// rules in use are a staged-size threshold and an update-counter modulo; both
// are expressed through one policy value parameterized at construction.
type FlushPolicy struct {
	sizeThreshold int
	everyN        int64
}

// SizeThreshold flushes once the staged batch reaches n entities.
func SizeThreshold(n int) FlushPolicy {
	return FlushPolicy{sizeThreshold: n}
}

// EveryNUpdates flushes when the cumulative update counter is divisible by n.
// A burst of updates landing between two checks can jump over the divisible
// value and skip a flush boundary; the periodic flusher picks those up.
func EveryNUpdates(n int64) FlushPolicy {
	return FlushPolicy{everyN: n}
}

// ShouldFlush evaluates the policy against the update counter and the current
// staged batch size.
func (p FlushPolicy) ShouldFlush(counter int64, staged int) bool {
	if p.sizeThreshold > 0 && staged >= p.sizeThreshold {
		return true
	}
	if p.everyN > 0 && counter > 0 && counter%p.everyN == 0 {
		return true
	}
	return false
}
