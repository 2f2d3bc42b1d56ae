package uploader

import "time"

const (
	DefaultInitialDelay = 600 * time.Millisecond
	DefaultMaxDelay     = 2200 * time.Millisecond
)

// Backoff yields non-decreasing delays: delay(n+1) = min(max, floor(delay(n)*1.15)),
// computed on whole milliseconds.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
	current time.Duration
}

func DefaultBackoff() Backoff {
	return Backoff{Initial: DefaultInitialDelay, Max: DefaultMaxDelay}
}

// Next returns the delay to wait now and advances the sequence.
func (b *Backoff) Next() time.Duration {
	if b.current == 0 {
		b.current = b.Initial
		if b.Max > 0 && b.current > b.Max {
			b.current = b.Max
		}
	}
	d := b.current
	b.current = Grow(b.current, b.Max)
	return d
}

func (b *Backoff) Reset() {
	b.current = 0
}

func Grow(d, max time.Duration) time.Duration {
	next := time.Duration(d.Milliseconds()*115/100) * time.Millisecond
	if max > 0 && next > max {
		return max
	}
	return next
}
