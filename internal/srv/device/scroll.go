package device

import (
	"context"
	"github.com/jonboulle/clockwork"
	"time"
)

// Scroller yields progressively longer prefixes of a text, one rune at a
// time. It is lazy and single use.
type Scroller struct {
	runes []rune
	n     int
}

func NewScroller(text string) *Scroller {
	return &Scroller{runes: []rune(text)}
}

// Next returns the next prefix, or false once the whole text was returned.
func (s *Scroller) Next() (string, bool) {
	if s.n >= len(s.runes) {
		return "", false
	}
	s.n++
	return string(s.runes[:s.n]), true
}

type Renderer interface {
	Render(text string) error
}

// Scroll renders every prefix of text, waiting interval on clock after each
// frame. It stops at the first render error, or when ctx is done.
func Scroll(ctx context.Context, clock clockwork.Clock, r Renderer, text string, interval time.Duration) error {
	scroller := NewScroller(text)
	for frame, ok := scroller.Next(); ok; frame, ok = scroller.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Render(frame); err != nil {
			return err
		}

		timer := clock.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.Chan():
		}
	}
	return nil
}
