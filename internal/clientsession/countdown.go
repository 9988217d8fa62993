package clientsession

import (
	"context"
	"sync"
	"time"
)

// Countdown ticks once per second with the remaining session lifetime,
// firing a final zero tick when the session runs out.
type Countdown struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartCountdown begins ticking against the authority's current session.
// onTick receives the remaining duration; it gets a zero value exactly
// once when the session expires, after which the countdown stops itself.
func StartCountdown(ctx context.Context, authority *Authority, onTick func(remaining time.Duration)) (*Countdown, error) {
	session, err := authority.Current(ctx)
	if err != nil {
		return nil, err
	}

	c := &Countdown{stop: make(chan struct{}), done: make(chan struct{})}

	go func() {
		defer close(c.done)

		if session.State != Authenticated {
			onTick(0)
			return
		}

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		onTick(session.Remaining(authority.now()))
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			case <-ticker.C:
				remaining := session.Remaining(authority.now())
				onTick(remaining)
				if remaining == 0 {
					return
				}
			}
		}
	}()

	return c, nil
}

// Done is closed when the countdown loop has exited, either because the
// session ran out or Stop was called.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

// Stop tears the ticker down and waits for the loop to exit. Safe to call
// more than once.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}
