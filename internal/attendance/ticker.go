package attendance

import (
	"context"
	"sync"
	"time"
)

// Ticker calls a function once immediately and then at a fixed interval
// until its context is cancelled or Stop is called. A stopped Ticker
// cannot be restarted.
type Ticker struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartTicker starts a Ticker. fn runs on the ticker goroutine and must not block.
func StartTicker(ctx context.Context, interval time.Duration, fn func(now time.Time)) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Ticker{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		fn(time.Now())
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				// A cancel racing with a tick must not produce one more call.
				if ctx.Err() != nil {
					return
				}
				fn(now)
			}
		}
	}()

	return t
}

// Stop cancels the ticker and waits for its goroutine to exit.
func (t *Ticker) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the ticker goroutine has exited.
func (t *Ticker) Done() <-chan struct{} {
	return t.done
}
