package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/accounts-backend/pkg/logger"
)

const defaultTimeout = 30 * time.Second

// Sender delivers a welcome notification to a newly registered user.
type Sender interface {
	SendWelcome(ctx context.Context, email, displayName string) error
}

// Dispatcher runs welcome sends in the background. Failures are logged and
// never reach the caller.
type Dispatcher struct {
	sender  Sender
	logg    *logger.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, timeout time.Duration, logg *logger.Logger) (*Dispatcher, error) {
	if sender == nil {
		return nil, fmt.Errorf("notification sender required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{sender: sender, logg: logg, timeout: timeout}, nil
}

// Dispatch returns immediately. The send keeps the request's log fields but
// outlives its cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, email, displayName string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		sendCtx = d.logg.WithField(sendCtx, "recipient", email)

		defer func() {
			if r := recover(); r != nil {
				d.logg.Error(sendCtx, "notification.welcome.failed", fmt.Errorf("panic: %v", r))
			}
		}()

		if err := d.sender.SendWelcome(sendCtx, email, displayName); err != nil {
			d.logg.Error(sendCtx, "notification.welcome.failed", err)
			return
		}
		d.logg.Info(sendCtx, "notification.welcome.sent")
	}()
}

// Wait blocks until every dispatched send has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
