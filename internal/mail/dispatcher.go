package mail

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const sendTimeout = 30 * time.Second

// NotificationResult records the outcome of one delivery attempt. It is
// consumed only by logging; callers of Dispatch never see it.
type NotificationResult struct {
	Recipient string
	Err       error
	Elapsed   time.Duration
}

// Dispatcher sends verification emails asynchronously, best effort. A failed
// delivery is logged and then dropped: registration must not depend on the
// mail vendor being up, so the user record exists either way and there is no
// retry.
type Dispatcher struct {
	sender Sender
	logger zerolog.Logger
}

// NewDispatcher creates a dispatcher logging through the given logger.
func NewDispatcher(sender Sender, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, logger: logger}
}

// Dispatch fires the verification email on its own goroutine and returns
// immediately. The request context is not reused; delivery outlives the
// request that triggered it.
func (d *Dispatcher) Dispatch(toEmail, token string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		start := time.Now()
		res := NotificationResult{
			Recipient: toEmail,
			Err:       d.sender.SendVerification(ctx, toEmail, token),
			Elapsed:   time.Since(start),
		}
		d.log(res)
	}()
}

func (d *Dispatcher) log(res NotificationResult) {
	if res.Err != nil {
		d.logger.Error().
			Err(res.Err).
			Str("recipient", res.Recipient).
			Dur("elapsed", res.Elapsed).
			Msg("verification email delivery failed")
		return
	}
	d.logger.Info().
		Str("recipient", res.Recipient).
		Dur("elapsed", res.Elapsed).
		Msg("verification email sent")
}
