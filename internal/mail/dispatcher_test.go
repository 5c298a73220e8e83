package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type recordingSender struct {
	calls chan string
	err   error
}

func (s *recordingSender) SendVerification(ctx context.Context, toEmail, token string) error {
	s.calls <- toEmail + ":" + token
	return s.err
}

func TestDispatcher_Dispatch(t *testing.T) {
	sender := &recordingSender{calls: make(chan string, 1)}
	d := NewDispatcher(sender, zerolog.Nop())

	d.Dispatch("a@x.com", "token-1")

	select {
	case got := <-sender.calls:
		assert.Equal(t, "a@x.com:token-1", got)
	case <-time.After(time.Second):
		t.Fatal("sender was never invoked")
	}
}

func TestDispatcher_SwallowsSenderErrors(t *testing.T) {
	sender := &recordingSender{calls: make(chan string, 1), err: errors.New("vendor down")}
	d := NewDispatcher(sender, zerolog.Nop())

	// Must not panic or surface the error anywhere.
	d.Dispatch("a@x.com", "token-1")
	<-sender.calls
}
