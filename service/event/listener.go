package event

import (
	"context"
	"errors"
	"log/slog"

	"github.com/viant/rrsim/internal/logging"
)

// Handler processes a single event; returning an error nacks the message.
type Handler[T any] func(*Event[T]) error

type Listener[T any] struct {
	publisher *Publisher[T]
	handler   Handler[T]
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewListener[T any](publisher *Publisher[T], handler Handler[T], logger *slog.Logger) *Listener[T] {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Stop cancels the consume loop and waits for it to exit
func (l *Listener[T]) Stop() {
	l.cancel()
	<-l.done
}

func (l *Listener[T]) Start() {
	go l.run()
}

func (l *Listener[T]) run() {
	defer close(l.done)
	for {
		msg, err := l.publisher.Consume(l.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			l.logger.Error("failed to consume event", logging.ErrAttr(err))
			continue
		}
		if msg == nil {
			continue
		}
		if hErr := l.handler(msg.T()); hErr != nil {
			l.logger.Warn("event handler failed",
				slog.String("type", string(msg.T().Type())),
				logging.ErrAttr(hErr))
			_ = msg.Nack(hErr)
			continue
		}
		_ = msg.Ack()
	}
}
