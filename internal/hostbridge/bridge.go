// Package hostbridge negotiates widget configuration with the host page
// over a cross-document message bus and carries the widget's outbound
// notifications (initialized, expand, collapse).
package hostbridge

import (
	"context"
	"errors"
	"time"

	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/logging"
)

// ErrHandshakeTimeout is returned when the host never answered the
// configuration request within the allotted attempts.
var ErrHandshakeTimeout = errors.New("hostbridge: configuration handshake timed out")

const (
	defaultHandshakeTimeout = 5 * time.Second
	handshakeRetries        = 1
)

// Bridge is the widget side of the host protocol.
type Bridge struct {
	bus     Bus
	timeout time.Duration
	log     *logging.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithTimeout overrides the per-attempt handshake timeout.
func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.timeout = d }
}

// New creates a bridge over the given bus.
func New(bus Bus, log *logging.Logger, opts ...Option) *Bridge {
	b := &Bridge{
		bus:     bus,
		timeout: defaultHandshakeTimeout,
		log:     log.Sub("hostbridge"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Handshake requests the widget configuration from the host and waits for
// the first chatbotConfig answer. The request is retried once after a
// timeout; a second timeout yields ErrHandshakeTimeout so the widget can
// surface a hard failure instead of hanging forever. Non-config inbound
// envelopes received while waiting are skipped; config messages after the
// first are never re-read, so re-configuration is not supported.
func (b *Bridge) Handshake(ctx context.Context) (domain.Config, error) {
	for attempt := 0; attempt <= handshakeRetries; attempt++ {
		if attempt > 0 {
			b.log.Warn().Int("attempt", attempt+1).Msg("retrying configuration request")
		}
		if err := b.bus.Post(Envelope{Type: TypeRequestConfig}); err != nil {
			return domain.Config{}, err
		}

		cfg, ok, err := b.awaitConfig(ctx)
		if err != nil {
			return domain.Config{}, err
		}
		if ok {
			b.log.Info().Str("tenant", cfg.TenantCode).Msg("configuration received")
			return cfg, nil
		}
	}
	return domain.Config{}, ErrHandshakeTimeout
}

func (b *Bridge) awaitConfig(ctx context.Context) (domain.Config, bool, error) {
	deadline := time.NewTimer(b.timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return domain.Config{}, false, ctx.Err()
		case <-deadline.C:
			return domain.Config{}, false, nil
		case env, open := <-b.bus.Inbound():
			if !open {
				return domain.Config{}, false, errors.New("hostbridge: bus closed")
			}
			if env.Type != TypeConfig || env.Config == nil {
				b.log.Debug().Str("type", env.Type).Msg("ignoring non-config message during handshake")
				continue
			}
			return *env.Config, true, nil
		}
	}
}

// NotifyInitialized tells the host the widget finished booting.
func (b *Bridge) NotifyInitialized() error {
	return b.bus.Post(Envelope{Type: TypeInitialized})
}

// NotifyExpand asks the host to grow the iframe to the given size.
func (b *Bridge) NotifyExpand(width, height string) error {
	return b.bus.Post(Envelope{Type: TypeExpand, Width: width, Height: height})
}

// NotifyCollapse asks the host to shrink the iframe back to the launcher.
func (b *Bridge) NotifyCollapse() error {
	return b.bus.Post(Envelope{Type: TypeCollapse})
}
