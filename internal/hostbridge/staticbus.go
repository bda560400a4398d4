package hostbridge

import (
	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/logging"
)

// StaticBus simulates a host page that answers the configuration request
// with a fixed Config. It backs the headless widgetd runner, where there is
// no real embedding page.
type StaticBus struct {
	cfg domain.Config
	in  chan Envelope
	log *logging.Logger
}

// NewStaticBus creates a bus that will answer with cfg.
func NewStaticBus(cfg domain.Config, log *logging.Logger) *StaticBus {
	return &StaticBus{
		cfg: cfg,
		in:  make(chan Envelope, 8),
		log: log.Sub("staticbus"),
	}
}

func (s *StaticBus) Post(env Envelope) error {
	switch env.Type {
	case TypeRequestConfig:
		cfg := s.cfg
		s.in <- Envelope{Type: TypeConfig, Config: &cfg}
	default:
		s.log.Debug().Str("type", env.Type).Msg("host notification")
	}
	return nil
}

func (s *StaticBus) Inbound() <-chan Envelope {
	return s.in
}
