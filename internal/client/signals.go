package client

import (
	"context"
	"os"
	"os/signal"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/service"
)

type trigger interface {
	Trigger(reason service.TriggerReason)
}

// signalTrigger turns OS signals into manual sync requests, so
// `kill -USR1 <pid>` syncs a running daemon immediately.
type signalTrigger struct {
	signals <-chan os.Signal
	stop    func()
	target  trigger
	logger  *logger.Logger
}

func newSignalTrigger(target trigger, logger *logger.Logger) *signalTrigger {
	ch := make(chan os.Signal, 1)
	if len(manualSyncSignals) > 0 {
		signal.Notify(ch, manualSyncSignals...)
	}
	return &signalTrigger{
		signals: ch,
		stop:    func() { signal.Stop(ch) },
		target:  target,
		logger:  logger,
	}
}

func (s *signalTrigger) Run(ctx context.Context) error {
	if s.stop != nil {
		defer s.stop()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-s.signals:
			s.logger.Info().Str("signal", sig.String()).Msg("manual sync requested")
			s.target.Trigger(service.TriggerManual)
		}
	}
}
