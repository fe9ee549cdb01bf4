package mqtt

import (
	"context"
	"encoding/json"

	"flowcrm-data/internal/service"

	"go.uber.org/zap"
)

// SweepRunner runs one full health check sweep.
type SweepRunner interface {
	RunAll(ctx context.Context) service.Summary
}

// SweepTrigger fires an immediate health sweep when an operations message
// arrives on the configured topic. The payload is optional; when present it
// may carry a reason for the audit log.
type SweepTrigger struct {
	runner SweepRunner
	logger *zap.Logger
}

func NewSweepTrigger(runner SweepRunner, logger *zap.Logger) *SweepTrigger {
	return &SweepTrigger{runner: runner, logger: logger}
}

type sweepRequest struct {
	Reason string `json:"reason"`
}

// HandleMessage implements MessageHandler. The sweep runs inline on the
// paho callback goroutine; sweeps are bounded by the worker pool so this
// does not pile up unbounded work.
func (t *SweepTrigger) HandleMessage(topic string, payload []byte) error {
	var req sweepRequest
	if len(payload) > 0 {
		// malformed payloads still trigger the sweep, reason is best effort
		_ = json.Unmarshal(payload, &req)
	}

	t.logger.Info("health sweep triggered via MQTT",
		zap.String("topic", topic),
		zap.String("reason", req.Reason),
	)

	summary := t.runner.RunAll(context.Background())

	t.logger.Info("triggered health sweep finished",
		zap.Int("total", summary.Total),
		zap.Int("healthy", summary.Healthy),
		zap.Int("unhealthy", summary.Unhealthy),
		zap.Int("errors", summary.Errors),
	)
	return nil
}
