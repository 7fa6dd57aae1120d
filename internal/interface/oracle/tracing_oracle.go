package oracle

import (
	"context"
	"time"

	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"
)

// TracingOracle logs every completion round of the wrapped oracle
type TracingOracle struct {
	next usecase.Oracle
	log  logger.Logger
}

// NewTracingOracle wraps next
func NewTracingOracle(next usecase.Oracle, log logger.Logger) *TracingOracle {
	return &TracingOracle{next: next, log: log}
}

// Complete implements usecase.Oracle
func (o *TracingOracle) Complete(ctx context.Context, request usecase.OracleRequest) (usecase.OracleReply, error) {
	start := time.Now()
	o.log.Info("Oracle request",
		"specialist", request.Config.Specialist(),
		"history", len(request.History),
		"exchanges", len(request.Exchanges),
		"tools", len(request.Tools),
	)

	reply, err := o.next.Complete(ctx, request)
	if err != nil {
		o.log.Error("Oracle failed", "specialist", request.Config.Specialist(), "error", err, "duration", time.Since(start))
		return reply, err
	}

	calls := make([]string, 0, len(reply.ToolCalls))
	for _, call := range reply.ToolCalls {
		calls = append(calls, call.Name+" "+call.ArgsJSON())
	}
	o.log.Info("Oracle reply",
		"specialist", request.Config.Specialist(),
		"text", reply.Text,
		"toolCalls", calls,
		"duration", time.Since(start),
	)
	return reply, nil
}
