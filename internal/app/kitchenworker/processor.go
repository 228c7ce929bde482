package kitchenworker

import (
	"context"
	"time"

	"github.com/SalonenTeemu/sandwich-store/internal/ports"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/contracts"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/telemetry"
)

// ProcessDelay is the fixed simulated preparation time per order.
const ProcessDelay = 5 * time.Second

// Sleeper is the sleep function used to simulate preparation
// (time.Sleep in prod, a no-op in tests).
type Sleeper func(d time.Duration)

// Step performs the simulated preparation for one task.
type Step func(ctx context.Context) error

// Processor handles one task end-to-end: simulate the preparation, publish
// the outcome to the result queue, and leave acking to the caller.
type Processor struct {
	publisher ports.ResultPublisher
	logger    *logger.Logger
	step      Step
}

// NewProcessor creates a Processor with the real fixed-delay step.
func NewProcessor(publisher ports.ResultPublisher, log *logger.Logger) *Processor {
	return NewProcessorWithStep(publisher, log, sleepStep(ProcessDelay, time.Sleep))
}

// NewProcessorWithStep creates a Processor with an injected step.
func NewProcessorWithStep(publisher ports.ResultPublisher, log *logger.Logger, step Step) *Processor {
	return &Processor{publisher: publisher, logger: log, step: step}
}

// Process runs the simulated step and publishes a result echoing the
// original payload. A step failure becomes a 'failed' result, not an error.
// The returned error covers the result publish and shutdown mid-step; the
// caller leaves such tasks unacked for redelivery.
func (p *Processor) Process(ctx context.Context, taskBody []byte) error {
	start := time.Now()

	status := contracts.ResultReady
	if err := p.step(ctx); err != nil {
		if ctx.Err() != nil {
			// worker shutting down, not a kitchen failure; no result, no ack
			return err
		}
		status = contracts.ResultFailed
		p.logger.Error(ctx, "task_step_failed", "Processing step failed; emitting failed result", err)
	}
	telemetry.ProcessSeconds.Observe(time.Since(start).Seconds())

	body, err := contracts.ResultBody(taskBody, status)
	if err != nil {
		return err
	}
	if err := p.publisher.PublishResult(ctx, body); err != nil {
		return err
	}

	p.logger.Debug(ctx, "result_published", "Result handed to the ready queue", map[string]any{"status": status})
	return nil
}

// sleepStep builds the production step: a fixed delay, cut short only by
// context cancellation being reported after the fact.
func sleepStep(d time.Duration, sleep Sleeper) Step {
	return func(ctx context.Context) error {
		sleep(d)
		return ctx.Err()
	}
}
