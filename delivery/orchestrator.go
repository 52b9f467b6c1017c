package delivery

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/marcelsud/webhook-courier/delivery/backoff"
	"github.com/marcelsud/webhook-courier/delivery/signature"
	"github.com/marcelsud/webhook-courier/metrics"
	"github.com/marcelsud/webhook-courier/subscription"
)

/* Orchestrator drives each delivery through its state machine:
 *
 *   Scheduled -> Attempting -> Delivered            (2xx)
 *                           -> Scheduled(next)      (failure, retries left)
 *                           -> Exhausted            (failure, ceiling hit)
 *                           -> Error                (persistence failure)
 *
 * Exactly one driver runs per webhook at any time (the queue's admit
 * guard), so attempt numbers stay contiguous and records ordered.
 */
type Orchestrator struct {
	subs       subscription.Reader
	repo       Repository
	executor   *Executor
	backoff    *backoff.Table
	queue      *Queue
	maxRetries int
	counters   *metrics.Counters
	logger     *slog.Logger

	// ops carries fatal operational errors (persistence failures) out
	// of the retry loop instead of swallowing them.
	ops chan error
}

// NewOrchestrator wires the delivery engine together.
func NewOrchestrator(
	subs subscription.Reader,
	repo Repository,
	executor *Executor,
	bo *backoff.Table,
	queue *Queue,
	maxRetries int,
	counters *metrics.Counters,
	logger *slog.Logger,
) *Orchestrator {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &Orchestrator{
		subs:       subs,
		repo:       repo,
		executor:   executor,
		backoff:    bo,
		queue:      queue,
		maxRetries: maxRetries,
		counters:   counters,
		logger:     logger,
		ops:        make(chan error, 64),
	}
}

// Errors exposes fatal operational errors for the process to log or
// alert on. The channel is never closed.
func (o *Orchestrator) Errors() <-chan error {
	return o.ops
}

/* Run executes one Attempting transition for a job. It looks up the
 * subscription, signs the payload, performs the HTTP attempt, appends
 * the attempt record unconditionally, and then either terminates the
 * delivery or schedules the next attempt. The next attempt is only ever
 * enqueued after the current record is durably appended.
 */
func (o *Orchestrator) Run(ctx context.Context, job Job) {
	d, err := o.repo.Get(ctx, job.WebhookID)
	if err != nil {
		o.logger.Error("loading delivery",
			slog.String("webhook_id", job.WebhookID),
			slog.Any("error", err),
		)
		return
	}
	if d.Status.IsFinal() {
		// Stale continuation, e.g. a recovery re-enqueue after the
		// delivery already terminated.
		return
	}

	sub, err := o.subs.Get(ctx, d.SubscriptionID)
	if err != nil {
		// Subscriptions are never deleted while referenced by in-flight
		// deliveries; losing one mid-flight halts the webhook.
		o.halt(ctx, job.WebhookID, &PersistenceError{
			WebhookID: job.WebhookID,
			Op:        "subscription lookup",
			Err:       err,
		})
		return
	}

	if err := o.repo.UpdateStatus(ctx, job.WebhookID, Delivering); err != nil {
		o.halt(ctx, job.WebhookID, &PersistenceError{WebhookID: job.WebhookID, Op: "update status", Err: err})
		return
	}

	headers := map[string]string{
		"X-Webhook-ID":      job.WebhookID,
		"X-Webhook-Attempt": strconv.Itoa(job.Attempt),
	}
	if sig := signature.Sign([]byte(sub.Secret), d.Payload); sig != "" {
		headers["X-Webhook-Signature"] = sig
	}

	start := time.Now()
	outcome := o.executor.Attempt(ctx, sub.TargetURL, d.Payload, headers)
	elapsed := time.Since(start)

	o.counters.ObserveAttempt(outcomeLabel(outcome), elapsed.Seconds())

	// The log must reflect every attempt, including ones where the HTTP
	// call itself errored.
	attempt := Attempt{
		WebhookID:      job.WebhookID,
		SubscriptionID: d.SubscriptionID,
		TargetURL:      sub.TargetURL,
		AttemptNumber:  job.Attempt,
		Success:        outcome.Success,
		StatusCode:     outcome.StatusCode,
		Error:          outcome.Error,
		Timestamp:      start,
	}
	if err := o.repo.AppendAttempt(ctx, attempt); err != nil {
		o.halt(ctx, job.WebhookID, &PersistenceError{WebhookID: job.WebhookID, Op: "append attempt", Err: err})
		return
	}

	switch {
	case outcome.Success:
		o.terminate(ctx, job.WebhookID, Delivered)
		o.logger.Info("webhook delivered",
			slog.String("webhook_id", job.WebhookID),
			slog.Int("attempt", job.Attempt),
		)

	case backoff.Exhausted(job.Attempt, o.maxRetries):
		o.terminate(ctx, job.WebhookID, Exhausted)
		o.logger.Warn("webhook retries exhausted",
			slog.String("webhook_id", job.WebhookID),
			slog.Int("attempts", job.Attempt),
		)

	default:
		if err := o.repo.UpdateStatus(ctx, job.WebhookID, Retrying); err != nil {
			o.halt(ctx, job.WebhookID, &PersistenceError{WebhookID: job.WebhookID, Op: "update status", Err: err})
			return
		}
		delay := o.backoff.Delay(job.Attempt)
		o.queue.EnqueueAfter(Job{WebhookID: job.WebhookID, Attempt: job.Attempt + 1}, delay)
		o.logger.Info("webhook retry scheduled",
			slog.String("webhook_id", job.WebhookID),
			slog.Int("next_attempt", job.Attempt+1),
			slog.Duration("delay", delay),
		)
	}
}

/* Recover re-arms the queue from persisted state after a restart: every
 * delivery whose status is non-terminal is re-enqueued with attempt
 * number = recorded attempts + 1. Deliveries that already used up their
 * attempts but crashed before the status write are closed out here.
 */
func (o *Orchestrator) Recover(ctx context.Context) error {
	unfinished, err := o.repo.ListUnfinished(ctx)
	if err != nil {
		return err
	}

	for _, d := range unfinished {
		attempts, err := o.repo.ListAttempts(ctx, d.WebhookID)
		if err != nil {
			return err
		}

		// A crash between the attempt record and the status write can
		// leave a finished delivery looking unfinished; close it out.
		if delivered(attempts) {
			o.terminate(ctx, d.WebhookID, Delivered)
			continue
		}
		next := len(attempts) + 1
		if next > o.maxRetries {
			o.terminate(ctx, d.WebhookID, Exhausted)
			continue
		}

		o.queue.EnqueueNow(Job{WebhookID: d.WebhookID, Attempt: next})
		o.logger.Info("webhook re-armed after restart",
			slog.String("webhook_id", d.WebhookID),
			slog.Int("attempt", next),
		)
	}
	return nil
}

// halt stops a webhook's automatic progress after a persistence failure
// and surfaces the error instead of silently retrying.
func (o *Orchestrator) halt(ctx context.Context, webhookID string, perr *PersistenceError) {
	// Best effort; the store just failed.
	_ = o.repo.UpdateStatus(ctx, webhookID, Error)
	o.counters.ObserveTerminal(Error.String())
	o.logger.Error("delivery halted", slog.String("webhook_id", webhookID), slog.Any("error", perr))

	select {
	case o.ops <- perr:
	default:
		// Nobody draining; the log line above is the record.
	}
}

func (o *Orchestrator) terminate(ctx context.Context, webhookID string, status Status) {
	if err := o.repo.UpdateStatus(ctx, webhookID, status); err != nil {
		o.halt(ctx, webhookID, &PersistenceError{WebhookID: webhookID, Op: "update status", Err: err})
		return
	}
	o.counters.ObserveTerminal(status.String())
}

func delivered(attempts []Attempt) bool {
	for _, a := range attempts {
		if a.Success {
			return true
		}
	}
	return false
}

func outcomeLabel(outcome Outcome) string {
	switch {
	case outcome.Success:
		return "success"
	case outcome.StatusCode > 0:
		return "endpoint_error"
	default:
		return "network_error"
	}
}
