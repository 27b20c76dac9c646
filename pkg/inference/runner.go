package inference

import (
	"context"
	"errors"
	"time"

	"github.com/shamank/zg-compute-go/pkg/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Broker is the part of sdk.Broker the retry loop depends on.
type Broker interface {
	GetRequestHeaders(ctx context.Context, provider, content string) (map[string]string, error)
	SettleFee(ctx context.Context, provider string, fee decimal.Decimal) error
}

// Target identifies the provider a Runner talks to.
type Target struct {
	Provider string
	Endpoint string
	Model    string
}

// Result is the outcome of Run.
type Result struct {
	// Content is the first non-empty message content, set on success.
	Content string
	// Attempts is the number of requests sent.
	Attempts int
	// Settlements lists every fee passed to SettleFee, in order.
	Settlements []decimal.Decimal
	Succeeded   bool
}

// Options configures a Runner.
type Options struct {
	// MaxRetries is the number of attempts. Zero makes Run fail without
	// sending anything.
	MaxRetries int
	// RetryDelay is the fixed pause between attempts.
	RetryDelay time.Duration
	// FeePattern recognizes fee-underpayment errors. Empty uses
	// config.DefaultFeePattern.
	FeePattern string
}

// OptionsFromConfig returns the retry settings held by cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		FeePattern: cfg.FeePattern,
	}
}

// Runner sends a chat completion to one provider, retrying on failure and
// settling fees the provider reports as owed.
type Runner struct {
	broker Broker
	client Completer
	fees   *FeeParser

	maxRetries int
	delay      time.Duration

	// sleep waits d or until ctx is done.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRunner validates opts and returns a Runner.
func NewRunner(broker Broker, client Completer, opts Options) (*Runner, error) {
	if broker == nil {
		return nil, errors.New("broker is required")
	}
	if client == nil {
		return nil, errors.New("completion client is required")
	}
	if opts.MaxRetries < 0 {
		return nil, errors.New("max retries must not be negative")
	}
	if opts.RetryDelay < 0 {
		return nil, errors.New("retry delay must not be negative")
	}
	pattern := opts.FeePattern
	if pattern == "" {
		pattern = config.DefaultFeePattern
	}
	fees, err := NewFeeParser(pattern)
	if err != nil {
		return nil, err
	}
	return &Runner{
		broker:     broker,
		client:     client,
		fees:       fees,
		maxRetries: opts.MaxRetries,
		delay:      opts.RetryDelay,
		sleep:      sleepCtx,
	}, nil
}

// Run sends content to target until a response carries message content or
// MaxRetries attempts have been made. Every attempt uses freshly generated
// billing headers. When a response error reports an owed fee, the fee is
// settled once before the next attempt.
//
// Exhausting the attempts is not an error: Result.Succeeded is false. The
// only error returned is ctx.Err() when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, target Target, content string) (Result, error) {
	var res Result
	log := zap.L().With(zap.String("provider", target.Provider), zap.String("model", target.Model))

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Attempts = attempt
		log.Debug("sending inference request", zap.Int("attempt", attempt), zap.Int("max", r.maxRetries))

		if text, ok := r.attempt(ctx, log, target, content, attempt, &res); ok {
			res.Content = text
			res.Succeeded = true
			log.Info("inference succeeded", zap.Int("attempts", attempt))
			return res, nil
		}

		if attempt < r.maxRetries {
			if err := r.sleep(ctx, r.delay); err != nil {
				return res, err
			}
		}
	}

	log.Error("inference failed", zap.Int("attempts", res.Attempts), zap.Int("settlements", len(res.Settlements)))
	return res, nil
}

// attempt performs one request and reports the content on success. Failures
// are logged; a recognized fee error is settled before returning.
func (r *Runner) attempt(ctx context.Context, log *zap.Logger, target Target, content string, n int, res *Result) (string, bool) {
	headers, err := r.broker.GetRequestHeaders(ctx, target.Provider, content)
	if err != nil {
		log.Warn("request headers failed", zap.Int("attempt", n), zap.Error(err))
		return "", false
	}

	resp, err := r.client.Complete(ctx, target.Endpoint, target.Model, content, headers)
	if err != nil {
		log.Warn("inference request failed", zap.Int("attempt", n), zap.Error(err))
		return "", false
	}
	if resp == nil {
		log.Warn("inference returned an empty response", zap.Int("attempt", n))
		return "", false
	}

	if text := resp.Content(); text != "" {
		return text, true
	}

	fee, ok := r.fees.Parse(resp.Error)
	if !ok {
		log.Warn("inference returned no content", zap.Int("attempt", n), zap.String("error", resp.Error))
		return "", false
	}

	log.Info("settling fee", zap.Int("attempt", n), zap.String("fee", fee.String()))
	res.Settlements = append(res.Settlements, fee)
	if err := r.broker.SettleFee(ctx, target.Provider, fee); err != nil {
		log.Warn("fee settlement failed", zap.Int("attempt", n), zap.String("fee", fee.String()), zap.Error(err))
	}
	return "", false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
