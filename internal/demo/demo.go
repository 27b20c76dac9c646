// Package demo runs the end-to-end walkthrough: make sure the ledger exists,
// list providers, resolve one of them and send it a chat completion.
package demo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shamank/zg-compute-go/pkg/blockchain"
	"github.com/shamank/zg-compute-go/pkg/inference"
	"github.com/shamank/zg-compute-go/pkg/model"
	"github.com/shamank/zg-compute-go/pkg/sdk"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options configures Run.
type Options struct {
	// Provider is the hex address of the provider to query.
	Provider string
	// InitialBalance funds a newly created ledger, in A0GI.
	InitialBalance decimal.Decimal
	// Message is sent as the single system message.
	Message string
	Retry   inference.Options
}

// Run walks through the demo against broker, printing progress to out.
// Errors before the inference step abort the run; an inference that never
// succeeds is reported in the output and is not an error.
func Run(ctx context.Context, out io.Writer, broker sdk.Broker, client inference.Completer, opts Options) error {
	runner, err := inference.NewRunner(broker, client, opts.Retry)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Wallet address: %s\n", broker.Address().Hex())

	if err := ensureLedger(ctx, out, broker, opts.InitialBalance); err != nil {
		return err
	}

	services, err := broker.ListServices(ctx)
	if err != nil {
		return fmt.Errorf("list services: %w", err)
	}
	printServices(out, services)

	meta, err := broker.GetServiceMetadata(ctx, opts.Provider)
	if err != nil {
		return fmt.Errorf("service metadata for %s: %w", opts.Provider, err)
	}
	fmt.Fprintf(out, "Provider %s\n  endpoint: %s\n  model:    %s\n", opts.Provider, meta.Endpoint, meta.Model)
	if meta.Card != nil {
		fmt.Fprintf(out, "  card:     %s (context %d)\n", meta.Card.Name, meta.Card.ContextLength)
	}

	res, err := runner.Run(ctx, inference.Target{
		Provider: opts.Provider,
		Endpoint: meta.Endpoint,
		Model:    meta.Model,
	}, opts.Message)
	if err != nil {
		return err
	}
	if res.Succeeded {
		fmt.Fprintf(out, "Response (attempt %d): %s\n", res.Attempts, res.Content)
	} else {
		fmt.Fprintf(out, "Inference failed after %d attempt(s)\n", res.Attempts)
	}

	ledger, err := broker.GetLedger(ctx)
	if err != nil {
		zap.L().Error("could not read final balance", zap.Error(err))
		return nil
	}
	fmt.Fprintf(out, "Remaining balance: %s A0GI\n", blockchain.NeuronToA0GI(ledger.AvailableBalance).String())
	return nil
}

func ensureLedger(ctx context.Context, out io.Writer, broker sdk.Broker, initial decimal.Decimal) error {
	ledger, err := broker.GetLedger(ctx)
	switch {
	case err == nil:
		fmt.Fprintf(out, "Ledger balance: %s A0GI\n", blockchain.NeuronToA0GI(ledger.AvailableBalance).String())
		return nil
	case !errors.Is(err, sdk.ErrLedgerNotFound):
		return fmt.Errorf("get ledger: %w", err)
	}

	fmt.Fprintf(out, "Ledger not found, creating with %s A0GI\n", initial.String())
	if err := broker.AddLedger(ctx, initial); err != nil {
		return fmt.Errorf("create ledger: %w", err)
	}
	return nil
}

func printServices(out io.Writer, services []model.Service) {
	fmt.Fprintf(out, "Available services: %d\n", len(services))
	for _, s := range services {
		fmt.Fprintf(out, "  %s  %s  %s  %s  in=%s out=%s A0GI/token\n",
			s.Provider.Hex(), s.ServiceType, s.Model, s.URL,
			blockchain.NeuronToA0GI(s.InputPrice).String(),
			blockchain.NeuronToA0GI(s.OutputPrice).String())
	}
}
