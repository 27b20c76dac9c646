package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shamank/zg-compute-go/pkg/payment"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// settleRequest is the JSON body POSTed to <url>/v1/settle-fee.
type settleRequest struct {
	Fee string `json:"fee"`
}

// SettleFee pays fee A0GI owed to provider. When the user's sub-account at
// provider cannot cover the fee, the fee is first transferred from the
// ledger; the provider is then notified with signed settlement headers.
func (c *Core) SettleFee(ctx context.Context, provider string, fee decimal.Decimal) error {
	addr, err := parseProvider(provider)
	if err != nil {
		return err
	}
	neuron, err := toNeuron(fee)
	if err != nil {
		return err
	}
	svc, err := c.service(ctx, addr)
	if err != nil {
		return err
	}

	readCtx, cancel := withTimeout(ctx, c.timeouts.ChainRead)
	account, err := c.chain.GetAccount(readCtx, c.Address(), addr)
	cancel()
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	if account.Spendable().Cmp(neuron) < 0 {
		zap.L().Info("topping up provider sub-account",
			zap.String("provider", addr.Hex()),
			zap.String("fee", fee.String()),
			zap.String("spendable", account.Spendable().String()))

		submitCtx, cancel := withTimeout(ctx, c.timeouts.ChainSubmit)
		tx, err := c.chain.TransferFund(submitCtx, c.key, addr, svc.ServiceType, neuron)
		cancel()
		if err != nil {
			return fmt.Errorf("transfer fund: %w", err)
		}
		if err := c.waitMined(ctx, tx); err != nil {
			return err
		}
	}

	headers, err := c.signer.Headers(payment.SettlementRequest(addr, svc.ServiceType, neuron))
	if err != nil {
		return err
	}

	body, err := json.Marshal(settleRequest{Fee: neuron.String()})
	if err != nil {
		return err
	}

	reqCtx, cancel := withTimeout(ctx, c.timeouts.HTTPRequest)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, svc.SettleEndpoint(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("settle fee: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if cerr := Body.Close(); cerr != nil {
			zap.L().Debug("failed to close settle response", zap.Error(cerr))
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("settle fee: provider returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	zap.L().Info("fee settled", zap.String("provider", addr.Hex()), zap.String("fee", fee.String()))
	return nil
}
