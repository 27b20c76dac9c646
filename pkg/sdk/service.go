package sdk

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shamank/zg-compute-go/pkg/model"
	"github.com/shamank/zg-compute-go/pkg/payment"
	"github.com/shamank/zg-compute-go/pkg/storage"
	"go.uber.org/zap"
)

// ListServices returns every service registered in the serving contract and
// refreshes the local price cache.
func (c *Core) ListServices(ctx context.Context) ([]model.Service, error) {
	ctx, cancel := withTimeout(ctx, c.timeouts.ChainRead)
	defer cancel()

	services, err := c.chain.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	c.mu.Lock()
	for _, s := range services {
		c.services[s.Provider] = s
	}
	c.mu.Unlock()

	return services, nil
}

// GetServiceMetadata reads provider's registration and returns its proxy
// endpoint and model. When the registration references a model card by
// URI the card is fetched as well; a card that cannot be read is logged and
// left nil.
func (c *Core) GetServiceMetadata(ctx context.Context, provider string) (*model.ServiceMetadata, error) {
	addr, err := parseProvider(provider)
	if err != nil {
		return nil, err
	}

	svc, err := c.fetchService(ctx, addr)
	if err != nil {
		return nil, err
	}

	meta := &model.ServiceMetadata{
		Endpoint: svc.ProxyEndpoint(),
		Model:    svc.Model,
	}

	if c.storage != nil && storage.IsResolvable(svc.AdditionalInfo) {
		card, err := c.readModelCard(ctx, svc.AdditionalInfo)
		if err != nil {
			zap.L().Warn("model card unavailable",
				zap.String("provider", addr.Hex()),
				zap.String("uri", svc.AdditionalInfo),
				zap.Error(err))
		} else {
			meta.Card = card
		}
	}

	return meta, nil
}

// GetRequestHeaders returns billing headers for sending content to provider.
// The fee is the estimated input token count times the service input price.
func (c *Core) GetRequestHeaders(ctx context.Context, provider, content string) (map[string]string, error) {
	addr, err := parseProvider(provider)
	if err != nil {
		return nil, err
	}
	svc, err := c.service(ctx, addr)
	if err != nil {
		return nil, err
	}
	return c.signer.Headers(payment.InferenceRequest(addr, svc.ServiceType, content, svc.InputPrice))
}

// service returns the cached registration of provider, reading it from
// chain on a miss.
func (c *Core) service(ctx context.Context, provider common.Address) (model.Service, error) {
	c.mu.Lock()
	svc, ok := c.services[provider]
	c.mu.Unlock()
	if ok {
		return svc, nil
	}
	return c.fetchService(ctx, provider)
}

func (c *Core) fetchService(ctx context.Context, provider common.Address) (model.Service, error) {
	ctx, cancel := withTimeout(ctx, c.timeouts.ChainRead)
	defer cancel()

	svc, err := c.chain.GetService(ctx, provider)
	if err != nil {
		return model.Service{}, fmt.Errorf("get service %s: %w", provider.Hex(), err)
	}
	if svc == nil || svc.Provider == (common.Address{}) || svc.URL == "" {
		return model.Service{}, fmt.Errorf("%w: %s", ErrServiceNotFound, provider.Hex())
	}
	if svc.ServiceType == "" {
		svc.ServiceType = model.ServiceTypeInference
	}

	c.mu.Lock()
	c.services[provider] = *svc
	c.mu.Unlock()

	return *svc, nil
}

func (c *Core) readModelCard(ctx context.Context, uri string) (*model.ModelCard, error) {
	ctx, cancel := withTimeout(ctx, c.timeouts.MetadataFetch)
	defer cancel()

	raw, err := c.storage.ReadFile(ctx, uri)
	if err != nil {
		return nil, err
	}
	var card model.ModelCard
	if err := json.Unmarshal(raw, &card); err != nil {
		return nil, fmt.Errorf("decode model card: %w", err)
	}
	return &card, nil
}
