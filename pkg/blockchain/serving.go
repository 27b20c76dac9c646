package blockchain

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shamank/zg-compute-go/pkg/model"
	"go.uber.org/zap"
)

// ListServices returns every service registered in the serving contract.
func (evm *EVMClient) ListServices(ctx context.Context) ([]model.Service, error) {
	raw, err := evm.Serving.GetAllServices(&bind.CallOpts{Context: ctx})
	if err != nil {
		zap.L().Error("failed to list services", zap.Error(err))
		return nil, err
	}
	services := make([]model.Service, 0, len(raw))
	for _, s := range raw {
		services = append(services, toModelService(s))
	}
	return services, nil
}

// GetService returns the registration of provider.
func (evm *EVMClient) GetService(ctx context.Context, provider common.Address) (*model.Service, error) {
	raw, err := evm.Serving.GetService(&bind.CallOpts{Context: ctx}, provider)
	if err != nil {
		zap.L().Error("failed to get service", zap.String("provider", provider.Hex()), zap.Error(err))
		return nil, err
	}
	s := toModelService(raw)
	return &s, nil
}

// GetAccount returns the sub-account of user at provider.
func (evm *EVMClient) GetAccount(ctx context.Context, user, provider common.Address) (*model.Account, error) {
	raw, err := evm.Serving.GetAccount(&bind.CallOpts{Context: ctx, From: user}, user, provider)
	if err != nil {
		zap.L().Error("failed to get account", zap.String("provider", provider.Hex()), zap.Error(err))
		return nil, err
	}
	return &model.Account{
		User:          user,
		Provider:      provider,
		Nonce:         raw.Nonce,
		Balance:       raw.Balance,
		PendingRefund: raw.PendingRefund,
	}, nil
}

func toModelService(s ServingService) model.Service {
	return model.Service{
		Provider:       s.Provider,
		ServiceType:    s.ServiceType,
		URL:            s.Url,
		InputPrice:     s.InputPrice,
		OutputPrice:    s.OutputPrice,
		UpdatedAt:      s.UpdatedAt,
		Model:          s.Model,
		Verifiability:  s.Verifiability,
		AdditionalInfo: s.AdditionalInfo,
	}
}
