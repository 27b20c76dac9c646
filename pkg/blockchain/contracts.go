package blockchain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// LedgerABI is the part of the ledger manager contract ABI used by the client.
const LedgerABI = `[
  {"type":"function","name":"getLedger","stateMutability":"view",
   "inputs":[{"name":"user","type":"address"}],
   "outputs":[{"name":"user","type":"address"},{"name":"availableBalance","type":"uint256"},{"name":"totalBalance","type":"uint256"}]},
  {"type":"function","name":"addLedger","stateMutability":"payable",
   "inputs":[{"name":"additionalInfo","type":"string"}],"outputs":[]},
  {"type":"function","name":"depositFund","stateMutability":"payable","inputs":[],"outputs":[]},
  {"type":"function","name":"transferFund","stateMutability":"nonpayable",
   "inputs":[{"name":"provider","type":"address"},{"name":"serviceTypeStr","type":"string"},{"name":"amount","type":"uint256"}],
   "outputs":[]}
]`

const serviceTuple = `{"name":"provider","type":"address"},{"name":"serviceType","type":"string"},{"name":"url","type":"string"},` +
	`{"name":"inputPrice","type":"uint256"},{"name":"outputPrice","type":"uint256"},{"name":"updatedAt","type":"uint256"},` +
	`{"name":"model","type":"string"},{"name":"verifiability","type":"string"},{"name":"additionalInfo","type":"string"}`

// ServingABI is the part of the inference serving contract ABI used by the client.
const ServingABI = `[
  {"type":"function","name":"getAllServices","stateMutability":"view","inputs":[],
   "outputs":[{"name":"services","type":"tuple[]","components":[` + serviceTuple + `]}]},
  {"type":"function","name":"getService","stateMutability":"view",
   "inputs":[{"name":"provider","type":"address"}],
   "outputs":[{"name":"service","type":"tuple","components":[` + serviceTuple + `]}]},
  {"type":"function","name":"getAccount","stateMutability":"view",
   "inputs":[{"name":"user","type":"address"},{"name":"provider","type":"address"}],
   "outputs":[{"name":"nonce","type":"uint256"},{"name":"balance","type":"uint256"},{"name":"pendingRefund","type":"uint256"}]}
]`

// ServingService mirrors the service tuple returned by the serving contract.
type ServingService struct {
	Provider       common.Address
	ServiceType    string
	Url            string
	InputPrice     *big.Int
	OutputPrice    *big.Int
	UpdatedAt      *big.Int
	Model          string
	Verifiability  string
	AdditionalInfo string
}

// LedgerEntry is the getLedger result.
type LedgerEntry struct {
	User             common.Address
	AvailableBalance *big.Int
	TotalBalance     *big.Int
}

// AccountEntry is the getAccount result.
type AccountEntry struct {
	Nonce         *big.Int
	Balance       *big.Int
	PendingRefund *big.Int
}

// LedgerContract is a binding for the ledger manager contract.
type LedgerContract struct {
	Address  common.Address
	contract *bind.BoundContract
}

// ServingContract is a binding for the inference serving contract.
type ServingContract struct {
	Address  common.Address
	contract *bind.BoundContract
}

// NewLedgerContract binds the ledger manager contract at address.
func NewLedgerContract(address common.Address, backend bind.ContractBackend) (*LedgerContract, error) {
	parsed, err := abi.JSON(strings.NewReader(LedgerABI))
	if err != nil {
		return nil, err
	}
	return &LedgerContract{
		Address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// NewServingContract binds the inference serving contract at address.
func NewServingContract(address common.Address, backend bind.ContractBackend) (*ServingContract, error) {
	parsed, err := abi.JSON(strings.NewReader(ServingABI))
	if err != nil {
		return nil, err
	}
	return &ServingContract{
		Address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// GetLedger is a free data retrieval call binding the contract method getLedger(address).
func (c *LedgerContract) GetLedger(opts *bind.CallOpts, user common.Address) (LedgerEntry, error) {
	var out []interface{}
	err := c.contract.Call(opts, &out, "getLedger", user)
	if err != nil {
		return LedgerEntry{}, err
	}
	return LedgerEntry{
		User:             *abi.ConvertType(out[0], new(common.Address)).(*common.Address),
		AvailableBalance: *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
		TotalBalance:     *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
	}, nil
}

// AddLedger is a paid mutator transaction binding the contract method addLedger(string).
func (c *LedgerContract) AddLedger(opts *bind.TransactOpts, additionalInfo string) (*types.Transaction, error) {
	return c.contract.Transact(opts, "addLedger", additionalInfo)
}

// DepositFund is a paid mutator transaction binding the contract method depositFund().
func (c *LedgerContract) DepositFund(opts *bind.TransactOpts) (*types.Transaction, error) {
	return c.contract.Transact(opts, "depositFund")
}

// TransferFund is a paid mutator transaction binding the contract method
// transferFund(address,string,uint256).
func (c *LedgerContract) TransferFund(opts *bind.TransactOpts, provider common.Address, serviceType string, amount *big.Int) (*types.Transaction, error) {
	return c.contract.Transact(opts, "transferFund", provider, serviceType, amount)
}

// GetAllServices is a free data retrieval call binding the contract method getAllServices().
func (c *ServingContract) GetAllServices(opts *bind.CallOpts) ([]ServingService, error) {
	var out []interface{}
	err := c.contract.Call(opts, &out, "getAllServices")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]ServingService)).(*[]ServingService), nil
}

// GetService is a free data retrieval call binding the contract method getService(address).
func (c *ServingContract) GetService(opts *bind.CallOpts, provider common.Address) (ServingService, error) {
	var out []interface{}
	err := c.contract.Call(opts, &out, "getService", provider)
	if err != nil {
		return ServingService{}, err
	}
	return *abi.ConvertType(out[0], new(ServingService)).(*ServingService), nil
}

// GetAccount is a free data retrieval call binding the contract method getAccount(address,address).
func (c *ServingContract) GetAccount(opts *bind.CallOpts, user, provider common.Address) (AccountEntry, error) {
	var out []interface{}
	err := c.contract.Call(opts, &out, "getAccount", user, provider)
	if err != nil {
		return AccountEntry{}, err
	}
	return AccountEntry{
		Nonce:         *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Balance:       *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
		PendingRefund: *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
	}, nil
}
