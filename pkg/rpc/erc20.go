package rpc

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"sendview/pkg/selectors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// erc20ABI covers the read-only subset of the standard token interface.
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"type":"function"}
]`

// ERC20Binder binds token addresses to contracts on a single backend.
type ERC20Binder struct {
	backend bind.ContractBackend
	abi     abi.ABI
}

func NewERC20Binder(backend bind.ContractBackend) (*ERC20Binder, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	return &ERC20Binder{backend: backend, abi: parsed}, nil
}

// BindToken implements selectors.ContractBinder.
func (b *ERC20Binder) BindToken(address common.Address) (selectors.TokenContract, error) {
	return &ERC20{
		address:  address,
		contract: bind.NewBoundContract(address, b.abi, b.backend, b.backend, b.backend),
	}, nil
}

// DialBinder connects to the first reachable RPC URL and returns a binder over it.
// The returned func closes the connection.
func DialBinder(rpcURLs []string) (*ERC20Binder, func(), error) {
	var lastErr error
	for _, rpcURL := range rpcURLs {
		client, err := ethclient.Dial(rpcURL)
		if err != nil {
			lastErr = err
			continue
		}
		binder, err := NewERC20Binder(client)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return binder, client.Close, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no RPC URLs configured")
	}
	return nil, nil, lastErr
}

// ERC20 is a read handle on a token contract.
type ERC20 struct {
	address  common.Address
	contract *bind.BoundContract
}

func (t *ERC20) Address() common.Address {
	return t.address
}

func (t *ERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	var out []interface{}
	if err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", owner); err != nil {
		return nil, fmt.Errorf("erc20 balanceOf: %w", err)
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (t *ERC20) Symbol(ctx context.Context) (string, error) {
	var out []interface{}
	if err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "symbol"); err != nil {
		return "", fmt.Errorf("erc20 symbol: %w", err)
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (t *ERC20) Decimals(ctx context.Context) (uint8, error) {
	var out []interface{}
	if err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "decimals"); err != nil {
		return 0, fmt.Errorf("erc20 decimals: %w", err)
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}
