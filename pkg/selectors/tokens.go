package selectors

import (
	"context"
	"fmt"
	"math/big"

	"sendview/pkg/models"

	"github.com/ethereum/go-ethereum/common"
)

// ResolveSelectedToken picks the active token. Precedence:
//  1. the tracked token whose address equals selectedTokenAddress
//  2. the token on the send draft
//  3. none (nil), meaning the native currency is sent
func ResolveSelectedToken(tokens []models.Token, selectedTokenAddress string, draftToken *models.Token) *models.Token {
	if selectedTokenAddress != "" {
		for _, t := range tokens {
			if t.Address == selectedTokenAddress {
				return &t
			}
		}
	}
	if draftToken != nil {
		t := *draftToken
		return &t
	}
	return nil
}

// ResolvePrimaryCurrencyLabel returns the token symbol, or "" for the native currency.
func ResolvePrimaryCurrencyLabel(token *models.Token) string {
	if token == nil {
		return ""
	}
	return token.Symbol
}

func SelectedToken(s *models.State) *models.Token {
	return ResolveSelectedToken(s.MetaMask.Tokens, s.MetaMask.SelectedTokenAddress, s.MetaMask.Send.Token)
}

func PrimaryCurrency(s *models.State) string {
	return ResolvePrimaryCurrencyLabel(SelectedToken(s))
}

// TokenContract is a read handle on a deployed ERC-20 contract.
type TokenContract interface {
	Address() common.Address
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
}

// ContractBinder binds a token address to a contract handle.
type ContractBinder interface {
	BindToken(address common.Address) (TokenContract, error)
}

// SelectedTokenContract binds the active token through binder.
// It returns a nil handle and no error when no token is active.
func SelectedTokenContract(s *models.State, binder ContractBinder) (TokenContract, error) {
	token := SelectedToken(s)
	if token == nil {
		return nil, nil
	}
	if !common.IsHexAddress(token.Address) {
		return nil, fmt.Errorf("bind token %s: invalid address %q", token.Symbol, token.Address)
	}
	contract, err := binder.BindToken(common.HexToAddress(token.Address))
	if err != nil {
		return nil, fmt.Errorf("bind token %s: %w", token.Symbol, err)
	}
	return contract, nil
}
