package selectors

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"sendview/pkg/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBinder struct {
	mock.Mock
}

func (m *MockBinder) BindToken(address common.Address) (TokenContract, error) {
	args := m.Called(address)
	c, _ := args.Get(0).(TokenContract)
	return c, args.Error(1)
}

type fakeContract struct{ addr common.Address }

func (f fakeContract) Address() common.Address { return f.addr }

func (f fakeContract) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func TestResolveSelectedToken_Precedence(t *testing.T) {
	tokens := []models.Token{{Address: tokenDEF, Symbol: "DEF"}, {Address: tokenOMG, Symbol: "OMG"}}
	draft := &models.Token{Address: "0xdraft", Symbol: "DRF"}

	tests := []struct {
		name     string
		selected string
		draft    *models.Token
		want     string
	}{
		{"selection wins over draft", tokenOMG, draft, "OMG"},
		{"selection without draft", tokenDEF, nil, "DEF"},
		{"unknown selection falls to draft", "0xunknown", draft, "DRF"},
		{"no selection falls to draft", "", draft, "DRF"},
		{"nothing", "", nil, ""},
		{"unknown selection, no draft", "0xunknown", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveSelectedToken(tokens, tt.selected, tt.draft)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Symbol)
		})
	}
}

func TestResolveSelectedToken_ReturnsCopy(t *testing.T) {
	tokens := []models.Token{{Address: tokenDEF, Symbol: "DEF"}}
	got := ResolveSelectedToken(tokens, tokenDEF, nil)
	got.Symbol = "CHANGED"
	assert.Equal(t, "DEF", tokens[0].Symbol)
}

func TestSelectedTokenAndPrimaryCurrency(t *testing.T) {
	s := mockState(t)
	assert.Equal(t, "DEF", SelectedToken(s).Symbol)
	assert.Equal(t, "DEF", PrimaryCurrency(s))

	s.MetaMask.SelectedTokenAddress = ""
	assert.Nil(t, SelectedToken(s))
	assert.Equal(t, "", PrimaryCurrency(s))

	s.MetaMask.Send.Token = &models.Token{Address: tokenOMG, Symbol: "OMG"}
	assert.Equal(t, "OMG", PrimaryCurrency(s))
}

func TestSelectedTokenContract(t *testing.T) {
	s := mockState(t)
	binder := new(MockBinder)
	addr := common.HexToAddress(tokenDEF)
	binder.On("BindToken", addr).Return(fakeContract{addr: addr}, nil).Once()

	c, err := SelectedTokenContract(s, binder)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, addr, c.Address())
	binder.AssertExpectations(t)
}

func TestSelectedTokenContract_NoToken(t *testing.T) {
	s := mockState(t)
	s.MetaMask.SelectedTokenAddress = ""
	binder := new(MockBinder)

	c, err := SelectedTokenContract(s, binder)
	assert.NoError(t, err)
	assert.Nil(t, c)
	binder.AssertNotCalled(t, "BindToken", mock.Anything)
}

func TestSelectedTokenContract_Errors(t *testing.T) {
	s := mockState(t)
	binder := new(MockBinder)
	binder.On("BindToken", mock.Anything).Return(nil, errors.New("dial failed"))

	_, err := SelectedTokenContract(s, binder)
	assert.ErrorContains(t, err, "dial failed")

	s.MetaMask.Tokens = []models.Token{{Address: "0x8d6b", Symbol: "DEF"}}
	s.MetaMask.SelectedTokenAddress = "0x8d6b"
	_, err = SelectedTokenContract(s, binder)
	assert.ErrorContains(t, err, "invalid address")
}
