package watcher

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"sendview/pkg/config"
	"sendview/pkg/models"
	"sendview/pkg/selectors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	tokenAddr  = "0x8d6b000000000000000000000000000000000001"
	senderAddr = "0xf42e00000000000000000000000000000000f42e"
)

type MockDataSource struct {
	mock.Mock
}

func (m *MockDataSource) FetchRecentBlocks(rpcURLs []string, count int) ([]models.Block, []string, error) {
	args := m.Called(rpcURLs, count)
	return args.Get(0).([]models.Block), args.Get(1).([]string), args.Error(2)
}

func (m *MockDataSource) FetchConversionRate(coinID, currency string) (decimal.Decimal, error) {
	args := m.Called(coinID, currency)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockDataSource) DialBinder(rpcURLs []string) (selectors.ContractBinder, func(), error) {
	args := m.Called(rpcURLs)
	binder, _ := args.Get(0).(selectors.ContractBinder)
	return binder, func() {}, args.Error(1)
}

type fakeBinder struct {
	balance  *big.Int
	symbol   string
	decimals uint8
	// when set, BalanceOf signals started and waits for release
	started chan struct{}
	release chan struct{}
}

func (b fakeBinder) BindToken(address common.Address) (selectors.TokenContract, error) {
	return fakeContract{address: address, binder: b}, nil
}

type fakeContract struct {
	address common.Address
	binder  fakeBinder
}

func (c fakeContract) Address() common.Address { return c.address }

func (c fakeContract) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	if c.binder.release != nil {
		close(c.binder.started)
		<-c.binder.release
	}
	return c.binder.balance, nil
}

func (c fakeContract) Symbol(ctx context.Context) (string, error) {
	if c.binder.symbol == "" {
		return "", errors.New("no symbol")
	}
	return c.binder.symbol, nil
}

func (c fakeContract) Decimals(ctx context.Context) (uint8, error) {
	return c.binder.decimals, nil
}

func loadState(t *testing.T) *models.State {
	t.Helper()
	s, err := models.LoadStateFromFile("../models/testdata/snapshot.json")
	require.NoError(t, err)
	s.MetaMask.Tokens = []models.Token{{Address: tokenAddr, Symbol: "DEF", Decimals: 18}}
	s.MetaMask.SelectedTokenAddress = tokenAddr
	s.MetaMask.Send.From = &models.SendAccount{Address: senderAddr, Balance: "0x5f4e3d2c1b0a"}
	return s
}

func testNetwork() config.NetworkConfig {
	return config.NetworkConfig{
		Name:        "Ropsten",
		NetworkID:   "3",
		RPCURLs:     []string{"http://rpc"},
		Symbol:      "ETH",
		CoinGeckoID: "ethereum",
	}
}

func drain(t *testing.T, sub Subscriber, want EventType) Event {
	t.Helper()
	timeout := time.After(1 * time.Second)
	for {
		select {
		case ev := <-sub:
			if ev.Type == want {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", want)
			return Event{}
		}
	}
}

func TestNewWatcher(t *testing.T) {
	w := NewWatcher(testNetwork(), nil, config.DefaultGlobalConfig())

	assert.NotNil(t, w)
	assert.Nil(t, w.State())
	_, err := w.View()
	assert.ErrorIs(t, err, ErrNoState)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	w := NewWatcher(testNetwork(), nil, config.GlobalConfig{})
	sub := w.Subscribe()
	assert.NotNil(t, sub)

	w.mu.RLock()
	assert.Equal(t, 1, len(w.subscribers))
	w.mu.RUnlock()

	w.Unsubscribe(sub)
	w.mu.RLock()
	assert.Equal(t, 0, len(w.subscribers))
	w.mu.RUnlock()
}

func TestSetState(t *testing.T) {
	book := config.AddressBook{{Address: "0xbook", Name: "Alice"}}
	w := NewWatcher(testNetwork(), book, config.GlobalConfig{})
	sub := w.Subscribe()

	require.NoError(t, w.SetState(loadState(t)))

	ev := drain(t, sub, EventViewUpdated)
	view := ev.Data.(selectors.SendView)
	assert.Equal(t, senderAddr, view.From.Address)
	assert.Equal(t, "DEF", view.PrimaryCurrency)
	assert.Equal(t, "Alice", view.SendToAccounts[len(view.SendToAccounts)-1].Name)

	current, err := w.View()
	require.NoError(t, err)
	assert.Equal(t, view.GasTotal, current.GasTotal)

	bad := loadState(t)
	bad.MetaMask.Network = ""
	assert.ErrorIs(t, w.SetState(bad), models.ErrInvalidSnapshot)
	assert.Equal(t, "3", w.State().MetaMask.Network)
}

func TestSetState_ViewError(t *testing.T) {
	w := NewWatcher(testNetwork(), nil, config.GlobalConfig{})
	sub := w.Subscribe()

	s := loadState(t)
	s.MetaMask.Send.GasPrice = "0xzz"
	require.NoError(t, w.SetState(s))

	ev := drain(t, sub, EventStatusUpdated)
	assert.Contains(t, ev.Data.(string), "gas total")
	_, err := w.View()
	assert.Error(t, err)
}

func TestFetchAll(t *testing.T) {
	mockDS := new(MockDataSource)
	globalCfg := config.GlobalConfig{RecentBlockCount: 2}

	w := NewWatcher(testNetwork(), nil, globalCfg)
	w.SetDataSource(mockDS)

	blocks := []models.Block{
		{Number: "0x20", GasLimit: "0x1c9c380", GasPrices: []string{"0x3b9aca00"}},
		{Number: "0x21", GasLimit: "0x1c9c381", GasPrices: []string{"0x77359400"}},
	}
	mockDS.On("FetchRecentBlocks", []string{"http://rpc"}, 2).Return(blocks, []string{}, nil)
	mockDS.On("FetchConversionRate", "ethereum", "usd").Return(decimal.RequireFromString("2500.5"), nil)
	mockDS.On("DialBinder", []string{"http://rpc"}).Return(fakeBinder{balance: big.NewInt(500000000)}, nil)

	original := loadState(t)
	require.NoError(t, w.SetState(original))
	sub := w.Subscribe()

	w.fetchAll(context.Background())

	mockDS.AssertExpectations(t)

	s := w.State()
	assert.Equal(t, blocks, s.MetaMask.RecentBlocks)
	assert.Equal(t, "0x1c9c381", s.MetaMask.CurrentBlockGasLimit)
	assert.Equal(t, "2500.5", s.MetaMask.ConversionRate.String())
	assert.Equal(t, "0x1dcd6500", s.MetaMask.Send.TokenBalance)

	// the snapshot handed to SetState is never modified
	assert.Equal(t, "0x3e8", original.MetaMask.Send.TokenBalance)
	assert.Equal(t, "0x4c1878", original.MetaMask.CurrentBlockGasLimit)

	view := drain(t, sub, EventViewUpdated).Data.(selectors.SendView)
	assert.Equal(t, "0x1dcd6500", view.TokenBalance)
	assert.Equal(t, []string{"0x1c9c380", "0x1c9c381"}, view.BlockGasLimits)
}

func TestFetchAll_Failures(t *testing.T) {
	mockDS := new(MockDataSource)
	w := NewWatcher(testNetwork(), nil, config.GlobalConfig{RecentBlockCount: 2})
	w.SetDataSource(mockDS)

	mockDS.On("FetchRecentBlocks", mock.Anything, 2).Return([]models.Block(nil), []string{"http://rpc"}, errors.New("unreachable"))
	mockDS.On("FetchConversionRate", "ethereum", "usd").Return(decimal.Zero, errors.New("rate limited"))
	mockDS.On("DialBinder", mock.Anything).Return(nil, errors.New("dial failed"))

	require.NoError(t, w.SetState(loadState(t)))
	before := w.State()
	sub := w.Subscribe()

	w.fetchAll(context.Background())

	mockDS.AssertExpectations(t)
	assert.Same(t, before, w.State())
	drain(t, sub, EventStatusUpdated)
}

func TestFetchAll_NativeSendSkipsToken(t *testing.T) {
	mockDS := new(MockDataSource)
	network := testNetwork()
	network.CoinGeckoID = ""
	w := NewWatcher(network, nil, config.GlobalConfig{})
	w.SetDataSource(mockDS)

	s := loadState(t)
	s.MetaMask.SelectedTokenAddress = ""
	require.NoError(t, w.SetState(s))

	w.fetchAll(context.Background())

	mockDS.AssertNotCalled(t, "DialBinder", mock.Anything)
	mockDS.AssertNotCalled(t, "FetchRecentBlocks", mock.Anything, mock.Anything)
	mockDS.AssertNotCalled(t, "FetchConversionRate", mock.Anything, mock.Anything)
}

func TestPollingLoop(t *testing.T) {
	mockDS := new(MockDataSource)
	w := NewWatcher(testNetwork(), nil, config.GlobalConfig{RecentBlockCount: 1, RefreshIntervalSeconds: 1})
	w.SetDataSource(mockDS)

	mockDS.On("FetchRecentBlocks", mock.Anything, mock.Anything).Return([]models.Block{{GasLimit: "0x1"}}, []string{}, nil).Maybe()
	mockDS.On("FetchConversionRate", mock.Anything, mock.Anything).Return(decimal.NewFromInt(1), nil).Maybe()
	mockDS.On("DialBinder", mock.Anything).Return(fakeBinder{balance: big.NewInt(1)}, nil).Maybe()

	require.NoError(t, w.SetState(loadState(t)))

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	w.Refresh()

	time.Sleep(100 * time.Millisecond)
	cancel()
	time.Sleep(50 * time.Millisecond)
}

func TestFetchAll_ReplacedSnapshotKeepsOwnBalance(t *testing.T) {
	mockDS := new(MockDataSource)
	network := testNetwork()
	network.CoinGeckoID = ""
	w := NewWatcher(network, nil, config.GlobalConfig{})
	w.SetDataSource(mockDS)

	binder := fakeBinder{balance: big.NewInt(999), started: make(chan struct{}), release: make(chan struct{})}
	mockDS.On("DialBinder", []string{"http://rpc"}).Return(binder, nil)

	require.NoError(t, w.SetState(loadState(t)))

	done := make(chan struct{})
	go func() {
		w.fetchAll(context.Background())
		close(done)
	}()
	<-binder.started

	next := loadState(t)
	next.MetaMask.SelectedTokenAddress = ""
	next.MetaMask.Tokens = nil
	next.MetaMask.Send.From = &models.SendAccount{Address: "0x0dcd00000000000000000000000000000000d0cd", Balance: "0x1"}
	next.MetaMask.Send.TokenBalance = "0x0"
	require.NoError(t, w.SetState(next))

	close(binder.release)
	<-done

	assert.Same(t, next, w.State())
	assert.Equal(t, "0x0", w.State().MetaMask.Send.TokenBalance)
}

func TestFetchAll_FillsTokenMetadata(t *testing.T) {
	mockDS := new(MockDataSource)
	network := testNetwork()
	network.CoinGeckoID = ""
	w := NewWatcher(network, nil, config.GlobalConfig{})
	w.SetDataSource(mockDS)
	mockDS.On("DialBinder", []string{"http://rpc"}).Return(fakeBinder{balance: big.NewInt(5), symbol: "DEF", decimals: 6}, nil)

	original := loadState(t)
	original.MetaMask.Tokens = []models.Token{{Address: tokenAddr}}
	require.NoError(t, w.SetState(original))
	sub := w.Subscribe()

	w.fetchAll(context.Background())

	s := w.State()
	assert.Equal(t, []models.Token{{Address: tokenAddr, Symbol: "DEF", Decimals: 6}}, s.MetaMask.Tokens)
	assert.Equal(t, "0x5", s.MetaMask.Send.TokenBalance)
	assert.Equal(t, []models.Token{{Address: tokenAddr}}, original.MetaMask.Tokens)

	view := drain(t, sub, EventViewUpdated).Data.(selectors.SendView)
	assert.Equal(t, "DEF", view.PrimaryCurrency)
	drain(t, sub, EventRefreshDone)
}

func TestFetchAll_NoSnapshotStillSignalsDone(t *testing.T) {
	w := NewWatcher(testNetwork(), nil, config.GlobalConfig{})
	sub := w.Subscribe()

	w.fetchAll(context.Background())
	drain(t, sub, EventRefreshDone)
}
