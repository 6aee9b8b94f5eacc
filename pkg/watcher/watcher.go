package watcher

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"sendview/pkg/config"
	"sendview/pkg/models"
	"sendview/pkg/rpc"
	"sendview/pkg/selectors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// ErrNoState is returned by View before a snapshot has been set.
var ErrNoState = errors.New("no snapshot loaded")

// DataSource defines the interface for fetching chain and market data.
type DataSource interface {
	FetchRecentBlocks(rpcURLs []string, count int) ([]models.Block, []string, error)
	FetchConversionRate(coinID, currency string) (decimal.Decimal, error)
	DialBinder(rpcURLs []string) (selectors.ContractBinder, func(), error)
}

// RealDataSource implements DataSource using the rpc package.
type RealDataSource struct{}

func (d *RealDataSource) FetchRecentBlocks(rpcURLs []string, count int) ([]models.Block, []string, error) {
	return rpc.FetchRecentBlocks(rpcURLs, count)
}

func (d *RealDataSource) FetchConversionRate(coinID, currency string) (decimal.Decimal, error) {
	return rpc.FetchConversionRate(coinID, currency)
}

func (d *RealDataSource) DialBinder(rpcURLs []string) (selectors.ContractBinder, func(), error) {
	binder, closeFn, err := rpc.DialBinder(rpcURLs)
	if err != nil {
		return nil, nil, err
	}
	return binder, closeFn, nil
}

// Watcher holds the current snapshot, refreshes its chain-derived fields and
// publishes a recomputed SendView whenever it changes.
//
// Snapshots are never mutated in place: every update swaps in a new *State, so
// a pointer returned by State stays stable for its holder. Refresh results are
// only applied to the snapshot generation they were fetched for.
type Watcher struct {
	config  config.GlobalConfig
	network config.NetworkConfig
	book    selectors.AddressBook

	state      *models.State
	generation uint64
	view    selectors.SendView
	viewErr error

	subscribers []Subscriber
	mu          sync.RWMutex
	stopChan    chan struct{}
	refreshChan chan struct{}
	dataSource  DataSource
}

// NewWatcher creates a new Watcher instance.
func NewWatcher(network config.NetworkConfig, book selectors.AddressBook, globalCfg config.GlobalConfig) *Watcher {
	return &Watcher{
		config:      globalCfg,
		network:     network,
		book:        book,
		viewErr:     ErrNoState,
		stopChan:    make(chan struct{}),
		refreshChan: make(chan struct{}, 1),
		dataSource:  &RealDataSource{},
	}
}

// SetDataSource allows overriding the data source (useful for testing).
func (w *Watcher) SetDataSource(ds DataSource) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dataSource = ds
}

// Subscribe adds a new subscriber and returns a channel to receive events.
func (w *Watcher) Subscribe() Subscriber {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(Subscriber, 100)
	w.subscribers = append(w.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber.
func (w *Watcher) Unsubscribe(ch Subscriber) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, sub := range w.subscribers {
		if sub == ch {
			w.subscribers = append(w.subscribers[:i], w.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

func (w *Watcher) notify(event Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, sub := range w.subscribers {
		select {
		case sub <- event:
		default:
			// slow subscriber, drop
		}
	}
}

// State returns the current snapshot, or nil before one is set.
func (w *Watcher) State() *models.State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// View returns the SendView computed for the current snapshot.
func (w *Watcher) View() (selectors.SendView, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.view, w.viewErr
}

// SetState replaces the snapshot after validating it.
func (w *Watcher) SetState(s *models.State) error {
	if err := s.Validate(); err != nil {
		return err
	}
	w.mu.Lock()
	w.state = s
	w.generation++
	w.mu.Unlock()

	w.notify(Event{Type: EventStateReplaced, Data: s.MetaMask.Network})
	w.recompute()
	return nil
}

func (w *Watcher) snapshot() (*models.State, uint64) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state, w.generation
}

// update applies fn to a shallow copy of the current snapshot and swaps it in.
// It does nothing when SetState has replaced the snapshot since generation gen.
// fn must assign fields rather than mutate shared slices or maps.
func (w *Watcher) update(gen uint64, fn func(next *models.State)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == nil {
		return false
	}
	if w.generation != gen {
		slog.Debug("discarding refresh for a replaced snapshot")
		return false
	}
	next := *w.state
	fn(&next)
	w.state = &next
	return true
}

func (w *Watcher) recompute() {
	w.mu.Lock()
	if w.state == nil {
		w.mu.Unlock()
		return
	}
	view, err := selectors.BuildSendView(w.state, selectors.Deps{AddressBook: w.book})
	w.view, w.viewErr = view, err
	w.mu.Unlock()

	if err != nil {
		slog.Warn("send view unavailable", slog.Any("error", err))
		w.notify(Event{Type: EventStatusUpdated, Data: err.Error()})
		return
	}
	w.notify(Event{Type: EventViewUpdated, Data: view})
}

// Start begins the refresh loop.
func (w *Watcher) Start(ctx context.Context) {
	go w.pollingLoop(ctx)
}

// Stop stops the refresh loop.
func (w *Watcher) Stop() {
	close(w.stopChan)
}

// Refresh requests an immediate refresh without blocking.
func (w *Watcher) Refresh() {
	select {
	case w.refreshChan <- struct{}{}:
	default:
	}
}

func (w *Watcher) interval() time.Duration {
	if w.config.RefreshIntervalSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(w.config.RefreshIntervalSeconds) * time.Second
}

func (w *Watcher) pollingLoop(ctx context.Context) {
	w.fetchAll(ctx)

	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.fetchAll(ctx)
		case <-w.refreshChan:
			w.fetchAll(ctx)
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) fetchAll(ctx context.Context) {
	defer w.notify(Event{Type: EventRefreshDone})

	snapshot, gen := w.snapshot()
	if snapshot == nil {
		return
	}

	var wg sync.WaitGroup
	var changed sync.Map

	if w.config.RecentBlockCount > 0 && len(w.network.RPCURLs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w.refreshBlocks(gen) {
				changed.Store(EventBlocksUpdated, true)
			}
		}()
	}

	if w.network.CoinGeckoID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w.refreshRate(gen, snapshot.MetaMask.CurrentCurrency) {
				changed.Store(EventRateUpdated, true)
			}
		}()
	}

	if selectors.SelectedToken(snapshot) != nil && len(w.network.RPCURLs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w.refreshTokenBalance(ctx, gen, snapshot) {
				changed.Store(EventTokenBalanceUpdated, true)
			}
		}()
	}

	wg.Wait()

	dirty := false
	changed.Range(func(key, _ interface{}) bool {
		dirty = true
		w.notify(Event{Type: key.(EventType)})
		return true
	})
	if dirty {
		w.recompute()
	}
}

func (w *Watcher) status(msg string, err error) {
	slog.Warn(msg, slog.String("network", w.network.Name), slog.Any("error", err))
	w.notify(Event{Type: EventStatusUpdated, Data: msg + ": " + err.Error()})
}

func (w *Watcher) refreshBlocks(gen uint64) bool {
	blocks, failed, err := w.dataSource.FetchRecentBlocks(w.network.RPCURLs, w.config.RecentBlockCount)
	if len(failed) > 0 {
		slog.Debug("rpc endpoints failed", slog.String("urls", strings.Join(failed, ",")))
	}
	if err != nil {
		w.status("fetch recent blocks", err)
		return false
	}
	if len(blocks) == 0 {
		return false
	}
	return w.update(gen, func(next *models.State) {
		next.MetaMask.RecentBlocks = blocks
		next.MetaMask.CurrentBlockGasLimit = blocks[len(blocks)-1].GasLimit
	})
}

func (w *Watcher) refreshRate(gen uint64, currency string) bool {
	if currency == "" {
		currency = "usd"
	}
	rate, err := w.dataSource.FetchConversionRate(w.network.CoinGeckoID, currency)
	if err != nil {
		w.status("fetch conversion rate", err)
		return false
	}
	return w.update(gen, func(next *models.State) {
		next.MetaMask.ConversionRate = rate
	})
}

// tokenMetadata is implemented by contract handles that can read symbol and decimals.
type tokenMetadata interface {
	Symbol(ctx context.Context) (string, error)
	Decimals(ctx context.Context) (uint8, error)
}

func (w *Watcher) refreshTokenBalance(ctx context.Context, gen uint64, snapshot *models.State) bool {
	from := selectors.SendFromObject(snapshot)
	if from == nil || !common.IsHexAddress(from.Address) {
		return false
	}

	binder, closeFn, err := w.dataSource.DialBinder(w.network.RPCURLs)
	if err != nil {
		w.status("dial token binder", err)
		return false
	}
	defer closeFn()

	contract, err := selectors.SelectedTokenContract(snapshot, binder)
	if err != nil {
		w.status("bind selected token", err)
		return false
	}
	if contract == nil {
		return false
	}
	balance, err := contract.BalanceOf(ctx, common.HexToAddress(from.Address))
	if err != nil {
		w.status("fetch token balance", err)
		return false
	}
	token := selectors.SelectedToken(snapshot)
	filled := *token
	if meta, ok := contract.(tokenMetadata); ok && (token.Symbol == "" || token.Decimals == 0) {
		filled = w.fetchTokenMetadata(ctx, meta, filled)
	}

	return w.update(gen, func(next *models.State) {
		next.MetaMask.Send.TokenBalance = hexutil.EncodeBig(balance)
		if filled != *token {
			replaceSelectedToken(&next.MetaMask, filled)
		}
	})
}

// fetchTokenMetadata fills the empty symbol and decimals of token from the contract.
func (w *Watcher) fetchTokenMetadata(ctx context.Context, meta tokenMetadata, token models.Token) models.Token {
	if token.Symbol == "" {
		symbol, err := meta.Symbol(ctx)
		if err != nil {
			w.status("fetch token symbol", err)
		} else {
			token.Symbol = symbol
		}
	}
	if token.Decimals == 0 {
		decimals, err := meta.Decimals(ctx)
		if err != nil {
			w.status("fetch token decimals", err)
		} else {
			token.Decimals = int(decimals)
		}
	}
	return token
}

// replaceSelectedToken swaps token in at the source SelectedToken resolves it from.
// The tokens slice is copied, never written in place.
func replaceSelectedToken(mm *models.MetaMask, token models.Token) {
	if mm.SelectedTokenAddress != "" {
		for i, t := range mm.Tokens {
			if t.Address == mm.SelectedTokenAddress {
				tokens := slices.Clone(mm.Tokens)
				tokens[i] = token
				mm.Tokens = tokens
				return
			}
		}
	}
	if mm.Send.Token != nil {
		mm.Send.Token = &token
	}
}
