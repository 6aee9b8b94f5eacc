package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"sendview/pkg/models"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

var CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
var BlockFetchTimeout = 30 * time.Second

// FetchRecentBlocks walks back count blocks from the chain head and returns them
// oldest first. RPC URLs are tried in order until one serves the whole window.
func FetchRecentBlocks(rpcURLs []string, count int) ([]models.Block, []string, error) {
	var failed []string
	var lastErr error

	if count <= 0 {
		return nil, nil, fmt.Errorf("block window must be positive, got %d", count)
	}

	for _, rpcURL := range rpcURLs {
		ctx, cancel := context.WithTimeout(context.Background(), BlockFetchTimeout)
		client, err := ethclient.Dial(rpcURL)
		if err != nil {
			cancel()
			failed = append(failed, rpcURL)
			lastErr = err
			continue
		}

		blocks, err := fetchWindow(ctx, client, count)
		client.Close()
		cancel()
		if err != nil {
			failed = append(failed, rpcURL)
			lastErr = err
			continue
		}
		return blocks, failed, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no RPC URLs configured")
	}
	return nil, failed, lastErr
}

func fetchWindow(ctx context.Context, client *ethclient.Client, count int) ([]models.Block, error) {
	head, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("head: %w", err)
	}

	blocks := make([]models.Block, count)
	filled := 0
	for i := 0; i < count; i++ {
		num := new(big.Int).Sub(head.Number, big.NewInt(int64(i)))
		if num.Sign() < 0 {
			break
		}
		block, err := client.BlockByNumber(ctx, num)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", num, err)
		}
		blocks[count-1-i] = toBlock(block)
		filled++
	}
	return blocks[count-filled:], nil
}

func toBlock(block *types.Block) models.Block {
	prices := make([]string, 0, len(block.Transactions()))
	for _, tx := range block.Transactions() {
		prices = append(prices, hexutil.EncodeBig(tx.GasPrice()))
	}
	return models.Block{
		Number:    hexutil.EncodeBig(block.Number()),
		GasLimit:  hexutil.EncodeUint64(block.GasLimit()),
		GasPrices: prices,
	}
}

// FetchConversionRate fetches the price of coinID in currency from CoinGecko.
func FetchConversionRate(coinID, currency string) (decimal.Decimal, error) {
	if coinID == "" {
		return decimal.Zero, nil
	}
	currency = strings.ToLower(currency)
	client := &http.Client{Timeout: 10 * time.Second}
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", CoinGeckoBaseURL, coinID, currency)
	resp, err := client.Get(url)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("coingecko: unexpected status %s", resp.Status)
	}

	var result map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return decimal.Zero, err
	}
	rate, ok := result[coinID][currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("coingecko: no %s price for %s", currency, coinID)
	}
	return rate, nil
}
