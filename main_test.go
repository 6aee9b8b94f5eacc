package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"sendview/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func netVersionServer(t *testing.T, version string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int    `json:"id"`
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  version,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger("json", "warn", &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "network", "3")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"network":"3"`)

	_, err = newLogger("xml", "info", &buf)
	assert.Error(t, err)
	_, err = newLogger("text", "loud", &buf)
	assert.Error(t, err)
}

func TestPrintView(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{Addresses: []config.AddressConfig{{Address: "0xbook", Name: "Alice"}}}

	require.NoError(t, printView(&buf, "pkg/models/testdata/snapshot.json", cfg))

	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &view))
	assert.Equal(t, "0xa9ff56", view["gasTotal"])
	assert.Equal(t, "DEF", view["primaryCurrency"])
	assert.Len(t, view["sendToAccounts"], 4)

	assert.Error(t, printView(&buf, "", cfg))
	assert.Error(t, printView(&buf, "does-not-exist.json", cfg))
}

func TestRunConfigTest(t *testing.T) {
	rpc := netVersionServer(t, "3")
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := config.Config{
		Addresses: []config.AddressConfig{{Address: "0x123"}},
		Networks: []config.NetworkConfig{
			{Name: "Ropsten", RPCURLs: []string{rpc.URL}},
			{Name: "Pinned", NetworkID: "1", RPCURLs: []string{rpc.URL, "http://127.0.0.1:1"}},
		},
	}

	var buf bytes.Buffer
	assert.True(t, runConfigTest(&buf, path, cfg, true, false))

	var report testReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.True(t, report.ValidStructure)
	assert.True(t, report.ConfigUpdated)
	assert.Equal(t, 2, report.NetworkCount)
	assert.True(t, report.Networks[0].NetworkIDUpdated)
	assert.Equal(t, "3", report.Networks[0].ObservedNetworkID)
	assert.Equal(t, "error", report.Networks[1].RPCs[1].Status)

	saved, err := config.LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "3", saved.Networks[0].NetworkID)
	assert.Equal(t, "1", saved.Networks[1].NetworkID)
}

func TestRunConfigTest_DryRunAndInvalid(t *testing.T) {
	rpc := netVersionServer(t, "5")
	path := filepath.Join(t.TempDir(), "config.json")

	var buf bytes.Buffer
	cfg := config.Config{Networks: []config.NetworkConfig{{Name: "Goerli", RPCURLs: []string{rpc.URL}}}}
	assert.True(t, runConfigTest(&buf, path, cfg, false, true))
	assert.Contains(t, buf.String(), "Dry run enabled")
	_, err := config.LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.NoFileExists(t, path)

	buf.Reset()
	assert.False(t, runConfigTest(&buf, path, config.Config{}, false, false))
	assert.Contains(t, buf.String(), "No networks found")

	buf.Reset()
	bad := config.Config{Networks: []config.NetworkConfig{{Name: "NoRPC"}}}
	assert.False(t, runConfigTest(&buf, path, bad, false, false))
	assert.True(t, strings.Contains(buf.String(), "has no RPC URLs"))
}
