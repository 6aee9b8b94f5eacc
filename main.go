package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"sendview/pkg/config"
	"sendview/pkg/models"
	"sendview/pkg/selectors"
	"sendview/pkg/server"
	"sendview/pkg/tui"
	"sendview/pkg/watcher"

	"github.com/ethereum/go-ethereum/ethclient"
)

// Version should be set during build
var Version = "dev"

func main() {
	testFlag := flag.Bool("t", false, "Test configuration and exit")
	testLongFlag := flag.Bool("test", false, "Test configuration and exit")
	dryRunFlag := flag.Bool("dry-run", false, "Perform a trial run with no changes made")
	jsonFlag := flag.Bool("json", false, "Print the send view (or test report) as JSON and exit")
	configFlag := flag.String("config", "", "Path to configuration file")
	snapshotFlag := flag.String("snapshot", "", "Path to a wallet state snapshot (JSON)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	serverFlag := flag.Bool("server", false, "Run in headless server mode")
	portFlag := flag.Int("port", 0, "Port for API server (default from config)")
	logFormatFlag := flag.String("log-format", "text", "Log format: text or json")
	logLevelFlag := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFileFlag := flag.String("log-file", "", "Write logs to this file (TUI mode discards logs otherwise)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("sendview version %s\n", Version)
		os.Exit(0)
	}

	interactive := !*serverFlag && !*jsonFlag && !*testFlag && !*testLongFlag
	logOut := io.Writer(os.Stderr)
	if *logFileFlag != "" {
		f, err := os.OpenFile(*logFileFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Printf("Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		logOut = f
	} else if interactive {
		logOut = io.Discard
	}
	logger, err := newLogger(*logFormatFlag, *logLevelFlag, logOut)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	cfgInput := *configFlag
	if cfgInput == "" && len(flag.Args()) > 0 {
		cfgInput = flag.Args()[0]
	}
	path, err := config.GetConfigPath(cfgInput)
	if err != nil {
		fmt.Printf("Error determining config path: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfigFromFile(path)
	if err != nil {
		fmt.Printf("Error loading config from %s: %v\n", path, err)
		os.Exit(1)
	}

	if *testFlag || *testLongFlag {
		if !runConfigTest(os.Stdout, path, cfg, *jsonFlag, *dryRunFlag) {
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *jsonFlag {
		if err := printView(os.Stdout, *snapshotFlag, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	network, ok := cfg.Selected()
	if !ok {
		slog.Warn("no networks configured, chain data will not refresh", slog.String("config", path))
	}

	w := watcher.NewWatcher(network, cfg.AddressBook(), cfg.GlobalConfig)
	if *snapshotFlag != "" {
		state, err := models.LoadStateFromFile(*snapshotFlag)
		if err != nil {
			fmt.Printf("Error loading snapshot from %s: %v\n", *snapshotFlag, err)
			os.Exit(1)
		}
		if err := w.SetState(state); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	w.Start(ctx)

	port := *portFlag
	if port == 0 {
		port = cfg.ServerPort
	}
	srv := server.NewServer(w, cfg.AddressBook())
	go func() {
		if err := srv.Start(port); err != nil {
			slog.Error("server stopped", slog.Any("error", err))
		}
	}()

	if *serverFlag {
		slog.Info("running in server mode", slog.Int("port", port), slog.String("network", network.Name))
		<-ctx.Done()
		return
	}

	if err := tui.Start(w, network, cfg.GlobalConfig, Version); err != nil {
		fmt.Printf("Alas, there's been an error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(format, level string, out io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(out, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(out, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// printView computes the send view for a snapshot file and writes it as JSON.
func printView(out io.Writer, snapshotPath string, cfg config.Config) error {
	if snapshotPath == "" {
		return fmt.Errorf("-json requires -snapshot")
	}
	state, err := models.LoadStateFromFile(snapshotPath)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	view, err := selectors.BuildSendView(state, selectors.Deps{AddressBook: cfg.AddressBook()})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

type rpcResult struct {
	URL       string `json:"url"`
	Status    string `json:"status"`
	NetworkID string `json:"network_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type networkResult struct {
	Name              string      `json:"name"`
	ConfigNetworkID   string      `json:"config_network_id,omitempty"`
	ObservedNetworkID string      `json:"observed_network_id,omitempty"`
	NetworkIDUpdated  bool        `json:"network_id_updated,omitempty"`
	Inconsistent      bool        `json:"inconsistent,omitempty"`
	RPCs              []rpcResult `json:"rpcs"`
}

type testReport struct {
	ConfigPath      string          `json:"config_path"`
	ValidStructure  bool            `json:"valid_structure"`
	StructureErrors []string        `json:"structure_errors,omitempty"`
	AddressCount    int             `json:"address_count"`
	NetworkCount    int             `json:"network_count"`
	Networks        []networkResult `json:"networks,omitempty"`
	ConfigUpdated   bool            `json:"config_updated"`
	DryRun          bool            `json:"dry_run"`
	SaveError       string          `json:"save_error,omitempty"`
}

// runConfigTest checks the configuration and probes every RPC for its network id.
// Missing network ids are filled in and saved unless dryRun is set.
func runConfigTest(out io.Writer, path string, cfg config.Config, asJSON, dryRun bool) bool {
	report := testReport{ConfigPath: path, ValidStructure: true, DryRun: dryRun}
	say := func(format string, args ...interface{}) {
		if !asJSON {
			fmt.Fprintf(out, format, args...)
		}
	}
	finish := func(ok bool) bool {
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			_ = enc.Encode(report)
		}
		return ok
	}

	say("Testing configuration at: %s\n", path)
	if len(cfg.Networks) == 0 {
		report.ValidStructure = false
		report.StructureErrors = append(report.StructureErrors, "No networks found in configuration.")
		say("No networks found in configuration.\n")
		return finish(false)
	}
	for i, n := range cfg.Networks {
		if strings.TrimSpace(n.Name) == "" {
			report.StructureErrors = append(report.StructureErrors, fmt.Sprintf("Network at index %d has no name.", i))
		}
		if len(n.RPCURLs) == 0 {
			report.StructureErrors = append(report.StructureErrors, fmt.Sprintf("Network '%s' has no RPC URLs.", n.Name))
		}
	}
	if len(report.StructureErrors) > 0 {
		report.ValidStructure = false
		for _, e := range report.StructureErrors {
			say("Error: %s\n", e)
		}
		return finish(false)
	}

	report.AddressCount = len(cfg.Addresses)
	report.NetworkCount = len(cfg.Networks)
	say("Found %d addresses and %d networks.\n", report.AddressCount, report.NetworkCount)

	for i := range cfg.Networks {
		n := &cfg.Networks[i]
		res := networkResult{Name: n.Name, ConfigNetworkID: n.NetworkID}
		say("Testing network: %s (%s)\n", n.Name, n.Symbol)

		for _, url := range n.RPCURLs {
			r := probeRPC(url)
			res.RPCs = append(res.RPCs, r)
			if r.Status != "ok" {
				say("  RPC: %s ... Failed: %s\n", url, r.Error)
				continue
			}
			say("  RPC: %s ... OK (network %s)", url, r.NetworkID)
			if res.ObservedNetworkID == "" {
				res.ObservedNetworkID = r.NetworkID
			} else if res.ObservedNetworkID != r.NetworkID {
				res.Inconsistent = true
				say(" - WARNING: mismatch with previous RPC (%s)", res.ObservedNetworkID)
			}
			switch {
			case n.NetworkID == "":
				n.NetworkID = r.NetworkID
				res.NetworkIDUpdated = true
				report.ConfigUpdated = true
				say(" - UPDATED CONFIG")
			case n.NetworkID != r.NetworkID:
				say(" - MISMATCH! Expected %s", n.NetworkID)
			default:
				say(" - Verified")
			}
			say("\n")
		}
		report.Networks = append(report.Networks, res)
	}

	if report.ConfigUpdated {
		switch {
		case dryRun:
			say("Dry run enabled: Configuration NOT saved.\n")
		default:
			if err := config.SaveConfig(cfg, path); err != nil {
				report.SaveError = err.Error()
				say("Failed to save config: %v\n", err)
			} else {
				say("Configuration saved successfully.\n")
			}
		}
	}
	return finish(true)
}

func probeRPC(url string) rpcResult {
	r := rpcResult{URL: url}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		r.Status, r.Error = "error", err.Error()
		return r
	}
	defer client.Close()

	id, err := client.NetworkID(ctx)
	if err != nil {
		r.Status, r.Error = "error", fmt.Sprintf("Failed to get network id: %v", err)
		return r
	}
	r.Status, r.NetworkID = "ok", id.String()
	return r
}
