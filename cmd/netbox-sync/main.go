package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	// Set runtime concurrency to match CPU limit imposed by the container.
	_ "go.uber.org/automaxprocs"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/sapcc/go-api-declarations/bininfo"

	"github.com/netboxlabs/netbox-sync-engine/pkg/config"
	"github.com/netboxlabs/netbox-sync-engine/pkg/inventory"
	"github.com/netboxlabs/netbox-sync-engine/pkg/netboxclient"
	"github.com/netboxlabs/netbox-sync-engine/pkg/netlog"
	"github.com/netboxlabs/netbox-sync-engine/pkg/runlog"
	"github.com/netboxlabs/netbox-sync-engine/pkg/sync"
)

func main() {
	// if called with `--version`, report version and exit
	bininfo.HandleVersionArgument()

	var configPath string
	var development bool
	var dryRun bool
	flag.StringVar(&configPath, "config", "netbox-sync.yaml", "Path to the run's YAML configuration file.")
	flag.BoolVar(&development, "development", false, "Use human-readable console logging instead of JSON.")
	flag.BoolVar(&dryRun, "dry-run", false, "Run identity resolution and diffing without committing any PATCH/POST/DELETE to NetBox.")
	flag.Parse()

	log := netlog.New(netlog.Options{Development: development}).WithValues("run_id", uuid.New().String())
	setupLog := log.WithName("setup")

	cfg, err := config.Load(configPath)
	if err != nil {
		setupLog.Error(err, "unable to load configuration")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log, dryRun); err != nil {
		setupLog.Error(err, "run failed")
		os.Exit(1)
	}
	setupLog.Info("run completed")
}

// run wires one full reconciliation pass: NetBox client, inventory,
// enabled source adapters, and the sync orchestrator, each built and
// handed to the next in dependency order.
func run(ctx context.Context, cfg *config.Config, log logr.Logger, dryRun bool) error {
	client, err := netboxclient.New(netboxclient.Config{
		BaseURL:            cfg.NetBox.URL,
		Token:              cfg.NetBox.Token,
		InsecureSkipVerify: cfg.NetBox.DisableTLSVerify,
		ConnectTimeout:     cfg.NetBox.ConnectTimeout,
		Timeout:            cfg.NetBox.RequestTimeout,
		MaxRetryAttempts:   cfg.NetBox.MaxRetries,
		DryRun:             dryRun,
	}, log.WithName("netboxclient"))
	if err != nil {
		return fmt.Errorf("constructing netbox client: %w", err)
	}

	inv := inventory.New(log.WithName("inventory"))
	errs := runlog.New(log.WithName("runlog"))

	var cache *netboxclient.Cache
	if !cfg.Cache.Disabled {
		cache, err = netboxclient.NewCache(cfg.Cache.Directory)
		if err != nil {
			return fmt.Errorf("constructing cache: %w", err)
		}
	}

	orchestrator := sync.New(inv, client, sync.Settings{
		MatchHostBySerial:      cfg.Sync.MatchHostBySerial,
		SetPrimaryIPPolicy:     cfg.Sync.SetPrimaryIPPolicy,
		TenantInheritanceOrder: cfg.Sync.TenantInheritanceOrder,
		PruneDelayDays:         cfg.Sync.PruneDelayDays,
		PreferSoleIPv6AsPrimary: cfg.Sync.PreferSoleIPv6AsPrimary,
		VLANGroupNameRegex:      cfg.Sync.VLANGroupNameRegex,
		VLANGroupIDRangeStart:   cfg.Sync.VLANGroupIDRangeStart,
		VLANGroupIDRangeEnd:     cfg.Sync.VLANGroupIDRangeEnd,
		PrimaryTagName:          cfg.Sync.PrimaryTagName,
		PrimaryTagDescription:   cfg.Sync.PrimaryTagDescription,
		OrphanTagName:           cfg.Sync.OrphanTagName,
		EnablePrune:             cfg.Sync.EnablePrune && !dryRun,
		EnableTagGC:             cfg.Sync.EnableTagGC && !dryRun,
	}, errs, log.WithName("sync"))

	if err := orchestrator.LoadCurrentState(ctx, cache); err != nil {
		return fmt.Errorf("loading current netbox state: %w", err)
	}

	adapters, err := buildAdapters(cfg, inv, orchestrator.Settings, errs, log)
	if err != nil {
		return fmt.Errorf("constructing source adapters: %w", err)
	}
	for _, a := range adapters {
		inv.RegisterSource(a)
		if err := a.Init(ctx); err != nil {
			errs.Errorf("source %s: init failed: %v", a.SourceName(), err)
			continue
		}
		if err := a.Apply(ctx); err != nil {
			errs.Errorf("source %s: apply failed: %v", a.SourceName(), err)
		}
	}

	if err := orchestrator.Run(ctx); err != nil {
		return fmt.Errorf("running sync orchestrator: %w", err)
	}

	for _, entry := range errs.Entries() {
		log.Info("run issue", "severity", entry.Severity, "message", entry.Message)
	}
	if errs.HasErrors() {
		return fmt.Errorf("run completed with %d error(s), see log for detail", len(errs.Entries()))
	}
	return nil
}
