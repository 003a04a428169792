package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Podcastindex-org/helipad-sub000/config"
	"github.com/Podcastindex-org/helipad-sub000/internal/guidcache"
	"github.com/Podcastindex-org/helipad-sub000/internal/eventbus"
	"github.com/Podcastindex-org/helipad-sub000/internal/httpapi"
	"github.com/Podcastindex-org/helipad-sub000/internal/lnclient"
	"github.com/Podcastindex-org/helipad-sub000/internal/metadata"
	"github.com/Podcastindex-org/helipad-sub000/internal/poller"
	"github.com/Podcastindex-org/helipad-sub000/internal/store"
	"github.com/Podcastindex-org/helipad-sub000/internal/triggers"
	"github.com/Podcastindex-org/helipad-sub000/pkg/logger"
)

var Cfg config.HelipadConfig

const appVersion = "2.0.0-go"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := logger.Init(logger.GetEnv()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	_, filename, _, _ := runtime.Caller(0)
	root := filepath.Dir(filename)
	configPath := config.Path(root).Join("..", "..", "helipad.toml")

	Cfg.Version = appVersion
	if err := config.Load(configPath, &Cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var storeCfg store.Config
	if err := copier.Copy(&storeCfg, &Cfg.Store); err != nil {
		return fmt.Errorf("failed to copy store config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, storeCfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	client, err := dialLightning(Cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to lightning node: %w", err)
	}
	defer client.Close()

	settings, err := st.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cache, err := guidcache.New(Cfg.PodcastIndex.CacheSize, appVersion, nil)
	if err != nil {
		return fmt.Errorf("failed to build guid cache: %w", err)
	}
	fetcher := metadata.New(nil, settings.MetadataWhitelist)

	bus := eventbus.New()
	engine := triggers.New(st)

	pollerCfg := poller.Config{
		BalanceInterval:   time.Duration(Cfg.Poller.BalanceIntervalSeconds) * time.Second,
		ReconnectBackoff:  time.Duration(Cfg.Poller.ReconnectBackoffSeconds) * time.Second,
		SubscriberBackoff: time.Duration(Cfg.Poller.SubscriberBackoffSeconds) * time.Second,
		PageSize:          Cfg.Poller.PageSize,
	}
	p := poller.New(client, st, engine, bus, cache, fetcher, pollerCfg)

	httpCfg := httpapi.Config{ListenAddr: Cfg.HTTP.ListenAddr}
	server := httpapi.New(httpCfg, st, engine, bus, client)

	logger.Info("helipad starting",
		zap.String("version", appVersion),
		zap.String("listen_addr", Cfg.HTTP.ListenAddr),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { p.Run(gctx); return nil })
	g.Go(func() error { return server.Run(gctx) })

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		return fmt.Errorf("helipad: %w", err)
	}
	return nil
}

// dialLightning selects the LND or CLN backend per Cfg.Lightning: a
// non-empty CLNRPCPath selects CLN over LND.
func dialLightning(cfg config.HelipadConfig) (lnclient.Client, error) {
	if cfg.Lightning.CLNRPCPath != "" {
		return lnclient.DialCLN(cfg.Lightning.CLNRPCPath)
	}
	host, port, err := net.SplitHostPort(cfg.Lightning.LNDURL)
	if err != nil {
		return nil, fmt.Errorf("invalid LND_URL %q (want host:port): %w", cfg.Lightning.LNDURL, err)
	}

	return lnclient.DialLND(lnclient.LNDConfig{
		GRPCHost:              host,
		GRPCPort:              port,
		TLSCertPath:           cfg.Lightning.LNDTLSCert,
		MacaroonPath:          cfg.Lightning.LNDMacaroonPath,
		PaymentTimeoutSeconds: 60,
		MaxPaymentFeeSats:     1000,
	})
}
