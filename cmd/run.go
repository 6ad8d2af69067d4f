package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/markussiebert/dnscope/internal/family"
	"github.com/markussiebert/dnscope/internal/logger"
	"github.com/markussiebert/dnscope/internal/probe"
	"github.com/markussiebert/dnscope/internal/provider"
	"github.com/markussiebert/dnscope/internal/resolver"
	"github.com/markussiebert/dnscope/internal/runner"
	"github.com/markussiebert/dnscope/internal/state"
	"github.com/markussiebert/dnscope/internal/util"
)

// RunUpdate performs a single run: probe, compare, update, then return.
// Per family failures are logged and do not fail the command.
func RunUpdate(config *Config, userAgent string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := state.OpenBolt(config.StateFile)
	if err != nil {
		return fmt.Errorf("failed to open state file: %w", err)
	}
	defer closeStore(store)

	p, err := newUpdater(ctx, config, userAgent)
	if err != nil {
		return err
	}
	defer closeUpdater(p)

	r := runner.New(config.Runner(), newProber(config, store, userAgent), newResolver(config), p)
	report := r.Run(ctx)
	logger.Debug("Run finished:\n%s", report)
	return nil
}

// RunCheck performs the lookups of a run and prints what it would do.
// Nothing is sent to the provider and the state file is left untouched.
func RunCheck(config *Config, userAgent string, out io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.New(config.Runner(), newProber(config, state.NewMemory(), userAgent), newResolver(config), nil)
	report := r.Check(ctx)

	fmt.Fprintf(out, "domain: %s, provider: %s\n", config.Domain, config.Provider)
	fmt.Fprint(out, report.String())
	return nil
}

func newUpdater(ctx context.Context, config *Config, userAgent string) (provider.Updater, error) {
	p, err := provider.New(ctx, config.Provider, config.Credentials, provider.WithUserAgent(userAgent))
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	logger.Info("Using DNS provider: %s", p.Name())
	return p, nil
}

func newProber(config *Config, store state.Store, userAgent string) *probe.Prober {
	p := probe.New(store).WithUserAgent(userAgent)
	if config.IPv4LookupURL != "" {
		logger.Debug("IPv4 lookup via %s", util.MaskURL(config.IPv4LookupURL))
		p.WithEndpoint(family.V4, config.IPv4LookupURL)
	}
	if config.IPv6LookupURL != "" {
		logger.Debug("IPv6 lookup via %s", util.MaskURL(config.IPv6LookupURL))
		p.WithEndpoint(family.V6, config.IPv6LookupURL)
	}
	return p
}

func newResolver(config *Config) runner.Resolver {
	if config.Nameserver != "" {
		logger.Debug("Resolving %s via nameserver %s", config.Domain, config.Nameserver)
		return resolver.NewNameserver(config.Nameserver)
	}
	return resolver.NewSystem()
}

func closeStore(store state.Store) {
	if err := store.Close(); err != nil {
		logger.Warn("Error closing state file: %v", err)
	}
}

func closeUpdater(p provider.Updater) {
	if err := p.Close(context.Background()); err != nil {
		logger.Warn("Error closing provider: %v", err)
	}
}
