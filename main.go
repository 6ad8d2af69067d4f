package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/markussiebert/dnscope/cmd"
	"github.com/markussiebert/dnscope/internal/logger"
	"github.com/markussiebert/dnscope/internal/provider"
)

// CLI holds the command-line interface structure.
type CLI struct {
	Run struct{} `cmd:"" default:"1" help:"Probe the public address, compare it with DNS and update the provider once."`

	Check struct{} `cmd:"" help:"Show what a run would do without contacting the provider."`

	Serve struct {
		Port int `help:"Port to listen on." default:"8080" env:"PORT"`
	} `cmd:"" help:"Serve an authenticated endpoint that triggers runs."`

	HashPassword struct{} `cmd:"" help:"Generate bcrypt hash from stdin password."`

	Version struct{} `cmd:"" help:"Print the current version."`

	ListProviders bool `help:"List available DNS providers."`
}

var (
	buildVersion = "dev"
)

const fallbackVersion = "0.0.0-dev"

func versionString() string {
	if trimmed := strings.TrimSpace(buildVersion); trimmed != "" {
		return trimmed
	}
	return fallbackVersion
}

func userAgent() string {
	return "dnscope/" + versionString()
}

// serveDefault makes a bare container start serve instead of a single run,
// as long as credentials for the endpoint are configured.
func serveDefault(args []string, inContainer bool, authUsername string) []string {
	if len(args) > 1 || !inContainer || authUsername == "" {
		return args
	}
	return append(args, "serve")
}

func main() {
	// Home Assistant options become environment variables before anything reads them
	found, err := cmd.LoadHomeAssistantOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load Home Assistant options: %v\n", err)
		os.Exit(1)
	}

	// LOG_LEVEL may come from the options file, which is read after the default logger was built
	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		logger.Init(os.Getenv("LOG_LEVEL"), logFile)
	} else {
		logger.SetLevelFromString(os.Getenv("LOG_LEVEL"))
	}
	defer func() { _ = logger.Sync() }()
	if found {
		logger.Debug("Loaded Home Assistant add-on options")
	}

	os.Args = serveDefault(os.Args, cmd.IsRunningInContainer(), os.Getenv("AUTH_USERNAME"))

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("dnscope"),
		kong.Description("Keep a dynamic DNS record pointed at this host's public address."),
	)

	if cli.ListProviders {
		fmt.Println("Available providers:")
		for _, name := range provider.List() {
			fmt.Println("-", name)
		}
		return
	}

	switch ctx.Command() {
	case "version":
		fmt.Println(versionString())
		return
	case "hash-password":
		ctx.FatalIfErrorf(cmd.RunHashPassword(os.Stdin, os.Stdout))
		return
	}

	config, err := cmd.LoadConfig()
	if err != nil {
		ctx.FatalIfErrorf(fmt.Errorf("failed to load configuration: %w", err))
	}

	logger.Debug("Logger initialized with level: %s", logger.GetLevel())
	logger.Debug("Configuration loaded: domain=%s, provider=%s, ipv4=%t, ipv6=%t, onlyChanges=%t, state=%s",
		config.Domain, config.Provider, config.IPv4, config.IPv6, config.OnlyChanges, config.StateFile)

	switch ctx.Command() {
	case "run":
		err = cmd.RunUpdate(config, userAgent())
	case "check":
		err = cmd.RunCheck(config, userAgent(), os.Stdout)
	case "serve":
		var serverConfig *cmd.ServerConfig
		serverConfig, err = cmd.LoadServerConfig()
		if err == nil {
			err = cmd.RunServer(cli.Serve.Port, config, serverConfig, userAgent())
		}
	default:
		err = fmt.Errorf("unknown command: %s", ctx.Command())
	}

	if err != nil {
		_ = logger.Sync()
	}
	ctx.FatalIfErrorf(err)
}
