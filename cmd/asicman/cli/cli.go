package cli

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ferrous-networks/asicman/config"
	"github.com/ferrous-networks/asicman/logging"
)

// CLI is the root command structure for asicman.
type CLI struct {
	Config string `name:"config" help:"Config file path." default:"${default_config_path}"`
	Log    string `name:"log" help:"Log spec (e.g., 'info,engine=debug')." env:"ASICMAN_LOG"`
	Chip   string `name:"chip" help:"Override the configured chip family."`

	Capabilities CapabilitiesCmd `cmd:"" help:"Show the chip family's capability profile."`
	Objects      ObjectsCmd      `cmd:"" help:"List objects recorded in the warm-boot store."`
	Session      SessionCmd      `cmd:"" help:"Show the recorded hardware session."`
	Selftest     SelftestCmd     `cmd:"" help:"Exercise the full stack against a simulated ASIC."`
}

// KongOptions returns the Kong configuration options for the CLI.
func KongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("asicman"),
		kong.Description("Switch ASIC hardware abstraction agent."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"default_config_path": config.DefaultConfigPath,
		},
	}
}

// LoadConfig loads the configuration from the config file path, with
// the --chip flag overriding the configured family.
func (c *CLI) LoadConfig() (config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return cfg, err
	}
	if c.Chip != "" {
		cfg.Hardware.Chip = c.Chip
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// Logger creates a logger for CLI commands. Commands default to warn
// for quieter output; --log or ASICMAN_LOG raise it.
func (c *CLI) Logger() (*slog.Logger, error) {
	cfg, err := c.LoadConfig()
	if err != nil {
		return nil, err
	}

	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	spec := c.Log
	if spec == "" {
		spec = "warn"
	}

	return logging.New(logging.Options{
		CLISpec:    spec,
		ConfigSpec: cfg.Logging.ToSpec(),
		Format:     format,
		Output:     os.Stderr,
	})
}
