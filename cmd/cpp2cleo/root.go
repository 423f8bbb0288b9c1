package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cpp2cleo/internal/config"
	"cpp2cleo/internal/logging"
)

// app carries the loaded configuration and logger into subcommands.
type app struct {
	cfg    *config.Config
	logCfg logging.Config
	log    zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default(), log: zerolog.Nop()}

	var (
		cfgPath   string
		logLevel  string
		logPretty bool
	)

	root := &cobra.Command{
		Use:   "cpp2cleo",
		Short: "cpp2cleo - plugin-sdk call annotations to CLEO opcodes",
		Long: `Scan plugin-sdk headers for plugin::Call* annotations and encode each
as a CLEO 0AA5-0AA8 call with address, calling convention, parameter
count and stack pop.

  cpp2cleo scan    --in headers.txt --addr addresses.txt --out out/
  cpp2cleo render  --in out/
  cpp2cleo convert --in headers.txt --addr addresses.txt --out out/
  cpp2cleo view    --in out/
  cpp2cleo probe   --in out/ --exe gta_sa.exe`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if cmd.Flags().Changed("log-pretty") {
				cfg.Log.Pretty = logPretty
			}
			a.cfg = cfg
			a.logCfg = logging.Config{
				Level:  cfg.Log.Level,
				Pretty: cfg.Log.Pretty,
				Output: cmd.ErrOrStderr(),
			}
			a.log = logging.New(a.logCfg)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "config file (default $"+config.EnvConfig+")")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.BoolVar(&logPretty, "log-pretty", true, "human-readable log output")

	root.AddCommand(
		newScanCmd(a),
		newRenderCmd(a),
		newConvertCmd(a),
		newViewCmd(a),
		newAddrCmd(a),
		newProbeCmd(a),
		newVersionCmd(),
	)
	return root
}
