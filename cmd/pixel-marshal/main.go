package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/ironsheep/pixel-marshal/internal/config"
	"github.com/ironsheep/pixel-marshal/internal/engine"
	"github.com/ironsheep/pixel-marshal/internal/imageio"
	"github.com/ironsheep/pixel-marshal/internal/invoke"
	"github.com/ironsheep/pixel-marshal/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries state shared by subcommands once the root command has loaded
// the configuration.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func (a *app) engineFactory() invoke.Factory {
	return func() (invoke.Engine, error) { return engine.New(), nil }
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "pixel-marshal",
		Short: "Marshal 4D float32 pixel buffers to and from an image engine",
		Long: `pixel-marshal loads images into 4D (x, y, z, c) float32 pixel buffers,
runs engine commands over lists of them and writes the results back out.
It can also serve the same tools over MCP (JSON-RPC on stdin/stdout).`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML configuration file")

	cmd.AddCommand(newRunCommand(a))
	cmd.AddCommand(newBatchCommand(a))
	cmd.AddCommand(newInfoCommand(a))
	cmd.AddCommand(newServeCommand(a))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// setup loads the configuration and installs the logger in every package
// that logs.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := cfg.Log.Build()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	invoke.SetLogger(logger.Named("invoke"))
	engine.SetLogger(logger.Named("engine"))
	imageio.SetLogger(logger.Named("imageio"))
	server.SetLogger(logger.Named("server"))

	logger.Debug("configuration loaded",
		zap.String("path", a.configPath),
		zap.String("preset", cfg.Bridge.Preset),
		zap.Int("pool", cfg.Pool.Size),
		zap.String("output", cfg.Output.Dir))
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and runtime information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pixel-marshal %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)

			data, err := yaml.Marshal(invoke.BuildInfo())
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
}

func newServeCommand(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pixel tools over MCP on stdin/stdout",
		Long: `Serve the pixel_info, pixel_sample and pixel_run tools as an MCP server.
Requests are read from stdin and responses written to stdout, one JSON-RPC
message per line. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = a.cfg.Output.Dir
			}
			a.logger.Info("serving MCP on stdio", zap.String("version", Version))

			srv := server.New(
				server.WithFactory(a.engineFactory()),
				server.WithOutputDir(outDir),
				server.WithPreset(a.cfg.Bridge.Preset),
				server.WithVersion(Version),
			)
			return srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "default output directory for pixel_run (config output.dir)")
	return cmd
}
