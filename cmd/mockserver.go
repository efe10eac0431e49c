package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wavetools/slxd/mock"
)

var mockserverFlags = struct {
	config string
	listen string
}{}

var mockserverCmd = &cobra.Command{
	Use:   "mockserver",
	Short: "Run an emulated SLX-D receiver for development and testing.",
	Run:   mockserver,
}

func init() {
	mockserverCmd.Flags().StringVar(&mockserverFlags.config, "config", "", "TOML file describing the emulated device")
	mockserverCmd.Flags().StringVar(&mockserverFlags.listen, "listen", "", "listen address, overrides the configuration")
	rootCmd.AddCommand(mockserverCmd)
}

func mockserver(_ *cobra.Command, _ []string) {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("app", "mockserver").Logger()

	cfg := mock.DefaultConfig()
	if mockserverFlags.config != "" {
		var err error
		cfg, err = mock.LoadConfig(mockserverFlags.config)
		if err != nil {
			logger.Fatal().Err(err).Str("path", mockserverFlags.config).Msg("cannot load the configuration")
		}
		logger.Info().Str("path", mockserverFlags.config).Msg("loaded the configuration")
	}

	device, err := cfg.BuildDevice()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid device configuration")
	}

	server := mock.NewServer(device)
	server.Logger = logger
	server.Addr = cfg.ListenAddr()
	if mockserverFlags.listen != "" {
		server.Addr = mockserverFlags.listen
	}

	if err := server.Start(); err != nil {
		logger.Fatal().Err(err).Str("addr", server.Addr).Msg("cannot start the receiver")
	}
	logger.Info().Str("addr", server.ListenAddr().String()).Str("model", device.Model).Msg("receiver listening")

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-signals

	logger.Info().Msg("shutting down")
	server.Stop()
}
