package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wavetools/slxd/client"
)

var monitorFlags = struct {
	rate int
}{}

var monitorCmd = &cobra.Command{
	Use:   "monitor host channel",
	Short: "Connect to the given host and log the metering samples of a channel to stdout.",
	Run:   monitor,
}

func init() {
	monitorCmd.Flags().IntVar(&monitorFlags.rate, "rate", 100, "metering rate in milliseconds")
	rootCmd.AddCommand(monitorCmd)
}

func monitor(_ *cobra.Command, args []string) {
	hostArg := ""
	if len(args) > 0 {
		hostArg = args[0]
	}
	host, err := parseHostArg(hostArg)
	if err != nil {
		log.Fatalf("invalid host address: %v", err)
	}
	channel := channelArg(args, 1)

	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go handleCancelation(signals, cancel)

	meter, err := client.OpenMeter(host.IP.String(), host.Port, new(sampleLogger))
	if err != nil {
		log.Fatalf("cannot connect to %s: %v", host.String(), err)
	}
	defer meter.Close()

	if err := meter.Start(channel, monitorFlags.rate); err != nil {
		log.Fatalf("cannot start metering: %v", err)
	}
	<-ctx.Done()
	meter.Stop(channel)
}

type sampleLogger struct{}

func (l *sampleLogger) Sample(sample client.Sample) {
	log.Printf("channel %d peak %4d dBFS rms %4d dBFS rssi %4d/%4d dBm antenna %d",
		sample.Channel, sample.PeakDBFS(), sample.RMSDBFS(),
		sample.RSSIAntenna1DBm(), sample.RSSIAntenna2DBm(), sample.Antenna)
}
