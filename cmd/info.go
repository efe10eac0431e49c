package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/wavetools/slxd/client"
)

var infoCmd = &cobra.Command{
	Use:   "info host",
	Short: "Show the receiver and all of its channels.",
	Run:   runWithClient(info),
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func info(_ context.Context, c *client.Client, _ *cobra.Command, _ []string) {
	device, err := c.FetchDevice()
	if err != nil {
		log.Fatalf("cannot read the device: %v", err)
	}

	fmt.Printf("%s %s (firmware %s, band %s, lock %s)\n",
		device.Model, device.DeviceID, device.FirmwareVersion, device.RFBand, device.LockStatus)
	for _, channel := range device.Channels {
		fmt.Printf("channel %d %q %.3f MHz (%s) gain %+d dB out %s\n",
			channel.Number, channel.Name, channel.FrequencyMHz(), channel.GroupChannel,
			channel.AudioGainDB, channel.AudioOutLevel)
		fmt.Printf("  audio peak %d dBFS rms %d dBFS, rssi %d/%d dBm\n",
			channel.AudioPeakDBFS, channel.AudioRMSDBFS,
			channel.RSSIAntenna1DBm, channel.RSSIAntenna2DBm)
		if !channel.Active() {
			fmt.Println("  no transmitter")
			continue
		}
		tx := channel.Transmitter
		battery := "battery unknown"
		if percent, ok := tx.BatteryPercentage(); ok {
			battery = fmt.Sprintf("battery %d%% (%s)", percent, tx.BatteryState())
		}
		if tx.BatteryMinutes != client.UnknownReading {
			battery += fmt.Sprintf(", %d min left", tx.BatteryMinutes)
		}
		fmt.Printf("  transmitter %s, %s\n", tx.Model, battery)
	}
}
