package cmd

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wavetools/slxd/client"
)

var gainCmd = &cobra.Command{
	Use:   "gain host channel [dB]",
	Short: "Show or set the audio gain of a channel.",
	Run:   runWithClient(gain),
}

func init() {
	rootCmd.AddCommand(gainCmd)
}

func gain(_ context.Context, c *client.Client, _ *cobra.Command, args []string) {
	channel := channelArg(args, 1)

	if len(args) > 2 {
		dB, err := strconv.Atoi(args[2])
		if err != nil {
			log.Fatalf("invalid gain %q: %v", args[2], err)
		}
		if err := c.SetAudioGain(channel, dB); err != nil {
			log.Fatalf("cannot set the gain: %v", err)
		}
	}

	dB, err := c.GetAudioGain(channel)
	if err != nil {
		log.Fatalf("cannot read the gain: %v", err)
	}
	fmt.Printf("channel %d gain %+d dB\n", channel, dB)
}
