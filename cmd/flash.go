package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/wavetools/slxd/client"
)

var flashCmd = &cobra.Command{
	Use:   "flash host [channel]",
	Short: "Flash the receiver's front panel, or one channel's LED, for identification.",
	Run:   runWithClient(flash),
}

func init() {
	rootCmd.AddCommand(flashCmd)
}

func flash(_ context.Context, c *client.Client, _ *cobra.Command, args []string) {
	if len(args) > 1 {
		channel := channelArg(args, 1)
		if err := c.FlashChannel(channel); err != nil {
			log.Fatalf("cannot flash channel %d: %v", channel, err)
		}
		fmt.Printf("flashing channel %d\n", channel)
		return
	}

	if err := c.FlashDevice(); err != nil {
		log.Fatalf("cannot flash the device: %v", err)
	}
	fmt.Println("flashing the front panel")
}
