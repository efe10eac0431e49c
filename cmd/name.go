package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/wavetools/slxd/client"
)

var nameCmd = &cobra.Command{
	Use:   "name host channel [name]",
	Short: "Show or set the display name of a channel.",
	Run:   runWithClient(name),
}

func init() {
	rootCmd.AddCommand(nameCmd)
}

func name(_ context.Context, c *client.Client, _ *cobra.Command, args []string) {
	channel := channelArg(args, 1)

	if len(args) > 2 {
		if err := c.SetChannelName(channel, args[2]); err != nil {
			log.Fatalf("cannot set the name: %v", err)
		}
	}

	name, err := c.GetChannelName(channel)
	if err != nil {
		log.Fatalf("cannot read the name: %v", err)
	}
	fmt.Printf("channel %d %q\n", channel, name)
}
