package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wavetools/slxd/client"
)

var rawCmd = &cobra.Command{
	Use:   "raw host <command>",
	Short: "Send a raw protocol command and print the response.",
	Run:   runWithClient(raw),
}

func init() {
	rootCmd.AddCommand(rawCmd)
}

func raw(_ context.Context, c *client.Client, _ *cobra.Command, args []string) {
	if len(args) < 2 {
		log.Fatal("no command to send, use slxd raw <host> '< GET MODEL >'")
	}

	command := strings.Join(args[1:], " ")
	response, err := c.SendCommand(command)
	if err != nil {
		log.Fatalf("command failed: %v", err)
	}

	if response.Channel > 0 {
		fmt.Printf("%s %d %s = %s\n", response.Kind, response.Channel, response.Property, response.Value)
	} else {
		fmt.Printf("%s %s = %s\n", response.Kind, response.Property, response.Value)
	}
}
