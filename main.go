package main

import "github.com/wavetools/slxd/cmd"

func main() {
	cmd.Execute()
}
