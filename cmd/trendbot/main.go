package main

import (
	"os"

	"trendbot/cmd/trendbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
