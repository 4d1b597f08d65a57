package main

import (
	"os"

	"github.com/triageflow/boardbot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
