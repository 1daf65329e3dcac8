package main

import (
	"os"

	"github.com/weegigs/wee-greetings/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(serve).Execute(); err != nil {
		os.Exit(1)
	}
}
