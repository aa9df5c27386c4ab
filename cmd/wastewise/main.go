package main

import (
	"fmt"
	"os"

	"github.com/ppiankov/wastewise/internal/cli"
	"github.com/ppiankov/wastewise/internal/common"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(common.UserMessage(err)))
		os.Exit(1)
	}
}
