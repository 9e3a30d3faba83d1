package main

import (
	"fmt"
	"os"

	"latex-speech/internal/cli"
	"latex-speech/internal/logger"
)

func main() {
	defer logger.Close()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
