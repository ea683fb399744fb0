package main

import (
	"fmt"
	"os"

	"github.com/elousi1010/quanlyveso-sub000/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		code, reported := cli.ExitCode(err)
		if !reported {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(code)
	}
}
