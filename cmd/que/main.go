package main

import (
	"fmt"
	"os"

	"github.com/gpedic/go-que/internal/targets"
)

var version = "dev"

func main() {
	if err := newRootCmd(targets.Builtin()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
