package main

import (
	"os"

	"github.com/dshills/repolens/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
