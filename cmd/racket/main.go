package main

import (
	"os"

	"racket/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
