package main

import (
	"os"

	"todo-http-demo/internal/cli"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	os.Exit(cli.Execute(version, buildTime))
}
