package main

import (
	"os"

	"github.com/voltbus/curtaild/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
