package main

import (
	"fmt"
	"os"

	"github.com/oakwood-commons/fwtable/cmd"
	"github.com/oakwood-commons/fwtable/pkg/logger"
	"github.com/oakwood-commons/fwtable/pkg/settings"
)

func main() {
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", settings.CliBinaryName, err)
	}

	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
