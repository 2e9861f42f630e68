package main

import (
	"os"

	"github.com/dbo2taxer/dbo2taxer/internal/commands"
	"github.com/dbo2taxer/dbo2taxer/internal/logger"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		log := logger.New(os.Stderr, logger.DefaultLevel)
		log.Error().Msg(err.Error())
		os.Exit(1)
	}
}
