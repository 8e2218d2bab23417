package main

import (
	"os"

	"dbgrep/internal/logger"
	"dbgrep/pkg/dbgrep"
)

func main() {
	log := logger.Default()
	if err := newRootCmd(os.Stdout, log).Execute(); err != nil {
		log.Error("%v", err)
		os.Exit(dbgrep.ExitCodeForError(err))
	}
}
