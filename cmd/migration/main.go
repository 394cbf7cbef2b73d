package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/riskibarqy/rpsls-game/internal/platform/logging"
)

func main() {
	logger := logging.NewJSON(logging.LevelInfo).With("component", "migration")
	defer func() { _ = logger.Sync() }()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cmd, err := parseCommand(os.Args[1:])
	if err != nil {
		logger.Error("invalid arguments", "error", err)
		printUsage()
		os.Exit(2)
	}

	tgt, err := resolveTarget(os.Getenv)
	if err != nil {
		logger.Error("resolve migration target", "error", err)
		os.Exit(1)
	}

	m, err := tgt.open()
	if err != nil {
		logger.Error("open migrator", "store", tgt.store, "source", tgt.sourceName, "error", err)
		os.Exit(1)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	result, err := cmd.run(m)
	if err != nil {
		logger.Error("migration failed", "command", cmd.name, "store", tgt.store, "error", err)
		os.Exit(1)
	}
	logger.Info(result.message, "command", cmd.name, "store", tgt.store, "source", tgt.sourceName,
		"version", result.version, "dirty", result.dirty, "changed", result.changed)
}

func printUsage() {
	bin := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down [n]|version|force <v>|goto <v>>\n", bin)
	fmt.Fprintln(os.Stderr, "SCORE_STORE=sqlite migrates SQLITE_PATH with the embedded schema;")
	fmt.Fprintln(os.Stderr, "SCORE_STORE=postgres migrates DB_URL from MIGRATIONS_DIR (default ./db/migrations).")
}
