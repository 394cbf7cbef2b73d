package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
)

// migrator is the subset of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Steps(n int) error
	Migrate(version uint) error
	Force(version int) error
	Version() (version uint, dirty bool, err error)
}

type command struct {
	name    string
	steps   int
	version uint
}

type result struct {
	message string
	version uint
	dirty   bool
	changed bool
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errors.New("missing command")
	}
	name := strings.ToLower(strings.TrimSpace(args[0]))
	rest := args[1:]

	switch name {
	case "up", "version":
		if len(rest) > 0 {
			return command{}, fmt.Errorf("%s takes no arguments", name)
		}
		return command{name: name}, nil
	case "down":
		steps := 1
		if len(rest) > 0 {
			n, err := strconv.Atoi(strings.TrimSpace(rest[0]))
			if err != nil || n <= 0 {
				return command{}, fmt.Errorf("down steps must be a positive integer, got %q", rest[0])
			}
			steps = n
		}
		return command{name: name, steps: steps}, nil
	case "force", "goto":
		if len(rest) != 1 {
			return command{}, fmt.Errorf("%s requires exactly one version", name)
		}
		v, err := strconv.ParseUint(strings.TrimSpace(rest[0]), 10, 31)
		if err != nil {
			return command{}, fmt.Errorf("invalid version %q: %w", rest[0], err)
		}
		return command{name: name, version: uint(v)}, nil
	default:
		return command{}, fmt.Errorf("unknown command %q", name)
	}
}

func (c command) run(m migrator) (result, error) {
	var err error
	switch c.name {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-c.steps)
	case "goto":
		err = m.Migrate(c.version)
	case "force":
		if err := m.Force(int(c.version)); err != nil {
			return result{}, fmt.Errorf("force version %d: %w", c.version, err)
		}
	case "version":
	default:
		return result{}, fmt.Errorf("unknown command %q", c.name)
	}

	changed := true
	if errors.Is(err, migrate.ErrNoChange) {
		changed, err = false, nil
	}
	if err != nil {
		return result{}, err
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return result{message: "no migrations applied", changed: changed && c.name != "version"}, nil
	}
	if err != nil {
		return result{}, fmt.Errorf("read version: %w", err)
	}

	msg := "schema at version"
	if c.name != "version" && !changed {
		msg = "schema already up to date"
	}
	return result{message: msg, version: version, dirty: dirty, changed: changed && c.name != "version"}, nil
}
