package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// reads a json5 configuration file. a sibling file named
// <name>.local.<ext> is merged on top of the base file when present,
// so checked-in defaults can be overridden per machine.
func ReadConfig[T any](name string) (T, error) {
	var out T

	base, baseErr := os.ReadFile(name)
	if baseErr != nil && !os.IsNotExist(baseErr) {
		return out, baseErr
	}
	if len(base) > 0 {
		err := json5.Unmarshal(base, &out)
		if err != nil {
			return out, fmt.Errorf("parse %s: %w", name, err)
		}
	}

	localPath := localName(name)
	local, localErr := os.ReadFile(localPath)
	if localErr != nil && !os.IsNotExist(localErr) {
		return out, localErr
	}
	if len(local) > 0 {
		var override T
		err := json5.Unmarshal(local, &override)
		if err != nil {
			return out, fmt.Errorf("parse %s: %w", localPath, err)
		}
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localPath)
	}

	if len(base) == 0 && len(local) == 0 {
		return out, os.ErrNotExist
	}
	return out, nil
}

func localName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// ReadConfig, except it walks up parent directories from the cwd until
// a matching configuration file is found.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	current, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if os.IsNotExist(err) {
			parent := filepath.Dir(current)
			if parent == current {
				return zero, os.ErrNotExist
			}
			current = parent
			continue
		}
		if err != nil {
			return zero, err
		}
		return config, nil
	}
}
