package gen

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// ErrDuplicatePath is returned when two units target the same file.
var ErrDuplicatePath = errors.New("generated units share an output path")

// WriteFiles writes every unit to its directory, creating directories as
// needed. Files whose content is already up to date are not touched. It
// returns the paths that were written. Nothing is written when two units
// share a path.
func WriteFiles(units []GeneratedUnit) ([]string, error) {
	owners := make(map[string]string, len(units))

	for _, unit := range units {
		p := filepath.Clean(unit.Path())
		if prev, ok := owners[p]; ok {
			return nil, fmt.Errorf("%w: %s and %s both write %s", ErrDuplicatePath, prev, unit.Name, p)
		}

		owners[p] = unit.Name
	}

	var written []string

	for _, unit := range units {
		outputPath := unit.Path()

		if dir := filepath.Dir(outputPath); dir != "." {
			if err := os.MkdirAll(dir, dirPerm); err != nil {
				return written, fmt.Errorf("creating output directory %s: %w", dir, err)
			}
		}

		if existing, err := os.ReadFile(outputPath); err == nil && bytes.Equal(existing, unit.Content) {
			continue
		}

		if err := os.WriteFile(outputPath, unit.Content, filePerm); err != nil {
			return written, fmt.Errorf("writing file %s: %w", outputPath, err)
		}

		written = append(written, outputPath)
	}

	return written, nil
}

// Stale reports the units whose file on disk is missing or differs.
func Stale(units []GeneratedUnit) []GeneratedUnit {
	var stale []GeneratedUnit

	for _, unit := range units {
		existing, err := os.ReadFile(unit.Path())
		if err != nil || !bytes.Equal(existing, unit.Content) {
			stale = append(stale, unit)
		}
	}

	return stale
}
