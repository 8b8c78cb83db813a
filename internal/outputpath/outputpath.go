// Package outputpath derives the default log file path from the
// child command's basename and, absent --force/--append, rotates
// through numbered suffixes to avoid clobbering an existing file.
package outputpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxRotation bounds the NAME-1.log, NAME-2.log, ... search so a
// pathological directory full of stale logs can't spin forever.
const maxRotation = 1000

// Resolve computes the output path to open given the CLI flags. argv0
// is COMMAND[0]; explicit is the --output value (empty if absent).
func Resolve(argv0, explicit string, force, appendMode bool) (string, error) {
	if explicit != "" {
		if !force && !appendMode {
			if _, err := os.Stat(explicit); err == nil {
				return "", fmt.Errorf("output file %q already exists (use --force or --append)", explicit)
			} else if !os.IsNotExist(err) {
				return "", fmt.Errorf("stat %q: %w", explicit, err)
			}
		}
		return explicit, nil
	}

	base := filepath.Base(argv0)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	candidate := base + ".log"

	if force || appendMode {
		return candidate, nil
	}

	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate, nil
	}

	for i := 1; i <= maxRotation; i++ {
		rotated := fmt.Sprintf("%s-%d.log", base, i)
		if _, err := os.Stat(rotated); os.IsNotExist(err) {
			return rotated, nil
		}
	}
	return "", fmt.Errorf("could not find an unused log path for %q after %d attempts", base, maxRotation)
}
