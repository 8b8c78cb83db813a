package outputsink

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
)

// FormatHeader renders the `-H`/`--header` line:
// "# HOST=[<hostname>] OS=[<os>_<arch>] TIME=[<YYYY-MM-DD HH:MM:SS ±ZZZZ>] CMD=[<argv joined>]"
func FormatHeader(argv []string, now time.Time) string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("# HOST=[%s] OS=[%s_%s] TIME=[%s] CMD=[%s]\n",
		hostname,
		runtime.GOOS, runtime.GOARCH,
		now.Format("2006-01-02 15:04:05 -0700"),
		strings.Join(argv, " "),
	)
}
