package pymodule

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// sysPathScript is the one-shot request sent to the configured interpreter
// to print its module search path, one entry per line.
const sysPathScript = "import sys\nfor p in sys.path:\n    print(p)\n"

// sysPathTimeout bounds the interpreter invocation. A hung interpreter must
// not stall document validation indefinitely.
const sysPathTimeout = 15 * time.Second

// interpreter is one configured interpreter identity plus its lazily
// discovered search-path list. Discovery runs at most once, on its own
// goroutine; concurrent validation passes await the shared result instead
// of invoking the process themselves.
type interpreter struct {
	identity string

	started chan struct{} // closed exactly once to launch discovery
	done    chan struct{} // closed when discovery finished

	paths []string
	err   error
}

func newInterpreter(identity string) *interpreter {
	return &interpreter{
		identity: identity,
		started:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// searchPaths returns the interpreter's discovered sys.path entries,
// triggering discovery on first use. The returned error is an
// infrastructure failure: callers degrade to workspace-only resolution.
func (it *interpreter) searchPaths(ctx context.Context) ([]string, error) {
	if it == nil {
		return nil, nil
	}
	select {
	case it.started <- struct{}{}:
		go it.discover()
	default:
	}
	select {
	case <-it.done:
		return it.paths, it.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// discover invokes the interpreter once and records the result.
func (it *interpreter) discover() {
	defer close(it.done)

	ctx, cancel := context.WithTimeout(context.Background(), sysPathTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, it.identity, "-c", sysPathScript).Output()
	if err != nil {
		it.err = fmt.Errorf("failed to query interpreter %q for sys.path: %w", it.identity, err)
		return
	}
	it.paths = parseSysPath(string(out))
	if len(it.paths) == 0 {
		it.err = fmt.Errorf("interpreter %q returned no usable sys.path entries", it.identity)
	}
}

// parseSysPath splits interpreter output into directory entries, dropping
// blanks and the empty "current directory" entry CPython emits.
func parseSysPath(out string) []string {
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !filepath.IsAbs(line) {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}
