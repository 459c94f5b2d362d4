// Package runner executes external tools for providers that shell out.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
	"github.com/custodia-labs/reqsift/internal/logger"
)

// Ensure Exec implements the interface.
var _ driven.CommandRunner = Exec{}

// maxStderrLog caps how much tool stderr is logged.
const maxStderrLog = 8 << 10

// Exec runs external programs with os/exec.
type Exec struct{}

// Run executes name with args and returns stdout.
// A missing binary returns an error wrapping domain.ErrToolNotFound.
func (Exec) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrToolNotFound, name)
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		logger.Debug("exec %s %s failed after %dms: %v: %s",
			name, strings.Join(args, " "), dur.Milliseconds(), err,
			logger.Truncate(errb.String(), maxStderrLog))
		return out.Bytes(), fmt.Errorf("%s: %w", name, err)
	}

	logger.Debug("exec %s ok in %dms (stdout %d bytes)", name, dur.Milliseconds(), out.Len())
	return out.Bytes(), nil
}

// CheckAvailable reports which of the named tools are missing from PATH.
func CheckAvailable(names ...string) []string {
	var missing []string
	for _, n := range names {
		if _, err := exec.LookPath(n); err != nil {
			missing = append(missing, n)
		}
	}
	return missing
}
