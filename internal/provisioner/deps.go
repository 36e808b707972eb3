package provisioner

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/edvin/panelengine/internal/engine"
)

// Deps carries everything handlers need: the status store, the logger and
// the filesystem roots. Constructed once and passed in explicitly.
type Deps struct {
	DB  engine.DB
	Log zerolog.Logger

	WebRoot      string
	VhostConfDir string
	MailRoot     string
	CertDir      string
	PluginDir    string

	NetworkDevice string

	Exec CommandRunner
}

// CommandRunner executes a system command and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s %v: %w: %s", name, args, err, out)
	}
	return out, nil
}
