package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/edvin/panelengine/internal/model"
)

// ExternalDispatcher hands one task row to an out-of-process worker.
// Software tasks run in a child process so a crashing installer cannot take
// the engine down with it.
type ExternalDispatcher interface {
	Dispatch(ctx context.Context, kind model.EntityKind, task model.TaskRow) error
}

// ProcessDispatcher runs the configured helper executable once per row,
// writing the row's fields to its stdin as one tab-separated line. A
// non-zero exit or anything on stderr is a failure.
type ProcessDispatcher struct {
	Helper string
}

func (p ProcessDispatcher) Dispatch(ctx context.Context, kind model.EntityKind, task model.TaskRow) error {
	payload := strings.Join([]string{string(kind), task.ID, task.Name, task.Status}, "\t") + "\n"

	cmd := exec.CommandContext(ctx, p.Helper)
	cmd.Stdin = strings.NewReader(payload)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s helper: %s", kind, msg)
		}
		return fmt.Errorf("%s helper: %w", kind, err)
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("%s helper: %s", kind, msg)
	}
	return nil
}
