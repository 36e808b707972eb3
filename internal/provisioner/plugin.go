package provisioner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edvin/panelengine/internal/model"
)

// PluginHandler activates and deactivates panel plugins. A plugin is
// enabled by an activation marker in the plugin directory; later phases see
// its registrations, which is why plugins run first in the pipeline.
type PluginHandler struct {
	deps Deps
}

func NewPluginHandler(deps Deps) (*PluginHandler, error) {
	if err := os.MkdirAll(deps.PluginDir, 0o755); err != nil {
		return nil, fmt.Errorf("create plugin dir: %w", err)
	}
	return &PluginHandler{deps: deps}, nil
}

func (h *PluginHandler) Process(ctx context.Context, task model.TaskRow) error {
	marker := filepath.Join(h.deps.PluginDir, task.Name+".enabled")

	switch task.Status {
	case model.StatusToDisable, model.StatusToDelete:
		if err := os.Remove(marker); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove plugin marker %s: %w", marker, err)
		}
		return nil
	default:
		if err := os.WriteFile(marker, []byte(task.ID+"\n"), 0o644); err != nil {
			return fmt.Errorf("write plugin marker %s: %w", marker, err)
		}
		return nil
	}
}
