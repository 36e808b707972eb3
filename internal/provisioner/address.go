package provisioner

import (
	"context"
	"fmt"
	"strings"

	"github.com/edvin/panelengine/internal/model"
)

// AddressHandler reconciles the ip_addresses table against the addresses
// actually assigned to the host: pending rows are applied, and rows already
// marked ok that have drifted off the device are re-assigned. It runs as the
// gated batch phase after all entity work; its failure is fatal for the run
// because later network-dependent services rely on the result.
type AddressHandler struct {
	deps Deps
}

func NewAddressHandler(deps Deps) *AddressHandler {
	return &AddressHandler{deps: deps}
}

func (h *AddressHandler) ProcessAll(ctx context.Context) (bool, error) {
	assigned, err := assignedAddresses(ctx, h.deps)
	if err != nil {
		return false, err
	}

	rows, err := h.deps.DB.Query(ctx,
		`SELECT id, name, device, status FROM ip_addresses ORDER BY id`)
	if err != nil {
		return false, fmt.Errorf("query ip addresses: %w", err)
	}
	defer rows.Close()

	type addrRow struct {
		id, name, device, status string
	}
	var all []addrRow
	for rows.Next() {
		var r addrRow
		if err := rows.Scan(&r.id, &r.name, &r.device, &r.status); err != nil {
			return false, fmt.Errorf("scan ip address: %w", err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterate ip addresses: %w", err)
	}

	didWork := false
	for _, r := range all {
		cidr := r.name
		if !strings.Contains(cidr, "/") {
			cidr += "/32"
		}

		switch r.status {
		case model.StatusToAdd, model.StatusToChange, model.StatusToEnable, model.StatusToRestore:
			if !assigned[strip(cidr)] {
				if out, err := h.deps.Exec.Run(ctx, "ip", "addr", "replace", cidr, "dev", r.device); err != nil {
					return didWork, fmt.Errorf("assign %s to %s: %w (%s)", cidr, r.device, err, out)
				}
			}
			if _, err := h.deps.DB.Exec(ctx,
				`UPDATE ip_addresses SET status = 'ok', last_error = NULL, updated_at = now() WHERE id = $1`, r.id); err != nil {
				return didWork, fmt.Errorf("finalize ip address %s: %w", r.id, err)
			}
			didWork = true
		case model.StatusToDisable, model.StatusToDelete:
			if assigned[strip(cidr)] {
				if out, err := h.deps.Exec.Run(ctx, "ip", "addr", "del", cidr, "dev", r.device); err != nil {
					return didWork, fmt.Errorf("remove %s from %s: %w (%s)", cidr, r.device, err, out)
				}
			}
			if r.status == model.StatusToDelete {
				if _, err := h.deps.DB.Exec(ctx, `DELETE FROM ip_addresses WHERE id = $1`, r.id); err != nil {
					return didWork, fmt.Errorf("delete ip address %s: %w", r.id, err)
				}
			} else {
				if _, err := h.deps.DB.Exec(ctx,
					`UPDATE ip_addresses SET status = 'disabled', last_error = NULL, updated_at = now() WHERE id = $1`, r.id); err != nil {
					return didWork, fmt.Errorf("disable ip address %s: %w", r.id, err)
				}
			}
			didWork = true
		case model.StatusOK:
			// Drift repair: the row is final but the host lost the address.
			if !assigned[strip(cidr)] {
				if out, err := h.deps.Exec.Run(ctx, "ip", "addr", "replace", cidr, "dev", r.device); err != nil {
					return didWork, fmt.Errorf("restore %s on %s: %w (%s)", cidr, r.device, err, out)
				}
				didWork = true
			}
		}
	}

	return didWork, nil
}

// assignedAddresses parses `ip -o addr show` output into the set of
// currently assigned addresses (without prefix length).
func assignedAddresses(ctx context.Context, deps Deps) (map[string]bool, error) {
	out, err := deps.Exec.Run(ctx, "ip", "-o", "addr", "show")
	if err != nil {
		return nil, fmt.Errorf("list assigned addresses: %w", err)
	}

	assigned := make(map[string]bool)
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		for i, f := range fields {
			if (f == "inet" || f == "inet6") && i+1 < len(fields) {
				assigned[strip(fields[i+1])] = true
			}
		}
	}
	return assigned, nil
}

func strip(cidr string) string {
	if i := strings.IndexByte(cidr, '/'); i >= 0 {
		return cidr[:i]
	}
	return cidr
}
