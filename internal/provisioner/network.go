package provisioner

import (
	"context"
	"fmt"
	"net"

	"github.com/edvin/panelengine/internal/model"
)

// NetworkHandler is the batch handler for network interface rows: one
// invocation walks every pending row, applies the address change through the
// ip tool and persists each row's outcome itself.
type NetworkHandler struct {
	deps Deps
}

func NewNetworkHandler(deps Deps) *NetworkHandler {
	return &NetworkHandler{deps: deps}
}

type ifaceRow struct {
	id      string
	name    string
	device  string
	address string
	netmask string
	status  string
}

func (h *NetworkHandler) ProcessAll(ctx context.Context) (bool, error) {
	rows, err := h.deps.DB.Query(ctx,
		`SELECT id, name, device, address, netmask, status FROM network_interfaces
		 WHERE status IN ('toadd','tochange','toenable','todisable','torestore','todelete')
		 ORDER BY id`,
	)
	if err != nil {
		return false, fmt.Errorf("query pending network interfaces: %w", err)
	}
	defer rows.Close()

	var pending []ifaceRow
	for rows.Next() {
		var r ifaceRow
		if err := rows.Scan(&r.id, &r.name, &r.device, &r.address, &r.netmask, &r.status); err != nil {
			return false, fmt.Errorf("scan network interface: %w", err)
		}
		pending = append(pending, r)
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterate network interfaces: %w", err)
	}
	if len(pending) == 0 {
		return false, nil
	}

	assigned, err := assignedAddresses(ctx, h.deps)
	if err != nil {
		return false, err
	}

	didWork := false
	for _, r := range pending {
		perr := h.apply(ctx, r, assigned)
		if perr != nil {
			h.deps.Log.Error().Err(perr).Str("interface", r.name).Msg("network interface task failed")
			if _, err := h.deps.DB.Exec(ctx,
				`UPDATE network_interfaces SET status = 'error', last_error = $1, updated_at = now() WHERE id = $2`,
				perr.Error(), r.id,
			); err != nil {
				return didWork, fmt.Errorf("record network interface failure: %w", err)
			}
			continue
		}

		didWork = true
		var werr error
		switch r.status {
		case model.StatusToDelete:
			_, werr = h.deps.DB.Exec(ctx, `DELETE FROM network_interfaces WHERE id = $1`, r.id)
		case model.StatusToDisable:
			_, werr = h.deps.DB.Exec(ctx,
				`UPDATE network_interfaces SET status = 'disabled', last_error = NULL, updated_at = now() WHERE id = $1`, r.id)
		default:
			_, werr = h.deps.DB.Exec(ctx,
				`UPDATE network_interfaces SET status = 'ok', last_error = NULL, updated_at = now() WHERE id = $1`, r.id)
		}
		if werr != nil {
			return didWork, fmt.Errorf("finalize network interface %s: %w", r.id, werr)
		}
	}

	return didWork, nil
}

func (h *NetworkHandler) apply(ctx context.Context, r ifaceRow, assigned map[string]bool) error {
	addr, err := addressCIDR(r.address, r.netmask)
	if err != nil {
		return err
	}

	switch r.status {
	case model.StatusToDisable, model.StatusToDelete:
		// An address already gone (earlier failed run, manual removal) is
		// the desired state, so a retried row succeeds.
		if !assigned[r.address] {
			return nil
		}
		out, err := h.deps.Exec.Run(ctx, "ip", "addr", "del", addr, "dev", r.device)
		if err != nil {
			return fmt.Errorf("remove address %s from %s: %w (%s)", addr, r.device, err, out)
		}
	default:
		// replace is idempotent, so retried rows are safe.
		out, err := h.deps.Exec.Run(ctx, "ip", "addr", "replace", addr, "dev", r.device)
		if err != nil {
			return fmt.Errorf("assign address %s to %s: %w (%s)", addr, r.device, err, out)
		}
	}
	return nil
}

// addressCIDR joins an address and dotted netmask into CIDR notation.
func addressCIDR(address, netmask string) (string, error) {
	ip := net.ParseIP(address)
	if ip == nil {
		return "", fmt.Errorf("invalid address %q", address)
	}
	maskIP := net.ParseIP(netmask)
	if maskIP == nil || maskIP.To4() == nil {
		return "", fmt.Errorf("invalid netmask %q", netmask)
	}
	ones, bits := net.IPMask(maskIP.To4()).Size()
	if bits == 0 {
		return "", fmt.Errorf("invalid netmask %q", netmask)
	}
	return fmt.Sprintf("%s/%d", address, ones), nil
}
