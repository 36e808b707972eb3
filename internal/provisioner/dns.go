package provisioner

import (
	"context"
	"fmt"

	"github.com/edvin/panelengine/internal/model"
)

// DNSRecordHandler syncs a custom DNS record into the authoritative
// dns_records table (PowerDNS-compatible schema). The panel row is the
// source of truth; dns_records carries what the nameserver actually serves.
type DNSRecordHandler struct {
	deps Deps
}

func NewDNSRecordHandler(deps Deps) *DNSRecordHandler {
	return &DNSRecordHandler{deps: deps}
}

func (h *DNSRecordHandler) Process(ctx context.Context, task model.TaskRow) error {
	switch task.Status {
	case model.StatusToDelete, model.StatusToDisable:
		_, err := h.deps.DB.Exec(ctx,
			`DELETE FROM dns_records WHERE source_id = $1`, task.ID)
		if err != nil {
			return fmt.Errorf("remove dns record %s: %w", task.ID, err)
		}
		return nil
	}

	var (
		zone     string
		name     string
		rtype    string
		content  string
		ttl      int
		priority *int
	)
	err := h.deps.DB.QueryRow(ctx,
		`SELECT COALESCE(d.name, a.name), r.name, r.type, r.content, r.ttl, r.priority
		 FROM custom_dns_records r
		 LEFT JOIN domains d ON d.id = r.domain_id
		 LEFT JOIN domain_aliases a ON a.id = r.alias_id
		 WHERE r.id = $1`,
		task.ID,
	).Scan(&zone, &name, &rtype, &content, &ttl, &priority)
	if err != nil {
		return fmt.Errorf("get custom dns record %s: %w", task.ID, err)
	}

	_, err = h.deps.DB.Exec(ctx,
		`INSERT INTO dns_records (source_id, zone, name, type, content, ttl, prio)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (source_id) DO UPDATE
		 SET zone = $2, name = $3, type = $4, content = $5, ttl = $6, prio = $7`,
		task.ID, zone, name, rtype, content, ttl, priority,
	)
	if err != nil {
		return fmt.Errorf("sync dns record %s: %w", task.ID, err)
	}
	return nil
}
