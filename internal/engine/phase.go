package engine

import "github.com/edvin/panelengine/internal/model"

// DispatchMode selects how eligible rows of a phase reach their handler.
type DispatchMode int

const (
	// DispatchRows invokes the handler once per eligible row.
	DispatchRows DispatchMode = iota
	// DispatchBatch invokes the handler once; it processes every pending
	// row of its kind internally and reports whether anything changed.
	DispatchBatch
	// DispatchExternal hands each eligible row to an external process.
	DispatchExternal
)

// Phase is one step of the fixed pipeline: an entity kind plus the query
// selecting its eligible rows. Eligibility (pending status, parent
// consistency, childless-delete guards) is applied entirely in SQL.
type Phase struct {
	Kind     model.EntityKind
	Label    string
	Table    string
	Dispatch DispatchMode
	// Pending selects id, name, status of eligible rows in primary key
	// order. Empty for the address reconciliation phase, which always
	// inspects system state when it runs.
	Pending string
	// Gated phases run only when an earlier phase reported work, or
	// unconditionally in the interactive context.
	Gated bool
}

// Phases returns the pipeline in its fixed order. Creation and change flow
// parent before child; the deletion sweep flows child before parent, so a
// parent is never torn down while children still reference it. The order is
// load-bearing: do not reorder entries.
func Phases() []Phase {
	return []Phase{
		{
			Kind:     model.KindPlugin,
			Label:    "plugins",
			Table:    "plugins",
			Dispatch: DispatchRows,
			Pending: `SELECT id, name, status FROM plugins
				 WHERE status IN ('toadd','tochange','toenable','todisable','torestore','todelete')
				 ORDER BY id`,
		},
		{
			Kind:     model.KindNetworkInterface,
			Label:    "network interfaces",
			Table:    "network_interfaces",
			Dispatch: DispatchBatch,
			Pending: `SELECT id, name, status FROM network_interfaces
				 WHERE status IN ('toadd','tochange','toenable','todisable','torestore','todelete')
				 ORDER BY id`,
		},
		{
			Kind:     model.KindCertificate,
			Label:    "ssl certificates",
			Table:    "ssl_certificates",
			Dispatch: DispatchRows,
			Pending: `SELECT id, name, status FROM ssl_certificates
				 WHERE status IN ('toadd','tochange','toenable','todisable','torestore','todelete')
				 ORDER BY id`,
		},
		{
			Kind:     model.KindUser,
			Label:    "users",
			Table:    "users",
			Dispatch: DispatchRows,
			Pending: `SELECT id, name, status FROM users
				 WHERE status IN ('toadd','tochange','tochangepwd')
				 ORDER BY id`,
		},
		{
			Kind:     model.KindDomain,
			Label:    "domains",
			Table:    "domains",
			Dispatch: DispatchRows,
			Pending: `SELECT d.id, d.name, d.status FROM domains d
				 JOIN users u ON u.id = d.user_id
				 WHERE d.status IN ('toadd','tochange','toenable','todisable','torestore')
				   AND u.status IN ('ok','disabled')
				 ORDER BY d.id`,
		},
		{
			Kind:     model.KindSubdomain,
			Label:    "subdomains",
			Table:    "subdomains",
			Dispatch: DispatchRows,
			Pending: `SELECT s.id, s.name, s.status FROM subdomains s
				 JOIN domains d ON d.id = s.domain_id
				 WHERE s.status IN ('toadd','tochange','toenable','todisable','torestore')
				   AND d.status IN ('ok','disabled')
				 ORDER BY s.id`,
		},
		{
			Kind:     model.KindDomainAlias,
			Label:    "domain aliases",
			Table:    "domain_aliases",
			Dispatch: DispatchRows,
			Pending: `SELECT a.id, a.name, a.status FROM domain_aliases a
				 JOIN domains d ON d.id = a.domain_id
				 WHERE a.status IN ('toadd','tochange','toenable','todisable','torestore')
				   AND d.status IN ('ok','disabled')
				 ORDER BY a.id`,
		},
		{
			Kind:     model.KindAliasSubdomain,
			Label:    "alias subdomains",
			Table:    "alias_subdomains",
			Dispatch: DispatchRows,
			Pending: `SELECT s.id, s.name, s.status FROM alias_subdomains s
				 JOIN domain_aliases a ON a.id = s.alias_id
				 WHERE s.status IN ('toadd','tochange','toenable','todisable','torestore')
				   AND a.status IN ('ok','disabled')
				 ORDER BY s.id`,
		},
		{
			Kind:     model.KindDNSRecord,
			Label:    "custom dns records (domains)",
			Table:    "custom_dns_records",
			Dispatch: DispatchRows,
			Pending: `SELECT r.id, r.name, r.status FROM custom_dns_records r
				 JOIN domains d ON d.id = r.domain_id
				 WHERE r.domain_id IS NOT NULL
				   AND r.status IN ('toadd','tochange','toenable','todisable','torestore','todelete')
				   AND d.status IN ('ok','todelete','disabled')
				 ORDER BY r.id`,
		},
		{
			Kind:     model.KindDNSRecord,
			Label:    "custom dns records (aliases)",
			Table:    "custom_dns_records",
			Dispatch: DispatchRows,
			Pending: `SELECT r.id, r.name, r.status FROM custom_dns_records r
				 JOIN domain_aliases a ON a.id = r.alias_id
				 WHERE r.alias_id IS NOT NULL
				   AND r.status IN ('toadd','tochange','toenable','todisable','torestore','todelete')
				   AND a.status IN ('ok','todelete','disabled')
				 ORDER BY r.id`,
		},
		{
			Kind:     model.KindFtpUser,
			Label:    "ftp users",
			Table:    "ftp_users",
			Dispatch: DispatchRows,
			Pending: `SELECT f.id, f.name, f.status FROM ftp_users f
				 JOIN domains d ON d.id = f.domain_id
				 WHERE f.status IN ('toadd','tochange','tochangepwd','toenable','todisable','torestore','todelete')
				   AND d.status IN ('ok','todelete','disabled')
				 ORDER BY f.id`,
		},
		{
			Kind:     model.KindMailAccount,
			Label:    "mail accounts",
			Table:    "mail_accounts",
			Dispatch: DispatchRows,
			Pending: `SELECT m.id, m.name, m.status FROM mail_accounts m
				 JOIN domains d ON d.id = m.domain_id
				 WHERE m.status IN ('toadd','tochange','tochangepwd','toenable','todisable','torestore','todelete')
				   AND d.status IN ('ok','todelete','disabled')
				 ORDER BY m.id`,
		},
		{
			Kind:     model.KindHtUser,
			Label:    "htaccess users",
			Table:    "htaccess_users",
			Dispatch: DispatchRows,
			Pending: `SELECT h.id, h.name, h.status FROM htaccess_users h
				 JOIN domains d ON d.id = h.domain_id
				 WHERE h.status IN ('toadd','tochange','tochangepwd','toenable','todisable','torestore','todelete')
				   AND d.status IN ('ok','todelete','disabled')
				 ORDER BY h.id`,
		},
		{
			Kind:     model.KindHtGroup,
			Label:    "htaccess groups",
			Table:    "htaccess_groups",
			Dispatch: DispatchRows,
			Pending: `SELECT h.id, h.name, h.status FROM htaccess_groups h
				 JOIN domains d ON d.id = h.domain_id
				 WHERE h.status IN ('toadd','tochange','toenable','todisable','torestore','todelete')
				   AND d.status IN ('ok','todelete','disabled')
				 ORDER BY h.id`,
		},
		{
			Kind:     model.KindHtRule,
			Label:    "htaccess rules",
			Table:    "htaccess_rules",
			Dispatch: DispatchRows,
			Pending: `SELECT h.id, h.name, h.status FROM htaccess_rules h
				 JOIN domains d ON d.id = h.domain_id
				 WHERE h.status IN ('toadd','tochange','toenable','todisable','torestore','todelete')
				   AND d.status IN ('ok','todelete','disabled')
				 ORDER BY h.id`,
		},
		// Deletion sweep, child before parent. Parents queued for deletion
		// in the same run still gate their children, so the parent set
		// admits 'todelete' here.
		{
			Kind:     model.KindAliasSubdomain,
			Label:    "alias subdomain deletions",
			Table:    "alias_subdomains",
			Dispatch: DispatchRows,
			Pending: `SELECT s.id, s.name, s.status FROM alias_subdomains s
				 JOIN domain_aliases a ON a.id = s.alias_id
				 WHERE s.status = 'todelete'
				   AND a.status IN ('ok','disabled','todelete')
				 ORDER BY s.id`,
		},
		{
			Kind:     model.KindDomainAlias,
			Label:    "domain alias deletions",
			Table:    "domain_aliases",
			Dispatch: DispatchRows,
			Pending: `SELECT a.id, a.name, a.status FROM domain_aliases a
				 JOIN domains d ON d.id = a.domain_id
				 WHERE a.status = 'todelete'
				   AND d.status IN ('ok','disabled','todelete')
				   AND NOT EXISTS (SELECT 1 FROM alias_subdomains s WHERE s.alias_id = a.id)
				   AND NOT EXISTS (SELECT 1 FROM custom_dns_records r WHERE r.alias_id = a.id)
				 ORDER BY a.id`,
		},
		{
			Kind:     model.KindSubdomain,
			Label:    "subdomain deletions",
			Table:    "subdomains",
			Dispatch: DispatchRows,
			Pending: `SELECT s.id, s.name, s.status FROM subdomains s
				 JOIN domains d ON d.id = s.domain_id
				 WHERE s.status = 'todelete'
				   AND d.status IN ('ok','disabled','todelete')
				 ORDER BY s.id`,
		},
		{
			Kind:     model.KindDomain,
			Label:    "domain deletions",
			Table:    "domains",
			Dispatch: DispatchRows,
			Pending: `SELECT d.id, d.name, d.status FROM domains d
				 JOIN users u ON u.id = d.user_id
				 WHERE d.status = 'todelete'
				   AND u.status IN ('ok','disabled','todelete')
				   AND NOT EXISTS (SELECT 1 FROM subdomains s WHERE s.domain_id = d.id)
				   AND NOT EXISTS (SELECT 1 FROM domain_aliases a WHERE a.domain_id = d.id)
				   AND NOT EXISTS (SELECT 1 FROM custom_dns_records r WHERE r.domain_id = d.id)
				   AND NOT EXISTS (SELECT 1 FROM ftp_users f WHERE f.domain_id = d.id)
				   AND NOT EXISTS (SELECT 1 FROM mail_accounts m WHERE m.domain_id = d.id)
				   AND NOT EXISTS (SELECT 1 FROM htaccess_users hu WHERE hu.domain_id = d.id)
				   AND NOT EXISTS (SELECT 1 FROM htaccess_groups hg WHERE hg.domain_id = d.id)
				   AND NOT EXISTS (SELECT 1 FROM htaccess_rules hr WHERE hr.domain_id = d.id)
				 ORDER BY d.id`,
		},
		{
			Kind:     model.KindUser,
			Label:    "user deletions",
			Table:    "users",
			Dispatch: DispatchRows,
			Pending: `SELECT id, name, status FROM users
				 WHERE status = 'todelete'
				   AND NOT EXISTS (SELECT 1 FROM domains d WHERE d.user_id = users.id)
				 ORDER BY id`,
		},
		{
			Kind:     model.KindIPAddress,
			Label:    "ip addresses",
			Table:    "ip_addresses",
			Dispatch: DispatchBatch,
			Gated:    true,
		},
		{
			Kind:     model.KindSoftwareInstance,
			Label:    "software instances",
			Table:    "software_instances",
			Dispatch: DispatchExternal,
			Pending: `SELECT id, name, status FROM software_instances
				 WHERE status IN ('toadd','tochange','toenable','todisable','torestore','todelete')
				 ORDER BY id`,
		},
		{
			Kind:     model.KindSoftwarePackage,
			Label:    "software packages",
			Table:    "software_packages",
			Dispatch: DispatchExternal,
			Pending: `SELECT id, name, status FROM software_packages
				 WHERE status IN ('toadd','tochange','toenable','todisable','torestore','todelete')
				 ORDER BY id`,
		},
	}
}
