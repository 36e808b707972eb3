package engine

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredb "github.com/edvin/panelengine/internal/db"
)

// openTestPool connects to the database named by CORE_DATABASE_URL, brings
// the schema up to date and truncates the entity tables so each test starts
// clean. Tests using it are skipped when the variable is unset.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("CORE_DATABASE_URL")
	if url == "" {
		t.Skip("CORE_DATABASE_URL not set; skipping database-backed tests")
	}

	ctx := context.Background()
	require.NoError(t, coredb.RunMigrations(ctx, url, "../../migrations/core"))

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE plugins, network_interfaces, ssl_certificates,
		users, domains, subdomains, domain_aliases, alias_subdomains,
		custom_dns_records, ftp_users, mail_accounts, htaccess_users,
		htaccess_groups, htaccess_rules, ip_addresses,
		software_packages, software_instances, dns_records CASCADE`)
	require.NoError(t, err)

	return pool
}

func pendingIDs(t *testing.T, pool *pgxpool.Pool, label string) []string {
	t.Helper()
	tasks, err := pendingRows(context.Background(), pool, phaseByLabel(t, label))
	require.NoError(t, err)
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	return ids
}

func TestPendingRows_ParentGateAgainstDatabase(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, name, status) VALUES ('u1', 'alice', 'toadd')`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx,
		`INSERT INTO domains (id, user_id, name, status) VALUES ('d1', 'u1', 'example.com', 'toadd')`)
	require.NoError(t, err)

	// The owning user is still pending, so the domain is not yet eligible.
	assert.Empty(t, pendingIDs(t, pool, "domains"))

	_, err = pool.Exec(ctx, `UPDATE users SET status = 'ok' WHERE id = 'u1'`)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, pendingIDs(t, pool, "domains"))

	// A disabled parent still admits its children.
	_, err = pool.Exec(ctx, `UPDATE users SET status = 'disabled' WHERE id = 'u1'`)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, pendingIDs(t, pool, "domains"))
}

func TestPendingRows_ChildlessDeleteGuardAgainstDatabase(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, name, status) VALUES ('u1', 'alice', 'ok')`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx,
		`INSERT INTO domains (id, user_id, name, status) VALUES ('d1', 'u1', 'example.com', 'todelete')`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx,
		`INSERT INTO subdomains (id, domain_id, name, status) VALUES ('s1', 'd1', 'www', 'todelete')`)
	require.NoError(t, err)

	// The domain still has a subdomain, so only the child is eligible.
	assert.Empty(t, pendingIDs(t, pool, "domain deletions"))
	assert.Equal(t, []string{"s1"}, pendingIDs(t, pool, "subdomain deletions"))

	// Once the child row is gone the parent becomes eligible.
	_, err = pool.Exec(ctx, `DELETE FROM subdomains WHERE id = 's1'`)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, pendingIDs(t, pool, "domain deletions"))

	// The user deletion guard works the same way one level up.
	_, err = pool.Exec(ctx, `UPDATE users SET status = 'todelete' WHERE id = 'u1'`)
	require.NoError(t, err)
	assert.Empty(t, pendingIDs(t, pool, "user deletions"))

	_, err = pool.Exec(ctx, `DELETE FROM domains WHERE id = 'd1'`)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, pendingIDs(t, pool, "user deletions"))
}
