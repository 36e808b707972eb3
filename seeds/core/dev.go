package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Seeds a development database with one hosting account worth of pending
// rows, so a fresh checkout has something for the engine to process.

const (
	devUserID   = "usr_dev_000000000001"
	devDomainID = "dom_dev_000000000001"
	devSubID    = "sub_dev_000000000001"
	devAliasID  = "als_dev_000000000001"
	devDNSID    = "dns_dev_000000000001"
	devFtpID    = "ftp_dev_000000000001"
	devMailID   = "mail_dev_000000000001"
)

func main() {
	databaseURL := os.Getenv("CORE_DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "CORE_DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	fmt.Println("Seeding core database...")

	seed := []struct {
		label string
		sql   string
		args  []any
	}{
		{"user", `INSERT INTO users (id, name, password, status) VALUES ($1, $2, $3, 'toadd')
			 ON CONFLICT (id) DO NOTHING`,
			[]any{devUserID, "acme", "changeme-dev-only"}},
		{"domain", `INSERT INTO domains (id, user_id, name, php, status) VALUES ($1, $2, $3, true, 'toadd')
			 ON CONFLICT (id) DO NOTHING`,
			[]any{devDomainID, devUserID, "acme-corp.test"}},
		{"subdomain", `INSERT INTO subdomains (id, domain_id, name, status) VALUES ($1, $2, $3, 'toadd')
			 ON CONFLICT (id) DO NOTHING`,
			[]any{devSubID, devDomainID, "www"}},
		{"domain alias", `INSERT INTO domain_aliases (id, domain_id, name, status) VALUES ($1, $2, $3, 'toadd')
			 ON CONFLICT (id) DO NOTHING`,
			[]any{devAliasID, devDomainID, "acmecorp-online.test"}},
		{"dns record", `INSERT INTO custom_dns_records (id, domain_id, name, type, content, ttl, status)
			 VALUES ($1, $2, 'mail', 'MX', 'mail.acme-corp.test.', 3600, 'toadd')
			 ON CONFLICT (id) DO NOTHING`,
			[]any{devDNSID, devDomainID}},
		{"ftp user", `INSERT INTO ftp_users (id, domain_id, name, password, status)
			 VALUES ($1, $2, $3, $4, 'toadd') ON CONFLICT (id) DO NOTHING`,
			[]any{devFtpID, devDomainID, "acme-ftp", "changeme-dev-only"}},
		{"mail account", `INSERT INTO mail_accounts (id, domain_id, name, password, quota_mb, status)
			 VALUES ($1, $2, $3, $4, 512, 'toadd') ON CONFLICT (id) DO NOTHING`,
			[]any{devMailID, devDomainID, "info", "changeme-dev-only"}},
	}

	for _, s := range seed {
		fmt.Printf("  Inserting %s...\n", s.label)
		if _, err := pool.Exec(ctx, s.sql, s.args...); err != nil {
			fmt.Fprintf(os.Stderr, "insert %s: %v\n", s.label, err)
			os.Exit(1)
		}
	}

	fmt.Println("Done. Run cmd/engine to provision the seeded rows.")
}
