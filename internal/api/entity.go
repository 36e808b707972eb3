package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edvin/panelengine/internal/engine"
	"github.com/edvin/panelengine/internal/model"
)

// entityTables maps route segments to the tables the generic status and
// listing endpoints may touch. Table names never come from the request.
var entityTables = map[string]string{
	"plugins":            "plugins",
	"network-interfaces": "network_interfaces",
	"certificates":       "ssl_certificates",
	"users":              "users",
	"domains":            "domains",
	"subdomains":         "subdomains",
	"domain-aliases":     "domain_aliases",
	"alias-subdomains":   "alias_subdomains",
	"dns-records":        "custom_dns_records",
	"ftp-users":          "ftp_users",
	"mail-accounts":      "mail_accounts",
	"htaccess-users":     "htaccess_users",
	"htaccess-groups":    "htaccess_groups",
	"htaccess-rules":     "htaccess_rules",
	"ip-addresses":       "ip_addresses",
	"software-packages":  "software_packages",
	"software-instances": "software_instances",
}

// Entities exposes the generic read and transition endpoints shared by
// every provisionable table.
type Entities struct {
	db engine.DB
}

func NewEntities(db engine.DB) *Entities {
	return &Entities{db: db}
}

// EntityRow is the wire shape of a provisionable row.
type EntityRow struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	LastError *string `json:"last_error,omitempty"`
}

func (h *Entities) table(w http.ResponseWriter, r *http.Request) (string, bool) {
	table, ok := entityTables[chi.URLParam(r, "entity")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown entity type")
		return "", false
	}
	return table, true
}

// List returns rows of one entity table, optionally filtered by status.
func (h *Entities) List(w http.ResponseWriter, r *http.Request) {
	table, ok := h.table(w, r)
	if !ok {
		return
	}

	query := `SELECT id, name, status, last_error FROM ` + table + ` ORDER BY name`
	args := []any{}
	if status := r.URL.Query().Get("status"); status != "" {
		if !model.IsConsistent(status) && !model.IsTransition(status) && status != model.StatusError {
			writeError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		query = `SELECT id, name, status, last_error FROM ` + table + ` WHERE status = $1 ORDER BY name`
		args = append(args, status)
	}

	rows, err := h.db.Query(r.Context(), query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	items := []EntityRow{}
	for rows.Next() {
		var row EntityRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Status, &row.LastError); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Get returns a single row by ID.
func (h *Entities) Get(w http.ResponseWriter, r *http.Request) {
	table, ok := h.table(w, r)
	if !ok {
		return
	}
	id, err := requireID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var row EntityRow
	err = h.db.QueryRow(r.Context(),
		`SELECT id, name, status, last_error FROM `+table+` WHERE id = $1`, id,
	).Scan(&row.ID, &row.Name, &row.Status, &row.LastError)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	writeJSON(w, http.StatusOK, row)
}

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
}

// Transition marks a row pending. The requested status must be one of the
// transition statuses; the engine owns the terminal ones. Rows already in a
// transition status are left alone so an in-flight task is not redirected.
func (h *Entities) Transition(w http.ResponseWriter, r *http.Request) {
	table, ok := h.table(w, r)
	if !ok {
		return
	}
	id, err := requireID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req transitionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !model.IsTransition(req.Status) {
		writeError(w, http.StatusBadRequest, "status must be a transition status")
		return
	}

	tag, err := h.db.Exec(r.Context(),
		`UPDATE `+table+` SET status = $1, updated_at = now()
		 WHERE id = $2 AND status IN ('ok','disabled','error')`,
		req.Status, id,
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusConflict, "row missing or already pending")
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// insertPending creates a row in status toadd and writes the 202 response.
func (h *Entities) insertPending(w http.ResponseWriter, r *http.Request, sql string, args ...any) {
	if _, err := h.db.Exec(r.Context(), sql, args...); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, EntityRow{
		ID:     args[0].(string),
		Name:   args[1].(string),
		Status: model.StatusToAdd,
	})
}

type createUser struct {
	Name     string `json:"name" validate:"required,min=2,max=32"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Entities) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUser
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.insertPending(w, r,
		`INSERT INTO users (id, name, password, status) VALUES ($1, $2, $3, 'toadd')`,
		uuid.NewString(), req.Name, req.Password)
}

type createDomain struct {
	UserID string `json:"user_id" validate:"required"`
	Name   string `json:"name" validate:"required,hostname"`
	PHP    bool   `json:"php"`
	CGI    bool   `json:"cgi"`
}

func (h *Entities) CreateDomain(w http.ResponseWriter, r *http.Request) {
	var req createDomain
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.insertPending(w, r,
		`INSERT INTO domains (id, name, user_id, php, cgi, status) VALUES ($1, $2, $3, $4, $5, 'toadd')`,
		uuid.NewString(), req.Name, req.UserID, req.PHP, req.CGI)
}

type createSubdomain struct {
	DomainID string `json:"domain_id" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=63"`
}

func (h *Entities) CreateSubdomain(w http.ResponseWriter, r *http.Request) {
	var req createSubdomain
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.insertPending(w, r,
		`INSERT INTO subdomains (id, name, domain_id, status) VALUES ($1, $2, $3, 'toadd')`,
		uuid.NewString(), req.Name, req.DomainID)
}

type createDomainAlias struct {
	DomainID string `json:"domain_id" validate:"required"`
	Name     string `json:"name" validate:"required,hostname"`
}

func (h *Entities) CreateDomainAlias(w http.ResponseWriter, r *http.Request) {
	var req createDomainAlias
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.insertPending(w, r,
		`INSERT INTO domain_aliases (id, name, domain_id, status) VALUES ($1, $2, $3, 'toadd')`,
		uuid.NewString(), req.Name, req.DomainID)
}

type createDNSRecord struct {
	DomainID string `json:"domain_id"`
	AliasID  string `json:"alias_id"`
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=A AAAA CNAME MX TXT SRV NS"`
	Content  string `json:"content" validate:"required"`
	TTL      int    `json:"ttl"`
	Priority *int   `json:"priority"`
}

func (h *Entities) CreateDNSRecord(w http.ResponseWriter, r *http.Request) {
	var req createDNSRecord
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if (req.DomainID == "") == (req.AliasID == "") {
		writeError(w, http.StatusBadRequest, "exactly one of domain_id or alias_id is required")
		return
	}
	if req.TTL == 0 {
		req.TTL = 3600
	}

	var domainID, aliasID *string
	if req.DomainID != "" {
		domainID = &req.DomainID
	}
	if req.AliasID != "" {
		aliasID = &req.AliasID
	}
	h.insertPending(w, r,
		`INSERT INTO custom_dns_records (id, name, domain_id, alias_id, type, content, ttl, priority, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'toadd')`,
		uuid.NewString(), req.Name, domainID, aliasID, req.Type, req.Content, req.TTL, req.Priority)
}

type createFtpUser struct {
	DomainID string `json:"domain_id" validate:"required"`
	Name     string `json:"name" validate:"required,min=2,max=32"`
	Password string `json:"password" validate:"required,min=8"`
	HomeDir  string `json:"home_dir"`
}

func (h *Entities) CreateFtpUser(w http.ResponseWriter, r *http.Request) {
	var req createFtpUser
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.insertPending(w, r,
		`INSERT INTO ftp_users (id, name, domain_id, password, home_dir, status) VALUES ($1, $2, $3, $4, $5, 'toadd')`,
		uuid.NewString(), req.Name, req.DomainID, req.Password, req.HomeDir)
}

type createMailAccount struct {
	DomainID string `json:"domain_id" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	QuotaMB  int    `json:"quota_mb" validate:"min=0"`
}

func (h *Entities) CreateMailAccount(w http.ResponseWriter, r *http.Request) {
	var req createMailAccount
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.insertPending(w, r,
		`INSERT INTO mail_accounts (id, name, domain_id, password, quota_mb, status) VALUES ($1, $2, $3, $4, $5, 'toadd')`,
		uuid.NewString(), req.Name, req.DomainID, req.Password, req.QuotaMB)
}

type createCertificate struct {
	Name        string `json:"name" validate:"required,hostname"`
	Certificate string `json:"certificate" validate:"required"`
	PrivateKey  string `json:"private_key" validate:"required"`
	CABundle    string `json:"ca_bundle"`
}

func (h *Entities) CreateCertificate(w http.ResponseWriter, r *http.Request) {
	var req createCertificate
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.insertPending(w, r,
		`INSERT INTO ssl_certificates (id, name, certificate, private_key, ca_bundle, status)
		 VALUES ($1, $2, $3, $4, $5, 'toadd')`,
		uuid.NewString(), req.Name, req.Certificate, req.PrivateKey, req.CABundle)
}
