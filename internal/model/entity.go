package model

// EntityKind tags one of the fixed hosting-domain categories the engine
// knows how to process. The set is closed; handlers are registered per kind.
type EntityKind string

const (
	KindPlugin           EntityKind = "plugin"
	KindNetworkInterface EntityKind = "network_interface"
	KindCertificate      EntityKind = "ssl_certificate"
	KindUser             EntityKind = "user"
	KindDomain           EntityKind = "domain"
	KindSubdomain        EntityKind = "subdomain"
	KindDomainAlias      EntityKind = "domain_alias"
	KindAliasSubdomain   EntityKind = "alias_subdomain"
	KindDNSRecord        EntityKind = "custom_dns_record"
	KindFtpUser          EntityKind = "ftp_user"
	KindMailAccount      EntityKind = "mail_account"
	KindHtUser           EntityKind = "htaccess_user"
	KindHtGroup          EntityKind = "htaccess_group"
	KindHtRule           EntityKind = "htaccess_rule"
	KindIPAddress        EntityKind = "ip_address"
	KindSoftwarePackage  EntityKind = "software_package"
	KindSoftwareInstance EntityKind = "software_instance"
)

// TaskRow is the unit the engine operates on: one pending entity row as
// returned by a pending-work query. Status is the transition value the row
// held when it was selected; the handler branches on it and the status
// writer maps it to the row's outcome.
type TaskRow struct {
	ID     string
	Name   string
	Status string
}
