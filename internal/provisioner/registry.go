package provisioner

import (
	"github.com/edvin/panelengine/internal/engine"
	"github.com/edvin/panelengine/internal/model"
)

// NewRegistry wires every entity kind to its handler. The mapping is static;
// construction stays lazy so a handler's one-time setup only happens when
// its kind has eligible rows.
func NewRegistry(deps Deps) *engine.Registry {
	if deps.Exec == nil {
		deps.Exec = ExecRunner{}
	}

	r := engine.NewRegistry()

	r.Register(model.KindPlugin, func() (engine.Handler, error) {
		return NewPluginHandler(deps)
	})
	r.Register(model.KindCertificate, func() (engine.Handler, error) {
		return NewCertificateHandler(deps)
	})
	r.Register(model.KindUser, func() (engine.Handler, error) {
		return NewUserHandler(deps), nil
	})
	r.Register(model.KindDomain, func() (engine.Handler, error) {
		return NewDomainHandler(deps), nil
	})
	r.Register(model.KindSubdomain, func() (engine.Handler, error) {
		return NewSubdomainHandler(deps), nil
	})
	r.Register(model.KindDomainAlias, func() (engine.Handler, error) {
		return NewDomainAliasHandler(deps), nil
	})
	r.Register(model.KindAliasSubdomain, func() (engine.Handler, error) {
		return NewAliasSubdomainHandler(deps), nil
	})
	r.Register(model.KindDNSRecord, func() (engine.Handler, error) {
		return NewDNSRecordHandler(deps), nil
	})
	r.Register(model.KindFtpUser, func() (engine.Handler, error) {
		return NewFtpUserHandler(deps), nil
	})
	r.Register(model.KindMailAccount, func() (engine.Handler, error) {
		return NewMailAccountHandler(deps), nil
	})
	r.Register(model.KindHtUser, func() (engine.Handler, error) {
		return NewHtUserHandler(deps), nil
	})
	r.Register(model.KindHtGroup, func() (engine.Handler, error) {
		return NewHtGroupHandler(deps), nil
	})
	r.Register(model.KindHtRule, func() (engine.Handler, error) {
		return NewHtRuleHandler(deps), nil
	})

	r.RegisterBatch(model.KindNetworkInterface, func() (engine.BatchHandler, error) {
		return NewNetworkHandler(deps), nil
	})
	r.RegisterBatch(model.KindIPAddress, func() (engine.BatchHandler, error) {
		return NewAddressHandler(deps), nil
	})

	return r
}
