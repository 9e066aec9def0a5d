// Package builtin wires the plugins compiled into the binary into a registry.
package builtin

import (
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin/linkcheck"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin/searchindex"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin/sitemap"
)

// RegisterAll registers every built-in plugin in reg, skipping names already present.
func RegisterAll(reg *plugin.Registry) error {
	factories := map[string]plugin.Factory{
		sitemap.Name:     sitemap.New,
		searchindex.Name: searchindex.New,
		linkcheck.Name:   linkcheck.New,
	}
	for name, factory := range factories {
		if reg.Has(name) {
			continue
		}
		if err := reg.Register(name, factory); err != nil {
			return err
		}
	}
	return nil
}
