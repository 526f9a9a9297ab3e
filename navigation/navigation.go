// Package navigation builds the sidebar for a role.
package navigation

import "github.com/jrsteele09/sales-dashboard/roles"

// Entry is one sidebar link.
type Entry struct {
	Label string `json:"label"`
	Href  string `json:"href"`
	Icon  string `json:"icon"`
}

const usersHref = "/usuarios"

var entries = []Entry{
	{Icon: "fas fa-tachometer-alt", Label: "Dashboard", Href: "/"},
	{Icon: "fas fa-chart-line", Label: "Vendas", Href: "/vendas"},
	{Icon: "fas fa-bullseye", Label: "Metas", Href: "/metas"},
	{Icon: "fas fa-store", Label: "Metas da Loja", Href: "/metas-loja"},
	{Icon: "fas fa-megaphone", Label: "Campanhas", Href: "/campanhas"},
	{Icon: "fas fa-file-alt", Label: "Relatórios", Href: "/relatorios"},
	{Icon: "fas fa-users", Label: "Usuários", Href: usersHref},
	{Icon: "fas fa-cog", Label: "Configurações", Href: "/configuracoes"},
}

// Entries returns the sidebar for roleCode. The users page is listed only for
// roles that manage users.
func Entries(roleCode string) []Entry {
	canManageUsers := roles.CapabilitiesFor(roleCode).Has(roles.ManageUsers)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Href == usersHref && !canManageUsers {
			continue
		}
		out = append(out, e)
	}
	return out
}
