package roles

// Role is a user role code as stored in the usuarios.tipo column.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleRH         Role = "rh"
	RoleGerente    Role = "gerente"
	RoleSubgerente Role = "subgerente"
	RoleLider      Role = "lider"
	RoleSublider   Role = "sublider"
	RoleConsultora Role = "consultora"
)

// Capability is a coarse UI permission derived from a role.
type Capability uint8

const (
	// ManageUsers shows the users entry point in navigation
	ManageUsers Capability = 1 << iota
	// EditAllStoreUsers allows editing users of any store
	EditAllStoreUsers
	// EditSameStoreUsers allows editing users of the actor's own store
	EditSameStoreUsers
	// ViewAllStores allows selecting any store, including the "all stores" view
	ViewAllStores
)

var capabilityNames = []struct {
	capability Capability
	name       string
}{
	{ManageUsers, "manage_users"},
	{EditAllStoreUsers, "edit_all_store_users"},
	{EditSameStoreUsers, "edit_same_store_users"},
	{ViewAllStores, "view_all_stores"},
}

// Capabilities is a set of Capability flags.
type Capabilities Capability

func (c Capabilities) Has(capability Capability) bool {
	return Capability(c)&capability == capability
}

// Names lists the set members in a stable order, for JSON responses.
func (c Capabilities) Names() []string {
	names := make([]string, 0, len(capabilityNames))
	for _, cn := range capabilityNames {
		if c.Has(cn.capability) {
			names = append(names, cn.name)
		}
	}
	return names
}

type policy struct {
	label        string
	capabilities Capabilities
}

func caps(c ...Capability) Capabilities {
	var set Capabilities
	for _, v := range c {
		set |= Capabilities(v)
	}
	return set
}

var policies = map[Role]policy{
	RoleAdmin:      {label: "Administrador", capabilities: caps(ManageUsers, EditAllStoreUsers, ViewAllStores)},
	RoleSupervisor: {label: "Supervisor", capabilities: caps(ManageUsers, EditAllStoreUsers, ViewAllStores)},
	RoleRH:         {label: "Recursos Humanos", capabilities: caps(ManageUsers, EditAllStoreUsers, ViewAllStores)},
	RoleGerente:    {label: "Gerente", capabilities: caps(ManageUsers, EditSameStoreUsers)},
	RoleSubgerente: {label: "Subgerente", capabilities: caps(ManageUsers, EditSameStoreUsers)},
	RoleLider:      {label: "Líder", capabilities: caps(ManageUsers, EditSameStoreUsers)},
	RoleSublider:   {label: "Sublíder", capabilities: caps(ManageUsers, EditSameStoreUsers)},
	RoleConsultora: {label: "Consultora", capabilities: caps()},
}

// All returns every known role in display order.
func All() []Role {
	return []Role{RoleAdmin, RoleSupervisor, RoleRH, RoleGerente, RoleSubgerente, RoleLider, RoleSublider, RoleConsultora}
}

// Parse returns the Role for a stored code and whether the code is known.
func Parse(code string) (Role, bool) {
	role := Role(code)
	_, ok := policies[role]
	return role, ok
}

// Label returns the display label of a role code, or the code itself when unknown.
func Label(code string) string {
	if p, ok := policies[Role(code)]; ok {
		return p.label
	}
	return code
}

// CapabilitiesFor returns the capability set of a role code. Unknown codes have none.
func CapabilitiesFor(code string) Capabilities {
	return policies[Role(code)].capabilities
}

// CanEditUser reports whether an actor may edit a user belonging to targetStoreID.
// The check is advisory; row level enforcement belongs to the database.
func CanEditUser(actorRole string, actorStoreID, targetStoreID int) bool {
	c := CapabilitiesFor(actorRole)
	if c.Has(EditAllStoreUsers) {
		return true
	}
	return c.Has(EditSameStoreUsers) && actorStoreID == targetStoreID
}

// CanEditAnyUser reports whether the role has either edit capability.
func CanEditAnyUser(code string) bool {
	c := CapabilitiesFor(code)
	return c.Has(EditAllStoreUsers) || c.Has(EditSameStoreUsers)
}
