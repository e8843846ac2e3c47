package auth

// Builtin permission names provisioned at seed time.
const (
	PermCreate   = "CREATE"
	PermRead     = "READ"
	PermUpdate   = "UPDATE"
	PermDelete   = "DELETE"
	PermRefactor = "REFACTOR"
)

// BuiltinPermissions is the provisioned permission catalog.
var BuiltinPermissions = []Permission{
	{Name: PermCreate},
	{Name: PermRead},
	{Name: PermUpdate},
	{Name: PermDelete},
	{Name: PermRefactor},
}

// BuiltinRolePermissions maps each role kind to the permissions it grants.
var BuiltinRolePermissions = map[RoleName][]string{
	RoleAdmin:     {PermCreate, PermRead, PermUpdate, PermDelete},
	RoleUser:      {PermCreate},
	RoleInvited:   {PermRead},
	RoleDeveloper: {PermCreate, PermRead, PermUpdate, PermDelete, PermRefactor},
}
