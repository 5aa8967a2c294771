package rbac

// Permission names, "<resource>:<action>", lowercase. These strings are
// persisted and matched by clients; they must not change.
const (
	PermTaskCreate  = "task:create"
	PermTaskRead    = "task:read"
	PermTaskUpdate  = "task:update"
	PermTaskDelete  = "task:delete"
	PermTaskReadAll = "task:read_all"

	PermProjectCreate        = "project:create"
	PermProjectRead          = "project:read"
	PermProjectUpdate        = "project:update"
	PermProjectDelete        = "project:delete"
	PermProjectReadAll       = "project:read_all"
	PermProjectManageMembers = "project:manage_members"

	PermUserRead        = "user:read"
	PermUserUpdate      = "user:update"
	PermUserReadAll     = "user:read_all"
	PermUserManageRoles = "user:manage_roles"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

type seedPermission struct {
	Name        string
	Resource    string
	Action      string
	Description string
}

var seedPermissions = []seedPermission{
	{PermTaskCreate, "task", "create", "Create tasks"},
	{PermTaskRead, "task", "read", "Read tasks"},
	{PermTaskUpdate, "task", "update", "Update tasks"},
	{PermTaskDelete, "task", "delete", "Delete tasks"},
	{PermTaskReadAll, "task", "read_all", "Read all users' tasks"},
	{PermProjectCreate, "project", "create", "Create projects"},
	{PermProjectRead, "project", "read", "Read projects"},
	{PermProjectUpdate, "project", "update", "Update projects"},
	{PermProjectDelete, "project", "delete", "Delete projects"},
	{PermProjectReadAll, "project", "read_all", "Read all projects"},
	{PermProjectManageMembers, "project", "manage_members", "Manage project members"},
	{PermUserRead, "user", "read", "Read user profiles"},
	{PermUserUpdate, "user", "update", "Update user profiles"},
	{PermUserReadAll, "user", "read_all", "List all users"},
	{PermUserManageRoles, "user", "manage_roles", "Assign and remove user roles"},
}

var seedRoleGrants = map[string][]string{
	RoleAdmin: {
		PermTaskCreate, PermTaskRead, PermTaskUpdate, PermTaskDelete, PermTaskReadAll,
		PermProjectCreate, PermProjectRead, PermProjectUpdate, PermProjectDelete,
		PermProjectReadAll, PermProjectManageMembers,
		PermUserRead, PermUserUpdate, PermUserReadAll, PermUserManageRoles,
	},
	RoleManager: {
		PermTaskCreate, PermTaskRead, PermTaskUpdate, PermTaskDelete, PermTaskReadAll,
		PermProjectCreate, PermProjectRead, PermProjectUpdate, PermProjectDelete,
		PermProjectReadAll, PermProjectManageMembers,
		PermUserRead, PermUserReadAll,
	},
	RoleUser: {
		PermTaskCreate, PermTaskRead, PermTaskUpdate, PermTaskDelete,
		PermProjectRead,
		PermUserRead, PermUserUpdate,
	},
}

var seedRoleDescriptions = map[string]string{
	RoleAdmin:   "Full access to every resource",
	RoleManager: "Manages projects and tasks, read-only over users",
	RoleUser:    "Works with own tasks and visible projects",
}
