package auth

const (
	RoleEmployee    = "Employee"
	RoleManager     = "Manager"
	RoleHR          = "HR"
	RoleSystemAdmin = "SystemAdmin"
)

const (
	PermProfileRead    = "profile.read"
	PermEmployeesRead  = "employees.read"
	PermDraftsWrite    = "drafts.write"
	PermDraftsWriteAny = "drafts.write_any"
	PermDraftsReview   = "drafts.review"
	PermWebhooksManage = "webhooks.manage"
	PermAuditRead      = "audit.read"
	PermSettingsManage = "settings.manage"
	PermSystemAdmin    = "admin.system"
)

var DefaultPermissions = []string{
	PermProfileRead,
	PermEmployeesRead,
	PermDraftsWrite,
	PermDraftsWriteAny,
	PermDraftsReview,
	PermWebhooksManage,
	PermAuditRead,
	PermSettingsManage,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermProfileRead,
		PermDraftsWrite,
	},
	RoleManager: {
		PermProfileRead,
		PermEmployeesRead,
		PermDraftsWrite,
	},
	RoleHR: {
		PermProfileRead,
		PermEmployeesRead,
		PermDraftsWrite,
		PermDraftsWriteAny,
		PermDraftsReview,
		PermWebhooksManage,
		PermAuditRead,
		PermSettingsManage,
	},
	RoleSystemAdmin: {
		PermSystemAdmin,
		PermWebhooksManage,
		PermSettingsManage,
	},
}

// Allowed reports whether the role grants permission using the built-in
// role table. The database remains the source of truth for the API.
func Allowed(roleName, permission string) bool {
	for _, p := range RolePermissions[roleName] {
		if p == permission {
			return true
		}
	}
	return false
}
