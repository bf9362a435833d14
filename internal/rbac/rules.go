package rbac

// RolePermissions is the default policy.
var RolePermissions = map[string][]string{
	"student": {
		"activity:view",
		"progress:save",
		"progress:view-own",
	},
	"teacher": {
		"activity:create",
		"activity:view",
		"progress:save",
		"progress:view-own",
		"progress:view-all",
		"progress:reset-any",
	},
	"admin": {
		"*", // everything
	},
}
