package auth

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

const (
	PermRequestsRead   = "requests.read"
	PermRequestsWrite  = "requests.write"
	PermRequestsReview = "requests.review"
	PermHolidaysRead   = "holidays.read"
	PermHolidaysWrite  = "holidays.write"
	PermReportsRead    = "reports.read"
)

var DefaultPermissions = []string{
	PermRequestsRead,
	PermRequestsWrite,
	PermRequestsReview,
	PermHolidaysRead,
	PermHolidaysWrite,
	PermReportsRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermRequestsRead,
		PermRequestsWrite,
		PermHolidaysRead,
	},
	RoleManager: {
		PermRequestsRead,
		PermRequestsWrite,
		PermRequestsReview,
		PermHolidaysRead,
	},
	RoleAdmin: {
		PermRequestsRead,
		PermRequestsWrite,
		PermRequestsReview,
		PermHolidaysRead,
		PermHolidaysWrite,
		PermReportsRead,
	},
}

// IsReviewer reports whether a role may approve or reject time-off requests.
func IsReviewer(roleName string) bool {
	return roleName == RoleManager || roleName == RoleAdmin
}
