package auth

// Role is a platform user role
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// KnownRoles lists every role the platform recognizes
var KnownRoles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

// ParseRole returns the matching role and whether the value was recognized
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// Capability is a named permission resolved once per request
type Capability string

const (
	CapViewReports   Capability = "reports:view"
	CapExportReports Capability = "reports:export"
	CapViewErrorLogs Capability = "errorlogs:view"
	CapManageUsers   Capability = "users:manage"
	CapAuthorCourses Capability = "courses:author"
)

// roleCapabilities maps each role to its full capability set. Resolved at
// request start; handlers never re-query permissions.
var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {
		CapViewReports,
		CapExportReports,
		CapViewErrorLogs,
		CapManageUsers,
		CapAuthorCourses,
	},
	RoleTeacher: {
		CapViewReports,
		CapExportReports,
		CapAuthorCourses,
	},
	RoleStudent: {},
}

// AuthContext carries the identity and capability set for one request
type AuthContext struct {
	UserID       int64
	Username     string
	Role         Role
	Capabilities map[Capability]bool
}

// NewAuthContext builds an AuthContext with the capability set for the role
func NewAuthContext(userID int64, username string, role Role) *AuthContext {
	caps := make(map[Capability]bool)
	for _, c := range roleCapabilities[role] {
		caps[c] = true
	}
	return &AuthContext{
		UserID:       userID,
		Username:     username,
		Role:         role,
		Capabilities: caps,
	}
}

// HasRole reports whether the context has exactly the given role
func (a *AuthContext) HasRole(role Role) bool {
	return a != nil && a.Role == role
}

// HasCapability reports whether the capability set includes cap
func (a *AuthContext) HasCapability(cap Capability) bool {
	return a != nil && a.Capabilities[cap]
}
