package role

// The five hierarchy roles, lowest to highest.
const (
	ShieldCircle  = "shield-circle"
	StudyCircle   = "study-circle"
	TeamCore      = "team-core"
	VicePresident = "vice-president"
	President     = "president"
)

// All lists every role in ascending hierarchy order.
var All = []string{ShieldCircle, StudyCircle, TeamCore, VicePresident, President}

var levels = map[string]int{
	ShieldCircle:  1,
	StudyCircle:   2,
	TeamCore:      3,
	VicePresident: 4,
	President:     5,
}

var icons = map[string]string{
	President:     "👑",
	VicePresident: "⚔️",
	TeamCore:      "🔑",
	StudyCircle:   "📚",
	ShieldCircle:  "🛡️",
}

// Level maps a role to its hierarchy level. Unknown roles map to 0,
// which fails every access check.
func Level(r string) int { return levels[r] }

// Valid reports whether r is one of the five roles.
func Valid(r string) bool { _, ok := levels[r]; return ok }

// CanAccess reports whether a user with userRole may enter a room
// restricted to requiredRole.
func CanAccess(userRole, requiredRole string) bool {
	return Level(userRole) >= Level(requiredRole)
}

// IsAdmin reports whether r carries admin privileges.
func IsAdmin(r string) bool { return r == President || r == VicePresident }

// Icon returns the display icon for a room gated by r.
func Icon(r string) string {
	if ic, ok := icons[r]; ok {
		return ic
	}
	return "💬"
}

// DisplayName returns the human readable name of a role.
func DisplayName(r string) string {
	switch r {
	case President:
		return "President"
	case VicePresident:
		return "Vice President"
	case TeamCore:
		return "Team Core"
	case StudyCircle:
		return "Study Circle"
	case ShieldCircle:
		return "Shield Circle"
	}
	return r
}
