package guard

import "inkpress/api/internal/models"

// Decision is the closed set of outcomes for a guarded view.
type Decision int

const (
	// DecisionPending means session resolution is still in flight. Render a
	// loading placeholder; never redirect on a pending session.
	DecisionPending Decision = iota
	// DecisionSignIn means there is no authenticated session.
	DecisionSignIn
	// DecisionRedirect means the viewer is authenticated but the required
	// roles exclude them; Target carries their role's home route.
	DecisionRedirect
	// DecisionAllow means the view may render. Role carries the session's
	// role, which is authoritative for descendants.
	DecisionAllow
)

// Session is the read-only view of the authenticated state the guard needs.
type Session struct {
	UserID        string
	Role          models.UserRole
	Authenticated bool
	Loading       bool
}

type Evaluation struct {
	Decision Decision
	Target   string
	Role     models.UserRole
}

const (
	SignInRoute      = "/signin"
	DefaultHomeRoute = "/dashboard"
)

var roleHomes = map[models.UserRole]string{
	models.UserRoleWriter:    "/dashboard/writer",
	models.UserRoleEditor:    "/dashboard/editor",
	models.UserRolePublisher: "/dashboard/publisher",
}

// HomeRoute maps a role to its landing view. Unknown roles fall back to the
// default home rather than guessing.
func HomeRoute(role models.UserRole) string {
	if home, ok := roleHomes[role]; ok {
		return home
	}
	return DefaultHomeRoute
}

// Evaluate decides whether a session may render a view restricted to the
// given roles. An empty required set means any authenticated session is
// allowed. Evaluate is pure: same inputs, same evaluation.
func Evaluate(sess Session, required ...models.UserRole) Evaluation {
	if sess.Loading {
		return Evaluation{Decision: DecisionPending}
	}
	if !sess.Authenticated {
		return Evaluation{Decision: DecisionSignIn, Target: SignInRoute}
	}
	if len(required) > 0 && !contains(required, sess.Role) {
		return Evaluation{
			Decision: DecisionRedirect,
			Target:   HomeRoute(sess.Role),
			Role:     sess.Role,
		}
	}
	return Evaluation{Decision: DecisionAllow, Role: sess.Role}
}

func contains(roles []models.UserRole, role models.UserRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
