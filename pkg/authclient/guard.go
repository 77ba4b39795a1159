package authclient

// GuardAction is what a route guard tells the UI to do.
type GuardAction int

const (
	// ActionLoading means the session is still unresolved; show nothing
	// yet rather than flashing the wrong screen.
	ActionLoading GuardAction = iota
	// ActionRender allows the requested route.
	ActionRender
	// ActionRedirectLogin sends the visitor to the login screen,
	// remembering where they were headed.
	ActionRedirectLogin
	// ActionRedirectDashboard bounces an authenticated user off a route
	// that is not for them.
	ActionRedirectDashboard
)

// Decision is the guard verdict for one navigation.
type Decision struct {
	Action GuardAction
	// From carries the originally requested path on a login redirect so
	// the login flow can return there afterwards.
	From string
}

// Protect guards a private route. An empty allow-list admits any
// authenticated user; otherwise the user's account type must be listed.
func Protect(store *SessionStore, path string, allowed ...string) Decision {
	state, user := store.Snapshot()

	switch state {
	case SessionUnresolved:
		return Decision{Action: ActionLoading}
	case SessionUnauthenticated:
		return Decision{Action: ActionRedirectLogin, From: path}
	}

	if len(allowed) == 0 {
		return Decision{Action: ActionRender}
	}
	for _, accountType := range allowed {
		if user != nil && user.AccountType == accountType {
			return Decision{Action: ActionRender}
		}
	}
	return Decision{Action: ActionRedirectDashboard}
}

// PublicOnly guards routes like login and registration that make no
// sense for a signed-in user.
func PublicOnly(store *SessionStore) Decision {
	switch store.State() {
	case SessionUnresolved:
		return Decision{Action: ActionLoading}
	case SessionAuthenticated:
		return Decision{Action: ActionRedirectDashboard}
	default:
		return Decision{Action: ActionRender}
	}
}
