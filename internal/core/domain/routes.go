package domain

import "strings"

const (
	RouteEntry        = "/"
	RouteLogin        = "/login"
	RouteRegister     = "/register"
	RouteOperatorHome = "/home"
	RouteReviewerHome = "/admin"
	RouteFleetMonitor = "/admin-monitor"
)

var publicRoutes = map[string]struct{}{
	RouteEntry:    {},
	RouteLogin:    {},
	RouteRegister: {},
}

// routePrefixes is the role -> allowed path prefixes table.
var routePrefixes = map[Role][]string{
	RoleOperator: {RouteOperatorHome},
	RoleReviewer: {RouteReviewerHome, RouteFleetMonitor},
}

// Gate decides whether s may open path. When it may not, the returned
// redirect is the entry route.
func Gate(s Session, path string) (redirect string, allowed bool) {
	if _, ok := publicRoutes[path]; ok {
		return "", true
	}
	if !s.Authenticated() {
		return RouteEntry, false
	}
	for _, prefix := range routePrefixes[s.Role] {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return "", true
		}
	}
	return RouteEntry, false
}

// HomeRoute is where a freshly signed-in role lands.
func HomeRoute(r Role) string {
	if r == RoleReviewer {
		return RouteReviewerHome
	}
	return RouteOperatorHome
}
