package domain

// UserContext is the authenticated caller for one request. Produced by the
// auth layer (out of scope here, propagated via headers by the gateway) and
// immutable for the request's duration.
type UserContext struct {
	UserID   string
	TenantID string
	TeamIDs  []string
	IsAdmin  bool
}

// InTeam reports whether the user belongs to the given team.
func (u UserContext) InTeam(teamID string) bool {
	for _, id := range u.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}
