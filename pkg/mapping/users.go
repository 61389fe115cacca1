package mapping

import "strings"

// UserMap translates source tracker logins to target identities. Lookups
// are case-insensitive. The map is loaded once from configuration and is
// only mutated through Add/Remove; the sync workflow itself never
// touches it.
type UserMap struct {
	byLogin map[string]string
}

// NewUserMap builds a user map from configured login pairs.
func NewUserMap(users map[string]string) *UserMap {
	byLogin := make(map[string]string, len(users))
	for login, identity := range users {
		byLogin[strings.ToLower(login)] = identity
	}
	return &UserMap{byLogin: byLogin}
}

// Lookup returns the target identity for a source login.
func (u *UserMap) Lookup(login string) (string, bool) {
	identity, ok := u.byLogin[strings.ToLower(login)]
	return identity, ok
}

// FirstMapped returns the target identity of the first login in the list
// that has a mapping.
func (u *UserMap) FirstMapped(logins []string) (string, bool) {
	for _, login := range logins {
		if identity, ok := u.Lookup(login); ok {
			return identity, true
		}
	}
	return "", false
}

// Add registers or replaces a mapping.
func (u *UserMap) Add(login, identity string) {
	u.byLogin[strings.ToLower(login)] = identity
}

// Remove deletes a mapping.
func (u *UserMap) Remove(login string) {
	delete(u.byLogin, strings.ToLower(login))
}

// Len returns the number of mapped logins.
func (u *UserMap) Len() int {
	return len(u.byLogin)
}
