package auth

import (
	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/token"
)

// Authorize reports whether the payload's role is a member of the allowed
// set.  It is a pure function over the role claim and looks at nothing
// else; authenticity and expiry must already have been established by token
// verification before the gate runs.  A deny is an authorization failure
// (HTTP 403), distinct from the authentication failures above.
func Authorize(p token.Payload, allowed ...model.Role) bool {
	for _, r := range allowed {
		if p.Role == r {
			return true
		}
	}
	return false
}
