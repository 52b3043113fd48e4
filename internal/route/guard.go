// Package route decides what a navigation renders: the access guard for
// protected views and the guest and authenticated route tables.
package route

import "github.com/bloghub/bloghub/pkg/domain"

// GuestEntry is where an unauthenticated visitor is sent.
const GuestEntry = "/login"

// Decision is the guard's verdict. A zero Redirect means Render.
type Decision struct {
	Redirect string
}

// Render reports whether the protected content may be shown.
func (d Decision) Render() bool { return d.Redirect == "" }

// Evaluate is a pure function of the session and the allowed roles. An empty
// allowed list admits every authenticated role.
func Evaluate(sess domain.Session, present bool, allowed []domain.Role) Decision {
	if !present {
		return Decision{Redirect: GuestEntry}
	}
	if len(allowed) > 0 && !domain.HasRole(sess.Role, allowed) {
		return Decision{Redirect: domain.Landing(sess.Role)}
	}
	return Decision{}
}
