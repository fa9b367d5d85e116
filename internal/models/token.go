package models

import (
	"time"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by the auth service on login and refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Remaining access token lifetime in whole seconds, as reported to clients
func (p TokenPair) ExpiresIn() int64 {
	return int64(time.Until(p.Access.ExpiresAt).Round(time.Second).Seconds())
}
