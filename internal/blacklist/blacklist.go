// Package blacklist tracks access tokens revoked before their natural
// expiry. An entry is only needed while its token would still verify, so
// every entry carries the token's own expiry and is dropped after it.
package blacklist

import (
	"context"
	"time"
)

type Blacklist interface {
	// Block the token until expiresAt. A no-op when expiresAt is already
	// in the past: an expired token fails verification anyway.
	Block(ctx context.Context, token string, expiresAt time.Time) error

	// IsBlocked must never report false for a blocked token that has not
	// reached its expiry yet. After expiry the entry may be collected.
	IsBlocked(ctx context.Context, token string) (bool, error)
}
