// Package entitlement defines how paid roles are applied on the chat platform.
package entitlement

import "context"

// Actor grants and revokes a role for a user. Failures are
// *errors.ActorError. Revoking a role the user no longer holds, or for a
// member who left, succeeds.
type Actor interface {
	Grant(ctx context.Context, userID, roleID string) error
	Revoke(ctx context.Context, userID, roleID string) error
}
