package repository

import "nolabor/entities"

// UserRepository backs the DevLogin shim and the per-user AI quota.
// Real authentication is an external collaborator.
type UserRepository interface {
	// Ensure returns the user for uid, creating the row on first sight.
	Ensure(uid string) (*entities.User, error)

	// ConsumeQuota atomically takes one analysis credit; false when the
	// quota is exhausted.
	ConsumeQuota(uid string) (bool, error)
}
