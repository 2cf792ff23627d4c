// Copyright (c) 2026 TaskForge. All rights reserved.

/*
Package account handles user profile management and account lifecycle.

It provides functionalities for users to view and update their private
identity data and to close their account.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Storage: The auth package's Postgres user repository satisfies
    [AccountRepository]; no second SQL surface exists for the same table.
*/
package account

import (
	"context"

	"github.com/taskforge/taskforge/internal/users/auth"
)

// # Repository Contracts

// AccountRepository defines the persistence contract for user accounts.
//
// [auth.PostgresUserRepository] implements it.
type AccountRepository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		Update modifies the mutable profile fields of an existing user.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, user *auth.User) error

	/*
		SoftDelete flags an account as logically deleted and clears its
		stored refresh token.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Execution failures
	*/
	SoftDelete(context context.Context, id string) error
}
