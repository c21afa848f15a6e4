// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package seed provisions a fresh installation: the permission catalogue, the
super_admin role holding every permission, and the first administrator.

Every step looks the row up first, so running the seeder again changes
nothing.
*/
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/constants"
	"github.com/taibuivan/adminauth/internal/rbac"
	"github.com/taibuivan/adminauth/internal/users/account"
	"github.com/taibuivan/adminauth/internal/users/auth"
)

// Groups is the permission catalogue of the admin panel. Each group receives
// the standard actions.
var Groups = []string{
	"dashboard",
	"roles",
	"groups",
	"permission",
	"users",
	"products",
	"brand",
	"attribute",
	"outlet",
	"category",
	"uploadedFiles",
	"banner",
	"sideBanner",
}

// Administrator is the first account of the platform.
type Administrator struct {
	Email        string
	FirstName    string
	LastName     string
	MobileNumber string
	Password     string
}

// DefaultAdministrator returns the built-in administrator with password.
func DefaultAdministrator(password string) Administrator {
	return Administrator{
		Email:        "super_admin@kids.com",
		FirstName:    "Mr.",
		LastName:     "Super Admin",
		MobileNumber: "0123456789",
		Password:     password,
	}
}

// # Contracts

// Catalog creates groups and roles unless they exist.
type Catalog interface {
	EnsureGroup(ctx context.Context, name string, actions []string) (*rbac.PermissionGroup, bool, error)
	EnsureRole(ctx context.Context, name string, permissionIDs []string) (*rbac.Role, bool, error)
}

// Accounts looks up and creates accounts.
type Accounts interface {
	GetUserByEmail(ctx context.Context, email string) (*auth.Profile, error)
	CreateUser(ctx context.Context, caller account.Caller, input account.CreateUserInput) (*auth.User, error)
}

// Report counts what a run created.
type Report struct {
	GroupsCreated  int
	RoleCreated    bool
	AccountCreated bool
}

// ErrMissingPassword is returned when no administrator password is configured.
var ErrMissingPassword = errors.New("seed: administrator password is required")

/*
Run provisions the catalogue, the super_admin role and the administrator.

Description: Existing groups, the role and the account are left untouched.
An existing super_admin role keeps the permissions it already holds.

Returns:
  - Report: What this run created
  - error: ErrMissingPassword or the first failing step
*/
func Run(ctx context.Context, catalog Catalog, accounts Accounts, admin Administrator, logger *slog.Logger) (Report, error) {
	var report Report

	if admin.Password == "" {
		return report, ErrMissingPassword
	}

	// ── 1. Permission Groups ──────────────────────────────────────────────
	permissionIDs := make([]string, 0, len(Groups)*len(rbac.Actions))
	for _, name := range Groups {
		group, created, err := catalog.EnsureGroup(ctx, name, rbac.Actions)
		if err != nil {
			return report, fmt.Errorf("seed_group_failed: %s: %w", name, err)
		}
		if created {
			report.GroupsCreated++
		}
		for _, permission := range group.Permissions {
			permissionIDs = append(permissionIDs, permission.ID)
		}
	}

	// ── 2. Super Admin Role ───────────────────────────────────────────────
	superAdmin, created, err := catalog.EnsureRole(ctx, constants.RoleSuperAdmin, permissionIDs)
	if err != nil {
		return report, fmt.Errorf("seed_role_failed: %w", err)
	}
	report.RoleCreated = created

	// ── 3. Administrator ──────────────────────────────────────────────────
	_, err = accounts.GetUserByEmail(ctx, admin.Email)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "seed_administrator_exists", slog.String("email", admin.Email))
	case apperr.IsNotFound(err):
		user, err := accounts.CreateUser(ctx, account.System, account.CreateUserInput{
			FirstName:    admin.FirstName,
			LastName:     admin.LastName,
			Email:        admin.Email,
			MobileNumber: admin.MobileNumber,
			Password:     admin.Password,
			IsAdmin:      true,
			RoleIDs:      []string{superAdmin.ID},
		})
		if err != nil {
			return report, fmt.Errorf("seed_administrator_failed: %w", err)
		}
		report.AccountCreated = true
		logger.InfoContext(ctx, "seed_administrator_created", slog.String("user_id", user.ID))
	default:
		return report, fmt.Errorf("seed_administrator_lookup_failed: %w", err)
	}

	logger.InfoContext(ctx, "seed_completed",
		slog.Int("groups_created", report.GroupsCreated),
		slog.Int("permissions", len(permissionIDs)),
		slog.Bool("role_created", report.RoleCreated),
		slog.Bool("account_created", report.AccountCreated),
	)
	return report, nil
}
