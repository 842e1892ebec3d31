package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"ems/internal/domain/auth"
	"ems/internal/platform/config"
)

// Seed makes sure the default tenant, the permission catalogue and the
// built-in roles exist. It is safe to run on every start.
func Seed(ctx context.Context, q Querier, cfg config.Config) error {
	tenantID, err := ensureTenant(ctx, q, cfg.SeedTenantName)
	if err != nil {
		return fmt.Errorf("seed tenant: %w", err)
	}

	if err := ensurePermissions(ctx, q); err != nil {
		return fmt.Errorf("seed permissions: %w", err)
	}

	roleIDs, err := ensureRoles(ctx, q, tenantID)
	if err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	if err := ensureRolePermissions(ctx, q, roleIDs); err != nil {
		return fmt.Errorf("seed role permissions: %w", err)
	}

	if err := ensureUser(ctx, q, tenantID, roleIDs[auth.RoleHR], cfg.SeedAdminEmail); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

func ensureTenant(ctx context.Context, q Querier, name string) (string, error) {
	var id string
	err := q.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	if err := q.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id", name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensurePermissions(ctx context.Context, q Querier) error {
	for _, perm := range auth.DefaultPermissions {
		if _, err := q.Exec(ctx, "INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", perm); err != nil {
			return err
		}
	}
	return nil
}

func ensureRoles(ctx context.Context, q Querier, tenantID string) (map[string]string, error) {
	roleIDs := map[string]string{}
	for roleName := range auth.RolePermissions {
		var id string
		if err := q.QueryRow(ctx, `
    INSERT INTO roles (tenant_id, name) VALUES ($1, $2)
    ON CONFLICT (tenant_id, name) DO UPDATE SET name = EXCLUDED.name
    RETURNING id
  `, tenantID, roleName).Scan(&id); err != nil {
			return nil, err
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

func ensureRolePermissions(ctx context.Context, q Querier, roleIDs map[string]string) error {
	permMap := map[string]string{}
	rows, err := q.Query(ctx, "SELECT id, key FROM permissions")
	if err != nil {
		return err
	}
	for rows.Next() {
		var id, key string
		if err := rows.Scan(&id, &key); err != nil {
			rows.Close()
			return err
		}
		permMap[key] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for roleName, perms := range auth.RolePermissions {
		roleID := roleIDs[roleName]
		for _, permKey := range perms {
			permID, ok := permMap[permKey]
			if !ok {
				return errors.New("permission not found: " + permKey)
			}
			if _, err := q.Exec(ctx, "INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", roleID, permID); err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureUser(ctx context.Context, q Querier, tenantID, roleID, email string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	_, err := q.Exec(ctx, `
    INSERT INTO users (tenant_id, email, role_id) VALUES ($1, $2, $3)
    ON CONFLICT (tenant_id, email) DO NOTHING
  `, tenantID, email, roleID)
	return err
}
