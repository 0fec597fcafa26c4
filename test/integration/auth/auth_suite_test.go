// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

//go:build integration

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
	authpg "github.com/dani6777-2/EcoTechSolutions/internal/auth/postgres"
	"github.com/dani6777-2/EcoTechSolutions/internal/store"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Integration Suite")
}

// testEnv holds all resources needed for integration tests.
type testEnv struct {
	ctx       context.Context
	pool      *pgxpool.Pool
	container testcontainers.Container
	connStr   string

	Principals *authpg.PrincipalRepository
	Roles      *authpg.RoleRepository
}

var env *testEnv

var _ = BeforeSuite(func() {
	var err error
	env, err = setupAuthTestEnv()
	Expect(err).NotTo(HaveOccurred())
})

var _ = AfterSuite(func() {
	if env != nil {
		env.cleanup()
	}
})

func setupAuthTestEnv() (*testEnv, error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("ecotech_test"),
		postgres.WithUsername("ecotech"),
		postgres.WithPassword("ecotech"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err := migrator.Close(); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	pool, err := store.Connect(ctx, connStr, store.DefaultConnectOptions())
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &testEnv{
		ctx:        ctx,
		pool:       pool,
		container:  container,
		connStr:    connStr,
		Principals: authpg.NewPrincipalRepository(pool),
		Roles:      authpg.NewRoleRepository(pool),
	}, nil
}

func (e *testEnv) cleanup() {
	if e.pool != nil {
		e.pool.Close()
	}
	if e.container != nil {
		_ = e.container.Terminate(e.ctx)
	}
}

// cleanupTables removes all rows between specs.
func cleanupTables(ctx context.Context, pool *pgxpool.Pool) {
	_, err := pool.Exec(ctx, "TRUNCATE principals, roles CASCADE")
	Expect(err).NotTo(HaveOccurred())
}

// newService builds a Service and registry over the postgres repositories.
func newService(opts ...auth.Option) (*auth.Service, *auth.RoleRegistry) {
	svc, err := auth.NewService(env.Principals, env.Roles, auth.NewSHA256Hasher(), opts...)
	Expect(err).NotTo(HaveOccurred())
	registry, err := auth.NewRoleRegistry(env.Roles)
	Expect(err).NotTo(HaveOccurred())
	return svc, registry
}

// seedRoles creates the three standard roles.
func seedRoles(ctx context.Context, registry *auth.RoleRegistry) (admin, manager, employee *auth.Role) {
	var err error
	admin, err = registry.CreateRole(ctx, "Administrador", "Acceso completo", auth.LevelAdministrator)
	Expect(err).NotTo(HaveOccurred())
	manager, err = registry.CreateRole(ctx, "Gerente", "Gestiona proyectos", auth.LevelManager)
	Expect(err).NotTo(HaveOccurred())
	employee, err = registry.CreateRole(ctx, "Empleado", "Consulta proyectos", auth.LevelEmployee)
	Expect(err).NotTo(HaveOccurred())
	return admin, manager, employee
}
