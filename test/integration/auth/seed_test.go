// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

//go:build integration

package auth_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/dani6777-2/EcoTechSolutions/internal/access"
	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
	"github.com/dani6777-2/EcoTechSolutions/internal/seed"
)

var _ = Describe("Seeder against PostgreSQL", func() {
	var (
		svc      *auth.Service
		registry *auth.RoleRegistry
	)

	BeforeEach(func() {
		cleanupTables(env.ctx, env.pool)
		svc, registry = newService()
	})

	newSeeder := func() *seed.Seeder {
		s, err := seed.NewSeeder(svc, registry, env.Principals,
			seed.WithPassword(access.AdminUsername, "admin123"),
			seed.WithGetenv(func(string) string { return "" }))
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	It("creates the default roles and admin account", func() {
		result, err := newSeeder().Apply(env.ctx, seed.DefaultManifest())
		Expect(err).NotTo(HaveOccurred())
		Expect(result.RolesCreated).To(ConsistOf("Administrador", "Gerente", "Empleado"))
		Expect(result.PrincipalsCreated).To(ConsistOf(access.AdminUsername))

		identity, err := svc.Authenticate(env.ctx, "admin", "admin123")
		Expect(err).NotTo(HaveOccurred())
		Expect(identity.PermissionLevel).To(Equal(auth.LevelAdministrator))

		employee, err := registry.EmployeeRole(env.ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(employee.Name).To(Equal("Empleado"))
	})

	It("is idempotent", func() {
		_, err := newSeeder().Apply(env.ctx, seed.DefaultManifest())
		Expect(err).NotTo(HaveOccurred())

		result, err := newSeeder().Apply(env.ctx, seed.DefaultManifest())
		Expect(err).NotTo(HaveOccurred())
		Expect(result.RolesCreated).To(BeEmpty())
		Expect(result.PrincipalsCreated).To(BeEmpty())
		Expect(result.RolesExisting).To(HaveLen(3))
		Expect(result.PrincipalsExisting).To(ConsistOf(access.AdminUsername))

		roles, err := registry.ListActiveRoles(env.ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(roles).To(HaveLen(3))
	})
})
