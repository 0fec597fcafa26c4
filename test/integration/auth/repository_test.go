// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

//go:build integration

package auth_test

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
)

var _ = Describe("Postgres repositories", func() {
	var role *auth.Role

	BeforeEach(func() {
		cleanupTables(env.ctx, env.pool)
		var err error
		role, err = auth.NewRole("Empleado", "Consulta proyectos", auth.LevelEmployee)
		Expect(err).NotTo(HaveOccurred())
		Expect(env.Roles.Create(env.ctx, role)).To(Succeed())
	})

	Describe("RoleRepository", func() {
		It("rejects a name differing only in case", func() {
			dup, err := auth.NewRole("EMPLEADO", "", auth.LevelEmployee)
			Expect(err).NotTo(HaveOccurred())
			err = env.Roles.Create(env.ctx, dup)
			Expect(errors.Is(err, auth.ErrDuplicateRoleName)).To(BeTrue())
		})

		It("finds roles by name ignoring case", func() {
			got, err := env.Roles.GetByName(env.ctx, "empleado")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(role.ID))
			Expect(got.PermissionLevel).To(Equal(auth.LevelEmployee))
		})

		It("lists active roles by level", func() {
			manager, err := auth.NewRole("Gerente", "", auth.LevelManager)
			Expect(err).NotTo(HaveOccurred())
			Expect(env.Roles.Create(env.ctx, manager)).To(Succeed())

			roles, err := env.Roles.ListActive(env.ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(HaveLen(2))
			Expect(roles[0].Name).To(Equal("Empleado"))
			Expect(roles[1].Name).To(Equal("Gerente"))
		})

		It("returns not found for unknown IDs", func() {
			_, err := env.Roles.GetByID(env.ctx, ulid.Make())
			Expect(errors.Is(err, auth.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("PrincipalRepository", func() {
		newPrincipal := func(username string) *auth.Principal {
			p, err := auth.NewPrincipal(username, role.ID, "hash-"+username, "salt-"+username)
			Expect(err).NotTo(HaveOccurred())
			return p
		}

		It("round-trips a principal", func() {
			p := newPrincipal("jperez")
			Expect(env.Principals.Create(env.ctx, p)).To(Succeed())

			got, err := env.Principals.GetByUsername(env.ctx, "JPerez")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(p.ID))
			Expect(got.PasswordHash).To(Equal("hash-jperez"))
			Expect(got.Salt).To(Equal("salt-jperez"))
			Expect(got.RoleID).To(Equal(role.ID))
			Expect(got.Active).To(BeTrue())
			Expect(got.LastLoginAt).To(BeNil())
		})

		It("enforces case-insensitive username uniqueness", func() {
			Expect(env.Principals.Create(env.ctx, newPrincipal("jperez"))).To(Succeed())
			err := env.Principals.Create(env.ctx, newPrincipal("JPEREZ"))
			Expect(errors.Is(err, auth.ErrDuplicateUsername)).To(BeTrue())
		})

		It("rejects principals in unknown roles", func() {
			p, err := auth.NewPrincipal("jperez", ulid.Make(), "hash", "salt")
			Expect(err).NotTo(HaveOccurred())
			err = env.Principals.Create(env.ctx, p)
			Expect(errors.Is(err, auth.ErrNotFound)).To(BeTrue())
		})

		It("replaces hash and salt together", func() {
			p := newPrincipal("jperez")
			Expect(env.Principals.Create(env.ctx, p)).To(Succeed())

			Expect(env.Principals.UpdatePassword(env.ctx, p.ID, "new-hash", "new-salt")).To(Succeed())

			got, err := env.Principals.GetByID(env.ctx, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.PasswordHash).To(Equal("new-hash"))
			Expect(got.Salt).To(Equal("new-salt"))
		})

		It("updates the active flag and last login", func() {
			p := newPrincipal("jperez")
			Expect(env.Principals.Create(env.ctx, p)).To(Succeed())

			at := time.Now().UTC().Truncate(time.Microsecond)
			Expect(env.Principals.TouchLastLogin(env.ctx, p.ID, at)).To(Succeed())
			Expect(env.Principals.SetActive(env.ctx, p.ID, false)).To(Succeed())

			got, err := env.Principals.GetByID(env.ctx, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Active).To(BeFalse())
			Expect(got.LastLoginAt).NotTo(BeNil())
			Expect(got.LastLoginAt.Equal(at)).To(BeTrue())
		})

		It("reports not found when updating a missing principal", func() {
			err := env.Principals.SetActive(env.ctx, ulid.Make(), false)
			Expect(errors.Is(err, auth.ErrNotFound)).To(BeTrue())
		})

		It("lists principals newest first", func() {
			first := newPrincipal("primero")
			first.CreatedAt = time.Now().UTC().Add(-time.Hour)
			Expect(env.Principals.Create(env.ctx, first)).To(Succeed())
			Expect(env.Principals.Create(env.ctx, newPrincipal("segundo"))).To(Succeed())

			list, err := env.Principals.List(env.ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
			Expect(list[0].Username).To(Equal("segundo"))
			Expect(list[1].Username).To(Equal("primero"))
		})
	})
})
