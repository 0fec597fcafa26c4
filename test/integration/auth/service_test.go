// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

//go:build integration

package auth_test

import (
	"errors"
	"sync"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/dani6777-2/EcoTechSolutions/internal/access"
	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
)

var _ = Describe("Service against PostgreSQL", func() {
	var (
		svc      *auth.Service
		registry *auth.RoleRegistry
		adminID  ulid.ULID
		admin    *auth.Role
	)

	BeforeEach(func() {
		cleanupTables(env.ctx, env.pool)
		svc, registry = newService()
		admin, _, _ = seedRoles(env.ctx, registry)

		var err error
		adminID, err = svc.CreatePrincipal(env.ctx, access.AdminUsername, "admin123", admin.ID)
		Expect(err).NotTo(HaveOccurred())
	})

	It("authenticates and records the last login", func() {
		first, err := svc.Authenticate(env.ctx, "ADMIN", "admin123")
		Expect(err).NotTo(HaveOccurred())
		Expect(first.PrincipalID).To(Equal(adminID))
		Expect(first.RoleName).To(Equal("Administrador"))
		Expect(first.PermissionLevel).To(Equal(auth.LevelAdministrator))
		Expect(first.LastLoginAt).To(BeNil())

		second, err := svc.Authenticate(env.ctx, "admin", "admin123")
		Expect(err).NotTo(HaveOccurred())
		Expect(second.LastLoginAt).NotTo(BeNil())
	})

	It("classifies failed logins", func() {
		_, err := svc.Authenticate(env.ctx, "nadie", "admin123")
		Expect(auth.KindOf(err)).To(Equal(auth.KindNotFound))

		_, err = svc.Authenticate(env.ctx, "admin", "wrong-password")
		Expect(auth.KindOf(err)).To(Equal(auth.KindInvalidCredentials))
	})

	It("provisions employees into the employee role", func() {
		id, err := svc.CreateEmployeePrincipal(env.ctx, "mgarcia", "empleado1")
		Expect(err).NotTo(HaveOccurred())

		identity, err := svc.Authenticate(env.ctx, "mgarcia", "empleado1")
		Expect(err).NotTo(HaveOccurred())
		Expect(identity.PrincipalID).To(Equal(id))
		Expect(identity.PermissionLevel).To(Equal(auth.LevelEmployee))
	})

	It("admits exactly one of concurrent creates for the same username", func() {
		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			created   int
			duplicate int
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := svc.CreateEmployeePrincipal(env.ctx, "concurrente", "secreto1")
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, auth.ErrDuplicateUsername):
					duplicate++
				default:
					Fail("unexpected error: " + err.Error())
				}
			}()
		}
		wg.Wait()

		Expect(created).To(Equal(1))
		Expect(duplicate).To(Equal(workers - 1))
	})

	It("changes a password with the current one", func() {
		identity, err := svc.Authenticate(env.ctx, "admin", "admin123")
		Expect(err).NotTo(HaveOccurred())

		Expect(svc.ChangeOwnPassword(env.ctx, identity, "admin123", "nuevo-secreto")).To(Succeed())

		_, err = svc.Authenticate(env.ctx, "admin", "admin123")
		Expect(auth.KindOf(err)).To(Equal(auth.KindInvalidCredentials))
		_, err = svc.Authenticate(env.ctx, "admin", "nuevo-secreto")
		Expect(err).NotTo(HaveOccurred())
	})

	It("blocks login for deactivated principals", func() {
		id, err := svc.CreateEmployeePrincipal(env.ctx, "mgarcia", "empleado1")
		Expect(err).NotTo(HaveOccurred())

		Expect(svc.SetActive(env.ctx, id, false, adminID)).To(Succeed())
		_, err = svc.Authenticate(env.ctx, "mgarcia", "empleado1")
		Expect(errors.Is(err, auth.ErrAccountInactive)).To(BeTrue())

		Expect(svc.SetActive(env.ctx, id, true, adminID)).To(Succeed())
		_, err = svc.Authenticate(env.ctx, "mgarcia", "empleado1")
		Expect(err).NotTo(HaveOccurred())
	})

	It("refuses self deactivation", func() {
		err := svc.SetActive(env.ctx, adminID, false, adminID)
		Expect(auth.KindOf(err)).To(Equal(auth.KindSelfProtection))
	})

	It("locks a login session after the configured number of failures", func() {
		session := svc.NewLoginSession()
		for range 3 {
			_, err := session.Attempt(env.ctx, "admin", "wrong-password")
			Expect(err).To(HaveOccurred())
		}
		Expect(session.State()).To(Equal(auth.StateLockedOut))

		_, err := session.Attempt(env.ctx, "admin", "admin123")
		Expect(errors.Is(err, auth.ErrTooManyAttempts)).To(BeTrue())
	})

	It("lists principals for administrators only", func() {
		_, err := svc.CreateEmployeePrincipal(env.ctx, "mgarcia", "empleado1")
		Expect(err).NotTo(HaveOccurred())

		summaries, err := svc.ListPrincipals(env.ctx, adminID)
		Expect(err).NotTo(HaveOccurred())
		Expect(summaries).To(HaveLen(2))
	})
})
