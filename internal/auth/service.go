// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dani6777-2/EcoTechSolutions/internal/access"
	"github.com/dani6777-2/EcoTechSolutions/pkg/errutil"
)

// DefaultMaxLoginAttempts is the number of failures a LoginSession allows.
const DefaultMaxLoginAttempts = 3

var tracer = otel.Tracer("ecotech/auth")

// dummySalt and dummyPassword feed the verification that runs when a username
// does not exist, so lookups of unknown users cost the same as wrong passwords.
//
//nolint:gosec // G101: not a credential.
const (
	dummySalt     = "ZWNvdGVjaC10aW1pbmctZXF1YWxpemF0aW9uLXNhbHQ="
	dummyPassword = "timing-equalization"
)

// Service authenticates principals and performs permission-gated account
// operations.
type Service struct {
	credentials CredentialStore
	roles       RoleRepository
	hasher      PasswordHasher
	resolver    *access.Resolver
	limiter     FailureLimiter
	maxAttempts int
	logger      *slog.Logger
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithResolver replaces the default permission resolver.
func WithResolver(resolver *access.Resolver) Option {
	return func(s *Service) {
		if resolver != nil {
			s.resolver = resolver
		}
	}
}

// WithFailureLimiter enables cross-session failure limiting.
func WithFailureLimiter(limiter FailureLimiter) Option {
	return func(s *Service) {
		if limiter != nil {
			s.limiter = limiter
		}
	}
}

// WithMaxLoginAttempts sets the per-session attempt budget. Values below 1
// keep the default.
func WithMaxLoginAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithClock overrides the time source used for login timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new Service.
func NewService(credentials CredentialStore, roles RoleRepository, hasher PasswordHasher, opts ...Option) (*Service, error) {
	if credentials == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("credential store is required")
	}
	if roles == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("role repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("password hasher is required")
	}

	s := &Service{
		credentials: credentials,
		roles:       roles,
		hasher:      hasher,
		resolver:    access.NewResolver(),
		limiter:     NoopLimiter{},
		maxAttempts: DefaultMaxLoginAttempts,
		logger:      slog.New(slog.DiscardHandler),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Resolver returns the permission resolver in use.
func (s *Service) Resolver() *access.Resolver {
	return s.resolver
}

// NewLoginSession starts a login dialogue bounded by the configured attempt budget.
func (s *Service) NewLoginSession() *LoginSession {
	return newLoginSession(s, s.maxAttempts, s.logger)
}

// Authenticate performs a single authentication attempt.
//
// Failures are checked in order: unknown username, inactive account, wrong
// password. On success the last-login time is recorded and the principal's
// current role is resolved into the returned Identity.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	ctx, span := tracer.Start(ctx, "auth.Authenticate",
		trace.WithAttributes(attribute.String("auth.username", username)))
	defer span.End()

	identity, err := s.authenticate(ctx, username, password)
	recordLoginOutcome(err)
	if err != nil {
		kind := KindOf(err)
		span.SetAttributes(attribute.String("auth.outcome", kind.String()))
		if kind == KindInfrastructure {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			errutil.LogError(s.logger, "login_failed", err, "username", username)
		} else {
			s.logger.Warn("login_failed", "username", username, "kind", kind.String())
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("auth.outcome", "success"))
	s.logger.Info("login_succeeded",
		"principal_id", identity.PrincipalID.String(),
		"username", identity.Username,
		"role", identity.RoleName)
	return identity, nil
}

func (s *Service) authenticate(ctx context.Context, username, password string) (*Identity, error) {
	blocked, err := s.limiter.Blocked(ctx, username)
	if err != nil {
		return nil, oops.Code(CodeStoreFailed).With("operation", "check failure limiter").Wrap(err)
	}
	if blocked {
		return nil, oops.Code(CodeTooManyAttempts).With("username", username).Wrap(ErrTooManyAttempts)
	}

	principal, err := s.credentials.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, storeFailure("get principal by username", err)
		}
		s.verifyDummy(password)
		s.recordFailure(ctx, username)
		return nil, oops.Code(CodeNotFound).With("username", username).Wrap(ErrNotFound)
	}

	if !principal.Active {
		s.recordFailure(ctx, username)
		return nil, oops.Code(CodeAccountInactive).
			With("principal_id", principal.ID.String()).
			Wrap(ErrAccountInactive)
	}

	valid, err := s.hasher.Verify(password, principal.Salt, principal.PasswordHash)
	if err != nil {
		return nil, oops.Code("AUTH_HASH_INVALID").
			With("principal_id", principal.ID.String()).
			Wrap(err)
	}
	if !valid {
		s.recordFailure(ctx, username)
		return nil, oops.Code(CodeInvalidCredentials).
			With("principal_id", principal.ID.String()).
			Wrap(ErrInvalidCredentials)
	}

	role, err := s.roles.GetByID(ctx, principal.RoleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, roleMissing(principal)
		}
		return nil, storeFailure("get role", err)
	}

	// Best-effort bookkeeping: the password was correct, so a failed write
	// must not turn into a failed login.
	if err := s.credentials.TouchLastLogin(ctx, principal.ID, s.now()); err != nil {
		errutil.LogWarn(s.logger, "touch last login failed", err, "principal_id", principal.ID.String())
	}
	if err := s.limiter.Reset(ctx, username); err != nil {
		errutil.LogWarn(s.logger, "reset failure limiter failed", err, "username", username)
	}
	if s.hasher.NeedsUpgrade(principal.PasswordHash) {
		s.upgradeHash(ctx, principal.ID, password)
	}

	return &Identity{
		PrincipalID:     principal.ID,
		Username:        principal.Username,
		RoleID:          role.ID,
		RoleName:        role.Name,
		PermissionLevel: role.PermissionLevel,
		LastLoginAt:     principal.LastLoginAt,
	}, nil
}

func (s *Service) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword, dummySalt)
		if err == nil {
			s.dummyHash = hash
		}
	})
	if s.dummyHash == "" {
		return
	}
	//nolint:errcheck // result is discarded; only the elapsed time matters
	_, _ = s.hasher.Verify(password, dummySalt, s.dummyHash)
}

func (s *Service) recordFailure(ctx context.Context, username string) {
	if err := s.limiter.RecordFailure(ctx, username); err != nil {
		errutil.LogWarn(s.logger, "record login failure failed", err, "username", username)
	}
}

func (s *Service) upgradeHash(ctx context.Context, id ulid.ULID, password string) {
	salt, hash, err := s.newCredential(password)
	if err != nil {
		errutil.LogWarn(s.logger, "password hash upgrade failed", err, "principal_id", id.String())
		return
	}
	if err := s.credentials.UpdatePassword(ctx, id, hash, salt); err != nil {
		errutil.LogWarn(s.logger, "password hash upgrade failed", err, "principal_id", id.String())
		return
	}
	PasswordChanges.WithLabelValues("upgrade").Inc()
	s.logger.Info("password_hash_upgraded", "principal_id", id.String())
}

// newCredential returns a fresh salt and the hash of password under it.
func (s *Service) newCredential(password string) (salt, hash string, err error) {
	salt, err = s.hasher.GenerateSalt()
	if err != nil {
		return "", "", err
	}
	hash, err = s.hasher.Hash(password, salt)
	if err != nil {
		return "", "", err
	}
	return salt, hash, nil
}

// CreatePrincipal registers a new active principal in roleID and returns its ID.
// The role must exist and be active.
func (s *Service) CreatePrincipal(ctx context.Context, username, password string, roleID ulid.ULID) (id ulid.ULID, err error) {
	ctx, span := tracer.Start(ctx, "auth.CreatePrincipal",
		trace.WithAttributes(attribute.String("auth.username", username)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := ValidateUsername(username); err != nil {
		return ulid.ULID{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return ulid.ULID{}, err
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ulid.ULID{}, oops.Code(CodeNotFound).With("role_id", roleID.String()).Wrap(ErrNotFound)
		}
		return ulid.ULID{}, storeFailure("get role", err)
	}
	if !role.Active {
		return ulid.ULID{}, oops.Code(CodeNotFound).
			With("role_id", roleID.String()).
			With("reason", "role is inactive").
			Wrap(ErrNotFound)
	}

	if _, err := s.credentials.GetByUsername(ctx, username); err == nil {
		return ulid.ULID{}, usernameTaken(username)
	} else if !errors.Is(err, ErrNotFound) {
		return ulid.ULID{}, storeFailure("get principal by username", err)
	}

	salt, hash, err := s.newCredential(password)
	if err != nil {
		return ulid.ULID{}, err
	}
	principal, err := NewPrincipal(username, role.ID, hash, salt)
	if err != nil {
		return ulid.ULID{}, err
	}

	if err := s.credentials.Create(ctx, principal); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			return ulid.ULID{}, usernameTaken(username)
		}
		return ulid.ULID{}, storeFailure("create principal", err)
	}

	s.logger.Info("principal_created",
		"principal_id", principal.ID.String(),
		"username", principal.Username,
		"role", role.Name)
	return principal.ID, nil
}

// CreateEmployeePrincipal registers a principal in the single active
// employee-level role.
func (s *Service) CreateEmployeePrincipal(ctx context.Context, username, password string) (ulid.ULID, error) {
	if err := ValidateUsername(username); err != nil {
		return ulid.ULID{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return ulid.ULID{}, err
	}
	role, err := employeeRole(ctx, s.roles)
	if err != nil {
		return ulid.ULID{}, err
	}
	return s.CreatePrincipal(ctx, username, password, role.ID)
}

func roleMissing(principal *Principal) error {
	return oops.Code(CodeRoleMissing).
		With("principal_id", principal.ID.String()).
		With("role_id", principal.RoleID.String()).
		Wrap(ErrRoleMissing)
}

func usernameTaken(username string) error {
	return oops.Code(CodeUsernameTaken).With("username", username).Wrap(ErrDuplicateUsername)
}

// ChangePassword replaces a principal's password with a freshly salted hash.
// When oldPassword is non-nil it must match the current password; a nil
// oldPassword is an administrative reset.
func (s *Service) ChangePassword(ctx context.Context, principalID ulid.ULID, oldPassword *string, newPassword string) (err error) {
	ctx, span := tracer.Start(ctx, "auth.ChangePassword",
		trace.WithAttributes(
			attribute.String("auth.principal_id", principalID.String()),
			attribute.Bool("auth.reset", oldPassword == nil),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	principal, err := s.credentials.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeNotFound).With("principal_id", principalID.String()).Wrap(ErrNotFound)
		}
		return storeFailure("get principal", err)
	}

	mode := "reset"
	if oldPassword != nil {
		mode = "self"
		valid, err := s.hasher.Verify(*oldPassword, principal.Salt, principal.PasswordHash)
		if err != nil {
			return oops.Code("AUTH_HASH_INVALID").With("principal_id", principalID.String()).Wrap(err)
		}
		if !valid {
			return oops.Code(CodeInvalidCredentials).
				With("principal_id", principalID.String()).
				Wrap(ErrInvalidCredentials)
		}
	}

	salt, hash, err := s.newCredential(newPassword)
	if err != nil {
		return err
	}
	if err := s.credentials.UpdatePassword(ctx, principalID, hash, salt); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeNotFound).With("principal_id", principalID.String()).Wrap(ErrNotFound)
		}
		return storeFailure("update password", err)
	}

	PasswordChanges.WithLabelValues(mode).Inc()
	s.logger.Info("password_changed", "principal_id", principalID.String(), "mode", mode)
	return nil
}

// ChangeOwnPassword changes the signed-in principal's password after
// verifying the current one.
func (s *Service) ChangeOwnPassword(ctx context.Context, identity *Identity, oldPassword, newPassword string) error {
	if err := s.Authorize(ctx, identity, access.OpChangeOwnPassword); err != nil {
		return err
	}
	return s.ChangePassword(ctx, identity.PrincipalID, &oldPassword, newPassword)
}

// ResetPassword sets targetID's password without the old one. The requester
// must be allowed to manage users.
func (s *Service) ResetPassword(ctx context.Context, requesterID, targetID ulid.ULID, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	requester, err := s.identityFor(ctx, requesterID)
	if err != nil {
		return err
	}
	if err := s.Authorize(ctx, requester, access.OpManageUsers); err != nil {
		return err
	}
	return s.ChangePassword(ctx, targetID, nil, newPassword)
}

// SetActiveOption configures SetActive.
type SetActiveOption func(*setActiveConfig)

type setActiveConfig struct {
	confirmed bool
}

// WithConfirmation confirms a deactivation that needs explicit confirmation.
func WithConfirmation() SetActiveOption {
	return func(c *setActiveConfig) { c.confirmed = true }
}

// SetActive activates or deactivates principalID on behalf of requesterID.
//
// A principal can never deactivate itself. Otherwise the requester must be
// allowed to manage users, and deactivating the admin account requires
// WithConfirmation.
func (s *Service) SetActive(ctx context.Context, principalID ulid.ULID, active bool, requesterID ulid.ULID, opts ...SetActiveOption) (err error) {
	ctx, span := tracer.Start(ctx, "auth.SetActive",
		trace.WithAttributes(
			attribute.String("auth.principal_id", principalID.String()),
			attribute.String("auth.requester_id", requesterID.String()),
			attribute.Bool("auth.active", active),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var cfg setActiveConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if !active {
		if err := access.CheckSelfDeactivation(requesterID, principalID); err != nil {
			return err
		}
	}

	requester, err := s.identityFor(ctx, requesterID)
	if err != nil {
		return err
	}
	if err := s.Authorize(ctx, requester, access.OpManageUsers); err != nil {
		return err
	}

	target, err := s.credentials.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeNotFound).With("principal_id", principalID.String()).Wrap(ErrNotFound)
		}
		return storeFailure("get principal", err)
	}

	if !active {
		if err := access.CheckDeactivation(requesterID, principalID, target.Username, cfg.confirmed); err != nil {
			return err
		}
	}

	if err := s.credentials.SetActive(ctx, principalID, active); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeNotFound).With("principal_id", principalID.String()).Wrap(ErrNotFound)
		}
		return storeFailure("set active", err)
	}

	PrincipalStateChanges.WithLabelValues(strconv.FormatBool(active)).Inc()
	s.logger.Info("principal_state_changed",
		"principal_id", principalID.String(),
		"username", target.Username,
		"active", active,
		"requester_id", requesterID.String())
	return nil
}

// ResolveCapabilities returns the operations level may invoke.
func (s *Service) ResolveCapabilities(level int) []access.Operation {
	return s.resolver.Capabilities(level)
}

// Authorize returns a PermissionDenied error unless identity may invoke op.
func (s *Service) Authorize(_ context.Context, identity *Identity, op access.Operation) error {
	if identity == nil {
		recordAuthorization(op.String(), false)
		return oops.Code("ACCESS_PERMISSION_DENIED").
			With("operation", op.String()).
			Wrap(access.ErrPermissionDenied)
	}
	err := s.resolver.Require(identity.PermissionLevel, op)
	recordAuthorization(op.String(), err == nil)
	if err != nil {
		s.logger.Warn("permission_denied",
			"principal_id", identity.PrincipalID.String(),
			"operation", op.String(),
			"level", identity.PermissionLevel)
	}
	return err
}

// ListPrincipals returns every principal without secrets, newest first.
// The requester must be allowed to manage users.
func (s *Service) ListPrincipals(ctx context.Context, requesterID ulid.ULID) ([]PrincipalSummary, error) {
	requester, err := s.identityFor(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if err := s.Authorize(ctx, requester, access.OpManageUsers); err != nil {
		return nil, err
	}

	principals, err := s.credentials.List(ctx)
	if err != nil {
		return nil, storeFailure("list principals", err)
	}

	roleNames := make(map[ulid.ULID]string)
	summaries := make([]PrincipalSummary, 0, len(principals))
	for _, p := range principals {
		summary := p.Summary()
		name, ok := roleNames[p.RoleID]
		if !ok {
			role, err := s.roles.GetByID(ctx, p.RoleID)
			switch {
			case err == nil:
				name = role.Name
			case errors.Is(err, ErrNotFound):
				name = ""
			default:
				return nil, storeFailure("get role", err)
			}
			roleNames[p.RoleID] = name
		}
		summary.RoleName = name
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// identityFor resolves an active principal and its current role.
func (s *Service) identityFor(ctx context.Context, id ulid.ULID) (*Identity, error) {
	principal, err := s.credentials.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeNotFound).With("principal_id", id.String()).Wrap(ErrNotFound)
		}
		return nil, storeFailure("get principal", err)
	}
	if !principal.Active {
		return nil, oops.Code(CodeAccountInactive).With("principal_id", id.String()).Wrap(ErrAccountInactive)
	}
	role, err := s.roles.GetByID(ctx, principal.RoleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, roleMissing(principal)
		}
		return nil, storeFailure("get role", err)
	}
	return &Identity{
		PrincipalID:     principal.ID,
		Username:        principal.Username,
		RoleID:          role.ID,
		RoleName:        role.Name,
		PermissionLevel: role.PermissionLevel,
		LastLoginAt:     principal.LastLoginAt,
	}, nil
}
