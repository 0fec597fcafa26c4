// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
	"github.com/dani6777-2/EcoTechSolutions/internal/config"
	"github.com/dani6777-2/EcoTechSolutions/internal/logging"
	"github.com/dani6777-2/EcoTechSolutions/internal/observability"
	"github.com/dani6777-2/EcoTechSolutions/pkg/errutil"
)

// env is the configuration every command starts from.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	prompter Prompter
}

// app adds the services of commands that touch accounts.
type app struct {
	*env
	backend  *Backend
	service  *auth.Service
	registry *auth.RoleRegistry
	policy   auth.MessagePolicy
}

func (d *Deps) loadEnv(cmd *cobra.Command) (*env, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if path == "" {
		path = d.DefaultConfigFile()
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.Setup("ecotech", version, logging.Options{Format: cfg.Log.Format, Level: level}, cmd.ErrOrStderr())

	return &env{cfg: cfg, logger: logger, prompter: d.NewPrompter(cmd)}, nil
}

func (d *Deps) openApp(cmd *cobra.Command, e *env) (*app, error) {
	backend, err := d.OpenBackend(cmd.Context(), e.cfg, e.logger)
	if err != nil {
		return nil, err
	}

	hasher, err := auth.NewHasher(e.cfg.Auth.Hasher)
	if err != nil {
		backend.Close()
		return nil, err
	}
	opts := []auth.Option{
		auth.WithLogger(e.logger),
		auth.WithMaxLoginAttempts(e.cfg.Auth.MaxLoginAttempts),
	}
	if backend.Limiter != nil {
		opts = append(opts, auth.WithFailureLimiter(backend.Limiter))
	}
	service, err := auth.NewService(backend.Credentials, backend.Roles, hasher, opts...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	registry, err := auth.NewRoleRegistryWithLogger(backend.Roles, e.logger)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &app{
		env:      e,
		backend:  backend,
		service:  service,
		registry: registry,
		policy:   auth.MessagePolicy{DiscloseReason: e.cfg.Auth.DiscloseFailureReason},
	}, nil
}

// runEnv wraps a command that needs configuration only. It records the
// command metric and exports the textfile when one is configured.
func (d *Deps) runEnv(name string, fn func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := d.loadEnv(cmd)
		if err != nil {
			return err
		}

		err = fn(cmd, e, args)
		observability.RecordCommand(name, err)
		if path := e.cfg.Metrics.Textfile; path != "" {
			if exportErr := observability.WriteTextfile(path, observability.NewRegistry()); exportErr != nil {
				errutil.LogWarn(e.logger, "metrics export failed", exportErr)
			}
		}
		if err != nil {
			errutil.LogError(e.logger, "command failed", err, "command", name)
		}
		return present(auth.MessagePolicy{DiscloseReason: e.cfg.Auth.DiscloseFailureReason}, err)
	}
}

// run wraps a command that works against the account stores.
func (d *Deps) run(name string, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return d.runEnv(name, func(cmd *cobra.Command, e *env, args []string) error {
		a, err := d.openApp(cmd, e)
		if err != nil {
			return err
		}
		defer a.backend.Close()
		return fn(cmd, a, args)
	})
}

// operator signs in the user named by --as.
func (a *app) operator(cmd *cobra.Command) (*auth.Identity, error) {
	username, err := cmd.Flags().GetString("as")
	if err != nil {
		return nil, oops.Code("CLI_INVALID_ARGUMENT").Wrap(err)
	}
	if strings.TrimSpace(username) == "" {
		return nil, oops.Code("CLI_OPERATOR_REQUIRED").Errorf("this command requires --as <username>")
	}
	return a.authenticate(cmd, username)
}

// authenticate runs a login dialogue until it succeeds or the session
// locks. An empty username prompts for one on every attempt.
func (a *app) authenticate(cmd *cobra.Command, username string) (*auth.Identity, error) {
	out := cmd.ErrOrStderr()
	session := a.service.NewLoginSession()

	for {
		name := username
		if name == "" {
			line, err := a.prompter.Line("Username: ")
			if err != nil {
				return nil, err
			}
			name = line
		}

		var password string
		if strings.TrimSpace(name) != "" {
			secret, err := a.prompter.Secret(fmt.Sprintf("Password for %s: ", name))
			if err != nil {
				return nil, err
			}
			password = secret
		}

		identity, err := session.Attempt(cmd.Context(), name, password)
		if err == nil {
			return identity, nil
		}

		switch kind := auth.KindOf(err); {
		case session.State() == auth.StateLockedOut:
			fmt.Fprintln(out, a.policy.Message(err))
			return nil, oops.Code(auth.CodeTooManyAttempts).
				With("attempts", session.Failures()).
				Wrap(auth.ErrTooManyAttempts)
		case kind == auth.KindValidation && username == "":
			fmt.Fprintln(out, a.policy.Message(err))
			continue
		case kind == auth.KindNotFound, kind == auth.KindAccountInactive, kind == auth.KindInvalidCredentials:
			fmt.Fprintln(out, a.policy.Message(err))
			fmt.Fprintf(out, "attempts remaining: %d\n", session.Remaining())
		default:
			return nil, err
		}
	}
}

// newPassword prompts for a password twice and checks both match.
func (a *app) newPassword(prompt string) (string, error) {
	password, err := a.prompter.Secret(prompt)
	if err != nil {
		return "", err
	}
	confirmation, err := a.prompter.Secret("Confirm password: ")
	if err != nil {
		return "", err
	}
	if err := auth.ValidatePasswordConfirmation(password, confirmation); err != nil {
		return "", err
	}
	return password, nil
}

// cliError carries the user-facing text of a domain failure.
type cliError struct {
	err     error
	message string
}

func (e *cliError) Error() string { return e.message }
func (e *cliError) Unwrap() error { return e.err }

// present replaces domain errors with their user-facing message.
// Infrastructure errors keep their detail for the operator. Login failures
// are reported inside the login dialogue, so a not-found error reaching here
// names a missing role or target and keeps its own text.
func present(policy auth.MessagePolicy, err error) error {
	switch auth.KindOf(err) {
	case auth.KindNone:
		return nil
	case auth.KindInfrastructure, auth.KindNotFound:
		return err
	default:
		return &cliError{err: err, message: policy.Message(err)}
	}
}
