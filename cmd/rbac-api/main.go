// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	coreconfig "github.com/plexrbac/engine/internal/config"
	"github.com/plexrbac/engine/internal/logging"
	"github.com/plexrbac/engine/internal/rbac/aggregator"
	"github.com/plexrbac/engine/internal/rbac/audit"
	"github.com/plexrbac/engine/internal/rbac/decision"
	"github.com/plexrbac/engine/internal/rbac/eval"
	"github.com/plexrbac/engine/internal/rbac/metrics"
	"github.com/plexrbac/engine/internal/rbac/quota"
	"github.com/plexrbac/engine/internal/rbac/store"
	"github.com/plexrbac/engine/internal/rbacapi/config"
	"github.com/plexrbac/engine/internal/rbacapi/handlers"
	"github.com/plexrbac/engine/internal/server"
	"github.com/plexrbac/engine/internal/version"
)

func main() {
	flags, cli := setupFlags()
	_ = flags.Parse(os.Args[1:])

	bootLogger := logging.New(config.LoggingConfig{Level: "info", Format: "json"}.ToLoggingConfig())

	loader := coreconfig.NewLoader("RBAC_API", coreconfig.WithLogger(bootLogger))
	if err := loader.LoadWithDefaults(config.Defaults(), cli.configPath); err != nil {
		bootLogger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := loader.LoadFlags(flags, map[string]string{
		"server-bind-address": "server.bind_address",
		"server-port":         "server.port",
		"database-url":        "database.url",
		"log-level":           "logging.level",
	}); err != nil {
		bootLogger.Error("failed to apply flag overrides", "error", err)
		os.Exit(1)
	}

	if cli.dumpConfig {
		if err := loader.DumpYAML(os.Stdout); err != nil {
			bootLogger.Error("failed to dump configuration", "error", err)
			os.Exit(1)
		}
		return
	}

	var cfg config.Config
	if err := loader.Unmarshal("", &cfg); err != nil {
		bootLogger.Error("failed to unmarshal configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		var validationErrs coreconfig.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, e := range validationErrs {
				bootLogger.Error("invalid configuration", "field", e.Field, "message", e.Message)
			}
		} else {
			bootLogger.Error("invalid configuration", "error", err)
		}
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.ToLoggingConfig())
	logger.Info("starting", version.GetLogKeyValues()...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := store.Open(cfg.Database.URL)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := store.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	realms := store.NewRealmRepository(db)
	resources := store.NewResourceRepository(db)
	claims := store.NewClaimRepository(db)
	claimGrants := store.NewClaimClaimableRepository(db)
	orgs := store.NewOrganizationRepository(db)
	licenses := store.NewLicensePolicyRepository(db)
	principals := store.NewPrincipalRepository(db)
	groups := store.NewGroupRepository(db)
	roles := store.NewRoleRepository(db)
	roleGrants := store.NewRoleRoleableRepository(db)
	quotas := store.NewResourceQuotaRepository(db)
	instances := store.NewResourceInstanceRepository(db)
	auditRecords := store.NewAuditRecordRepository(db)

	auditWriter := audit.New(auditRecords, logger)

	evaluator, err := eval.New()
	if err != nil {
		logger.Error("failed to build expression evaluator", slog.Any("error", err))
		os.Exit(1)
	}

	agg := aggregator.New(principals, roles, roleGrants, claims, claimGrants, licenses, resources, auditWriter)

	decisions := metrics.NewDecisions(nil)
	quotaMetrics := metrics.NewQuota(nil)

	engine := decision.New(agg, evaluator).WithMetrics(decisions)
	enforcer := quota.New(principals, licenses, instances).WithMetrics(quotaMetrics)

	handler := handlers.New(handlers.Deps{
		Realms: realms, Resources: resources, Claims: claims, ClaimGrants: claimGrants,
		Orgs: orgs, Licenses: licenses, Principals: principals, Groups: groups,
		Roles: roles, RoleGrants: roleGrants, Quotas: quotas, Instances: instances,
		AuditRecords: auditRecords,
		Audit:        auditWriter, Evaluator: evaluator, Engine: engine, Enforcer: enforcer,
		Logger: logger,
	})

	srv := server.New(cfg.Server.ToServerConfig(), handler.Routes(), logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}

type cliFlags struct {
	configPath string
	dumpConfig bool
}

func setupFlags() (*pflag.FlagSet, *cliFlags) {
	flags := pflag.NewFlagSet("rbac-api", pflag.ExitOnError)
	cli := &cliFlags{}

	flags.String("server-bind-address", config.ServerDefaults().BindAddress, "server bind address")
	flags.Int("server-port", config.ServerDefaults().Port, "server port")
	flags.String("database-url", config.DatabaseDefaults().URL, "database connection URL")
	flags.String("log-level", config.LoggingDefaults().Level, "log level (debug, info, warn, error)")

	flags.StringVar(&cli.configPath, "config", "", "path to config file")
	flags.BoolVar(&cli.dumpConfig, "dump-config", false, "print loaded configuration and exit")

	return flags, cli
}
