// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"marketplace_onboarding/internal/app"
	"marketplace_onboarding/internal/audit"
	"marketplace_onboarding/internal/config"
	"marketplace_onboarding/internal/documents"
	"marketplace_onboarding/internal/draft"
	"marketplace_onboarding/internal/jobs"
	"marketplace_onboarding/internal/marketplace"
	"marketplace_onboarding/internal/notification"
	"marketplace_onboarding/internal/registration"
	"marketplace_onboarding/internal/session"

	"github.com/google/wire"
)

var platformSet = wire.NewSet(
	provideLogger,
	provideDatabase,
)

var draftSet = wire.NewSet(
	draft.NewCodec,
	draft.NewStore,
)

var documentSet = wire.NewSet(
	marketplace.NewClient,
	documents.NewGORMRepository,
	documents.NewUploader,
	documents.NewSweeper,
)

var registrationSet = wire.NewSet(
	provideStaging,
	provideAttemptRecorder,
	notification.NewNotifier,
	session.NewJWTService,
	registration.NewService,
	wire.Bind(new(registration.Service), new(*registration.ServiceImplementation)),
	wire.Bind(new(registration.MarketplaceAPI), new(*marketplace.Client)),
	registration.NewHandler,
)

var auditSet = wire.NewSet(
	audit.NewGORMRepository,
	audit.NewService,
	audit.NewHandler,
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		platformSet,
		draftSet,
		documentSet,
		auditSet,
		registrationSet,
		jobs.NewDocumentSweepJob,
		app.NewServer,
	)
	return nil, nil, nil
}

// initializeSweepJob builds only what a one-off sweep needs.
func initializeSweepJob(cfg *config.Config) (*jobs.DocumentSweepJob, func(), error) {
	wire.Build(
		platformSet,
		draftSet,
		documents.NewGORMRepository,
		documents.NewSweeper,
		jobs.NewDocumentSweepJob,
	)
	return nil, nil, nil
}
