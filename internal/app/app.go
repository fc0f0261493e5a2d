package app

import (
	"log/slog"

	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Use cases
	RunPlan        *usecase.RunPlan
	VerifyContract *usecase.VerifyContract
	ListPlans      *usecase.ListPlans
	ShowPlan       *usecase.ShowPlan
	ListNetworks   *usecase.ListNetworks
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	runPlan *usecase.RunPlan,
	verifyContract *usecase.VerifyContract,
	listPlans *usecase.ListPlans,
	showPlan *usecase.ShowPlan,
	listNetworks *usecase.ListNetworks,
) (*App, error) {
	return &App{
		Config:         cfg,
		Log:            log,
		RunPlan:        runPlan,
		VerifyContract: verifyContract,
		ListPlans:      listPlans,
		ShowPlan:       showPlan,
		ListNetworks:   listNetworks,
	}, nil
}
