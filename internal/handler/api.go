package handler

import (
	"github.com/liftlog/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	plans       *service.PlanService
	templates   *service.TemplateService
	sessions    *service.WorkoutSessionService
	completions *service.CompletionService
	prefs       *service.PreferenceService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB) *API {
	return &API{
		db:          db,
		plans:       service.NewPlanService(db),
		templates:   service.NewTemplateService(db),
		sessions:    service.NewWorkoutSessionService(db),
		completions: service.NewCompletionService(db),
		prefs:       service.NewPreferenceService(db),
	}
}
