package policyengine

import (
	"log/slog"

	httpadapter "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/adapters/http"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/adapters/memory"
	application "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/application"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/valueobjects"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/ports"
)

// Module is the policy-engine composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports required by NewModule.
type Dependencies struct {
	Repository  ports.Repository
	Heights     ports.HeightSource
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// NewModule wires the engine operations and transport handler using explicit
// ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:        deps.Repository,
		Heights:     deps.Heights,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters. The owner principal is fixed at construction, like a deploy.
func NewInMemoryModule(owner valueobjects.Principal, logger *slog.Logger) Module {
	store := memory.NewStore(owner)
	module := NewModule(Dependencies{
		Repository:  store,
		Heights:     store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
