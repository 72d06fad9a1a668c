package requests

import (
	hrmpersistence "github.com/workstream-hr/workstream/modules/hrm/infrastructure/persistence"
	"github.com/workstream-hr/workstream/modules/requests/infrastructure/persistence"
	"github.com/workstream-hr/workstream/modules/requests/presentation/controllers"
	"github.com/workstream-hr/workstream/modules/requests/services"
	"github.com/workstream-hr/workstream/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewRequestService(
			persistence.NewRequestRepository(),
			hrmpersistence.NewEmployeeRepository(),
			app.EventPublisher(),
		),
	)

	app.RegisterControllers(
		controllers.NewRequestAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "requests"
}
