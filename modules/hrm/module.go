package hrm

import (
	"github.com/workstream-hr/workstream/modules/hrm/infrastructure/persistence"
	"github.com/workstream-hr/workstream/modules/hrm/presentation/controllers"
	"github.com/workstream-hr/workstream/modules/hrm/services"
	workflowpersistence "github.com/workstream-hr/workstream/modules/workflow/infrastructure/persistence"
	"github.com/workstream-hr/workstream/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	employeeRepo := persistence.NewEmployeeRepository()
	departmentRepo := persistence.NewDepartmentRepository()

	app.RegisterServices(
		services.NewDepartmentService(departmentRepo, app.EventPublisher()),
		// Deleting an employee purges their workflow records first; the
		// workflow repository is stateless, so sharing it here is safe.
		services.NewEmployeeService(
			employeeRepo,
			departmentRepo,
			workflowpersistence.NewWorkflowRepository(),
			app.EventPublisher(),
		),
	)

	app.RegisterControllers(
		controllers.NewEmployeeAPIController(app),
		controllers.NewDepartmentAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "hrm"
}
