package workflow

import (
	"context"
	"errors"

	"github.com/workstream-hr/workstream/modules/hrm/domain/entities/department"
	hrmservices "github.com/workstream-hr/workstream/modules/hrm/services"
	"github.com/workstream-hr/workstream/modules/requests/domain/aggregates/request"
	requestservices "github.com/workstream-hr/workstream/modules/requests/services"
	"github.com/workstream-hr/workstream/modules/workflow/handlers"
	"github.com/workstream-hr/workstream/modules/workflow/infrastructure/persistence"
	"github.com/workstream-hr/workstream/modules/workflow/presentation/controllers"
	"github.com/workstream-hr/workstream/modules/workflow/services"
	"github.com/workstream-hr/workstream/pkg/application"
	"github.com/workstream-hr/workstream/pkg/configuration"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	repo := persistence.NewWorkflowRepository()

	employees := app.Service(hrmservices.EmployeeService{}).(*hrmservices.EmployeeService)
	departments := app.Service(hrmservices.DepartmentService{}).(*hrmservices.DepartmentService)
	requests := app.Service(requestservices.RequestService{}).(*requestservices.RequestService)

	engine := services.NewTransitionEngine(
		repo,
		employees,
		departmentDirectory{departments},
		requestPropagator{requests},
		conf.Workflow.StrictPropagation,
	)
	sweeper := services.NewDedupSweeper(repo, conf.Workflow.DedupWindow, conf.Logger())

	app.RegisterServices(
		services.NewWorkflowService(repo, engine, sweeper, departmentDirectory{departments}, app.EventPublisher()),
	)

	app.RegisterControllers(
		controllers.NewWorkflowAPIController(app),
	)

	handlers.RegisterWorkflowEventHandlers(app)

	return nil
}

func (m *Module) Name() string {
	return "workflow"
}

// departmentDirectory translates the hrm module's not-found sentinel into the
// engine's, so the engine never imports hrm domain errors.
type departmentDirectory struct {
	svc *hrmservices.DepartmentService
}

func (d departmentDirectory) GetName(ctx context.Context, id uint) (string, error) {
	name, err := d.svc.GetName(ctx, id)
	if errors.Is(err, department.ErrNotFound) {
		return "", errors.Join(err, services.NotFoundSideEffect)
	}
	return name, err
}

type requestPropagator struct {
	svc *requestservices.RequestService
}

func (p requestPropagator) PropagateStatus(ctx context.Context, requestID uint, status string) error {
	err := p.svc.PropagateStatus(ctx, requestID, status)
	if errors.Is(err, request.ErrNotFound) {
		return errors.Join(err, services.NotFoundSideEffect)
	}
	return err
}
