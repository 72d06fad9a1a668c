package modules

import (
	"github.com/workstream-hr/workstream/modules/hrm"
	"github.com/workstream-hr/workstream/modules/requests"
	"github.com/workstream-hr/workstream/modules/workflow"
	"github.com/workstream-hr/workstream/pkg/application"
)

// BuiltInModules in registration order. The workflow module resolves hrm and
// requests services from the registry, so it loads last.
var BuiltInModules = []application.Module{
	hrm.NewModule(),
	requests.NewModule(),
	workflow.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
