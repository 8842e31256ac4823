package router

import (
	userapp "github.com/oksasatya/user-account-api/internal/application"
	"github.com/oksasatya/user-account-api/internal/container"
	handlers "github.com/oksasatya/user-account-api/internal/interface/http"
	"github.com/oksasatya/user-account-api/internal/router/modules"
)

func buildUserHandler() *handlers.UserHandler {
	service := userapp.NewService(
		container.GetUserRepo(),
		container.GetAvatarStore(),
		container.GetLogger(),
	)
	return handlers.NewUserHandler(service, container.GetLogger())
}

// InitModules wires all application modules into the router registry.
// Called once during startup, after the container singletons are set.
func InitModules(r *Registry) {
	r.Add(modules.NewUserModule(buildUserHandler()))
	r.Add(modules.NewHealthModule())
}
