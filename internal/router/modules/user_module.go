package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-account-api/internal/container"
	handlers "github.com/oksasatya/user-account-api/internal/interface/http"
	"github.com/oksasatya/user-account-api/internal/interface/middleware"
)

// UserModule wires the user HTTP handlers into routes.
// Registration and login take a per-IP rate limit; the limiter is a no-op
// when redis is not configured.
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	users := rg.Group("/users")
	users.POST("/register", registerLimiter, m.Handler.Register)
	users.POST("/login", loginLimiter, m.Handler.Login)
	users.GET("", m.Handler.List)
	users.GET("/:id", m.Handler.GetByID)
	users.PUT("/:id", m.Handler.Update)
}
