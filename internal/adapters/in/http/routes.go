package http

import (
	"github.com/labstack/echo/v4"

	"orderflow/internal/generated/servers"
)

func registerRoutes(e *echo.Echo, server *Server) {
	servers.RegisterHandlers(e, server)
}
