// README: HTTP router registration.
package http

import (
	"github.com/gin-gonic/gin"

	"propertyapi/internal/http/handlers"
	"propertyapi/internal/http/middleware"
)

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(s.log), middleware.Recovery(s.log))

	r.GET("/health", s.health.Check)

	api := r.Group("/api")
	if s.verifier != nil {
		api.Use(middleware.Auth(s.verifier))
	}
	pm := s.propertyMoney
	api.POST("/property-monies", pm.Create)
	api.PUT("/property-monies", pm.Update)
	api.GET("/property-monies", pm.List)
	api.GET("/property-monies/:id", pm.Get)
	api.DELETE("/property-monies/:id", pm.Delete)

	r.NoRoute(handlers.NoRoute)
	return r
}
