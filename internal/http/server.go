// README: API gateway; builds the gin engine, wraps it with CORS and exposes it as an http.Handler.
package http

import (
	"errors"
	"net/http"

	"github.com/rs/cors"

	"propertyapi/internal/http/handlers"
	"propertyapi/internal/infra"
	"propertyapi/internal/logger"
)

type ServerDeps struct {
	PropertyMoney  handlers.PropertyMoneyService
	Verifier       infra.TokenVerifier
	Logger         logger.Logger
	AppName        string
	AllowedOrigins []string
	Health         map[string]handlers.PingFunc
}

type Server struct {
	propertyMoney  *handlers.PropertyMoneyHandler
	health         *handlers.HealthHandler
	verifier       infra.TokenVerifier
	log            logger.Logger
	headers        handlers.HeaderUtil
	allowedOrigins []string
}

func NewServer(deps ServerDeps) (*Server, error) {
	if deps.PropertyMoney == nil {
		return nil, errors.New("property money service is required")
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}
	headers := handlers.NewHeaderUtil(deps.AppName)
	return &Server{
		propertyMoney:  handlers.NewPropertyMoneyHandler(deps.PropertyMoney, headers, deps.Logger),
		health:         handlers.NewHealthHandler(deps.Health),
		verifier:       deps.Verifier,
		log:            deps.Logger,
		headers:        headers,
		allowedOrigins: deps.AllowedOrigins,
	}, nil
}

func (s *Server) Routes() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   s.headers.ExposedHeaders(),
		AllowCredentials: !allowsAnyOrigin(s.allowedOrigins),
		MaxAge:           1800,
	})
	return c.Handler(s.router())
}

// Credentials are only allowed for an explicit origin list.
func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
