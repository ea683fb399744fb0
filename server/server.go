package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/elousi1010/quanlyveso-sub000/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Server is the development implementation of the remote auth service
type Server struct {
	env            string // Environment (e.g., "DEV", "PROD")
	mux            *http.ServeMux
	routes         []string
	config         config.Config
	accounts       *Accounts
	allowedOrigins []string
}

func New(config config.Config, repos Repos) (*Server, error) {
	accounts, err := NewAccounts(repos, config)
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to create accounts service")
	}

	s := &Server{
		env:            config.GetEnv(),
		mux:            http.NewServeMux(),
		config:         config,
		accounts:       accounts,
		allowedOrigins: config.GetAllowedOrigins(),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

// Accounts exposes the account service, e.g. for seeding
func (s *Server) Accounts() *Accounts {
	return s.accounts
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	colour, ok := methodColours[method]
	if !ok {
		colour = colourGray
	}
	log.Debug().Msgf("[%s] %s", colour+paddedMethod+colourReset, path)
}
