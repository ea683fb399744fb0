package server

import "github.com/elousi1010/quanlyveso-sub000/authapi"

// Route path constants, shared with the client
const (
	RouteAuthLogin        = authapi.RouteLogin
	RouteAuthSignup       = authapi.RouteSignup
	RouteAuthRefreshToken = authapi.RouteRefreshToken
	RouteAuthLogout       = authapi.RouteLogout
	RouteAuthProfile      = authapi.RouteProfile

	RouteHealth = "/healthz"
)
