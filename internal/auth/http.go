// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/carta/internal/platform/middleware"
	requestutil "github.com/taibuivan/carta/internal/platform/request"
	"github.com/taibuivan/carta/internal/platform/respond"
	"github.com/taibuivan/carta/internal/platform/sec"
	"github.com/taibuivan/carta/internal/platform/validate"
)

// Handler implements the admin sign-in endpoint.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] to be mounted at /admin/login.
//
// # Endpoints
//   - POST / : Authenticates and returns a JWT.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", handler.login)
	return router
}

// loginRequest represents the JSON payload for an admin login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// login handles POST /api/v1/admin/login requests.
//
// # Returns
//   - Writes HTTP 200 with the access token on success.
//   - Writes HTTP 400 Bad Request if a field is missing.
//   - Writes HTTP 401 Unauthorized if credentials do not match.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("username", input.Username).
		Required("password", input.Password).
		MaxLen("password", input.Password, sec.MaxPasswordBytes)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Username:  input.Username,
		Password:  input.Password,
		IPAddress: middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}
