// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package checkout

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/carta/internal/platform/request"
	"github.com/taibuivan/carta/internal/platform/respond"
)

// Handler implements the HTTP layer for checkout.
type Handler struct {
	service *Service
}

// NewHandler constructs a new checkout [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] to be mounted under /checkout.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", handler.submit)
	return router
}

/*
POST /api/v1/checkout.

Description: Submits the session's cart with the customer form.

Response:
  - 201: Order
  - 400: VALIDATION_ERROR with one detail per failing field
  - 503: The order channel is temporarily refusing orders
*/
func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	sessionID, err := requestutil.SessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var form Form
	if err := requestutil.DecodeJSON(request, &form); err != nil {
		respond.Error(writer, request, err)
		return
	}

	order, err := handler.service.Submit(request.Context(), sessionID, form)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, order)
}
