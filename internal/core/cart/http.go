// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/carta/internal/core/pricing"
	requestutil "github.com/taibuivan/carta/internal/platform/request"
	"github.com/taibuivan/carta/internal/platform/respond"
)

// Handler implements the HTTP layer for shopping carts.
//
// Every route reads the owning session from the X-Session-ID header.
type Handler struct {
	service *Service
}

// NewHandler constructs a new cart [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] to be mounted under /cart.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.view)
	router.Delete("/", handler.clear)

	// ## Page Lifecycle
	router.Post("/resume", handler.resume)
	router.Post("/unload", handler.unload)

	// ## Items
	router.Post("/items", handler.add)
	router.Delete("/items/{id}", handler.remove)
	router.Put("/items/{id}/seasons", handler.setSeasons)
	router.Put("/items/{id}/payment", handler.setPaymentType)

	return router
}

// # Handlers

func (handler *Handler) view(writer http.ResponseWriter, request *http.Request) {
	sessionID, err := requestutil.SessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.View(request.Context(), sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

/*
POST /api/v1/cart/resume.

Description: Called on page load. Returns a fresh cart when the previous page
unloaded, otherwise the saved one.
*/
func (handler *Handler) resume(writer http.ResponseWriter, request *http.Request) {
	sessionID, err := requestutil.SessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Resume(request.Context(), sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

// POST /api/v1/cart/unload. Sent by the page through navigator.sendBeacon.
func (handler *Handler) unload(writer http.ResponseWriter, request *http.Request) {
	sessionID, err := requestutil.SessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.MarkUnload(request.Context(), sessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) clear(writer http.ResponseWriter, request *http.Request) {
	sessionID, err := requestutil.SessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Clear(request.Context(), sessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) add(writer http.ResponseWriter, request *http.Request) {
	sessionID, err := requestutil.SessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var item Item
	if err := requestutil.DecodeJSON(request, &item); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Add(request.Context(), sessionID, item)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	sessionID, id, ok := handler.target(writer, request)
	if !ok {
		return
	}

	view, err := handler.service.Remove(request.Context(), sessionID, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

type seasonsRequest struct {
	Seasons []int `json:"seasons"`
}

func (handler *Handler) setSeasons(writer http.ResponseWriter, request *http.Request) {
	sessionID, id, ok := handler.target(writer, request)
	if !ok {
		return
	}

	var input seasonsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.SetSeasons(request.Context(), sessionID, id, input.Seasons)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

type paymentRequest struct {
	PaymentType pricing.Method `json:"paymentType"`
}

func (handler *Handler) setPaymentType(writer http.ResponseWriter, request *http.Request) {
	sessionID, id, ok := handler.target(writer, request)
	if !ok {
		return
	}

	var input paymentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.SetPaymentType(request.Context(), sessionID, id, input.PaymentType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

// target extracts the session and item id, writing the error response itself.
func (handler *Handler) target(writer http.ResponseWriter, request *http.Request) (string, int64, bool) {
	sessionID, err := requestutil.SessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return "", 0, false
	}

	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return "", 0, false
	}
	return sessionID, id, true
}
