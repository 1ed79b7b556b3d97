// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package settings

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/carta/internal/core/notification"
	"github.com/taibuivan/carta/internal/core/pricing"
	requestutil "github.com/taibuivan/carta/internal/platform/request"
	"github.com/taibuivan/carta/internal/platform/respond"
	"github.com/taibuivan/carta/internal/platform/validate"
	"github.com/taibuivan/carta/pkg/convert"
	"github.com/taibuivan/carta/pkg/pagination"
	"github.com/taibuivan/carta/pkg/pointer"
	"github.com/taibuivan/carta/pkg/query"
	"github.com/taibuivan/carta/pkg/slice"
)

// maxSnapshotBytes bounds an uploaded backup.
const maxSnapshotBytes = 8 << 20

// # Handler Implementation

// Handler implements the HTTP layer for storefront configuration.
//
// # Routing Strategy
//
//   - Public (v1): Prices, active zones and the novel catalog. Shoppers never
//     see notifications or storage failures.
//   - Admin (v1): Full read/write access, mounted behind the admin role.
//
// Updating or deleting an unknown zone or novel answers 204 No Content, the
// same as a successful delete, so retries are safe.
type Handler struct {
	store *Store
}

// NewHandler constructs a new settings [Handler].
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// PublicRoutes returns the shopper-facing read endpoints.
func (handler *Handler) PublicRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/prices", handler.getPrices)
	router.Get("/prices/quote", handler.quote)
	router.Get("/zones", handler.listActiveZones)
	router.Get("/novels", handler.listActiveNovels)
	router.Get("/novels/shelves", handler.novelShelves)

	return router
}

// AdminRoutes returns the configuration panel endpoints.
//
// # Security
//
// The caller must wrap this router with [middleware.RequireRole] for [sec.RoleAdmin].
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	// ## Prices
	router.Get("/prices", handler.getPrices)
	router.Put("/prices", handler.updatePrices)

	// ## Delivery Zones
	router.Get("/zones", handler.listZones)
	router.Post("/zones", handler.createZone)
	router.Put("/zones/{id}", handler.updateZone)
	router.Delete("/zones/{id}", handler.deleteZone)

	// ## Novels
	router.Get("/novels", handler.listNovels)
	router.Post("/novels", handler.createNovel)
	router.Put("/novels/{id}", handler.updateNovel)
	router.Delete("/novels/{id}", handler.deleteNovel)

	// ## Notifications
	router.Get("/notifications", handler.listNotifications)
	router.Post("/notifications", handler.recordNotification)
	router.Delete("/notifications", handler.clearNotifications)

	// ## Backup & Restore
	router.Get("/backup", handler.exportBackup)
	router.Get("/state", handler.exportState)
	router.Put("/state", handler.loadState)

	return router
}

// # Prices

/*
GET /api/v1/prices.

Response:
  - 200: pricing.Config
*/
func (handler *Handler) getPrices(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.store.Prices())
}

/*
PUT /api/v1/admin/prices.

Request:
  - Body: pricing.Config (All four fields; the legacy "seriesPrice" key is accepted)

Response:
  - 200: pricing.Config
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) updatePrices(writer http.ResponseWriter, request *http.Request) {
	var input pricing.Config
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.store.UpdatePrices(request.Context(), input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.store.Prices())
}

// quoteResponse is the price card for one item.
type quoteResponse struct {
	Kind  pricing.Kind  `json:"kind"`
	Units int           `json:"units"`
	Quote pricing.Quote `json:"quote"`
	Price pricing.Money `json:"price"`
}

/*
GET /api/v1/prices/quote.

Description: Prices one item with the live configuration.

Request:
  - kind: string (movie, tv, novel)
  - units: int (Seasons or chapters)
  - season: []int (Alternative to units for tv; duplicates are ignored)
  - method: string (cash, transfer; defaults to cash)

Response:
  - 200: quoteResponse
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) quote(writer http.ResponseWriter, request *http.Request) {
	params := request.URL.Query()

	item := pricing.Priced{
		Kind:   pricing.Kind(params.Get("kind")),
		Units:  convert.IntOr(params.Get("units"), 0),
		Method: pricing.Method(params.Get("method")),
	}
	if item.Method == "" {
		item.Method = pricing.MethodCash
	}
	if seasons := query.Ints(params["season"]); len(seasons) > 0 {
		slices.Sort(seasons)
		item.Units = len(slices.Compact(seasons))
	}

	validator := &validate.Validator{}
	validator.
		OneOf("kind", string(item.Kind), string(pricing.KindMovie), string(pricing.KindTV), string(pricing.KindNovel)).
		OneOf("method", string(item.Method), string(pricing.MethodCash), string(pricing.MethodTransfer)).
		AtLeast("units", item.Units, 0)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	cfg := handler.store.Prices()
	respond.OK(writer, quoteResponse{
		Kind:  item.Kind,
		Units: item.Units,
		Quote: pricing.QuoteFor(cfg, item),
		Price: pricing.Price(cfg, item),
	})
}

// # Delivery Zones

type zoneRequest struct {
	Name   string        `json:"name"`
	Cost   pricing.Money `json:"cost"`
	Active *bool         `json:"active"`
}

/*
GET /api/v1/zones.

Response:
  - 200: []Zone (Active zones only)
*/
func (handler *Handler) listActiveZones(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.store.ActiveZones())
}

/*
GET /api/v1/admin/zones.

Request:
  - active: bool (Optional; "true" keeps only active zones)
*/
func (handler *Handler) listZones(writer http.ResponseWriter, request *http.Request) {
	if convert.Bool(request.URL.Query().Get("active")) {
		respond.OK(writer, handler.store.ActiveZones())
		return
	}
	respond.OK(writer, handler.store.Zones())
}

/*
POST /api/v1/admin/zones.

Description: New zones start active; "active" is only honoured on update.

Response:
  - 201: Zone
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) createZone(writer http.ResponseWriter, request *http.Request) {
	var input zoneRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	zone, err := handler.store.AddZone(request.Context(), input.Name, input.Cost)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, zone)
}

/*
PUT /api/v1/admin/zones/{id}.

Response:
  - 200: Zone
  - 204: Unknown id (no-op)
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) updateZone(writer http.ResponseWriter, request *http.Request) {
	var input zoneRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := ID(requestutil.Param(request, "id"))
	current, _ := handler.store.Zone(id)

	updated, err := handler.store.UpdateZone(request.Context(), Zone{
		ID:     id,
		Name:   input.Name,
		Cost:   input.Cost,
		Active: pointer.Fallback(input.Active, current.Active),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !updated {
		respond.NoContent(writer)
		return
	}

	zone, _ := handler.store.Zone(id)
	respond.OK(writer, zone)
}

/*
DELETE /api/v1/admin/zones/{id}.

Response:
  - 204: Deleted, or unknown id
*/
func (handler *Handler) deleteZone(writer http.ResponseWriter, request *http.Request) {
	handler.store.DeleteZone(request.Context(), ID(requestutil.Param(request, "id")))
	respond.NoContent(writer)
}

// # Novels

// novelView decorates a novel with its live price.
type novelView struct {
	Novel
	Price pricing.Quote `json:"price"`
}

func (handler *Handler) decorate(novels []Novel) []novelView {
	cfg := handler.store.Prices()
	return slice.Map(novels, func(novel Novel) novelView {
		return novelView{Novel: novel, Price: novel.Price(cfg)}
	})
}

/*
GET /api/v1/novels.

Response:
  - 200: []novelView (Active novels with cash and transfer prices)
*/
func (handler *Handler) listActiveNovels(writer http.ResponseWriter, request *http.Request) {
	active := slice.Filter(handler.store.Novels(), func(novel Novel) bool { return novel.Active })
	respond.OK(writer, handler.decorate(active))
}

/*
GET /api/v1/novels/shelves.

Response:
  - 200: {airing: []novelView, finished: []novelView}
*/
func (handler *Handler) novelShelves(writer http.ResponseWriter, request *http.Request) {
	shelves := handler.store.NovelsByStatus()
	respond.OK(writer, map[string][]novelView{
		"airing":   handler.decorate(shelves.Airing),
		"finished": handler.decorate(shelves.Finished),
	})
}

// GET /api/v1/admin/novels.
func (handler *Handler) listNovels(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.decorate(handler.store.Novels()))
}

/*
POST /api/v1/admin/novels.

Response:
  - 201: Novel
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) createNovel(writer http.ResponseWriter, request *http.Request) {
	var input NovelInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	novel, err := handler.store.AddNovel(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, novel)
}

/*
PUT /api/v1/admin/novels/{id}.

Response:
  - 200: Novel
  - 204: Unknown id (no-op)
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) updateNovel(writer http.ResponseWriter, request *http.Request) {
	var input NovelInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := ID(requestutil.Param(request, "id"))
	updated, err := handler.store.UpdateNovel(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !updated {
		respond.NoContent(writer)
		return
	}

	novel, _ := handler.store.Novel(id)
	respond.OK(writer, novel)
}

// DELETE /api/v1/admin/novels/{id}.
func (handler *Handler) deleteNovel(writer http.ResponseWriter, request *http.Request) {
	handler.store.DeleteNovel(request.Context(), ID(requestutil.Param(request, "id")))
	respond.NoContent(writer)
}

// # Notifications

/*
GET /api/v1/admin/notifications.

Request:
  - page: int
  - limit: int

Response:
  - 200: []notification.Notification (Newest first, paginated)
*/
func (handler *Handler) listNotifications(writer http.ResponseWriter, request *http.Request) {
	page, meta := pagination.Page(handler.store.Notifications(), pagination.FromRequest(request))
	respond.Paginated(writer, page, meta)
}

/*
POST /api/v1/admin/notifications.

Request:
  - Body: notification.Entry

Response:
  - 201: notification.Entry (As recorded)
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) recordNotification(writer http.ResponseWriter, request *http.Request) {
	var input notification.Entry
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.store.RecordNotification(request.Context(), input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

// DELETE /api/v1/admin/notifications.
func (handler *Handler) clearNotifications(writer http.ResponseWriter, request *http.Request) {
	handler.store.ClearNotifications(request.Context())
	respond.NoContent(writer)
}

// # Backup & Restore

/*
GET /api/v1/admin/backup.

Description: Downloads the whole configuration as a JSON attachment and
records the export time.

Response:
  - 200: Backup
*/
func (handler *Handler) exportBackup(writer http.ResponseWriter, request *http.Request) {
	backup := handler.store.RecordBackup(request.Context())

	filename := fmt.Sprintf("carta-backup-%s.json", backup.ExportTimestamp.UTC().Format("2006-01-02"))
	respond.Attachment(writer, filename, backup)
}

// GET /api/v1/admin/state.
func (handler *Handler) exportState(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.store.ExportSnapshot())
}

/*
PUT /api/v1/admin/state.

Description: Restores a snapshot or backup document. Missing sections fall
back to defaults; invalid ones reject the whole upload.

Response:
  - 200: Snapshot
  - 400: VALIDATION_ERROR listing every invalid field
*/
func (handler *Handler) loadState(writer http.ResponseWriter, request *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(writer, request.Body, maxSnapshotBytes))
	if err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	snapshot, err := DecodeSnapshot(body)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			respond.Error(writer, request, decodeErr.AppError())
			return
		}
		respond.Error(writer, request, err)
		return
	}

	if err := handler.store.LoadSnapshot(request.Context(), snapshot); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.store.ExportSnapshot())
}
