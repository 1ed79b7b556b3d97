// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/carta/internal/core/pricing"
	"github.com/taibuivan/carta/internal/platform/constants"
	"github.com/taibuivan/carta/internal/platform/ctxutil"
	"github.com/taibuivan/carta/pkg/slice"
)

// eventBuffer is how many changes may queue for one slow client.
const eventBuffer = 16

// publicState is the shopper-visible part of a snapshot.
type publicState struct {
	Kind          ChangeKind     `json:"kind"`
	Prices        pricing.Config `json:"prices"`
	DeliveryZones []Zone         `json:"deliveryZones"`
	Novels        []Novel        `json:"novels"`
	At            time.Time      `json:"at"`
}

func publicView(kind ChangeKind, snapshot Snapshot, at time.Time) publicState {
	return publicState{
		Kind:          kind,
		Prices:        snapshot.Prices,
		DeliveryZones: slice.Filter(snapshot.DeliveryZones, func(zone Zone) bool { return zone.Active }),
		Novels:        slice.Filter(snapshot.Novels, func(novel Novel) bool { return novel.Active }),
		At:            at,
	}
}

/*
EventStream handles GET /api/v1/events.

Description: Server-Sent Events feed of configuration changes. The first
event ("config.snapshot") carries the current state; every later event
("config.changed") carries the full public state after one change, so a
client that misses an event is repaired by the next one. Subscription ends
when the client disconnects.

Response:
  - 200: text/event-stream
*/
func (handler *Handler) EventStream(writer http.ResponseWriter, request *http.Request) {
	logger := ctxutil.Logger(request.Context())
	controller := http.NewResponseController(writer)

	// Long-lived response; lift the server write deadline
	if err := controller.SetWriteDeadline(time.Time{}); err != nil {
		logger.Debug("event_stream_deadline_unsupported", slog.Any("error", err))
	}

	headers := writer.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	writer.WriteHeader(http.StatusOK)

	events := make(chan Change, eventBuffer)
	unsubscribe := handler.store.Subscribe(func(change Change) {
		select {
		case events <- change:
		default:
			logger.Warn("event_stream_client_lagging")
		}
	})
	defer unsubscribe()

	send := func(name string, payload any) bool {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Error("event_stream_encode_failed", slog.Any("error", err))
			return false
		}
		if _, err := fmt.Fprintf(writer, "event: %s\ndata: %s\n\n", name, data); err != nil {
			return false
		}
		return controller.Flush() == nil
	}

	if !send("config.snapshot", publicView(ChangeSnapshotLoaded, handler.store.ExportSnapshot(), time.Now())) {
		return
	}

	heartbeat := time.NewTicker(constants.EventStreamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-request.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(writer, ": ping\n\n"); err != nil || controller.Flush() != nil {
				return
			}
		case change := <-events:
			if !send("config.changed", publicView(change.Kind, change.Snapshot, change.At)) {
				return
			}
		}
	}
}
