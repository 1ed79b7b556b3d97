// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package settings owns the storefront configuration: prices, delivery zones,
the novel catalog and the admin notification log.

# Side Effects

Every accepted mutation runs the same sequence while holding the publish lock:

 1. Update the in-memory state.
 2. Record exactly one notification.
 3. Persist the encoded snapshot through the [Persister].
 4. Dispatch a [Change] to local subscribers and to the [Relay].

A failed persist is logged and recorded as an error notification. It is never
returned to the caller; in-memory state stays authoritative.

# Concurrency

Reads take a shared lock and return copies. Subscribers run synchronously
while the publish lock is held, so they may read the store but must not
mutate it.
*/
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/carta/internal/core/broadcast"
	"github.com/taibuivan/carta/internal/core/notification"
	"github.com/taibuivan/carta/internal/core/pricing"
	"github.com/taibuivan/carta/internal/platform/validate"
	"github.com/taibuivan/carta/pkg/pointer"
	"github.com/taibuivan/carta/pkg/slice"
	"github.com/taibuivan/carta/pkg/slug"
	"github.com/taibuivan/carta/pkg/uuid"
)

// # Change Events

// sideEffectTimeout bounds the persist and relay steps of one mutation.
const sideEffectTimeout = 10 * time.Second

// ChangeKind names the mutation behind a [Change].
type ChangeKind string

const (
	ChangePrices             ChangeKind = "prices"
	ChangeZoneAdded          ChangeKind = "zone_added"
	ChangeZoneUpdated        ChangeKind = "zone_updated"
	ChangeZoneDeleted        ChangeKind = "zone_deleted"
	ChangeNovelAdded         ChangeKind = "novel_added"
	ChangeNovelUpdated       ChangeKind = "novel_updated"
	ChangeNovelDeleted       ChangeKind = "novel_deleted"
	ChangeNotification       ChangeKind = "notification"
	ChangeNotificationsClear ChangeKind = "notifications_cleared"
	ChangeSnapshotLoaded     ChangeKind = "snapshot_loaded"
	ChangeBackup             ChangeKind = "backup"
	ChangeRemote             ChangeKind = "remote"
)

// Change is dispatched after every committed mutation.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	Snapshot Snapshot   `json:"snapshot"`
	Origin   string     `json:"origin"`
	At       time.Time  `json:"at"`
}

// # Store

// Options tunes a [Store].
type Options struct {
	// NotificationCap bounds the notification log.
	NotificationCap int

	// Origin identifies this replica on the relay. Generated when empty.
	Origin string

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Store is the single source of truth for storefront configuration.
type Store struct {
	mu      sync.RWMutex
	publish sync.Mutex

	prices     pricing.Config
	zones      []Zone
	novels     []Novel
	log        *notification.Log
	lastBackup *time.Time
	updatedAt  time.Time

	persister Persister
	hub       *broadcast.Hub[Change]
	relay     Relay
	logger    *slog.Logger
	origin    string
	now       func() time.Time
}

// NewStore constructs a [Store] holding the default price list and no zones or novels.
func NewStore(persister Persister, hub *broadcast.Hub[Change], logger *slog.Logger, opts Options) *Store {
	if opts.Origin == "" {
		opts.Origin = uuid.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Store{
		prices:    pricing.DefaultConfig(),
		zones:     []Zone{},
		novels:    []Novel{},
		log:       notification.NewLog(opts.NotificationCap),
		persister: persister,
		hub:       hub,
		logger:    logger,
		origin:    opts.Origin,
		now:       opts.Now,
	}
}

// SetRelay attaches the cross-replica publisher. Call before serving traffic.
func (store *Store) SetRelay(relay Relay) {
	store.publish.Lock()
	defer store.publish.Unlock()
	store.relay = relay
}

// Origin returns the replica identity stamped on outgoing changes.
func (store *Store) Origin() string {
	return store.origin
}

// Subscribe registers fn for every future [Change] and returns its unsubscribe func.
func (store *Store) Subscribe(fn func(Change)) func() {
	return store.hub.Subscribe(fn)
}

// # Reads

// Prices returns the current price list.
func (store *Store) Prices() pricing.Config {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.prices
}

// Zones returns every delivery zone, active or not.
func (store *Store) Zones() []Zone {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return slices.Clone(store.zones)
}

// ActiveZones returns the zones a shopper may choose at checkout.
func (store *Store) ActiveZones() []Zone {
	store.mu.RLock()
	defer store.mu.RUnlock()

	return slice.Filter(store.zones, func(zone Zone) bool { return zone.Active })
}

// Zone looks up a zone by id.
func (store *Store) Zone(id ID) (Zone, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	if i := indexOf(store.zones, func(zone Zone) ID { return zone.ID }, id); i >= 0 {
		return store.zones[i], true
	}
	return Zone{}, false
}

// Novels returns the whole novel catalog.
func (store *Store) Novels() []Novel {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return slices.Clone(store.novels)
}

// Novel looks up a novel by id.
func (store *Store) Novel(id ID) (Novel, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	if i := indexOf(store.novels, func(novel Novel) ID { return novel.ID }, id); i >= 0 {
		return store.novels[i], true
	}
	return Novel{}, false
}

// NovelsByStatus splits the active catalog into airing and finished shelves.
func (store *Store) NovelsByStatus() NovelShelves {
	return Shelve(store.Novels())
}

// Notifications returns the audit log, newest first.
func (store *Store) Notifications() []notification.Notification {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.log.All()
}

// ExportSnapshot returns a deep copy of the whole state. It has no side effects.
func (store *Store) ExportSnapshot() Snapshot {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.snapshotLocked()
}

func (store *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Prices:        store.prices,
		DeliveryZones: store.zones,
		Novels:        store.novels,
		Notifications: store.log.All(),
		LastBackup:    store.lastBackup,
		UpdatedAt:     store.updatedAt,
	}.clone()
}

// # Prices

/*
UpdatePrices replaces the price list wholesale.

Returns:
  - error: VALIDATION_ERROR for negative amounts or a percentage outside [0, 100]
*/
func (store *Store) UpdatePrices(context context.Context, cfg pricing.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	store.mutate(context, ChangePrices, func() (notification.Entry, bool) {
		previous := store.prices
		store.prices = cfg

		return notification.Entry{
			Type:    notification.TypeSuccess,
			Title:   "Prices updated",
			Message: describePriceChange(previous, cfg),
			Section: notification.SectionPrices,
			Action:  "update",
		}, true
	})

	store.logger.Info("prices_updated",
		slog.Int64("movie_price", int64(cfg.MoviePrice)),
		slog.Int64("series_price_per_season", int64(cfg.SeriesPricePerSeason)),
		slog.Float64("transfer_fee_percentage", float64(cfg.TransferFeePercentage)),
		slog.Int64("novel_price_per_chapter", int64(cfg.NovelPricePerChapter)),
	)
	return nil
}

// describePriceChange lists old -> new for every field that moved.
func describePriceChange(previous, next pricing.Config) string {
	var changes []string
	note := func(label string, before, after any) {
		if before != after {
			changes = append(changes, fmt.Sprintf("%s %v -> %v", label, before, after))
		}
	}
	note("movie", previous.MoviePrice, next.MoviePrice)
	note("series/season", previous.SeriesPricePerSeason, next.SeriesPricePerSeason)
	note("transfer %", previous.TransferFeePercentage, next.TransferFeePercentage)
	note("novel/chapter", previous.NovelPricePerChapter, next.NovelPricePerChapter)

	if len(changes) == 0 {
		return "Prices saved without changes"
	}
	return "Prices changed: " + strings.Join(changes, ", ")
}

// # Delivery Zones

/*
AddZone creates an active delivery zone.

Description: Duplicate names are accepted. When another zone already carries
the same name (ignoring case and accents) the notification is raised as a
warning so the operator can tidy up.

Parameters:
  - context: context.Context
  - name: string
  - cost: pricing.Money

Returns:
  - Zone: The stored zone
  - error: VALIDATION_ERROR when the name is empty or the cost negative
*/
func (store *Store) AddZone(context context.Context, name string, cost pricing.Money) (Zone, error) {
	name = strings.TrimSpace(name)
	if err := validateZone(name, cost); err != nil {
		return Zone{}, err
	}

	now := store.now()
	zone := Zone{ID: ID(uuid.New()), Name: name, Cost: cost, Active: true, CreatedAt: now, UpdatedAt: now}

	store.mutate(context, ChangeZoneAdded, func() (notification.Entry, bool) {
		entry := notification.Entry{
			Type:    notification.TypeSuccess,
			Title:   "Delivery zone added",
			Message: fmt.Sprintf("Zone %q added with a cost of %d CUP", zone.Name, zone.Cost),
			Section: notification.SectionZones,
			Action:  "create",
		}
		if duplicate := store.zoneNamedLocked(zone.Name); duplicate != "" {
			entry.Type = notification.TypeWarning
			entry.Details = fmt.Sprintf("Another zone is already named %q", duplicate)
		}

		store.zones = append(store.zones, zone)
		return entry, true
	})

	store.logger.Info("zone_created",
		slog.String("zone_id", string(zone.ID)),
		slog.String("name", zone.Name),
	)
	return zone, nil
}

/*
UpdateZone replaces the name, cost and active flag of an existing zone.

Description: An unknown id is a silent no-op; nothing is recorded,
persisted or broadcast.

Returns:
  - bool: Whether a zone was updated
  - error: VALIDATION_ERROR for an empty name or negative cost
*/
func (store *Store) UpdateZone(context context.Context, zone Zone) (bool, error) {
	zone.Name = strings.TrimSpace(zone.Name)
	if err := validateZone(zone.Name, zone.Cost); err != nil {
		return false, err
	}

	updated := store.mutate(context, ChangeZoneUpdated, func() (notification.Entry, bool) {
		i := indexOf(store.zones, func(z Zone) ID { return z.ID }, zone.ID)
		if i < 0 {
			return notification.Entry{}, false
		}

		previous := store.zones[i]
		zone.CreatedAt = previous.CreatedAt
		zone.UpdatedAt = store.now()
		store.zones[i] = zone

		return notification.Entry{
			Type:    notification.TypeSuccess,
			Title:   "Delivery zone updated",
			Message: fmt.Sprintf("Zone %q updated (cost %d -> %d CUP)", zone.Name, previous.Cost, zone.Cost),
			Section: notification.SectionZones,
			Action:  "update",
		}, true
	})

	if updated {
		store.logger.Info("zone_updated", slog.String("zone_id", string(zone.ID)))
	}
	return updated, nil
}

// DeleteZone removes a zone and reports whether it existed. Unknown ids are a no-op.
func (store *Store) DeleteZone(context context.Context, id ID) bool {
	deleted := store.mutate(context, ChangeZoneDeleted, func() (notification.Entry, bool) {
		i := indexOf(store.zones, func(z Zone) ID { return z.ID }, id)
		if i < 0 {
			return notification.Entry{}, false
		}

		removed := store.zones[i]
		store.zones = slices.Delete(store.zones, i, i+1)

		return notification.Entry{
			Type:    notification.TypeWarning,
			Title:   "Delivery zone deleted",
			Message: fmt.Sprintf("Zone %q deleted", removed.Name),
			Section: notification.SectionZones,
			Action:  "delete",
		}, true
	})

	if deleted {
		store.logger.Info("zone_deleted", slog.String("zone_id", string(id)))
	}
	return deleted
}

func validateZone(name string, cost pricing.Money) error {
	validator := &validate.Validator{}
	validator.
		Required(FieldZoneName, name).
		MaxLen(FieldZoneName, name, 200).
		NonNegative(FieldZoneCost, int64(cost))
	return validator.Err()
}

// zoneNamedLocked returns the name of a zone matching name after slug folding.
func (store *Store) zoneNamedLocked(name string) string {
	key := slug.Key(name)
	for _, zone := range store.zones {
		if slug.Key(zone.Name) == key {
			return zone.Name
		}
	}
	return ""
}

// # Novels

/*
AddNovel creates a novel in the catalog.

Returns:
  - Novel: The stored novel
  - error: VALIDATION_ERROR when a field is missing or out of range
*/
func (store *Store) AddNovel(context context.Context, input NovelInput) (Novel, error) {
	if err := validateNovel(input); err != nil {
		return Novel{}, err
	}

	now := store.now()
	novel := Novel{
		ID:          ID(uuid.New()),
		Title:       strings.TrimSpace(input.Title),
		Genre:       strings.TrimSpace(input.Genre),
		Chapters:    input.Chapters,
		Year:        input.Year,
		Description: strings.TrimSpace(input.Description),
		Country:     strings.TrimSpace(input.Country),
		Image:       strings.TrimSpace(input.Image),
		Status:      input.Status,
		Active:      pointer.Fallback(input.Active, true),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	store.mutate(context, ChangeNovelAdded, func() (notification.Entry, bool) {
		store.novels = append(store.novels, novel)
		return notification.Entry{
			Type:    notification.TypeSuccess,
			Title:   "Novel added",
			Message: fmt.Sprintf("Novel %q added with %d chapters", novel.Title, novel.Chapters),
			Section: notification.SectionNovels,
			Action:  "create",
		}, true
	})

	store.logger.Info("novel_created",
		slog.String("novel_id", string(novel.ID)),
		slog.String("title", novel.Title),
	)
	return novel, nil
}

/*
UpdateNovel replaces the editable fields of an existing novel.

Description: An unknown id is a silent no-op.

Returns:
  - bool: Whether a novel was updated
  - error: VALIDATION_ERROR when a field is missing or out of range
*/
func (store *Store) UpdateNovel(context context.Context, id ID, input NovelInput) (bool, error) {
	if err := validateNovel(input); err != nil {
		return false, err
	}

	updated := store.mutate(context, ChangeNovelUpdated, func() (notification.Entry, bool) {
		i := indexOf(store.novels, func(n Novel) ID { return n.ID }, id)
		if i < 0 {
			return notification.Entry{}, false
		}

		novel := &store.novels[i]
		novel.Title = strings.TrimSpace(input.Title)
		novel.Genre = strings.TrimSpace(input.Genre)
		novel.Chapters = input.Chapters
		novel.Year = input.Year
		novel.Description = strings.TrimSpace(input.Description)
		novel.Country = strings.TrimSpace(input.Country)
		novel.Image = strings.TrimSpace(input.Image)
		novel.Status = input.Status
		if input.Active != nil {
			novel.Active = *input.Active
		}
		novel.UpdatedAt = store.now()

		return notification.Entry{
			Type:    notification.TypeSuccess,
			Title:   "Novel updated",
			Message: fmt.Sprintf("Novel %q updated", novel.Title),
			Section: notification.SectionNovels,
			Action:  "update",
		}, true
	})

	if updated {
		store.logger.Info("novel_updated", slog.String("novel_id", string(id)))
	}
	return updated, nil
}

// DeleteNovel removes a novel and reports whether it existed. Unknown ids are a no-op.
func (store *Store) DeleteNovel(context context.Context, id ID) bool {
	deleted := store.mutate(context, ChangeNovelDeleted, func() (notification.Entry, bool) {
		i := indexOf(store.novels, func(n Novel) ID { return n.ID }, id)
		if i < 0 {
			return notification.Entry{}, false
		}

		removed := store.novels[i]
		store.novels = slices.Delete(store.novels, i, i+1)

		return notification.Entry{
			Type:    notification.TypeWarning,
			Title:   "Novel deleted",
			Message: fmt.Sprintf("Novel %q deleted", removed.Title),
			Section: notification.SectionNovels,
			Action:  "delete",
		}, true
	})

	if deleted {
		store.logger.Info("novel_deleted", slog.String("novel_id", string(id)))
	}
	return deleted
}

func validateNovel(input NovelInput) error {
	validator := &validate.Validator{}
	validator.
		Required(FieldNovelTitle, input.Title).
		MaxLen(FieldNovelTitle, input.Title, 300).
		Required(FieldNovelGenre, input.Genre).
		AtLeast(FieldNovelChapters, input.Chapters, 1).
		Range(FieldNovelYear, input.Year, 1900, 2100)

	if input.Status != "" {
		validator.OneOf(FieldNovelStatus, string(input.Status), string(StatusAiring), string(StatusFinished))
	}
	return validator.Err()
}

// # Notifications

// RecordNotification adds entry to the log and persists it like any other change.
func (store *Store) RecordNotification(context context.Context, entry notification.Entry) error {
	validator := &validate.Validator{}
	validator.
		Required("title", entry.Title).
		OneOf("type", string(entry.Type),
			string(notification.TypeSuccess),
			string(notification.TypeWarning),
			string(notification.TypeError),
			string(notification.TypeInfo),
		)
	if err := validator.Err(); err != nil {
		return err
	}

	store.mutate(context, ChangeNotification, func() (notification.Entry, bool) {
		return entry, true
	})
	return nil
}

// ClearNotifications empties the log, leaving only the entry that records the clear.
func (store *Store) ClearNotifications(context context.Context) {
	store.mutate(context, ChangeNotificationsClear, func() (notification.Entry, bool) {
		store.log.Clear()
		return notification.Entry{
			Type:    notification.TypeInfo,
			Title:   "Notifications cleared",
			Message: "All notifications were removed",
			Section: notification.SectionNotifications,
			Action:  "clear",
		}, true
	})
}

// # Snapshots

/*
LoadSnapshot replaces the whole state with snapshot, typically from a backup.

Description: The snapshot is validated first; a rejected snapshot leaves the
store untouched. Notifications carried by the snapshot replace the current log.

Returns:
  - error: VALIDATION_ERROR listing every invalid field
*/
func (store *Store) LoadSnapshot(context context.Context, snapshot Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	snapshot = snapshot.clone()
	store.mutate(context, ChangeSnapshotLoaded, func() (notification.Entry, bool) {
		store.replaceLocked(snapshot)
		return notification.Entry{
			Type:  notification.TypeSuccess,
			Title: "Configuration restored",
			Message: fmt.Sprintf("Restored %d zones and %d novels from a backup",
				len(snapshot.DeliveryZones), len(snapshot.Novels)),
			Section: notification.SectionSystem,
			Action:  "import",
		}, true
	})

	store.logger.Info("snapshot_loaded",
		slog.Int("zones", len(snapshot.DeliveryZones)),
		slog.Int("novels", len(snapshot.Novels)),
	)
	return nil
}

// RecordBackup stamps the time of a backup export and returns the backup document.
func (store *Store) RecordBackup(context context.Context) Backup {
	at := store.now()

	store.mutate(context, ChangeBackup, func() (notification.Entry, bool) {
		store.lastBackup = &at
		return notification.Entry{
			Type:    notification.TypeSuccess,
			Title:   "Backup exported",
			Message: "The configuration was exported as JSON",
			Section: notification.SectionSystem,
			Action:  "export",
		}, true
	})

	return Backup{Snapshot: store.ExportSnapshot(), ExportTimestamp: at}
}

/*
Restore loads the persisted state at startup.

Description: Nothing persisted yet keeps the defaults. An unreadable or corrupt
blob is logged and recorded as an error notification; defaults stay in place
and the next mutation overwrites the blob.
*/
func (store *Store) Restore(context context.Context) {
	blob, err := store.persister.Load(context)
	if errors.Is(err, ErrNoState) {
		store.logger.Info("state_restore_empty")
		return
	}
	if err != nil {
		store.restoreFailed("State could not be read from storage", err)
		return
	}

	snapshot, err := DecodeSnapshot(blob)
	if err != nil {
		store.restoreFailed("Stored state is corrupt and was ignored", err)
		return
	}

	store.publish.Lock()
	defer store.publish.Unlock()

	store.mu.Lock()
	store.replaceLocked(snapshot)
	store.mu.Unlock()

	store.logger.Info("state_restored",
		slog.Int("zones", len(snapshot.DeliveryZones)),
		slog.Int("novels", len(snapshot.Novels)),
	)
}

func (store *Store) restoreFailed(message string, err error) {
	store.logger.Error("state_restore_failed", slog.Any("error", err))

	store.mu.Lock()
	defer store.mu.Unlock()
	store.log.Record(notification.Entry{
		Type:    notification.TypeError,
		Title:   "Storage error",
		Message: message,
		Section: notification.SectionSystem,
		Action:  "restore_error",
		Details: err.Error(),
	}.Stamp(store.now()))
}

/*
ApplyRemote adopts a state committed by another replica.

Description: The write already happened elsewhere, so nothing is recorded,
persisted or relayed; only local subscribers are told.
*/
func (store *Store) ApplyRemote(snapshot Snapshot, origin string) {
	snapshot = snapshot.clone()

	store.publish.Lock()
	defer store.publish.Unlock()

	store.mu.Lock()
	store.replaceLocked(snapshot)
	store.mu.Unlock()

	store.hub.Publish(Change{Kind: ChangeRemote, Snapshot: snapshot, Origin: origin, At: store.now()})
}

func (store *Store) replaceLocked(snapshot Snapshot) {
	store.prices = snapshot.Prices
	store.zones = snapshot.DeliveryZones
	store.novels = snapshot.Novels
	store.log.Replace(snapshot.Notifications)
	store.lastBackup = snapshot.LastBackup
	store.updatedAt = snapshot.UpdatedAt
}

// # Commit Pipeline

/*
mutate applies one change and runs the side-effect sequence.

Description: apply runs under the write lock and reports the notification to
record, or false when nothing changed. Unchanged calls stop there.

Returns:
  - bool: Whether apply changed anything
*/
func (store *Store) mutate(context context.Context, kind ChangeKind, apply func() (notification.Entry, bool)) bool {
	store.publish.Lock()
	defer store.publish.Unlock()

	// 1. In-memory update and its notification
	store.mu.Lock()
	entry, changed := apply()
	if !changed {
		store.mu.Unlock()
		return false
	}
	now := store.now()
	store.log.Record(entry.Stamp(now))
	store.updatedAt = now
	snapshot := store.snapshotLocked()
	store.mu.Unlock()

	// The change is already live, so saving and relaying outlast the request.
	sideEffects, cancel := detached(context)
	defer cancel()

	// 2. Durable write
	if err := store.persist(sideEffects, snapshot); err != nil {
		store.logger.Error("state_persist_failed",
			slog.String("change", string(kind)),
			slog.Any("error", err),
		)

		store.mu.Lock()
		store.log.Record(notification.Entry{
			Type:    notification.TypeError,
			Title:   "Storage error",
			Message: "The change is live but could not be saved",
			Section: notification.SectionSystem,
			Action:  "persist_error",
			Details: err.Error(),
		}.Stamp(store.now()))
		snapshot = store.snapshotLocked()
		store.mu.Unlock()
	}

	// 3. Fan out
	change := Change{Kind: kind, Snapshot: snapshot, Origin: store.origin, At: now}
	store.hub.Publish(change)

	if store.relay != nil {
		if err := store.relay.Publish(sideEffects, change); err != nil {
			store.logger.Warn("state_relay_failed",
				slog.String("change", string(kind)),
				slog.Any("error", err),
			)
		}
	}

	return true
}

// detached keeps the values of parent but drops its cancellation, bounded by
// sideEffectTimeout.
func detached(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), sideEffectTimeout)
}

func (store *Store) persist(context context.Context, snapshot Snapshot) error {
	blob, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return store.persister.Save(context, blob)
}

// indexOf returns the position of the element whose key is id, or -1.
func indexOf[T any](items []T, key func(T) ID, id ID) int {
	return slices.IndexFunc(items, func(item T) bool { return key(item) == id })
}
