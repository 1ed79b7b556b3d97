// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import (
	"slices"
	"time"

	"github.com/taibuivan/carta/internal/core/pricing"
)

// ItemType is the catalog kind of a cart line.
type ItemType string

const (
	TypeMovie ItemType = "movie"
	TypeTV    ItemType = "tv"
)

// # Field Identifiers

const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldType        = "type"
	FieldSeasons     = "selectedSeasons"
	FieldPaymentType = "paymentType"
)

// Item is one selected title. Identity is the (ID, Type) pair.
type Item struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title"`
	PosterPath       string         `json:"poster_path,omitempty"`
	Type             ItemType       `json:"type"`
	SelectedSeasons  []int          `json:"selectedSeasons,omitempty"`
	PaymentType      pricing.Method `json:"paymentType"`
	VoteAverage      float64        `json:"vote_average"`
	ReleaseDate      string         `json:"release_date,omitempty"`
	FirstAirDate     string         `json:"first_air_date,omitempty"`
	OriginalLanguage string         `json:"original_language,omitempty"`
	GenreIDs         []int          `json:"genre_ids,omitempty"`
	AddedAt          time.Time      `json:"addedAt"`
}

// Priced returns the pricing view of the item.
func (item Item) Priced() pricing.Priced {
	if item.Type == TypeTV {
		return pricing.Priced{Kind: pricing.KindTV, Units: len(item.SelectedSeasons), Method: item.PaymentType}
	}
	return pricing.Priced{Kind: pricing.KindMovie, Method: item.PaymentType}
}

// Cart is the ordered list of items held by one browser session.
//
// The zero value is an empty cart. Methods that take an id match on the
// catalog id alone and do nothing when no item carries it.
type Cart struct {
	Items []Item `json:"items"`
}

// Add appends item unless an item with the same id and type is present.
//
// New items start with cash payment; series without a season selection
// start with season 1.
func (cart *Cart) Add(item Item) bool {
	if slices.ContainsFunc(cart.Items, func(existing Item) bool {
		return existing.ID == item.ID && existing.Type == item.Type
	}) {
		return false
	}

	item.PaymentType = pricing.MethodCash
	if item.Type == TypeTV {
		item.SelectedSeasons = NormalizeSeasons(item.SelectedSeasons)
		if len(item.SelectedSeasons) == 0 {
			item.SelectedSeasons = []int{1}
		}
	} else {
		item.SelectedSeasons = nil
	}

	cart.Items = append(cart.Items, item)
	return true
}

// Remove drops every item carrying id.
func (cart *Cart) Remove(id int64) bool {
	before := len(cart.Items)
	cart.Items = slices.DeleteFunc(cart.Items, func(item Item) bool { return item.ID == id })
	return len(cart.Items) != before
}

// SetSeasons replaces the season selection of the item carrying id.
// The selection is normalized with [NormalizeSeasons].
func (cart *Cart) SetSeasons(id int64, seasons []int) bool {
	return cart.update(id, func(item *Item) {
		item.SelectedSeasons = NormalizeSeasons(seasons)
	})
}

// SetPaymentType changes how the item carrying id will be paid.
func (cart *Cart) SetPaymentType(id int64, method pricing.Method) bool {
	return cart.update(id, func(item *Item) {
		item.PaymentType = method
	})
}

func (cart *Cart) update(id int64, change func(*Item)) bool {
	found := false
	for i := range cart.Items {
		if cart.Items[i].ID == id {
			change(&cart.Items[i])
			found = true
		}
	}
	return found
}

// Clear empties the cart.
func (cart *Cart) Clear() {
	cart.Items = nil
}

// Contains reports whether any item carries id.
func (cart *Cart) Contains(id int64) bool {
	return slices.ContainsFunc(cart.Items, func(item Item) bool { return item.ID == id })
}

// Len reports the number of items.
func (cart *Cart) Len() int {
	return len(cart.Items)
}

// Priced returns the pricing view of every item, in cart order.
func (cart *Cart) Priced() []pricing.Priced {
	priced := make([]pricing.Priced, len(cart.Items))
	for i, item := range cart.Items {
		priced[i] = item.Priced()
	}
	return priced
}

// NormalizeSeasons sorts seasons and drops duplicates.
func NormalizeSeasons(seasons []int) []int {
	if len(seasons) == 0 {
		return nil
	}
	normalized := slices.Clone(seasons)
	slices.Sort(normalized)
	return slices.Compact(normalized)
}
