// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package settings

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/taibuivan/carta/internal/core/pricing"
)

// ID identifies a delivery zone or a novel.
//
// Older backups stored numeric ids; those decode as their decimal text.
type ID string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (id *ID) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*id = ID(text)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("id must be a string or a number")
	}
	*id = ID(number.String())
	return nil
}

// # Delivery Zones

const (
	FieldZoneName = "name"
	FieldZoneCost = "cost"
)

// Zone is a named delivery destination with a flat fee.
type Zone struct {
	ID        ID            `json:"id"`
	Name      string        `json:"name"`
	Cost      pricing.Money `json:"cost"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// UnmarshalJSON treats a zone without an "active" flag as active.
func (zone *Zone) UnmarshalJSON(data []byte) error {
	type plain Zone
	wire := struct {
		plain
		Active *bool `json:"active"`
	}{}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*zone = Zone(wire.plain)
	zone.Active = wire.Active == nil || *wire.Active
	return nil
}

// # Novels

const (
	FieldNovelTitle    = "titulo"
	FieldNovelGenre    = "genero"
	FieldNovelChapters = "capitulos"
	FieldNovelYear     = "año"
	FieldNovelStatus   = "estado"
)

// NovelStatus tells whether a novel is still airing.
type NovelStatus string

const (
	StatusAiring   NovelStatus = "transmision"
	StatusFinished NovelStatus = "finalizada"
)

// Novel is a catalog entry priced per chapter.
type Novel struct {
	ID          ID          `json:"id"`
	Title       string      `json:"titulo"`
	Genre       string      `json:"genero"`
	Chapters    int         `json:"capitulos"`
	Year        int         `json:"año"`
	Description string      `json:"descripcion,omitempty"`
	Country     string      `json:"pais,omitempty"`
	Image       string      `json:"imagen,omitempty"`
	Status      NovelStatus `json:"estado,omitempty"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// UnmarshalJSON treats a novel without an "active" flag as active.
func (novel *Novel) UnmarshalJSON(data []byte) error {
	type plain Novel
	wire := struct {
		plain
		Active *bool `json:"active"`
	}{}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*novel = Novel(wire.plain)
	novel.Active = wire.Active == nil || *wire.Active
	return nil
}

// NovelInput carries the editable fields of a novel.
type NovelInput struct {
	Title       string      `json:"titulo"`
	Genre       string      `json:"genero"`
	Chapters    int         `json:"capitulos"`
	Year        int         `json:"año"`
	Description string      `json:"descripcion"`
	Country     string      `json:"pais"`
	Image       string      `json:"imagen"`
	Status      NovelStatus `json:"estado"`
	Active      *bool       `json:"active"`
}

// NovelShelves splits the catalog by airing status.
type NovelShelves struct {
	Airing   []Novel `json:"airing"`
	Finished []Novel `json:"finished"`
}

// Shelve sorts active novels onto their shelves. Novels without a status are
// left off both shelves.
func Shelve(novels []Novel) NovelShelves {
	shelves := NovelShelves{Airing: []Novel{}, Finished: []Novel{}}
	for _, novel := range novels {
		if !novel.Active {
			continue
		}
		switch novel.Status {
		case StatusAiring:
			shelves.Airing = append(shelves.Airing, novel)
		case StatusFinished:
			shelves.Finished = append(shelves.Finished, novel)
		}
	}
	return shelves
}

// Price returns both prices of the whole novel.
func (novel Novel) Price(cfg pricing.Config) pricing.Quote {
	return pricing.QuoteFor(cfg, pricing.Priced{Kind: pricing.KindNovel, Units: novel.Chapters})
}
