// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pricing derives every displayed and charged price from a [Config].

All functions are pure: they read the configuration handed to them and never
cache results, so a price change is visible on the very next call.

# Rounding

Transfer prices are rounded half-up to whole CUP per item. Aggregates round
each transfer item on its own and then sum, never rounding once at the end.
*/
package pricing

import (
	"encoding/json"
	"math"

	"github.com/taibuivan/carta/internal/platform/validate"
)

// Money is an amount in whole CUP units.
type Money int64

// Percent is a surcharge percentage in the range [0, 100].
type Percent float64

// # Enumerations

// Method is the payment method chosen for a single item.
type Method string

const (
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
)

// Valid reports whether m is a known payment method.
func (m Method) Valid() bool {
	return m == MethodCash || m == MethodTransfer
}

// Kind identifies how an item is priced.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
	KindNovel Kind = "novel"
)

// # Field Identifiers

const (
	FieldMoviePrice            = "moviePrice"
	FieldSeriesPricePerSeason  = "seriesPricePerSeason"
	FieldTransferFeePercentage = "transferFeePercentage"
	FieldNovelPricePerChapter  = "novelPricePerChapter"
)

// # Configuration

// Config is the storefront price list.
type Config struct {
	MoviePrice            Money   `json:"moviePrice"`
	SeriesPricePerSeason  Money   `json:"seriesPricePerSeason"`
	TransferFeePercentage Percent `json:"transferFeePercentage"`
	NovelPricePerChapter  Money   `json:"novelPricePerChapter"`
}

// DefaultConfig returns the price list a fresh store starts with.
func DefaultConfig() Config {
	return Config{
		MoviePrice:            80,
		SeriesPricePerSeason:  300,
		TransferFeePercentage: 10,
		NovelPricePerChapter:  5,
	}
}

// UnmarshalJSON accepts the legacy "seriesPrice" key written by older backups.
// Keys missing from data keep the value already held by c.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	wire := struct {
		plain
		SeriesPricePerSeason *Money `json:"seriesPricePerSeason"`
		LegacySeriesPrice    *Money `json:"seriesPrice"`
	}{plain: plain(*c)}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*c = Config(wire.plain)
	switch {
	case wire.SeriesPricePerSeason != nil:
		c.SeriesPricePerSeason = *wire.SeriesPricePerSeason
	case wire.LegacySeriesPrice != nil:
		c.SeriesPricePerSeason = *wire.LegacySeriesPrice
	}
	return nil
}

// Validate rejects negative amounts and a percentage outside [0, 100].
func (c Config) Validate() error {
	validator := &validate.Validator{}
	validator.
		NonNegative(FieldMoviePrice, int64(c.MoviePrice)).
		NonNegative(FieldSeriesPricePerSeason, int64(c.SeriesPricePerSeason)).
		NonNegative(FieldNovelPricePerChapter, int64(c.NovelPricePerChapter)).
		Percent(FieldTransferFeePercentage, float64(c.TransferFeePercentage))

	return validator.Err()
}

// # Unit Prices

// ApplyTransferFee inflates base by pct and rounds half-up to whole units.
//
// The product is formed as base*(100+pct)/100 so integer percentages do not
// pick up binary drift (600 at 15% is exactly 690).
func ApplyTransferFee(base Money, pct Percent) Money {
	return Money(math.Floor(float64(base)*(100+float64(pct))/100 + 0.5))
}

// MoviePrice prices a single movie.
func MoviePrice(cfg Config, method Method) Money {
	return charge(cfg, cfg.MoviePrice, method)
}

// SeriesPrice prices the given number of seasons of a series.
func SeriesPrice(cfg Config, seasons int, method Method) Money {
	return charge(cfg, Money(max(seasons, 0))*cfg.SeriesPricePerSeason, method)
}

// NovelPrice prices a novel by its chapter count.
func NovelPrice(cfg Config, chapters int, method Method) Money {
	return charge(cfg, Money(max(chapters, 0))*cfg.NovelPricePerChapter, method)
}

func charge(cfg Config, base Money, method Method) Money {
	if method == MethodTransfer {
		return ApplyTransferFee(base, cfg.TransferFeePercentage)
	}
	return base
}

// # Items

// Priced is the pricing view of a cart line or catalog entry.
//
// Units is the season count for series and the chapter count for novels;
// it is ignored for movies.
type Priced struct {
	Kind   Kind
	Units  int
	Method Method
}

// Quote holds both prices of an item so a display can offer the choice.
type Quote struct {
	Cash     Money `json:"cash"`
	Transfer Money `json:"transfer"`
}

// Base returns the cash price of the item.
func Base(cfg Config, item Priced) Money {
	switch item.Kind {
	case KindTV:
		return SeriesPrice(cfg, item.Units, MethodCash)
	case KindNovel:
		return NovelPrice(cfg, item.Units, MethodCash)
	default:
		return MoviePrice(cfg, MethodCash)
	}
}

// QuoteFor returns the cash and transfer price of an item.
func QuoteFor(cfg Config, item Priced) Quote {
	base := Base(cfg, item)
	return Quote{
		Cash:     base,
		Transfer: ApplyTransferFee(base, cfg.TransferFeePercentage),
	}
}

// Price returns what the item costs with its chosen payment method.
func Price(cfg Config, item Priced) Money {
	return charge(cfg, Base(cfg, item), item.Method)
}

// # Aggregates

// Breakdown splits a selection into its payment buckets.
type Breakdown struct {
	Cash              Money `json:"cashTotal"`
	Transfer          Money `json:"transferTotal"`
	Total             Money `json:"total"`
	TransferSurcharge Money `json:"transferFee"`
}

// Totals prices each item individually and sums the cash and transfer buckets.
func Totals(cfg Config, items []Priced) Breakdown {
	var breakdown Breakdown
	for _, item := range items {
		base := Base(cfg, item)
		if item.Method == MethodTransfer {
			price := ApplyTransferFee(base, cfg.TransferFeePercentage)
			breakdown.Transfer += price
			breakdown.TransferSurcharge += price - base
			continue
		}
		breakdown.Cash += base
	}

	breakdown.Total = breakdown.Cash + breakdown.Transfer
	return breakdown
}
