// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns used in hand-written SQL.
package schema

import "github.com/taibuivan/carta/internal/platform/constants"

// StorefrontStateTable represents the 'storefront.state' table
type StorefrontStateTable struct {
	Table     string
	Key       string
	Value     string
	UpdatedAt string
}

var StorefrontState = StorefrontStateTable{
	Table:     constants.SchemaStorefront + ".state",
	Key:       "key",
	Value:     "value",
	UpdatedAt: "updatedat",
}
