// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package checkout

import (
	"time"

	"github.com/taibuivan/carta/internal/core/cart"
	"github.com/taibuivan/carta/internal/core/pricing"
	"github.com/taibuivan/carta/internal/core/settings"
)

// # Field Identifiers

const (
	FieldFullName = "fullName"
	FieldPhone    = "phone"
	FieldAddress  = "address"
	FieldZone     = "zoneId"
	FieldItems    = "items"
)

// Form is the customer data collected by the checkout dialog.
type Form struct {
	FullName string      `json:"fullName"`
	Phone    string      `json:"phone"`
	Address  string      `json:"address"`
	ZoneID   settings.ID `json:"zoneId"`
}

// Customer is the validated contact block of an [Order].
type Customer struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Order is the summary handed to the order channel. It is never stored.
type Order struct {
	OrderID          string        `json:"orderId"`
	Customer         Customer      `json:"customerInfo"`
	DeliveryZoneID   settings.ID   `json:"deliveryZoneId"`
	DeliveryZoneName string        `json:"deliveryZoneName"`
	DeliveryCost     pricing.Money `json:"deliveryCost"`
	Items            []cart.Line   `json:"items"`
	CashTotal        pricing.Money `json:"cashTotal"`
	TransferTotal    pricing.Money `json:"transferTotal"`
	Subtotal         pricing.Money `json:"subtotal"`
	TransferFee      pricing.Money `json:"transferFee"`
	Total            pricing.Money `json:"total"`
	CreatedAt        time.Time     `json:"createdAt"`
}
