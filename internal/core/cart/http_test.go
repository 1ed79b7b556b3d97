// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/carta/internal/core/cart"
	"github.com/taibuivan/carta/internal/core/pricing"
	"github.com/taibuivan/carta/internal/platform/constants"
)

func do(t *testing.T, router http.Handler, session, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if session != "" {
		request.Header.Set(constants.HeaderSessionID, session)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

type viewBody struct {
	Data struct {
		Items []struct {
			ID              int64         `json:"id"`
			SelectedSeasons []int         `json:"selectedSeasons"`
			PaymentType     string        `json:"paymentType"`
			Price           pricing.Money `json:"price"`
			Quote           pricing.Quote `json:"quote"`
		} `json:"items"`
		Cash     pricing.Money `json:"cashTotal"`
		Transfer pricing.Money `json:"transferTotal"`
		Total    pricing.Money `json:"total"`
		Fee      pricing.Money `json:"transferFee"`
		Count    int           `json:"count"`
	} `json:"data"`
}

func decodeView(t *testing.T, response *httptest.ResponseRecorder) viewBody {
	t.Helper()
	var body viewBody
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	return body
}

func TestHandler_CartFlow(t *testing.T) {
	service := cart.NewService(cart.NewMemoryRepository(), &priceList{cfg: pricing.DefaultConfig()}, discardLogger())
	router := cart.NewHandler(service).Routes()

	response := do(t, router, "s1", http.MethodPost, "/items", `{"id":10,"title":"Show","type":"tv"}`)
	require.Equal(t, http.StatusOK, response.Code)

	response = do(t, router, "s1", http.MethodPut, "/items/10/seasons", `{"seasons":[3,1,3]}`)
	require.Equal(t, http.StatusOK, response.Code)

	response = do(t, router, "s1", http.MethodPut, "/items/10/payment", `{"paymentType":"transfer"}`)
	require.Equal(t, http.StatusOK, response.Code)

	body := decodeView(t, response)
	require.Len(t, body.Data.Items, 1)
	assert.Equal(t, []int{1, 3}, body.Data.Items[0].SelectedSeasons)
	assert.Equal(t, "transfer", body.Data.Items[0].PaymentType)
	assert.Equal(t, pricing.Money(660), body.Data.Items[0].Price)
	assert.Equal(t, pricing.Money(660), body.Data.Transfer)
	assert.Equal(t, pricing.Money(60), body.Data.Fee)

	response = do(t, router, "s1", http.MethodDelete, "/items/10", "")
	require.Equal(t, http.StatusOK, response.Code)
	assert.Zero(t, decodeView(t, response).Data.Count)
}

func TestHandler_ReloadLifecycle(t *testing.T) {
	service := cart.NewService(cart.NewMemoryRepository(), &priceList{cfg: pricing.DefaultConfig()}, discardLogger())
	router := cart.NewHandler(service).Routes()

	do(t, router, "s1", http.MethodPost, "/items", `{"id":1,"title":"Film","type":"movie"}`)

	response := do(t, router, "s1", http.MethodPost, "/unload", "")
	require.Equal(t, http.StatusNoContent, response.Code)

	response = do(t, router, "s1", http.MethodPost, "/resume", "")
	require.Equal(t, http.StatusOK, response.Code)
	assert.Zero(t, decodeView(t, response).Data.Count)
}

func TestHandler_Errors(t *testing.T) {
	service := cart.NewService(cart.NewMemoryRepository(), &priceList{cfg: pricing.DefaultConfig()}, discardLogger())
	router := cart.NewHandler(service).Routes()

	response := do(t, router, "", http.MethodGet, "/", "")
	assert.Equal(t, http.StatusBadRequest, response.Code)
	assert.Contains(t, response.Body.String(), constants.HeaderSessionID)

	response = do(t, router, "s1", http.MethodDelete, "/items/abc", "")
	assert.Equal(t, http.StatusBadRequest, response.Code)

	response = do(t, router, "s1", http.MethodPost, "/items", `{"id":`)
	assert.Equal(t, http.StatusBadRequest, response.Code)
}
