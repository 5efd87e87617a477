package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipstation/bubble-tea-pos-api/models"
	"github.com/sipstation/bubble-tea-pos-api/services"
	"github.com/sipstation/bubble-tea-pos-api/testutil"
)

func TestAddInventoryItem(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, data map[string]interface{})
	}{
		{
			name:           "defaults unit and threshold",
			body:           map[string]interface{}{"ingredient_name": "Grass Jelly", "quantity": 40},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, "Grass Jelly", data["ingredient_name"])
				assert.Equal(t, services.DefaultInventoryUnit, data["unit"])
				assert.True(t, decimalField(t, data["min_quantity"]).Equal(services.DefaultInventoryMinQuantity))
			},
		},
		{
			name:           "explicit unit and threshold",
			body:           map[string]interface{}{"ingredient_name": "Oat Milk", "quantity": "12.5", "unit": "liters", "min_quantity": 2},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, "liters", data["unit"])
				assert.True(t, decimalField(t, data["quantity"]).Equal(decimalField(t, "12.5")))
			},
		},
		{
			name:           "duplicate name",
			body:           map[string]interface{}{"ingredient_name": "Tea", "quantity": 1},
			expectedStatus: http.StatusConflict,
			expectedError:  "CONFLICT",
		},
		{
			name:           "missing name",
			body:           map[string]interface{}{"quantity": 1},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "negative quantity",
			body:           map[string]interface{}{"ingredient_name": "Taro", "quantity": -1},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.manager(http.MethodPost, "/api/v1/inventory", tt.body)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorCode(t, w))
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, decodeResponse(t, w)["data"].(map[string]interface{}))
			}
		})
	}
}

func TestUpdateAndDeleteInventoryItem(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	item := testutil.CreateIngredient(t, s.db, "Taro Powder", "20", "5")
	path := fmt.Sprintf("/api/v1/inventory/%d", item.ID)

	w := s.manager(http.MethodPut, path, map[string]interface{}{"quantity": 35})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.True(t, decimalField(t, data["quantity"]).Equal(decimalField(t, "35")))
	assert.Equal(t, "Taro Powder", data["ingredient_name"], "omitted fields are kept")
	assert.True(t, decimalField(t, data["min_quantity"]).Equal(decimalField(t, "5")))

	w = s.manager(http.MethodPut, path, map[string]interface{}{"ingredient_name": "Tea"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.manager(http.MethodPut, "/api/v1/inventory/9999", map[string]interface{}{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.manager(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.manager(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Taro Powder", decodeResponse(t, w)["data"].(map[string]interface{})["ingredient_name"])

	w = s.manager(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListInventoryAndLowStock(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	require.NoError(t, s.db.Model(&models.InventoryItem{}).Where("ingredient_name = ?", "Boba").Update("quantity", 5).Error)
	require.NoError(t, s.db.Model(&models.InventoryItem{}).Where("ingredient_name = ?", "Pudding").Update("quantity", 10).Error)

	w := s.manager(http.MethodGet, "/api/v1/inventory", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeResponse(t, w)["data"].([]interface{})
	assert.Len(t, items, len(services.DefaultIngredients()))
	assert.Equal(t, "Boba", items[0].(map[string]interface{})["ingredient_name"])
	flags := map[string]interface{}{}
	for _, raw := range items {
		item := raw.(map[string]interface{})
		flags[item["ingredient_name"].(string)] = item["low_stock"]
	}
	assert.Equal(t, true, flags["Boba"])
	assert.Equal(t, true, flags["Pudding"])
	assert.Equal(t, false, flags["Tea"])

	w = s.manager(http.MethodGet, "/api/v1/inventory/alerts/low-stock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	low := decodeResponse(t, w)["data"].([]interface{})
	require.Len(t, low, 2)
	assert.Equal(t, "Boba", low[0].(map[string]interface{})["ingredient_name"], "most critical first")
	assert.Equal(t, "Pudding", low[1].(map[string]interface{})["ingredient_name"])
}

func TestRecordUsage(t *testing.T) {
	t.Run("records with the manager as author", func(t *testing.T) {
		s := newTestServer(t, serverOptions{withLedger: true})
		tea := testutil.InventorySnapshot(t, s.db)["Tea"]
		var item models.InventoryItem
		require.NoError(t, s.db.Where("ingredient_name = ?", "Tea").First(&item).Error)

		w := s.manager(http.MethodPost, "/api/v1/inventory/usage", map[string]interface{}{
			"inventory_id":  item.ID,
			"quantity_used": 16,
			"unit_cost":     "0.20",
			"notes":         "spilled",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, managerEmail, data["created_by"])
		assert.Equal(t, "spilled", data["notes"])
		assert.True(t, tea.Equal(testutil.InventorySnapshot(t, s.db)["Tea"]), "stock is not changed")
	})

	t.Run("validates input", func(t *testing.T) {
		s := newTestServer(t, serverOptions{withLedger: true})
		w := s.manager(http.MethodPost, "/api/v1/inventory/usage", map[string]interface{}{"quantity_used": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.manager(http.MethodPost, "/api/v1/inventory/usage", map[string]interface{}{"inventory_id": 9999, "quantity_used": 1})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("501 without a usage ledger", func(t *testing.T) {
		s := newTestServer(t, serverOptions{})
		w := s.manager(http.MethodPost, "/api/v1/inventory/usage", map[string]interface{}{"inventory_id": 1, "quantity_used": 1})
		assert.Equal(t, http.StatusNotImplemented, w.Code)
		assert.Equal(t, "FEATURE_UNAVAILABLE", errorCode(t, w))
	})
}

func TestUsageReport(t *testing.T) {
	tests := []struct {
		name           string
		withLedger     bool
		query          string
		expectedStatus int
		expectedType   string
	}{
		{name: "missing both dates", withLedger: true, query: "", expectedStatus: http.StatusBadRequest},
		{name: "missing end date", withLedger: true, query: "?startDate=2024-05-01", expectedStatus: http.StatusBadRequest},
		{name: "malformed date", withLedger: true, query: "?startDate=May&endDate=2024-05-31", expectedStatus: http.StatusBadRequest},
		{name: "inverted range", withLedger: true, query: "?startDate=2024-05-31&endDate=2024-05-01", expectedStatus: http.StatusBadRequest},
		{name: "detailed with ledger", withLedger: true, query: "?startDate=2024-05-01&endDate=2024-05-31", expectedStatus: http.StatusOK, expectedType: services.UsageReportDetailed},
		{name: "basic without ledger", withLedger: false, query: "?startDate=2024-05-01&endDate=2024-05-31", expectedStatus: http.StatusOK, expectedType: services.UsageReportBasic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, serverOptions{withLedger: tt.withLedger})
			w := s.manager(http.MethodGet, "/api/v1/inventory/reports/usage"+tt.query, nil)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedType != "" {
				data := decodeResponse(t, w)["data"].(map[string]interface{})
				assert.Equal(t, tt.expectedType, data["reportType"])
			}
		})
	}
}
