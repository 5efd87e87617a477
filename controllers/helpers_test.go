package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/sipstation/bubble-tea-pos-api/middleware"
	"github.com/sipstation/bubble-tea-pos-api/models"
	"github.com/sipstation/bubble-tea-pos-api/services"
	"github.com/sipstation/bubble-tea-pos-api/testutil"
)

const (
	managerToken  = "manager-token"
	managerEmail  = "owner@sipstation.com"
	strangerToken = "stranger-token"
)

// testServer is a router wired to real services over an in-memory database
type testServer struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	store  *services.MockObjectStore
	now    time.Time
	logger *zap.Logger
}

type serverOptions struct {
	withLedger bool
	noImages   bool
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t, opts.withLedger)
	logger := zaptest.NewLogger(t)
	require.NoError(t, services.Seed(context.Background(), db, services.SeedOptions{InitialManager: managerEmail}, logger))

	s := &testServer{
		t:      t,
		db:     db,
		store:  services.NewMockObjectStore(),
		now:    time.Date(2024, 5, 13, 12, 0, 0, 0, time.Local),
		logger: logger,
	}

	var images services.ImageService
	if !opts.noImages {
		images = services.NewImageService(s.store)
	}

	options := services.DefaultOptionTable(decimal.RequireFromString("0.08"))
	inventory := services.NewInventoryService(db, logger)
	orders := services.NewOrderService(db, services.OrderServiceConfig{MaxItems: 10, TxTimeout: 5 * time.Second}, options, inventory, logger)
	reports := services.NewReportService(db, 20, logger).WithClock(func() time.Time { return s.now })
	catalog := services.NewCatalogService(db, options, images, logger)
	managers := services.NewManagerService(db, logger)
	verifier := testutil.FakeVerifier{managerToken: managerEmail, strangerToken: "stranger@example.com"}

	orderController := NewOrderController(orders, logger)
	inventoryController := NewInventoryController(inventory, reports, logger)
	reportController := NewReportController(reports, logger)
	menuController := NewMenuController(catalog, logger)
	managerController := NewManagerController(managers, logger)
	authController := NewAuthController(verifier, managers, logger)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.POST("/auth/google", authController.GoogleLogin)
	v1.GET("/auth/me", middleware.EnsureValidToken(verifier, logger), authController.Me)
	v1.GET("/menu", menuController.ListMenuItems)
	v1.GET("/menu/options", menuController.GetOptions)
	v1.GET("/menu/:id", menuController.GetMenuItem)
	v1.POST("/menu/quote", menuController.Quote)
	v1.GET("/toppings", menuController.ListToppings)
	v1.POST("/orders", orderController.CreateOrder)

	manager := v1.Group("", middleware.EnsureValidToken(verifier, logger), middleware.RequireManager(managers, logger))
	manager.GET("/orders", orderController.ListOrders)
	manager.GET("/orders/:id", orderController.GetOrder)
	manager.PATCH("/orders/:id/status", orderController.UpdateOrderStatus)
	manager.DELETE("/orders/:id", orderController.DeleteOrder)
	manager.GET("/inventory", inventoryController.ListInventory)
	manager.GET("/inventory/alerts/low-stock", inventoryController.ListLowStock)
	manager.GET("/inventory/reports/usage", inventoryController.UsageReport)
	manager.POST("/inventory/usage", inventoryController.RecordUsage)
	manager.GET("/inventory/:id", inventoryController.GetInventoryItem)
	manager.POST("/inventory", inventoryController.AddInventoryItem)
	manager.PUT("/inventory/:id", inventoryController.UpdateInventoryItem)
	manager.DELETE("/inventory/:id", inventoryController.DeleteInventoryItem)
	manager.GET("/reports/sales", reportController.SalesSummary)
	manager.GET("/reports/popular", reportController.PopularItems)
	manager.GET("/reports/status", reportController.OrdersByStatus)
	manager.POST("/menu", menuController.CreateMenuItem)
	manager.PUT("/menu/:id", menuController.UpdateMenuItem)
	manager.DELETE("/menu/:id", menuController.DeleteMenuItem)
	manager.POST("/menu/:id/image", menuController.UploadMenuImage)
	manager.POST("/toppings", menuController.CreateTopping)
	manager.GET("/managers", managerController.ListManagers)
	manager.POST("/managers", managerController.AddManager)
	manager.DELETE("/managers/:id", managerController.DeleteManager)
	manager.GET("/managers/check/:email", managerController.CheckManager)

	s.router = router
	return s
}

// request sends body as JSON. A string body is sent verbatim.
func (s *testServer) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(s.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// manager sends an authenticated manager request
func (s *testServer) manager(method, path string, body interface{}) *httptest.ResponseRecorder {
	return s.request(method, path, managerToken, body)
}

func (s *testServer) upload(path, filename string, content []byte) *httptest.ResponseRecorder {
	s.t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(s.t, err)
	_, err = part.Write(content)
	require.NoError(s.t, err)
	require.NoError(s.t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, path, body)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+managerToken)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	response := decodeResponse(t, w)
	errObj, ok := response["error"].(map[string]interface{})
	require.True(t, ok, "expected an error envelope, got %s", w.Body.String())
	return errObj["code"].(string)
}

// decimalField reads a decimal that was rendered as a JSON string
func decimalField(t *testing.T, v interface{}) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	require.True(t, ok, "expected decimal string, got %#v", v)
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func createMenuItem(t *testing.T, db *gorm.DB, name, price string) models.MenuItem {
	return testutil.CreateMenuItem(t, db, name, price, models.CategoryMilkTea)
}
