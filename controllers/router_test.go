package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"attire-service/controllers"
	"attire-service/middleware"
	"attire-service/models"
	"attire-service/notifier"
	"attire-service/reminder"
	"attire-service/routes"
	"attire-service/sender"
	"attire-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type harness struct {
	router   *gin.Engine
	store    *notifier.Store
	data     *memStore
	customer models.Customer
	token    string
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	controllers.RegisterValidators()

	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	log := zap.NewNop()

	data := newMemStore()
	orders, customers := memOrders{data}, memCustomers{data}
	customer := models.Customer{ID: uuid.New(), Name: "Nadeesha", ContactNumber: "0712345678"}
	data.customers[customer.ID] = customer

	store := notifier.NewStore(log, clock)
	dispatcher := notifier.NewDispatcher(store, sender.NewSimulated(clock), 0, log)
	t.Cleanup(dispatcher.Wait)
	scheduler := reminder.NewScheduler(orders, customers, store, dispatcher, time.Hour, clock, log)

	orderService := services.NewOrderService(orders, customers, store, dispatcher, scheduler, log,
		services.OrderServiceOptions{Now: clock})
	tokens, err := services.NewTokenService("test-secret-with-enough-length", time.Hour)
	require.NoError(t, err)
	authService := services.NewAuthService(memCredentials{data}, tokens, log)
	require.NoError(t, authService.EnsureCredential(context.Background(), "admin", "secret123"))

	r := gin.New()
	routes.Register(r, routes.Controllers{
		Auth:          controllers.NewAuthController(authService),
		Customers:     controllers.NewCustomerController(services.NewCustomerService(customers, orders, clock, log)),
		Orders:        controllers.NewOrderController(orderService),
		Notifications: controllers.NewNotificationController(store, clock, log),
		Dashboard:     controllers.NewDashboardController(services.NewSummaryService(orders, clock), scheduler),
	}, authService, middleware.LoginRateLimit())

	h := &harness{router: r, store: store, data: data, customer: customer, now: now}
	w := h.do(t, http.MethodPost, "/auth/login", `{"username":"admin","password":"secret123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	h.token = login.Token
	return h
}

func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) rentalBody(paid string) string {
	day := func(d int) string { return h.now.AddDate(0, 0, d).Format(time.RFC3339) }
	return `{
		"customer_id": "` + h.customer.ID.String() + `",
		"type": "rent",
		"items": [{"name": "Bridal saree", "price": 12000}, {"name": "Jewellery set", "price": 3000}],
		"paid_amount": ` + paid + `,
		"deposit_amount": 2000,
		"courier_method": "bus",
		"wedding_date": "` + day(2) + `",
		"courier_date": "` + day(1) + `",
		"return_date": "` + day(4) + `"
	}`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (h *harness) placeRental(t *testing.T) (uuid.UUID, map[string]any) {
	t.Helper()
	w := h.do(t, http.MethodPost, "/orders", h.rentalBody("5000"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	id, err := uuid.Parse(body["id"].(string))
	require.NoError(t, err)
	return id, body
}

func TestPublicRoutes(t *testing.T) {
	h := newHarness(t)
	token := h.token
	h.token = ""

	w := h.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(t, http.MethodPost, "/auth/login", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	h.token = token
	w = h.do(t, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChangePassword(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/auth/change-password", `{"old_password":"secret123","new_password":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, "/auth/change-password", `{"old_password":"nope","new_password":"newsecret"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(t, http.MethodPost, "/auth/change-password", `{"old_password":"secret123","new_password":"newsecret"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	h.token = ""
	w = h.do(t, http.MethodPost, "/auth/login", `{"username":"admin","password":"newsecret"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPlaceOrder(t *testing.T) {
	h := newHarness(t)

	_, body := h.placeRental(t)
	assert.Equal(t, "15000", body["total_price"])
	assert.Equal(t, "10000", body["balance"])
	assert.Equal(t, "Nadeesha", body["customer_name"])

	st := body["status"].(map[string]any)
	assert.Equal(t, "partial", st["payment_status"])
	assert.Equal(t, "scheduled", st["dispatch_status"])
	assert.Equal(t, "not_returned", st["item_return_status"])

	log := h.store.List(true)
	require.NotEmpty(t, log)
	assert.Equal(t, models.TypeOrderPlaced, log[len(log)-1].Type)
}

func TestPlaceOrder_ValidationErrors(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"type":`, http.StatusBadRequest},
		{"no items", `{"customer_id":"` + h.customer.ID.String() + `","type":"sale","items":[],"courier_method":"bus","wedding_date":"2026-05-12T00:00:00Z","courier_date":"2026-05-11T00:00:00Z"}`, http.StatusBadRequest},
		{"blank item name", `{"customer_id":"` + h.customer.ID.String() + `","type":"sale","items":[{"name":"   ","price":10}],"courier_method":"bus","wedding_date":"2026-05-12T00:00:00Z","courier_date":"2026-05-11T00:00:00Z"}`, http.StatusBadRequest},
		{"unknown courier", `{"customer_id":"` + h.customer.ID.String() + `","type":"sale","items":[{"name":"Shawl","price":10}],"courier_method":"drone","wedding_date":"2026-05-12T00:00:00Z","courier_date":"2026-05-11T00:00:00Z"}`, http.StatusBadRequest},
		{"overpaid", h.rentalBody("20000"), http.StatusBadRequest},
		{"unknown customer", `{"customer_id":"` + uuid.NewString() + `","type":"sale","items":[{"name":"Shawl","price":10}],"courier_method":"bus","wedding_date":"2026-05-12T00:00:00Z","courier_date":"2026-05-11T00:00:00Z"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(t, http.MethodPost, "/orders", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, h.data.orders)
}

func TestGetOrder(t *testing.T) {
	h := newHarness(t)
	id, _ := h.placeRental(t)

	w := h.do(t, http.MethodGet, "/orders/"+id.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodGet, "/orders/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodGet, "/orders/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderLifecycle(t *testing.T) {
	h := newHarness(t)
	id, body := h.placeRental(t)
	base := "/orders/" + id.String()

	w := h.do(t, http.MethodPost, base+"/payments", `{"amount": 20000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, base+"/payments", `{"amount": 10000, "note": "cash"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "paid", decode(t, w)["status"].(map[string]any)["payment_status"])

	w = h.do(t, http.MethodPost, base+"/dispatch", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["is_dispatched"])

	w = h.do(t, http.MethodPost, base+"/cancel", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	items := body["items"].([]any)
	itemID := items[0].(map[string]any)["id"].(string)
	w = h.do(t, http.MethodPost, base+"/items/"+itemID+"/return", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "partial_return", decode(t, w)["status"].(map[string]any)["item_return_status"])

	w = h.do(t, http.MethodPost, base+"/items/"+uuid.NewString()+"/return", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodPost, base+"/deposit/refund", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["is_deposit_refunded"])
}

func TestCancelOrder(t *testing.T) {
	h := newHarness(t)
	id, _ := h.placeRental(t)

	w := h.do(t, http.MethodPost, "/orders/"+id.String()+"/cancel", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["is_cancelled"])

	w = h.do(t, http.MethodPut, "/orders/"+id.String(), `{"courier_method":"pickme"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(t, http.MethodGet, "/orders?status=cancelled", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["orders"], 1)
}

func TestEditOrder(t *testing.T) {
	h := newHarness(t)
	id, _ := h.placeRental(t)

	w := h.do(t, http.MethodPut, "/orders/"+id.String(), `{"items":[{"name":"Bridal saree","price":9000}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "9000", body["total_price"])
	assert.Equal(t, "4000", body["balance"])

	w = h.do(t, http.MethodPut, "/orders/"+id.String(), `{"items":[{"name":"Bridal saree","price":1000}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "total below the amount already paid")
}

func TestCustomerRoutes(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/customers", `{"name":"  Ishara  ","address":"Kandy","contact_number":"0701112223"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "Ishara", created["name"])

	w = h.do(t, http.MethodPost, "/customers", `{"name":"ishara"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(t, http.MethodPost, "/customers", `{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/customers?search=070", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["customers"], 1)

	h.placeRental(t)
	w = h.do(t, http.MethodGet, "/customers/"+h.customer.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)
	assert.Len(t, profile["orders"], 1)
	assert.Equal(t, "10000", profile["outstanding"])

	w = h.do(t, http.MethodDelete, "/customers/"+h.customer.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, h.data.orders)

	w = h.do(t, http.MethodDelete, "/customers/"+h.customer.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationRoutes(t *testing.T) {
	h := newHarness(t)
	n := h.store.Record(models.Notification{
		CustomerID:   h.customer.ID,
		OrderID:      uuid.New(),
		Type:         models.TypePaymentReminder,
		Title:        "Payment reminder",
		Message:      "Balance due",
		ScheduledFor: h.now,
	})
	path := "/notifications/" + n.ID.String()

	w := h.do(t, http.MethodGet, "/notifications/pending", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["notifications"], 1)

	w = h.do(t, http.MethodPost, path+"/failed", `{"reason":"gateway timeout"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "failed", body["status"])
	assert.Equal(t, "gateway timeout", body["error"])

	w = h.do(t, http.MethodPost, path+"/sent", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sent", decode(t, w)["status"])

	w = h.do(t, http.MethodPost, path+"/failed", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sent", decode(t, w)["status"], "sent is terminal")

	w = h.do(t, http.MethodPost, "/notifications/"+uuid.NewString()+"/sent", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodGet, "/notifications?type=payment_reminder", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = h.do(t, http.MethodGet, "/notifications/pending?due_by=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardRoutes(t *testing.T) {
	h := newHarness(t)
	h.placeRental(t)

	w := h.do(t, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	d := decode(t, w)
	assert.EqualValues(t, 1, d["active_rentals"])
	assert.EqualValues(t, 1, d["pending_deposits"])
	assert.Equal(t, "10000", d["total_outstanding"])

	w = h.do(t, http.MethodPost, "/reminders/run", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "created")
}
