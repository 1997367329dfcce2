package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopizen/internal/authz"
	"github.com/shopizen/internal/catalog"
	"github.com/shopizen/internal/config"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/models"
	"github.com/shopizen/internal/provider"
	"github.com/shopizen/internal/service"
	"github.com/shopizen/internal/workspace"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
	Toasts     []models.Toast  `json:"toasts"`
}

func newTestContainer(t *testing.T) *provider.Container {
	t.Helper()
	cfg := config.Defaults()
	store := kvstore.NewMemoryStore()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	accounts := service.NewAccountService(store, service.AccountOptions{PasswordPolicy: cfg.Security.PasswordPolicy})
	if err := accounts.EnsureDefaultAdmin(config.AdminConfig{Email: "admin@shop.test", Password: "admin1234", Name: "Admin"}); err != nil {
		t.Fatalf("ensure default admin failed: %v", err)
	}

	c := &provider.Container{
		Config: cfg,
		Store:  store,
		Catalog: catalog.New([]models.Product{
			{ID: 1, Name: "Linen Shirt", Price: models.NewMoneyFromInt(500), Sizes: []string{"S", "M", "L"}},
			{ID: 2, Name: "Canvas Tote", Price: models.NewMoneyFromInt(250)},
			{ID: 3, Name: "Wool Scarf", Price: models.NewMoneyFromInt(300)},
			{ID: 4, Name: "Leather Belt", Price: models.NewMoneyFromInt(400)},
		}),
		AuthzService:       authzService,
		AccountService:     accounts,
		CaptchaService:     service.NewCaptchaService(cfg.Captcha),
		ClientTokenService: service.NewClientTokenService(cfg.ClientToken, nil),
		Workspaces:         workspace.NewRegistry(workspace.Deps{Base: store, Config: cfg}),
	}
	t.Cleanup(c.Workspaces.CloseAll)
	return c
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) envelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(clientTokenHeader, token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s http status want 200 got %d", method, path, w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal %s %s failed: %v body=%s", method, path, err, w.Body.String())
	}
	return resp
}

func issueToken(t *testing.T, r http.Handler) string {
	t.Helper()
	resp := doJSON(t, r, http.MethodPost, "/api/v1/client/token", "", nil)
	if resp.StatusCode != 0 {
		t.Fatalf("issue token failed: %+v", resp)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("token missing in %s", string(resp.Data))
	}
	return data.Token
}

func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c := newTestContainer(t)
	return SetupRouter(c.Config, c)
}

func TestClientRoutesRequireToken(t *testing.T) {
	r := setupTestRouter(t)
	resp := doJSON(t, r, http.MethodGet, "/api/v1/cart", "", nil)
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
	resp = doJSON(t, r, http.MethodGet, "/api/v1/cart", "not-a-token", nil)
	if resp.StatusCode != 401 {
		t.Fatalf("invalid token status_code want 401 got %d", resp.StatusCode)
	}
}

func TestGuestCheckoutClearsCart(t *testing.T) {
	r := setupTestRouter(t)
	token := issueToken(t, r)

	resp := doJSON(t, r, http.MethodPost, "/api/v1/cart/items", token, gin.H{"product_id": 1})
	if resp.StatusCode != 400 {
		t.Fatalf("missing size should be rejected, got %+v", resp)
	}
	for i := 0; i < 2; i++ {
		resp = doJSON(t, r, http.MethodPost, "/api/v1/cart/items", token, gin.H{"product_id": 1, "size": "M", "color": "Red"})
		if resp.StatusCode != 0 {
			t.Fatalf("add cart item failed: %+v", resp)
		}
	}
	if len(resp.Toasts) == 0 {
		t.Fatalf("expected cart toast in response")
	}

	resp = doJSON(t, r, http.MethodPost, "/api/v1/checkout/orders", token, nil)
	if resp.StatusCode != 400 {
		t.Fatalf("unconfirmed checkout should be rejected, got %+v", resp)
	}

	customer := models.CustomerInfo{
		FirstName: "Asha", LastName: "Rao", Email: "asha@example.com", Phone: "9876543210",
		HouseNo: "12", Address: "MG Road", City: "Pune", State: "MH", Pincode: "411001",
		Country: "India", PaymentMethod: "cod",
	}
	resp = doJSON(t, r, http.MethodPost, "/api/v1/checkout/confirm", token, customer)
	if resp.StatusCode != 0 {
		t.Fatalf("confirm details failed: %+v", resp)
	}
	resp = doJSON(t, r, http.MethodPost, "/api/v1/checkout/orders", token, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("place order failed: %+v", resp)
	}
	var order models.Order
	if err := json.Unmarshal(resp.Data, &order); err != nil {
		t.Fatalf("decode order failed: %v", err)
	}
	if order.TotalItems != 2 || order.TotalPrice.String() != models.NewMoneyFromInt(1000).String() {
		t.Fatalf("unexpected order totals: %+v", order)
	}
	if order.PaymentStatus != "pending" || order.UserID != "guest" {
		t.Fatalf("unexpected order meta: %+v", order)
	}

	resp = doJSON(t, r, http.MethodGet, "/api/v1/cart", token, nil)
	var summary service.CartSummary
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		t.Fatalf("decode cart failed: %v", err)
	}
	if len(summary.Lines) != 0 || summary.TotalItems != 0 {
		t.Fatalf("cart should be empty after checkout: %+v", summary)
	}
}

func TestComparisonFullReturnsCurrentItems(t *testing.T) {
	r := setupTestRouter(t)
	token := issueToken(t, r)

	for _, id := range []uint{1, 2, 3} {
		resp := doJSON(t, r, http.MethodPost, "/api/v1/comparison", token, gin.H{"product_id": id})
		if resp.StatusCode != 0 {
			t.Fatalf("add comparison %d failed: %+v", id, resp)
		}
	}
	resp := doJSON(t, r, http.MethodPost, "/api/v1/comparison", token, gin.H{"product_id": 4})
	if resp.StatusCode != 400 {
		t.Fatalf("full comparison status_code want 400 got %+v", resp)
	}
	if len(resp.Toasts) == 0 {
		t.Fatalf("full comparison should carry an error toast")
	}
	var data struct {
		Items    []models.Product `json:"items"`
		MaxItems int              `json:"max_items"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode comparison failed: %v body=%s", err, string(resp.Data))
	}
	if len(data.Items) != 3 || data.MaxItems != 3 {
		t.Fatalf("unexpected comparison payload: %+v", data)
	}
	for _, item := range data.Items {
		if item.ID == 4 {
			t.Fatalf("rejected product should not be in comparison: %+v", data.Items)
		}
	}
}

func TestHealthReportsRedisDisabled(t *testing.T) {
	r := setupTestRouter(t)
	resp := doJSON(t, r, http.MethodGet, "/health", "", nil)
	var data struct {
		Status string `json:"status"`
		Redis  string `json:"redis"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode health failed: %v", err)
	}
	if resp.StatusCode != 0 || data.Status != "ok" || data.Redis != "disabled" {
		t.Fatalf("unexpected health payload: %+v %+v", resp, data)
	}
}

func TestMemberRoutesRejectGuest(t *testing.T) {
	r := setupTestRouter(t)
	token := issueToken(t, r)

	resp := doJSON(t, r, http.MethodGet, "/api/v1/notifications", token, nil)
	if resp.StatusCode != 401 {
		t.Fatalf("guest notifications status_code want 401 got %d", resp.StatusCode)
	}
	resp = doJSON(t, r, http.MethodGet, "/api/v1/admin/orders", token, nil)
	if resp.StatusCode != 401 {
		t.Fatalf("guest admin status_code want 401 got %d", resp.StatusCode)
	}
}

func TestAdminRoutesEnforceRole(t *testing.T) {
	r := setupTestRouter(t)

	userToken := issueToken(t, r)
	resp := doJSON(t, r, http.MethodPost, "/api/v1/session/login/mobile", userToken, gin.H{"mobile": "+919876543210"})
	if resp.StatusCode != 0 {
		t.Fatalf("mobile login failed: %+v", resp)
	}
	resp = doJSON(t, r, http.MethodGet, "/api/v1/admin/orders", userToken, nil)
	if resp.StatusCode != 403 {
		t.Fatalf("user admin status_code want 403 got %d", resp.StatusCode)
	}

	adminToken := issueToken(t, r)
	resp = doJSON(t, r, http.MethodPost, "/api/v1/session/login/email", adminToken, gin.H{"email": "admin@shop.test", "password": "wrong-pass1"})
	if resp.StatusCode != 401 {
		t.Fatalf("wrong password status_code want 401 got %d", resp.StatusCode)
	}
	resp = doJSON(t, r, http.MethodPost, "/api/v1/session/login/email", adminToken, gin.H{"email": "admin@shop.test", "password": "admin1234"})
	if resp.StatusCode != 0 {
		t.Fatalf("admin login failed: %+v", resp)
	}
	resp = doJSON(t, r, http.MethodGet, "/api/v1/admin/orders", adminToken, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("admin orders failed: %+v", resp)
	}
}
