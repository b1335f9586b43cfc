package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/infra/catalog"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

const (
	testEmail    = "sales@example.com"
	testPassword = "test-password"
	testSecret   = "test-secret"
)

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return "order-" + string(rune('a'+g.n-1))
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type hs256Issuer struct{ secret []byte }

func (i *hs256Issuer) Issue(email string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(time.Hour)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": email,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	})
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// 本番のmainと同じ組み立てを、インメモリKVと固定時計で再現する
func newTestApp(t *testing.T) *echo.Echo {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{
		JWTSecret:         testSecret,
		SalesEmail:        testEmail,
		SalesPasswordHash: string(hash),
	}

	productCatalog, err := catalog.NewJSONCatalog("testdata/CustomerPricing.json")
	if err != nil {
		t.Fatal(err)
	}
	stockCatalog, err := catalog.NewJSONStock("")
	if err != nil {
		t.Fatal(err)
	}

	clock := &fixedClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := infraRepo.NewOrderStoreKV(infraRepo.NewMemoryKV(), &seqIDGen{}, clock)

	authUC := usecase.NewAuthUsecase(
		cfg.SalesEmail, cfg.SalesPasswordHash,
		usecase.NewBcryptPasswordVerifier(),
		&hs256Issuer{secret: []byte(cfg.JWTSecret)},
		clock,
	)
	catalogUC := usecase.NewCatalogUsecase(productCatalog, stockCatalog)
	orderUC := usecase.NewOrderUsecase(store, productCatalog, clock, time.Hour)

	return server.New(
		cfg,
		handler.NewAuthHandler(authUC),
		handler.NewCatalogHandler(catalogUC),
		handler.NewOrderHandler(orderUC),
		handler.NewOrdersHandler(orderUC),
	)
}

func doJSON(e *echo.Echo, method string, path string, body string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo) string {
	t.Helper()

	rec := doJSON(e, http.MethodPost, "/auth/login",
		`{"email":"`+testEmail+`","password":"`+testPassword+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}

	var out usecase.LoginOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	return out.Token
}

func TestLogin(t *testing.T) {
	e := newTestApp(t)

	rec := doJSON(e, http.MethodPost, "/auth/login",
		`{"email":"`+testEmail+`","password":"`+testPassword+`"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var out usecase.LoginOutput
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, testEmail, out.Email)
	assert.NotEmpty(t, out.Token)
	assert.Greater(t, out.ExpiresIn, int64(0))
}

func TestLogin_BadCredentials(t *testing.T) {
	e := newTestApp(t)

	rec := doJSON(e, http.MethodPost, "/auth/login",
		`{"email":"`+testEmail+`","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/auth/login",
		`{"email":"other@example.com","password":"`+testPassword+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/auth/login", `{"email":"","password":""}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderRoutes_RequireToken(t *testing.T) {
	e := newTestApp(t)

	rec := doJSON(e, http.MethodGet, "/order", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodGet, "/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodGet, "/order", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListProducts_Public(t *testing.T) {
	e := newTestApp(t)

	rec := doJSON(e, http.MethodGet, "/products", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var out usecase.ListProductsOutput
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(2), out.Total)
	assert.Len(t, out.Items, 2)

	// 通常割引だけが表示価格に乗る（RICE-020は5%引き）
	for _, row := range out.Items {
		if row.Product.SKU == "RICE-020" {
			assert.InDelta(t, 9.5, row.DisplayOrderUnitPrice, 1e-9)
		}
	}
}

func TestListProducts_Search(t *testing.T) {
	e := newTestApp(t)

	rec := doJSON(e, http.MethodGet, "/products?q=rice", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var out usecase.ListProductsOutput
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(1), out.Total)
	assert.Equal(t, "RICE-020", out.Items[0].Product.SKU)
}

func TestListProducts_BadPaging(t *testing.T) {
	e := newTestApp(t)

	rec := doJSON(e, http.MethodGet, "/products?page=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodGet, "/products?limit=999", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderFlow(t *testing.T) {
	e := newTestApp(t)
	token := login(t, e)

	// 最初は未保存・空
	rec := doJSON(e, http.MethodGet, "/order", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	var working usecase.WorkingOrderOutput
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &working))
	assert.Empty(t, working.OrderID)
	assert.Empty(t, working.Lines)

	// 注文を作る
	rec = doJSON(e, http.MethodPost, "/orders", `{"name":"March order"}`, token)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created usecase.OrderSummary
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "March order", created.Name)
	assert.True(t, created.IsCurrent)

	// 数量を入れる→作業中の注文が返る
	rec = doJSON(e, http.MethodPut, "/order/lines/OIL-001", `{"qty":4}`, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &working))
	assert.Len(t, working.Lines, 1)
	assert.Equal(t, 4, working.Lines[0].Line.Qty)
	assert.InDelta(t, 4*4.5, working.Totals.TotalCost, 1e-9)

	// インクリメント
	rec = doJSON(e, http.MethodPost, "/order/lines/OIL-001/increment", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &working))
	assert.Equal(t, 5, working.Lines[0].Line.Qty)

	// 一覧に行数が反映されている
	rec = doJSON(e, http.MethodGet, "/orders", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	var orders []usecase.OrderSummary
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	assert.Len(t, orders, 1)
	assert.Equal(t, 1, orders[0].LineCount)

	// 行を消す
	rec = doJSON(e, http.MethodDelete, "/order/lines/OIL-001", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &working))
	assert.Empty(t, working.Lines)
}

func TestOrderFlow_UnknownSKU(t *testing.T) {
	e := newTestApp(t)
	token := login(t, e)

	rec := doJSON(e, http.MethodPut, "/order/lines/NOPE", `{"qty":1}`, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp handler.ErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "unknown sku", errResp.Error)
}

func TestOrderFlow_PalletMode(t *testing.T) {
	e := newTestApp(t)
	token := login(t, e)

	rec := doJSON(e, http.MethodPut, "/order/lines/OIL-001/pallet-mode", `{"enabled":true}`, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	var working usecase.WorkingOrderOutput
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &working))
	assert.Len(t, working.Lines, 1)
	assert.Equal(t, 6, working.Lines[0].Line.Qty)
	assert.True(t, working.PalletMode["OIL-001"])
}

func TestOrdersCreate_DuplicateName(t *testing.T) {
	e := newTestApp(t)
	token := login(t, e)

	rec := doJSON(e, http.MethodPost, "/orders", `{"name":"March order"}`, token)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodPost, "/orders", `{"name":"march ORDER"}`, token)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOrdersRename(t *testing.T) {
	e := newTestApp(t)
	token := login(t, e)

	rec := doJSON(e, http.MethodPost, "/orders", `{"name":"March order"}`, token)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodPut, "/orders/current/name", `{"name":"April order"}`, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	var orders []usecase.OrderSummary
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	assert.Equal(t, "April order", orders[0].Name)
}

func TestOrdersRename_NoCurrent(t *testing.T) {
	e := newTestApp(t)
	token := login(t, e)

	rec := doJSON(e, http.MethodPut, "/orders/current/name", `{"name":"April order"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrdersLoadAndDelete(t *testing.T) {
	e := newTestApp(t)
	token := login(t, e)

	rec := doJSON(e, http.MethodPost, "/orders", `{"name":"Order A"}`, token)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var a usecase.OrderSummary
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))

	rec = doJSON(e, http.MethodPut, "/order/lines/OIL-001", `{"qty":2}`, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/orders", `{"name":"Order B"}`, token)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var b usecase.OrderSummary
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))

	// Aへ切り替えると行が戻る
	rec = doJSON(e, http.MethodPost, "/orders/"+a.ID+"/load", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	var working usecase.WorkingOrderOutput
	rec = doJSON(e, http.MethodGet, "/order", "", token)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &working))
	assert.Equal(t, a.ID, working.OrderID)
	assert.Len(t, working.Lines, 1)

	// 現在の注文を消すと残りへフォールバック
	rec = doJSON(e, http.MethodDelete, "/orders/"+a.ID, "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/order", "", token)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &working))
	assert.Equal(t, b.ID, working.OrderID)

	rec = doJSON(e, http.MethodGet, "/orders", "", token)
	var orders []usecase.OrderSummary
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	assert.Len(t, orders, 1)
}

func TestLoadMissingOrder(t *testing.T) {
	e := newTestApp(t)
	token := login(t, e)

	rec := doJSON(e, http.MethodPost, "/orders/nope/load", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
