package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/linemk/ecommerce-api/internal/app/handlers"
	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/ecommerce-api/internal/service"
	"github.com/linemk/ecommerce-api/internal/storage"
)

// fakeAuthService — фиктивная реализация для тестирования.
type fakeAuthService struct {
	token string
	err   error
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return f.token, f.err
}

type fakeUserService struct {
	user *models.User
	list *service.UserList
	err  error

	gotPage    int
	gotPerPage int
	gotUpdate  service.UserUpdate
}

func (f *fakeUserService) Create(ctx context.Context, name, address, email, password string) (*models.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) Update(ctx context.Context, id int64, upd service.UserUpdate) (*models.User, error) {
	f.gotUpdate = upd
	return f.user, f.err
}

func (f *fakeUserService) Delete(ctx context.Context, id int64) error {
	return f.err
}

func (f *fakeUserService) List(ctx context.Context, page, perPage int) (*service.UserList, error) {
	f.gotPage = page
	f.gotPerPage = perPage
	return f.list, f.err
}

type fakeProductService struct {
	product *models.Product
	list    *service.ProductList
	err     error

	gotPage    int
	gotPerPage int
}

func (f *fakeProductService) Create(ctx context.Context, name string, price float64) (*models.Product, error) {
	return f.product, f.err
}

func (f *fakeProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	return f.product, f.err
}

func (f *fakeProductService) Update(ctx context.Context, id int64, upd service.ProductUpdate) (*models.Product, error) {
	return f.product, f.err
}

func (f *fakeProductService) Delete(ctx context.Context, id int64) error {
	return f.err
}

func (f *fakeProductService) List(ctx context.Context, page, perPage int) (*service.ProductList, error) {
	f.gotPage = page
	f.gotPerPage = perPage
	return f.list, f.err
}

type fakeOrderService struct {
	order    *models.Order
	orders   []*models.Order
	products []*models.Product
	err      error
}

func (f *fakeOrderService) Create(ctx context.Context, userID int64) (*models.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderService) AddProduct(ctx context.Context, orderID, productID int64) error {
	return f.err
}

func (f *fakeOrderService) RemoveProduct(ctx context.Context, orderID, productID int64) error {
	return f.err
}

func (f *fakeOrderService) ListByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	return f.orders, f.err
}

func (f *fakeOrderService) ListProducts(ctx context.Context, orderID int64) ([]*models.Product, error) {
	return f.products, f.err
}

func (f *fakeOrderService) Ship(ctx context.Context, orderID int64) error {
	return f.err
}

func (f *fakeOrderService) Cancel(ctx context.Context, orderID int64) error {
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// withURLParams добавляет в запрос параметры маршрута chi.
func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestLoginHandler_Success(t *testing.T) {
	fakeSvc := &fakeAuthService{token: "test-token", err: nil}
	handler := handlers.LoginHandler(testLogger(), fakeSvc)

	reqBody := `{"email": "ana@x.com", "password": "pw1"}`
	req := httptest.NewRequest("POST", "/login", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "Expected status 200 OK")

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err, "Response decoding should succeed")
	assert.Equal(t, "test-token", resp.AccessToken)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	fakeSvc := &fakeAuthService{err: service.ErrInvalidCredentials}
	handler := handlers.LoginHandler(testLogger(), fakeSvc)

	reqBody := `{"email": "ana@x.com", "password": "wrong"}`
	req := httptest.NewRequest("POST", "/login", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected status 401 for bad credentials")
	assert.NotContains(t, rr.Body.String(), "access_token")
}

func TestLoginHandler_InvalidJSON(t *testing.T) {
	handler := handlers.LoginHandler(testLogger(), &fakeAuthService{})

	reqBody := `{"email": "ana@x.com", "password":`
	req := httptest.NewRequest("POST", "/login", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for invalid JSON")
}

func TestCreateUserHandler_Success(t *testing.T) {
	fakeSvc := &fakeUserService{user: &models.User{ID: 1, Name: "Ana", Email: "ana@x.com", PassHash: []byte("secret-hash")}}
	handler := handlers.CreateUserHandler(testLogger(), fakeSvc)

	reqBody := `{"name": "Ana", "email": "ana@x.com", "password": "pw1"}`
	req := httptest.NewRequest("POST", "/users", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code, "Expected status 201 Created")
	assert.NotContains(t, rr.Body.String(), "secret-hash", "Password hash must never be serialized")
	assert.NotContains(t, rr.Body.String(), "pass_hash")
}

func TestCreateUserHandler_ValidationError(t *testing.T) {
	handler := handlers.CreateUserHandler(testLogger(), &fakeUserService{})

	// email не похож на email
	reqBody := `{"name": "Ana", "email": "not-an-email", "password": "pw1"}`
	req := httptest.NewRequest("POST", "/users", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for validation error")
	assert.Contains(t, rr.Body.String(), "email")
}

func TestCreateUserHandler_DuplicateEmail(t *testing.T) {
	fakeSvc := &fakeUserService{err: storage.ErrEmailTaken}
	handler := handlers.CreateUserHandler(testLogger(), fakeSvc)

	reqBody := `{"name": "Ana", "email": "ana@x.com", "password": "pw1"}`
	req := httptest.NewRequest("POST", "/users", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for duplicate email")
}

func TestGetUserHandler_NotFound(t *testing.T) {
	fakeSvc := &fakeUserService{err: storage.ErrUserNotFound}
	handler := handlers.GetUserHandler(testLogger(), fakeSvc)

	req := withURLParams(httptest.NewRequest("GET", "/users/99", nil), map[string]string{"id": "99"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code, "Expected status 404 for missing user")
}

func TestUpdateUserHandler_PartialBody(t *testing.T) {
	fakeSvc := &fakeUserService{user: &models.User{ID: 1, Name: "Ana Maria", Email: "ana@x.com"}}
	handler := handlers.UpdateUserHandler(testLogger(), fakeSvc)

	// Передано только имя: остальные поля не должны попасть в обновление.
	reqBody := `{"name": "Ana Maria"}`
	req := withURLParams(httptest.NewRequest("PUT", "/users/1", bytes.NewBufferString(reqBody)), map[string]string{"id": "1"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotNil(t, fakeSvc.gotUpdate.Name)
	assert.Equal(t, "Ana Maria", *fakeSvc.gotUpdate.Name)
	assert.Nil(t, fakeSvc.gotUpdate.Email, "Absent field must stay nil")
	assert.Nil(t, fakeSvc.gotUpdate.Address, "Absent field must stay nil")
	assert.Nil(t, fakeSvc.gotUpdate.Password, "Absent field must stay nil")
}

func TestDeleteUserHandler_NoContent(t *testing.T) {
	handler := handlers.DeleteUserHandler(testLogger(), &fakeUserService{})

	req := withURLParams(httptest.NewRequest("DELETE", "/users/1", nil), map[string]string{"id": "1"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code, "Expected status 204 on delete")
}

func TestListProductsHandler_DefaultPagination(t *testing.T) {
	fakeSvc := &fakeProductService{list: &service.ProductList{Products: []*models.Product{}, Total: 0, Pages: 0}}
	handler := handlers.ListProductsHandler(testLogger(), fakeSvc)

	// Параметры не переданы: должны подставиться page=1, per_page=10.
	req := httptest.NewRequest("GET", "/products", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, fakeSvc.gotPage)
	assert.Equal(t, 10, fakeSvc.gotPerPage)

	var resp handlers.ProductListResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 1, resp.CurrentPage)
	assert.NotNil(t, resp.Products, "Empty page must serialize as [], not null")
}

func TestListProductsHandler_InvalidPaginationFallsBack(t *testing.T) {
	fakeSvc := &fakeProductService{list: &service.ProductList{Products: []*models.Product{}, Total: 0, Pages: 0}}
	handler := handlers.ListProductsHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/products?page=-3&per_page=abc", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, fakeSvc.gotPage, "Negative page falls back to 1")
	assert.Equal(t, 10, fakeSvc.gotPerPage, "Non-numeric per_page falls back to 10")
}

func TestCreateOrderHandler_Success(t *testing.T) {
	fakeSvc := &fakeOrderService{order: &models.Order{ID: 7, UserID: 1, Status: models.OrderStatusPending, OrderDate: time.Now()}}
	handler := handlers.CreateOrderHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("POST", "/orders", nil)
	req = req.WithContext(context.WithValue(req.Context(), jwtmiddleware.UserIDKey, int64(1)))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code, "Expected status 201 Created")

	var resp models.Order
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, models.OrderStatusPending, resp.Status)
}

func TestCreateOrderHandler_MissingUserID(t *testing.T) {
	handler := handlers.CreateOrderHandler(testLogger(), &fakeOrderService{})

	// userID не установлен в контекст — middleware не отработал.
	req := httptest.NewRequest("POST", "/orders", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected status 401 without userID")
}

func TestAddProductToOrderHandler_AlreadyPresent(t *testing.T) {
	fakeSvc := &fakeOrderService{err: service.ErrProductAlreadyInOrder}
	handler := handlers.AddProductToOrderHandler(testLogger(), fakeSvc)

	req := withURLParams(httptest.NewRequest("POST", "/orders/7/add_product/1", nil),
		map[string]string{"order_id": "7", "product_id": "1"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for duplicate add")
	assert.Contains(t, rr.Body.String(), "Product already in order")
}

func TestAddProductToOrderHandler_OrderNotFound(t *testing.T) {
	fakeSvc := &fakeOrderService{err: storage.ErrOrderNotFound}
	handler := handlers.AddProductToOrderHandler(testLogger(), fakeSvc)

	req := withURLParams(httptest.NewRequest("POST", "/orders/42/add_product/1", nil),
		map[string]string{"order_id": "42", "product_id": "1"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code, "Expected status 404 for missing order")
}

func TestAddProductToOrderHandler_Success(t *testing.T) {
	handler := handlers.AddProductToOrderHandler(testLogger(), &fakeOrderService{})

	req := withURLParams(httptest.NewRequest("POST", "/orders/7/add_product/1", nil),
		map[string]string{"order_id": "7", "product_id": "1"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Product added to order")
}

func TestRemoveProductFromOrderHandler_NotFound(t *testing.T) {
	fakeSvc := &fakeOrderService{err: service.ErrProductNotInOrder}
	handler := handlers.RemoveProductFromOrderHandler(testLogger(), fakeSvc)

	reqBody := `{"product_id": 1}`
	req := withURLParams(httptest.NewRequest("DELETE", "/orders/7/remove_product", bytes.NewBufferString(reqBody)),
		map[string]string{"order_id": "7"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code, "Expected status 404 for missing association")
	assert.Contains(t, rr.Body.String(), "Product not found in this order")
}

func TestShipOrderHandler_Finalized(t *testing.T) {
	fakeSvc := &fakeOrderService{err: service.ErrOrderFinalized}
	handler := handlers.ShipOrderHandler(testLogger(), fakeSvc)

	req := withURLParams(httptest.NewRequest("POST", "/orders/7/ship", nil), map[string]string{"order_id": "7"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code, "Expected status 409 for terminal-state transition")
}

func TestCancelOrderHandler_Success(t *testing.T) {
	handler := handlers.CancelOrderHandler(testLogger(), &fakeOrderService{})

	req := withURLParams(httptest.NewRequest("POST", "/orders/7/cancel", nil), map[string]string{"order_id": "7"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Order cancelled")
}

func TestListOrderProductsHandler_Success(t *testing.T) {
	fakeSvc := &fakeOrderService{products: []*models.Product{{ID: 1, Name: "keyboard", Price: 9.99}}}
	handler := handlers.ListOrderProductsHandler(testLogger(), fakeSvc)

	req := withURLParams(httptest.NewRequest("GET", "/orders/7/products", nil), map[string]string{"order_id": "7"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp []*models.Product
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp, 1)
	assert.Equal(t, "keyboard", resp[0].Name)
	assert.Equal(t, 9.99, resp[0].Price)
}
