package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/hapkiduki/apnacart/internal/application/cart"
	"github.com/hapkiduki/apnacart/internal/application/catalog"
	"github.com/hapkiduki/apnacart/internal/application/dto"
	"github.com/hapkiduki/apnacart/internal/application/imagelink"
	"github.com/hapkiduki/apnacart/internal/application/order"
	"github.com/hapkiduki/apnacart/internal/domain/entity"
	"github.com/hapkiduki/apnacart/internal/infrastructure/imagestore"
	"github.com/hapkiduki/apnacart/internal/infrastructure/logging"
	"github.com/hapkiduki/apnacart/internal/infrastructure/persistance/sqlstore"
	"github.com/hapkiduki/apnacart/internal/infrastructure/seed"
	"github.com/hapkiduki/apnacart/internal/infrastructure/session"
)

type RouterSuite struct {
	suite.Suite
	router    http.Handler
	sessions  *session.MemoryStore
	imagesDir string
}

func (s *RouterSuite) SetupTest() {
	ctx := context.Background()
	log := logging.Nop()

	db, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver: "sqlite",
		DSN:    "file:" + filepath.Join(s.T().TempDir(), "apnacart.db"),
	})
	s.Require().NoError(err)
	s.T().Cleanup(func() { db.Close() })
	s.Require().NoError(db.Migrate(ctx))

	repo := sqlstore.NewVegetableRepository(db)
	s.sessions = session.NewMemoryStore(session.Config{Policy: entity.DefaultCapacityPolicy()})
	s.T().Cleanup(func() { s.sessions.Close() })

	s.imagesDir = s.T().TempDir()

	carts := cart.NewService(s.sessions, repo, order.NewFormatter(order.Options{}), cart.Options{
		Prices: entity.DefaultPricePolicy(),
	}, log)

	s.router = NewRouter(RouterConfig{
		Version:        "test",
		AllowedOrigins: []string{"*"},
		RequestTimeout: 5 * time.Second,
		MaxBodyBytes:   1 << 20,
	}, Dependencies{
		Catalog: catalog.NewService(repo, imagelink.NewResolver(nil), log),
		Carts:   carts,
		Images:  imagestore.New(s.imagesDir, s.T().TempDir(), log),
		Seed:    seed.Default,
		DB:      db,
		Log:     log,
	})
}

func (s *RouterSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](s *RouterSuite, rec *httptest.ResponseRecorder) dto.APIResponse[T] {
	var resp dto.APIResponse[T]
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func (s *RouterSuite) expectError(rec *httptest.ResponseRecorder, status int, code string) {
	s.Equal(status, rec.Code, rec.Body.String())
	resp := decodeBody[any](s, rec)
	s.False(resp.Success)
	s.Require().NotNil(resp.Error)
	s.Equal(code, resp.Error.Code)
}

func (s *RouterSuite) createVegetable(name, weight string) dto.VegetableResponse {
	rec := s.do(http.MethodPost, "/api/vegetables", dto.CreateVegetableRequest{Name: name, WeightUnit: weight})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[dto.VegetableResponse](s, rec).Data
}

func (s *RouterSuite) createCart(size string) string {
	rec := s.do(http.MethodPost, "/api/carts", nil)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeBody[dto.CartResponse](s, rec).Data.ID
	s.Require().NotEmpty(id)

	if size != "" {
		rec = s.do(http.MethodPut, "/api/carts/"+id+"/size", dto.SelectSizeRequest{Size: size})
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	}
	return id
}

func (s *RouterSuite) TestHealthAndReady() {
	rec := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("test", rec.Header().Get("X-API-Version"))
	s.NotEmpty(rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodGet, "/ready", nil)
	s.Equal(http.StatusOK, rec.Code)
	resp := decodeBody[dto.HealthResponse](s, rec)
	s.Equal("up", resp.Data.Checks["database"].Status)
}

func (s *RouterSuite) TestVegetableCRUD() {
	created := s.createVegetable("Tomato", "500g")
	s.Equal("/images/Tomato.jpeg", created.ImageURL)
	s.Equal(0.5, created.WeightKg)
	path := "/api/vegetables/" + strconv.Itoa(created.ID)

	rec := s.do(http.MethodGet, path, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Tomato", decodeBody[dto.VegetableResponse](s, rec).Data.Name)

	rec = s.do(http.MethodPut, path, dto.UpdateVegetableRequest{Name: "Cherry Tomato", WeightUnit: "250g", ImageURL: "cherry.png"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[dto.VegetableResponse](s, rec).Data
	s.Equal("250g", updated.WeightUnit)
	s.Equal("/images/cherry.png", updated.ImageURL)

	rec = s.do(http.MethodGet, "/api/vegetables?search=cherry", nil)
	s.Equal(http.StatusOK, rec.Code)
	page := decodeBody[dto.PaginateResponse[dto.VegetableResponse]](s, rec).Data
	s.Equal(int64(1), page.Total)

	rec = s.do(http.MethodDelete, path, nil)
	s.Equal(http.StatusOK, rec.Code)

	s.expectError(s.do(http.MethodGet, path, nil), http.StatusNotFound, "VEGETABLE_NOT_FOUND")
	s.expectError(s.do(http.MethodDelete, path, nil), http.StatusNotFound, "VEGETABLE_NOT_FOUND")
}

func (s *RouterSuite) TestVegetableValidation() {
	rec := s.do(http.MethodPost, "/api/vegetables", dto.CreateVegetableRequest{Name: "Okra", WeightUnit: "750g"})
	s.expectError(rec, http.StatusBadRequest, "VALIDATION_ERROR")

	rec = s.do(http.MethodPost, "/api/vegetables", dto.CreateVegetableRequest{})
	s.Equal(http.StatusBadRequest, rec.Code)
	resp := decodeBody[any](s, rec)
	s.Require().NotNil(resp.Error)
	s.Len(resp.Error.ValidationErrors, 2)

	s.createVegetable("Okra", "250g")
	rec = s.do(http.MethodPost, "/api/vegetables", dto.CreateVegetableRequest{Name: "okra", WeightUnit: "500g"})
	s.expectError(rec, http.StatusConflict, "DUPLICATE_VEGETABLE")

	s.expectError(s.do(http.MethodGet, "/api/vegetables/abc", nil), http.StatusBadRequest, "INVALID_ID")
	s.expectError(s.do(http.MethodGet, "/api/vegetables?weight=2kg", nil), http.StatusBadRequest, "VALIDATION_ERROR")

	req := httptest.NewRequest(http.MethodPost, "/api/vegetables", strings.NewReader(`name=Okra`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.expectError(rec, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE")

	req = httptest.NewRequest(http.MethodPost, "/api/vegetables", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.expectError(rec, http.StatusBadRequest, "INVALID_REQUEST")
}

func (s *RouterSuite) TestSetupDatabase() {
	s.createVegetable("Dragon Fruit", "1kg")

	rec := s.do(http.MethodPost, "/api/setup-database", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	seeded := decodeBody[dto.DatabaseStatus](s, rec).Data

	rec = s.do(http.MethodGet, "/api/setup-database", nil)
	s.Equal(http.StatusOK, rec.Code)
	status := decodeBody[dto.DatabaseStatus](s, rec).Data
	s.Equal(seeded.Count, status.Count)
	s.Positive(status.Count)

	rec = s.do(http.MethodGet, "/api/vegetables?search=dragon", nil)
	s.Equal(int64(0), decodeBody[dto.PaginateResponse[dto.VegetableResponse]](s, rec).Data.Total)
}

func (s *RouterSuite) TestCartSizes() {
	rec := s.do(http.MethodGet, "/api/cart-sizes", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	plans := decodeBody[[]dto.CartPlanResponse](s, rec).Data
	s.Require().Len(plans, 2)
	s.Equal("small", plans[0].Size)
	s.Equal(4.5, plans[0].CapacityKg)
	s.Require().NotNil(plans[0].Price)
	s.Equal("₹349", plans[0].Price.Display)
	s.Equal("family", plans[1].Size)
	s.Equal("Family Cart (7kg)", plans[1].Label)

	id := s.createCart("family")
	rec = s.do(http.MethodGet, "/api/carts/"+id, nil)
	view := decodeBody[dto.CartResponse](s, rec).Data
	s.Require().NotNil(view.Price)
	s.Equal("₹559", view.Price.Display)
}

func (s *RouterSuite) TestCartRequiresSize() {
	potato := s.createVegetable("Potato", "1kg")
	id := s.createCart("")

	rec := s.do(http.MethodPost, "/api/carts/"+id+"/items", dto.AddItemRequest{VegetableID: potato.ID})
	s.expectError(rec, http.StatusConflict, "NO_CART_SELECTED")

	rec = s.do(http.MethodPut, "/api/carts/"+id+"/size", dto.SelectSizeRequest{Size: "huge"})
	s.expectError(rec, http.StatusBadRequest, "INVALID_CART_SIZE")

	rec = s.do(http.MethodPost, "/api/carts/"+id+"/checkout", nil)
	s.expectError(rec, http.StatusConflict, "NO_CART_SELECTED")
}

func (s *RouterSuite) TestCartFillAndCheckout() {
	potato := s.createVegetable("Potato", "1kg")
	garlic := s.createVegetable("Garlic", "500g")
	id := s.createCart("small")
	base := "/api/carts/" + id

	for i := 0; i < 4; i++ {
		rec := s.do(http.MethodPost, base+"/items", dto.AddItemRequest{VegetableID: potato.ID})
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := s.do(http.MethodGet, base+"/capacity?weight=500g", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	check := decodeBody[dto.CapacityCheckResponse](s, rec).Data
	s.True(check.CanAdd)
	s.Equal("0.50kg", check.Remaining)

	rec = s.do(http.MethodPost, base+"/items", dto.AddItemRequest{VegetableID: garlic.ID})
	s.Require().Equal(http.StatusOK, rec.Code)
	view := decodeBody[dto.CartResponse](s, rec).Data
	s.Equal("4.5kg", view.Total)
	s.True(view.AtCapacity)
	s.Equal(5, view.ItemCount)

	rec = s.do(http.MethodPost, base+"/items", dto.AddItemRequest{VegetableID: garlic.ID})
	s.expectError(rec, http.StatusUnprocessableEntity, "CAPACITY_EXCEEDED")

	rec = s.do(http.MethodPatch, base+"/items/"+strconv.Itoa(potato.ID), dto.UpdateQuantityRequest{Quantity: 9})
	s.expectError(rec, http.StatusUnprocessableEntity, "CAPACITY_EXCEEDED")

	rec = s.do(http.MethodGet, base, nil)
	s.Equal("4.5kg", decodeBody[dto.CartResponse](s, rec).Data.Total)

	rec = s.do(http.MethodPost, base+"/checkout", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody[dto.CheckoutResponse](s, rec).Data
	s.Contains(out.Message, "Potato – 1kg x4")
	s.Contains(out.Message, "Garlic – 500g x1")
	s.True(strings.HasPrefix(out.URL, "https://wa.me/919100018181?text="))
}

func (s *RouterSuite) TestCartItemEdits() {
	potato := s.createVegetable("Potato", "1kg")
	id := s.createCart("family")
	base := "/api/carts/" + id
	item := base + "/items/" + strconv.Itoa(potato.ID)

	rec := s.do(http.MethodPatch, item, dto.UpdateQuantityRequest{Quantity: 2})
	s.expectError(rec, http.StatusNotFound, "ITEM_NOT_IN_CART")

	s.do(http.MethodPost, base+"/items", dto.AddItemRequest{VegetableID: potato.ID})
	rec = s.do(http.MethodPatch, item, dto.UpdateQuantityRequest{Quantity: 3})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("3kg", decodeBody[dto.CartResponse](s, rec).Data.Total)

	rec = s.do(http.MethodDelete, base+"/items/999", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(1, len(decodeBody[dto.CartResponse](s, rec).Data.Lines))

	rec = s.do(http.MethodDelete, base+"/items", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	cleared := decodeBody[dto.CartResponse](s, rec).Data
	s.Empty(cleared.Lines)
	s.Equal("family", cleared.Size)

	rec = s.do(http.MethodPost, base+"/checkout", nil)
	s.expectError(rec, http.StatusUnprocessableEntity, "EMPTY_CART")

	s.expectError(s.do(http.MethodGet, base+"/capacity?weight=heavy", nil), http.StatusBadRequest, "INVALID_WEIGHT")
	s.expectError(s.do(http.MethodPost, base+"/items", dto.AddItemRequest{VegetableID: 9999}), http.StatusNotFound, "VEGETABLE_NOT_FOUND")
}

func (s *RouterSuite) TestCartLifecycle() {
	id := s.createCart("")
	s.Equal(1, s.sessions.Len())

	rec := s.do(http.MethodDelete, "/api/carts/"+id, nil)
	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal(0, s.sessions.Len())

	s.expectError(s.do(http.MethodGet, "/api/carts/"+id, nil), http.StatusNotFound, "CART_NOT_FOUND")
	s.expectError(s.do(http.MethodGet, "/api/carts/not-a-uuid", nil), http.StatusNotFound, "CART_NOT_FOUND")
}

func (s *RouterSuite) TestImages() {
	img := image.NewRGBA(image.Rect(0, 0, 900, 450))
	for x := 0; x < 900; x += 3 {
		img.Set(x, x/2, color.RGBA{R: 200, G: 40, B: 40, A: 255})
	}
	var buf bytes.Buffer
	s.Require().NoError(png.Encode(&buf, img))
	s.Require().NoError(os.WriteFile(filepath.Join(s.imagesDir, "Tomato.png"), buf.Bytes(), 0o644))

	rec := s.do(http.MethodGet, "/images/Tomato.png?size=thumb", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("image/jpeg", rec.Header().Get("Content-Type"))
	thumb, _, err := image.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	s.Require().NoError(err)
	s.Equal(300, thumb.Width)

	rec = s.do(http.MethodGet, "/images/Tomato.png", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(buf.Len(), rec.Body.Len())

	s.expectError(s.do(http.MethodGet, "/images/Missing.png?size=medium", nil), http.StatusNotFound, "IMAGE_NOT_FOUND")
}

func (s *RouterSuite) TestNotFound() {
	s.expectError(s.do(http.MethodGet, "/nowhere", nil), http.StatusNotFound, "NOT_FOUND")
	s.expectError(s.do(http.MethodGet, "/api/nowhere", nil), http.StatusNotFound, "NOT_FOUND")
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}
