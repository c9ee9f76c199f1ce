package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"giftlist/internal/auth"
	sessionstore "giftlist/internal/auth/store/session"
	userstore "giftlist/internal/auth/store/user"
	"giftlist/internal/catalog"
	catalogstore "giftlist/internal/catalog/store"
	"giftlist/internal/platform/metrics"
	"giftlist/internal/platform/middleware"
	registryhandler "giftlist/internal/registry/handler"
	"giftlist/internal/registry/models"
	registryservice "giftlist/internal/registry/service"
	registrystore "giftlist/internal/registry/store"
	"giftlist/internal/report"
	"giftlist/internal/report/pdf"
	httpapi "giftlist/internal/transport/http"
)

type APISuite struct {
	suite.Suite
	ctx        context.Context
	server     *httptest.Server
	store      *registrystore.Memory
	catalog    *catalogstore.Memory
	list       *models.GiftList
	product    *catalog.Product
	ownerToken string
	guestToken string
}

func (s *APISuite) SetupTest() {
	s.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	s.catalog = catalogstore.NewMemory()
	s.store = registrystore.NewMemory(s.catalog)
	users := userstore.NewMemory()
	sessions := sessionstore.NewMemory()

	authService := auth.NewService(users, sessions, "test-key", time.Hour)
	catalogService := catalog.NewService(s.catalog)
	promRegistry := prometheus.NewRegistry()
	registryService := registryservice.New(s.store, s.store, s.store, s.store, catalogService, metrics.New(promRegistry))
	reportService := report.NewService(s.store, s.store)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:   logger,
		Metrics:  metrics.New(prometheus.NewRegistry()),
		Registry: promRegistry,
		Sessions: authService,
		Auth:     auth.NewHandler(authService, logger),
		Catalog:  catalog.NewHandler(catalogService, logger),
		GiftList: registryhandler.New(registryService, logger),
		Report:   report.NewHandler(reportService, pdf.Render, logger),
	})
	s.server = httptest.NewServer(router)

	owner, err := authService.Register(s.ctx, "alice", "alice@example.com", "pw-alice")
	s.Require().NoError(err)
	guest, err := authService.Register(s.ctx, "bob", "bob@example.com", "pw-bob")
	s.Require().NoError(err)

	brand, err := s.catalog.UpsertBrand(s.ctx, "Le Creuset")
	s.Require().NoError(err)
	s.product, err = s.catalog.SaveProduct(s.ctx, &catalog.Product{
		Name:    "Casserole",
		Price:   decimal.RequireFromString("199.99"),
		BrandID: brand.ID,
	})
	s.Require().NoError(err)

	s.list, err = s.store.CreateGiftList(s.ctx, &models.GiftList{OwnerUserID: owner.ID, Active: true})
	s.Require().NoError(err)
	_, err = s.store.CreateGuest(s.ctx, &models.Guest{
		Email:         guest.Email,
		RecipientName: "Bob",
		GiftListID:    s.list.ID,
		UserID:        guest.ID,
	})
	s.Require().NoError(err)

	s.ownerToken = s.login("alice", "pw-alice")
	s.guestToken = s.login("bob", "pw-bob")
}

func (s *APISuite) TearDownTest() {
	s.server.Close()
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) login(username, password string) string {
	resp := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Require().NotEmpty(body.Token)
	return body.Token
}

func (s *APISuite) do(method, path, token string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *APISuite) decodeItem(resp *http.Response) models.ItemView {
	defer resp.Body.Close()
	var item models.ItemView
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&item))
	return item
}

func (s *APISuite) TestUnauthenticatedRequestRejected() {
	resp := s.do(http.MethodGet, "/api/list/", "", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal("basic", resp.Header.Get("Authorization"))
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.JSONEq(`{"error":"Unauthorized"}`, string(raw))
}

func (s *APISuite) TestMethodNotAllowed() {
	resp := s.do(http.MethodDelete, "/api/list/", s.ownerToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusMethodNotAllowed, resp.StatusCode)
	s.Contains(resp.Header.Get("Allow"), http.MethodGet)
	s.Contains(resp.Header.Get("Allow"), http.MethodPost)
}

func (s *APISuite) TestMalformedAddItemBody() {
	resp := s.do(http.MethodPost, "/api/list/", s.ownerToken, map[string]string{"product_id": "one"})
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *APISuite) TestCatalogIsPublic() {
	resp := s.do(http.MethodGet, "/api/product/", "", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var products []catalog.Product
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&products))
	s.Require().Len(products, 1)
	s.Equal("Casserole", products[0].Name)
}

func (s *APISuite) TestRegistryLifecycle() {
	// Owner adds the same product twice.
	item := s.decodeItem(s.do(http.MethodPost, "/api/list/", s.ownerToken, map[string]int64{"product_id": s.product.ID}))
	s.Equal(1, item.Qty)
	item = s.decodeItem(s.do(http.MethodPost, "/api/list/", s.ownerToken, map[string]int64{"product_id": s.product.ID}))
	s.Equal(2, item.Qty)

	// Guest sees the item.
	resp := s.do(http.MethodGet, fmt.Sprintf("/api/list/%d/guest/", s.list.ID), s.guestToken, nil)
	var items []models.ItemView
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&items))
	resp.Body.Close()
	s.Require().Len(items, 1)

	// Guest buys both units; the third attempt conflicts.
	for i := 0; i < 2; i++ {
		resp = s.do(http.MethodPost, fmt.Sprintf("/api/list/%d/purchase/", s.list.ID), s.guestToken, map[string]int64{"item_id": item.ID})
		s.Equal(http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}
	resp = s.do(http.MethodPost, fmt.Sprintf("/api/list/%d/purchase/", s.list.ID), s.guestToken, map[string]int64{"item_id": item.ID})
	s.Equal(http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// A fully purchased item cannot be removed.
	resp = s.do(http.MethodDelete, fmt.Sprintf("/api/list/%d/", item.ID), s.ownerToken, nil)
	s.Equal(http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// The guest's purchase history holds both entries.
	resp = s.do(http.MethodGet, fmt.Sprintf("/api/list/%d/purchase/", s.list.ID), s.guestToken, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var purchases []models.Purchase
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&purchases))
	resp.Body.Close()
	s.Len(purchases, 2)
}

func (s *APISuite) TestGuestCannotUseOwnerRoutes() {
	resp := s.do(http.MethodGet, "/api/list/", s.guestToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *APISuite) TestReportIsPDF() {
	item := s.decodeItem(s.do(http.MethodPost, "/api/list/", s.ownerToken, map[string]int64{"product_id": s.product.ID}))
	resp := s.do(http.MethodPost, fmt.Sprintf("/api/list/%d/purchase/", s.list.ID), s.guestToken, map[string]int64{"item_id": item.ID})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(http.MethodGet, "/api/report/", s.ownerToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/pdf", resp.Header.Get("Content-Type"))
	s.Contains(resp.Header.Get("Content-Disposition"), "report.pdf")

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.True(bytes.HasPrefix(raw, []byte("%PDF")), "body should be a PDF document")
}

func (s *APISuite) TestSessionCookieAccepted() {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/api/list/", nil)
	s.Require().NoError(err)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: s.ownerToken})
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *APISuite) TestLogoutEndsSession() {
	resp := s.do(http.MethodPost, "/api/auth/logout", s.ownerToken, nil)
	resp.Body.Close()
	s.Equal(http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/list/", s.ownerToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *APISuite) TestLoginBadCredentials() {
	resp := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *APISuite) TestUnknownRouteIsJSON404() {
	resp := s.do(http.MethodGet, "/api/nope/", "", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("application/json", resp.Header.Get("Content-Type"))
}

func (s *APISuite) TestHealthAndMetrics() {
	resp := s.do(http.MethodGet, "/healthz", "", nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/metrics", "", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(raw), "giftlist_")
}
