package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"giftlist/internal/catalog"
	catalogstore "giftlist/internal/catalog/store"
	"giftlist/internal/registry/models"
	registrystore "giftlist/internal/registry/store"
	"giftlist/internal/report"
	dErrors "giftlist/pkg/domain-errors"
)

type ReportSuite struct {
	suite.Suite
	ctx     context.Context
	catalog *catalogstore.Memory
	store   *registrystore.Memory
	service *report.Service
	list    *models.GiftList
	guest   *models.Guest
}

func (s *ReportSuite) SetupTest() {
	s.ctx = context.Background()
	s.catalog = catalogstore.NewMemory()
	s.store = registrystore.NewMemory(s.catalog)
	s.service = report.NewService(s.store, s.store)

	var err error
	s.list, err = s.store.CreateGiftList(s.ctx, &models.GiftList{OwnerUserID: 1, Active: true})
	s.Require().NoError(err)
	s.guest, err = s.store.CreateGuest(s.ctx, &models.Guest{
		Email:         "guest@example.com",
		RecipientName: "Pat",
		GiftListID:    s.list.ID,
		UserID:        2,
	})
	s.Require().NoError(err)
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportSuite))
}

func (s *ReportSuite) seedProduct(name, price string) *catalog.Product {
	brand, err := s.catalog.UpsertBrand(s.ctx, "Acme")
	s.Require().NoError(err)
	product, err := s.catalog.SaveProduct(s.ctx, &catalog.Product{
		Name:    name,
		Price:   decimal.RequireFromString(price),
		BrandID: brand.ID,
	})
	s.Require().NoError(err)
	return product
}

func (s *ReportSuite) TestPurchasedRowsNewestFirst() {
	cheap := s.seedProduct("Mugs", "10.00")
	dear := s.seedProduct("Vase", "50.00")

	early := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	late := time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)

	itemCheap, err := s.store.AddOrIncrement(s.ctx, s.list.ID, cheap, 1, early)
	s.Require().NoError(err)
	itemDear, err := s.store.AddOrIncrement(s.ctx, s.list.ID, dear, 1, early)
	s.Require().NoError(err)

	_, err = s.store.PurchaseOne(s.ctx, s.list.ID, itemCheap.ID, s.guest.ID, early)
	s.Require().NoError(err)
	_, err = s.store.PurchaseOne(s.ctx, s.list.ID, itemDear.ID, s.guest.ID, late)
	s.Require().NoError(err)

	summary, err := s.service.ForOwner(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(summary.Purchased, 2)
	s.Equal("Vase", summary.Purchased[0].ProductName)
	s.Equal("Mugs", summary.Purchased[1].ProductName)
	s.Equal("Pat", summary.Purchased[0].RecipientName)
	s.True(summary.Purchased[0].Total.Equal(decimal.RequireFromString("50.00")))
}

func (s *ReportSuite) TestRemainingOmitsFullyPurchased() {
	done := s.seedProduct("Toaster", "30.00")
	open := s.seedProduct("Kettle", "25.00")

	now := time.Now()
	itemDone, err := s.store.AddOrIncrement(s.ctx, s.list.ID, done, 1, now)
	s.Require().NoError(err)
	_, err = s.store.AddOrIncrement(s.ctx, s.list.ID, open, 1, now)
	s.Require().NoError(err)
	_, err = s.store.AddOrIncrement(s.ctx, s.list.ID, open, 1, now)
	s.Require().NoError(err)

	_, err = s.store.PurchaseOne(s.ctx, s.list.ID, itemDone.ID, s.guest.ID, now)
	s.Require().NoError(err)

	summary, err := s.service.ForOwner(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(summary.Remaining, 1)
	s.Equal("Kettle", summary.Remaining[0].ProductName)
	s.Equal(2, summary.Remaining[0].RemainingQty)
}

func (s *ReportSuite) TestPartiallyPurchasedCountsRemainder() {
	product := s.seedProduct("Glasses", "8.00")
	now := time.Now()
	var item *models.ItemView
	var err error
	for i := 0; i < 3; i++ {
		item, err = s.store.AddOrIncrement(s.ctx, s.list.ID, product, 1, now)
		s.Require().NoError(err)
	}
	_, err = s.store.PurchaseOne(s.ctx, s.list.ID, item.ID, s.guest.ID, now)
	s.Require().NoError(err)

	summary, err := s.service.ForOwner(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(summary.Remaining, 1)
	s.Equal(2, summary.Remaining[0].RemainingQty)
	s.Require().Len(summary.Purchased, 1)
}

func (s *ReportSuite) TestForOwnerWithoutRegistry() {
	_, err := s.service.ForOwner(s.ctx, 42)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}
