package sales

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/medstore/medstore-backend/pkg/db/models"
	"github.com/medstore/medstore-backend/pkg/enums"
)

func TestLineTotalIsExact(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cents := rapid.Int64Range(0, 10_000_000).Draw(rt, "cents")
		qty := rapid.IntRange(1, 10_000).Draw(rt, "qty")

		price := decimal.New(cents, -2)
		got := LineTotal(qty, price)
		want := decimal.New(cents*int64(qty), -2)
		if !got.Equal(want) {
			rt.Fatalf("line total %s != %s", got, want)
		}
	})
}

func TestCreatedTotalEqualsSumOfLines(t *testing.T) {
	f := newFixture(t, enums.PricePolicyReject)
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		lineCount := rapid.IntRange(1, 6).Draw(rt, "lines")

		items := make([]LineInput, 0, lineCount)
		wantCents := int64(0)
		for i := 0; i < lineCount; i++ {
			cents := rapid.Int64Range(0, 500_000).Draw(rt, "cents")
			qty := rapid.IntRange(1, 50).Draw(rt, "qty")
			price := decimal.New(cents, -2)

			med := models.Medicine{Name: "prop", UnitPrice: price, StockQty: qty}
			if err := f.client.DB().Create(&med).Error; err != nil {
				rt.Fatalf("seed medicine: %v", err)
			}
			items = append(items, LineInput{MedicineID: med.ID, Quantity: qty, UnitPrice: price})
			wantCents += cents * int64(qty)
		}

		res, err := f.svc.Create(ctx, CreateSaleInput{PaymentMethod: "Cash", Items: items})
		if err != nil {
			rt.Fatalf("create: %v", err)
		}
		want := decimal.New(wantCents, -2)
		if !res.TotalAmount.Equal(want) {
			rt.Fatalf("total %s != %s", res.TotalAmount, want)
		}

		var stored []models.SaleItem
		if err := f.client.DB().Where("sale_id = ?", res.SaleID).Find(&stored).Error; err != nil {
			rt.Fatalf("load items: %v", err)
		}
		sum := decimal.Zero
		for _, item := range stored {
			sum = sum.Add(item.LineTotal)
		}
		if !sum.Equal(want) {
			rt.Fatalf("stored line totals %s != %s", sum, want)
		}
	})
}
