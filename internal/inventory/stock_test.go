package inventory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/medstore/medstore-backend/pkg/db/dbtest"
	"github.com/medstore/medstore-backend/pkg/db/models"
	pkgerrors "github.com/medstore/medstore-backend/pkg/errors"
)

func seedMedicine(t *testing.T, db *gorm.DB, name string, stock int) models.Medicine {
	t.Helper()
	med := models.Medicine{Name: name, UnitPrice: decimal.RequireFromString("2.50"), StockQty: stock}
	if err := db.Create(&med).Error; err != nil {
		t.Fatalf("seed medicine: %v", err)
	}
	return med
}

func TestDecrementStock(t *testing.T) {
	client := dbtest.New(t)
	db := client.DB()
	ctx := context.Background()
	medA := seedMedicine(t, db, "Paracetamol", 5)
	medB := seedMedicine(t, db, "Ibuprofen", 1)

	requests := []StockRequest{
		{MedicineID: medA.ID, Qty: 3},
		{MedicineID: medA.ID, Qty: 4},
		{MedicineID: medB.ID, Qty: 1},
		{MedicineID: 9999, Qty: 1},
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		results, terr := DecrementStock(ctx, tx, requests)
		if terr != nil {
			return terr
		}
		if len(results) != 4 {
			t.Fatalf("expected 4 results, got %d", len(results))
		}
		if !results[0].Applied || results[0].Reason != "" {
			t.Fatalf("expected first decrement to apply: %+v", results[0])
		}
		if results[1].Applied || results[1].Reason != ReasonInsufficientStock || results[1].Available != 2 {
			t.Fatalf("expected second decrement to fail on stock: %+v", results[1])
		}
		if !results[2].Applied {
			t.Fatalf("expected third decrement to apply: %+v", results[2])
		}
		if results[3].Applied || results[3].Reason != ReasonMedicineNotFound {
			t.Fatalf("expected unknown medicine result: %+v", results[3])
		}
		if got := Failed(results); len(got) != 2 {
			t.Fatalf("expected 2 failed results, got %d", len(got))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("decrement transaction: %v", err)
	}

	var gotA, gotB models.Medicine
	if err := db.First(&gotA, "medicine_id = ?", medA.ID).Error; err != nil {
		t.Fatalf("load a: %v", err)
	}
	if err := db.First(&gotB, "medicine_id = ?", medB.ID).Error; err != nil {
		t.Fatalf("load b: %v", err)
	}
	if gotA.StockQty != 2 || gotB.StockQty != 0 {
		t.Fatalf("unexpected stock a=%d b=%d", gotA.StockQty, gotB.StockQty)
	}
}

func TestRestoreStock(t *testing.T) {
	client := dbtest.New(t)
	ctx := context.Background()
	med := seedMedicine(t, client.DB(), "Amoxicillin", 2)

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		results, terr := RestoreStock(ctx, tx, []StockRequest{{MedicineID: med.ID, Qty: 3}, {MedicineID: 4242, Qty: 1}})
		if terr != nil {
			return terr
		}
		if !results[0].Applied {
			t.Fatalf("expected restore to apply: %+v", results[0])
		}
		if results[1].Applied || results[1].Reason != ReasonMedicineNotFound {
			t.Fatalf("expected missing medicine to be reported: %+v", results[1])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("restore transaction: %v", err)
	}

	var got models.Medicine
	if err := client.DB().First(&got, "medicine_id = ?", med.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.StockQty != 5 {
		t.Fatalf("expected stock 5, got %d", got.StockQty)
	}
}

func TestDecrementStockInvalidQty(t *testing.T) {
	client := dbtest.New(t)
	med := seedMedicine(t, client.DB(), "Cetirizine", 5)

	_, err := DecrementStock(context.Background(), client.DB(), []StockRequest{{MedicineID: med.ID, Qty: 0}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMedicines(t *testing.T) {
	client := dbtest.New(t)
	ctx := context.Background()
	medA := seedMedicine(t, client.DB(), "Loratadine", 5)
	medB := seedMedicine(t, client.DB(), "Omeprazole", 5)

	got, err := LoadMedicines(ctx, client.DB(), []int64{medB.ID, medA.ID, medA.ID, 777})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 medicines, got %d", len(got))
	}
	if got[medA.ID].Name != "Loratadine" || !got[medB.ID].UnitPrice.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected medicines %+v", got)
	}
	if _, ok := got[777]; ok {
		t.Fatal("unknown id should be absent")
	}
	if _, err := LoadMedicines(ctx, nil, []int64{1}); err == nil {
		t.Fatal("expected nil tx to fail")
	}
}
