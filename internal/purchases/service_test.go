package purchases

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medstore/medstore-backend/pkg/db"
	"github.com/medstore/medstore-backend/pkg/db/dbtest"
	"github.com/medstore/medstore-backend/pkg/db/models"
	pkgerrors "github.com/medstore/medstore-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.New(t)
	clock := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(client.DB()),
		TxRunner: client,
		Clock: func() time.Time {
			clock = clock.Add(time.Hour)
			return clock
		},
	})
	require.NoError(t, err)
	return svc, client
}

func seedMedicine(t *testing.T, client *db.Client, stock int) models.Medicine {
	t.Helper()
	med := models.Medicine{Name: "Paracetamol", UnitPrice: decimal.RequireFromString("2.00"), StockQty: stock}
	require.NoError(t, client.DB().Create(&med).Error)
	return med
}

func stockOf(t *testing.T, client *db.Client, id int64) int {
	t.Helper()
	var med models.Medicine
	require.NoError(t, client.DB().First(&med, "medicine_id = ?", id).Error)
	return med.StockQty
}

func TestCreatePurchaseAddsStock(t *testing.T) {
	svc, client := newTestService(t)
	med := seedMedicine(t, client, 3)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreatePurchaseInput{
		SupplierName: "MedSupply Co",
		Items:        []LineInput{{MedicineID: med.ID, Quantity: 20, UnitCost: decimal.RequireFromString("1.20")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "24.00", res.TotalAmount.StringFixed(2))
	assert.Equal(t, 23, stockOf(t, client, med.ID))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "MedSupply Co", list[0].SupplierName)
	assert.Equal(t, "24.00", list[0].TotalAmount.String())
}

func TestCreatePurchaseValidation(t *testing.T) {
	svc, client := newTestService(t)

	_, err := svc.Create(context.Background(), CreatePurchaseInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(context.Background(), CreatePurchaseInput{
		SupplierName: "MedSupply Co",
		Items:        []LineInput{{MedicineID: 999, Quantity: 1, UnitCost: decimal.RequireFromString("1.00")}},
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var count int64
	require.NoError(t, client.DB().Model(&models.Purchase{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeletePurchaseReversesStock(t *testing.T) {
	svc, client := newTestService(t)
	med := seedMedicine(t, client, 0)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreatePurchaseInput{
		SupplierName: "MedSupply Co",
		Items:        []LineInput{{MedicineID: med.ID, Quantity: 10, UnitCost: decimal.RequireFromString("1.00")}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, res.PurchaseID))
	assert.Equal(t, 0, stockOf(t, client, med.ID))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, res.PurchaseID), pkgerrors.CodeNotFound))
}

func TestDeletePurchaseAfterSaleFails(t *testing.T) {
	svc, client := newTestService(t)
	med := seedMedicine(t, client, 0)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreatePurchaseInput{
		SupplierName: "MedSupply Co",
		Items:        []LineInput{{MedicineID: med.ID, Quantity: 10, UnitCost: decimal.RequireFromString("1.00")}},
	})
	require.NoError(t, err)
	require.NoError(t, client.DB().Model(&models.Medicine{}).Where("medicine_id = ?", med.ID).Update("stock_qty", 4).Error)

	err = svc.Delete(ctx, res.PurchaseID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock))
	assert.Equal(t, 4, stockOf(t, client, med.ID))

	var items int64
	require.NoError(t, client.DB().Model(&models.PurchaseItem{}).Count(&items).Error)
	assert.Equal(t, int64(1), items)
}
