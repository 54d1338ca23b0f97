package customers

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medstore/medstore-backend/pkg/db/dbtest"
	"github.com/medstore/medstore-backend/pkg/db/models"
	pkgerrors "github.com/medstore/medstore-backend/pkg/errors"
)

func strPtr(v string) *string { return &v }

func TestCustomerLifecycle(t *testing.T) {
	client := dbtest.New(t)
	svc, err := NewService(NewRepository(client.DB()), nil)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.Create(ctx, CustomerInput{Name: " Asha Rao ", Phone: "555-0101", Email: strPtr(""), Address: strPtr("12 MG Road")})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", created.Name)
	assert.Nil(t, created.Email)
	require.NotNil(t, created.Address)

	updated, err := svc.Update(ctx, created.CustomerID, CustomerInput{Name: "Asha Rao", Phone: "555-0199", Email: strPtr("asha@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "555-0199", updated.Phone)
	require.NotNil(t, updated.Email)
	assert.Equal(t, "asha@example.com", *updated.Email)
	assert.Nil(t, updated.Address)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.CustomerID))
	_, err = svc.Get(ctx, created.CustomerID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, created.CustomerID), pkgerrors.CodeNotFound))
}

func TestCustomerValidation(t *testing.T) {
	client := dbtest.New(t)
	svc, err := NewService(NewRepository(client.DB()), nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CustomerInput{Email: strPtr("not-an-email")})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{
		"name":  "is required",
		"phone": "is required",
		"email": "must be a valid email",
	}, typed.Details())

	_, err = svc.Update(context.Background(), 404, CustomerInput{Name: "X", Phone: "1"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteCustomerKeepsSales(t *testing.T) {
	client := dbtest.New(t)
	svc, err := NewService(NewRepository(client.DB()), nil)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.Create(ctx, CustomerInput{Name: "Ravi", Phone: "555-0102"})
	require.NoError(t, err)

	sale := models.Sale{
		CustomerID:    &created.CustomerID,
		PaymentMethod: "Cash",
		TotalAmount:   decimal.RequireFromString("10.00"),
		SaleDate:      time.Now().UTC(),
	}
	require.NoError(t, client.DB().Omit("Customer", "Items").Create(&sale).Error)

	require.NoError(t, svc.Delete(ctx, created.CustomerID))

	var reloaded models.Sale
	require.NoError(t, client.DB().First(&reloaded, "sale_id = ?", sale.ID).Error)
	assert.Nil(t, reloaded.CustomerID)
}
