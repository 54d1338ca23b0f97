package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/medstore/medstore-backend/api/responses"
	"github.com/medstore/medstore-backend/api/validators"
	"github.com/medstore/medstore-backend/internal/sales"
	pkgerrors "github.com/medstore/medstore-backend/pkg/errors"
	"github.com/medstore/medstore-backend/pkg/logger"
	"github.com/medstore/medstore-backend/pkg/types"
)

type createSaleRequest struct {
	CustomerID         types.NullableID  `json:"customerId"`
	PrescriptionNumber *string           `json:"prescriptionNumber"`
	PaymentMethod      string            `json:"paymentMethod"`
	Items              []saleItemRequest `json:"items" validate:"dive"`
}

type saleItemRequest struct {
	MedicineID types.ID        `json:"medicineId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

func (req createSaleRequest) toInput() sales.CreateSaleInput {
	items := make([]sales.LineInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, sales.LineInput{
			MedicineID: item.MedicineID.Int64(),
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
		})
	}
	return sales.CreateSaleInput{
		CustomerID:         req.CustomerID.Ptr(),
		PrescriptionNumber: req.PrescriptionNumber,
		PaymentMethod:      req.PaymentMethod,
		Items:              items,
	}
}

// updateSaleRequest accepts the full sale document clients echo back. The
// read-only fields are decoded and discarded.
type updateSaleRequest struct {
	CustomerID         types.NullableID `json:"customerId"`
	PrescriptionNumber *string          `json:"prescriptionNumber"`
	PaymentMethod      string           `json:"paymentMethod" validate:"required"`

	ID           json.RawMessage `json:"id,omitempty"`
	CustomerName json.RawMessage `json:"customerName,omitempty"`
	SaleDate     json.RawMessage `json:"saleDate,omitempty"`
	TotalAmount  json.RawMessage `json:"totalAmount,omitempty"`
	Items        json.RawMessage `json:"items,omitempty"`
}

// SalesList returns sale headers, newest first.
func SalesList(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}
		rows, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// SalesCreate records a sale and all its lines in one transaction.
func SalesCreate(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		var req createSaleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		res, err := svc.Create(ctx, req.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(ctx, "sale_id", res.SaleID), "sale.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sales.NewCreateSaleResponse(res))
	}
}

// SalesGet returns one sale with its lines.
func SalesGet(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}
		saleID, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		sale, err := svc.Get(ctx, saleID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// SalesUpdate replaces the customer, prescription and payment method of a sale.
func SalesUpdate(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}
		saleID, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req updateSaleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		row, err := svc.Update(ctx, saleID, sales.UpdateSaleInput{
			CustomerID:         req.CustomerID.Ptr(),
			PrescriptionNumber: req.PrescriptionNumber,
			PaymentMethod:      req.PaymentMethod,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// SalesDelete removes a sale and returns its quantities to stock.
func SalesDelete(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}
		saleID, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.Delete(ctx, saleID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
