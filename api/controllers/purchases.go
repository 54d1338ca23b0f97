package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/medstore/medstore-backend/api/responses"
	"github.com/medstore/medstore-backend/api/validators"
	"github.com/medstore/medstore-backend/internal/purchases"
	pkgerrors "github.com/medstore/medstore-backend/pkg/errors"
	"github.com/medstore/medstore-backend/pkg/logger"
	"github.com/medstore/medstore-backend/pkg/types"
)

type createPurchaseRequest struct {
	SupplierName  string                `json:"supplierName"`
	InvoiceNumber *string               `json:"invoiceNumber"`
	Items         []purchaseItemRequest `json:"items"`
}

type purchaseItemRequest struct {
	MedicineID types.ID        `json:"medicineId"`
	Quantity   int             `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unitCost"`
}

func (req createPurchaseRequest) toInput() purchases.CreatePurchaseInput {
	items := make([]purchases.LineInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, purchases.LineInput{
			MedicineID: item.MedicineID.Int64(),
			Quantity:   item.Quantity,
			UnitCost:   item.UnitCost,
		})
	}
	return purchases.CreatePurchaseInput{
		SupplierName:  req.SupplierName,
		InvoiceNumber: req.InvoiceNumber,
		Items:         items,
	}
}

func PurchasesList(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchase service unavailable"))
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

// PurchasesCreate books a supplier delivery and adds its quantities to stock.
func PurchasesCreate(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchase service unavailable"))
			return
		}
		var req createPurchaseRequest
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
			logg.Info(logg.WithField(ctx, "purchase_id", res.PurchaseID), "purchase.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, purchases.NewCreatePurchaseResponse(res))
	}
}

// PurchasesDelete reverses a delivery. It fails while any of its stock has
// already been sold.
func PurchasesDelete(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchase service unavailable"))
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
