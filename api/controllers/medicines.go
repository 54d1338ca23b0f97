package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/medstore/medstore-backend/api/responses"
	"github.com/medstore/medstore-backend/api/validators"
	"github.com/medstore/medstore-backend/internal/medicines"
	pkgerrors "github.com/medstore/medstore-backend/pkg/errors"
	"github.com/medstore/medstore-backend/pkg/logger"
	"github.com/medstore/medstore-backend/pkg/types"
)

type medicineRequest struct {
	Name          string          `json:"name" validate:"required,max=255"`
	GenericName   string          `json:"genericName" validate:"max=255"`
	Category      string          `json:"category" validate:"max=100"`
	Manufacturer  string          `json:"manufacturer" validate:"max=255"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0"`
	ReorderLevel  int             `json:"reorderLevel" validate:"gte=0"`
	ExpiryDate    string          `json:"expiryDate"`
	BatchNumber   string          `json:"batchNumber" validate:"max=100"`
	Description   string          `json:"description"`
}

func (req medicineRequest) toInput() (medicines.MedicineInput, error) {
	input := medicines.MedicineInput{
		Name:         req.Name,
		GenericName:  req.GenericName,
		Category:     req.Category,
		Manufacturer: req.Manufacturer,
		UnitPrice:    req.UnitPrice,
		StockQty:     req.StockQuantity,
		ReorderLevel: req.ReorderLevel,
		BatchNumber:  req.BatchNumber,
		Description:  req.Description,
	}
	if raw := strings.TrimSpace(req.ExpiryDate); raw != "" {
		date, err := types.ParseDate(raw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid medicine").
				WithDetails(map[string]string{"expiryDate": "must be a YYYY-MM-DD date"})
		}
		input.ExpiryDate = &date
	}
	return input, nil
}

func decodeMedicine(r *http.Request) (medicines.MedicineInput, error) {
	var req medicineRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		return medicines.MedicineInput{}, err
	}
	return req.toInput()
}

// MedicinesList returns every medicine ordered by name.
func MedicinesList(svc medicines.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "medicine service unavailable"))
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

func MedicinesGet(svc medicines.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "medicine service unavailable"))
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		row, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// MedicinesStock reports the stock on hand for one medicine.
func MedicinesStock(svc medicines.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "medicine service unavailable"))
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		qty, err := svc.GetStock(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, medicines.StockDTO{MedicineID: id, StockQty: qty})
	}
}

func MedicinesCreate(svc medicines.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "medicine service unavailable"))
			return
		}
		input, err := decodeMedicine(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		row, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

// MedicinesUpdate replaces every editable field of a medicine.
func MedicinesUpdate(svc medicines.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "medicine service unavailable"))
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := decodeMedicine(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		row, err := svc.Update(ctx, id, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func MedicinesDelete(svc medicines.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "medicine service unavailable"))
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
