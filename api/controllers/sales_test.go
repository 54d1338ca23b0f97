package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/medstore/medstore-backend/internal/sales"
	pkgerrors "github.com/medstore/medstore-backend/pkg/errors"
	"github.com/medstore/medstore-backend/pkg/types"
)

type stubSalesService struct {
	createInput  *sales.CreateSaleInput
	updateInput  *sales.UpdateSaleInput
	createResult *sales.CreateSaleResult
	summary      *sales.SaleSummary
	row          *sales.SaleRow
	list         []sales.SaleSummary
	err          error
}

func (s *stubSalesService) Create(ctx context.Context, input sales.CreateSaleInput) (*sales.CreateSaleResult, error) {
	s.createInput = &input
	if s.err != nil {
		return nil, s.err
	}
	return s.createResult, nil
}

func (s *stubSalesService) List(ctx context.Context) ([]sales.SaleSummary, error) {
	return s.list, s.err
}

func (s *stubSalesService) Get(ctx context.Context, saleID int64) (*sales.SaleSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

func (s *stubSalesService) Update(ctx context.Context, saleID int64, input sales.UpdateSaleInput) (*sales.SaleRow, error) {
	s.updateInput = &input
	if s.err != nil {
		return nil, s.err
	}
	return s.row, nil
}

func (s *stubSalesService) Delete(ctx context.Context, saleID int64) error {
	return s.err
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}

func TestSalesCreateReturnsCreated(t *testing.T) {
	svc := &stubSalesService{createResult: &sales.CreateSaleResult{SaleID: 42, TotalAmount: decimal.RequireFromString("31")}}
	handler := SalesCreate(svc, nil)

	body := []byte(`{"customerId":"","prescriptionNumber":"RX-1","paymentMethod":"cash","items":[{"medicineId":"7","quantity":2,"unitPrice":15.5}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != "{\"saleId\":42,\"totalAmount\":31.00}\n" {
		t.Fatalf("unexpected body %q", got)
	}
	if svc.createInput == nil {
		t.Fatal("expected service to be called")
	}
	if svc.createInput.CustomerID != nil {
		t.Fatalf("expected empty customer id to decode as nil, got %v", *svc.createInput.CustomerID)
	}
	if len(svc.createInput.Items) != 1 || svc.createInput.Items[0].MedicineID != 7 {
		t.Fatalf("unexpected items %+v", svc.createInput.Items)
	}
	if !svc.createInput.Items[0].UnitPrice.Equal(decimal.RequireFromString("15.50")) {
		t.Fatalf("unexpected unit price %s", svc.createInput.Items[0].UnitPrice)
	}
}

func TestSalesCreateRejectsUnknownFields(t *testing.T) {
	svc := &stubSalesService{}
	handler := SalesCreate(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewReader([]byte(`{"paymentMethod":"cash","items":[],"discount":5}`)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.createInput != nil {
		t.Fatal("service must not be called for a malformed body")
	}
}

func TestSalesCreateMapsServiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", pkgerrors.New(pkgerrors.CodeValidation, "Sale must have at least one item"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"stock", pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock"), http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
		{"persistence", pkgerrors.New(pkgerrors.CodePersistence, "insert failed"), http.StatusInternalServerError, "PERSISTENCE_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := SalesCreate(&stubSalesService{err: tc.err}, nil)
			body := []byte(`{"paymentMethod":"cash","items":[{"medicineId":1,"quantity":1,"unitPrice":"1.00"}]}`)
			req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, rec.Code)
			}
			if code := decodeErrorCode(t, rec); code != tc.code {
				t.Fatalf("expected code %s got %s", tc.code, code)
			}
		})
	}
}

func TestSalesPersistenceErrorHidesMessage(t *testing.T) {
	handler := SalesCreate(&stubSalesService{err: pkgerrors.New(pkgerrors.CodePersistence, "pq: relation sale_items does not exist")}, nil)
	body := []byte(`{"paymentMethod":"cash","items":[{"medicineId":1,"quantity":1,"unitPrice":1}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if bytes.Contains(rec.Body.Bytes(), []byte("sale_items")) {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestSalesListReturnsBareArray(t *testing.T) {
	svc := &stubSalesService{list: []sales.SaleSummary{{
		ID:            "3",
		SaleDate:      time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
		TotalAmount:   types.MoneyNumber(decimal.RequireFromString("12.5")),
		PaymentMethod: "card",
		Items:         []sales.SaleLineDTO{},
	}}}
	handler := SalesList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var rows []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row got %d", len(rows))
	}
	if rows[0]["id"] != "3" || rows[0]["customerName"] != "" {
		t.Fatalf("unexpected row %+v", rows[0])
	}
	if rows[0]["totalAmount"] != 12.5 {
		t.Fatalf("expected numeric total, got %v", rows[0]["totalAmount"])
	}
}

func TestSalesGetNotFound(t *testing.T) {
	handler := SalesGet(&stubSalesService{err: pkgerrors.New(pkgerrors.CodeNotFound, "Sale not found")}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/sales/999", nil), "id", "999")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestSalesGetRejectsBadID(t *testing.T) {
	handler := SalesGet(&stubSalesService{}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/sales/abc", nil), "id", "abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestSalesUpdateIgnoresReadOnlyFields(t *testing.T) {
	svc := &stubSalesService{row: &sales.SaleRow{SaleID: 5, PaymentMethod: "card", TotalAmount: "31.00"}}
	handler := SalesUpdate(svc, nil)

	body := []byte(`{"id":"5","customerId":12,"customerName":"","saleDate":"2026-10-01T09:00:00Z","totalAmount":1,"paymentMethod":"card","prescriptionNumber":null,"items":[{"medicineId":"1"}]}`)
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/sales/5", bytes.NewReader(body)), "id", "5")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.updateInput == nil || svc.updateInput.CustomerID == nil || *svc.updateInput.CustomerID != 12 {
		t.Fatalf("unexpected update input %+v", svc.updateInput)
	}
	var row map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&row); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if row["sale_id"] != float64(5) || row["total_amount"] != 31.0 {
		t.Fatalf("unexpected row %+v", row)
	}
}

func TestSalesDeleteNoContent(t *testing.T) {
	handler := SalesDelete(&stubSalesService{}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/sales/5", nil), "id", "5")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}

func TestSalesNilServiceIsInternal(t *testing.T) {
	handler := SalesList(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}
