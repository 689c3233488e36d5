package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mateus-bonette00/qota-store/internal/domain/expense"
	"github.com/mateus-bonette00/qota-store/internal/domain/fxrate"
	"github.com/mateus-bonette00/qota-store/internal/domain/money"
)

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) List(ctx context.Context, filter expense.Filter) ([]*expense.Expense, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, id int64) (*expense.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) Update(ctx context.Context, e *expense.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockExpenseRepository) Totals(ctx context.Context, month string) (expense.Totals, error) {
	args := m.Called(ctx, month)
	return args.Get(0).(expense.Totals), args.Error(1)
}

func (m *MockExpenseRepository) MonthlyTotals(ctx context.Context) ([]expense.MonthTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.MonthTotal), args.Error(1)
}

func (m *MockExpenseRepository) WithTx(tx pgx.Tx) expense.Repository {
	return m
}

type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) Current(ctx context.Context) (*fxrate.Snapshot, fxrate.Provenance) {
	args := m.Called(ctx)
	return args.Get(0).(*fxrate.Snapshot), args.Get(1).(fxrate.Provenance)
}

var _ expense.Repository = (*MockExpenseRepository)(nil)
var _ RateSource = (*MockRateSource)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func testRates() *MockRateSource {
	rates := new(MockRateSource)
	snap := &fxrate.Snapshot{
		Base: money.USD,
		Rates: map[money.Currency]decimal.Decimal{
			money.USD: decimal.NewFromInt(1),
			money.BRL: decimal.NewFromInt(5),
			money.EUR: decimal.RequireFromString("0.80"),
		},
		FetchedAt: time.Now(),
	}
	rates.On("Current", mock.Anything).Return(snap, fxrate.ProvenanceFresh).Maybe()
	return rates
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestExpenseHandler_Create(t *testing.T) {
	logger := testLogger()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockExpenseRepository)
		handler := NewExpenseHandler(logger, mockRepo, testRates())

		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *expense.Expense) bool {
			return e.Category == "software" &&
				e.Currency == money.BRL &&
				e.Amount.Equal(decimal.NewFromInt(50)) &&
				e.Shadow.In(money.USD).Equal(decimal.NewFromInt(10)) &&
				e.Shadow.In(money.BRL).Equal(decimal.NewFromInt(50))
		})).Return(nil)

		r := setupTestRouter()
		r.POST("/expenses", handler.Create)

		body, err := json.Marshal(gin.H{
			"date":     "2026-08-15",
			"category": "software",
			"amount":   "50",
			"currency": "BRL",
		})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/expenses", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("MissingCurrency", func(t *testing.T) {
		mockRepo := new(MockExpenseRepository)
		handler := NewExpenseHandler(logger, mockRepo, testRates())

		r := setupTestRouter()
		r.POST("/expenses", handler.Create)

		body, err := json.Marshal(gin.H{
			"date":     "2026-08-15",
			"category": "software",
			"amount":   "50",
		})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/expenses", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("BadDate", func(t *testing.T) {
		mockRepo := new(MockExpenseRepository)
		handler := NewExpenseHandler(logger, mockRepo, testRates())

		r := setupTestRouter()
		r.POST("/expenses", handler.Create)

		body, err := json.Marshal(gin.H{
			"date":     "15/08/2026",
			"category": "software",
			"amount":   "50",
			"currency": "BRL",
		})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/expenses", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockRepo.AssertNotCalled(t, "Create")
	})
}

func TestExpenseHandler_GetByID(t *testing.T) {
	logger := testLogger()

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockExpenseRepository)
		handler := NewExpenseHandler(logger, mockRepo, testRates())

		mockRepo.On("GetByID", mock.Anything, int64(42)).
			Return(nil, expense.ErrExpenseNotFound{ID: 42})

		r := setupTestRouter()
		r.GET("/expenses/:id", handler.GetByID)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/expenses/42", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockRepo := new(MockExpenseRepository)
		handler := NewExpenseHandler(logger, mockRepo, testRates())

		r := setupTestRouter()
		r.GET("/expenses/:id", handler.GetByID)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/expenses/abc", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockRepo.AssertNotCalled(t, "GetByID")
	})
}

func TestExpenseHandler_List(t *testing.T) {
	logger := testLogger()

	t.Run("MonthFilter", func(t *testing.T) {
		mockRepo := new(MockExpenseRepository)
		handler := NewExpenseHandler(logger, mockRepo, testRates())

		mockRepo.On("List", mock.Anything, mock.MatchedBy(func(f expense.Filter) bool {
			return f.Month == "2026-08" && f.Category == "software"
		})).Return([]*expense.Expense{}, nil)

		r := setupTestRouter()
		r.GET("/expenses", handler.List)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/expenses?month=2026-08&category=software", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("MalformedMonth", func(t *testing.T) {
		mockRepo := new(MockExpenseRepository)
		handler := NewExpenseHandler(logger, mockRepo, testRates())

		r := setupTestRouter()
		r.GET("/expenses", handler.List)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/expenses?month=08-2026", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockRepo.AssertNotCalled(t, "List")
	})
}

func TestExpenseHandler_Delete(t *testing.T) {
	logger := testLogger()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockExpenseRepository)
		handler := NewExpenseHandler(logger, mockRepo, testRates())

		mockRepo.On("Delete", mock.Anything, int64(7)).Return(true, nil)

		r := setupTestRouter()
		r.DELETE("/expenses/:id", handler.Delete)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodDelete, "/expenses/7", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockExpenseRepository)
		handler := NewExpenseHandler(logger, mockRepo, testRates())

		mockRepo.On("Delete", mock.Anything, int64(7)).Return(false, nil)

		r := setupTestRouter()
		r.DELETE("/expenses/:id", handler.Delete)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodDelete, "/expenses/7", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
