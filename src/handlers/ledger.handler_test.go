package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stock-ledger/src/apperrors"
	"stock-ledger/src/auth"
	"stock-ledger/src/repositories"
	"stock-ledger/src/services"
)

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load movement: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden},
		{"unauthenticated", apperrors.ErrUnauthenticated, http.StatusUnauthorized},
		{"validation", apperrors.Validation("batch_no", "must not be empty"), http.StatusBadRequest},
		{"capacity", &apperrors.CapacityError{RemainingQty: 60, RemainingWeight: decimal.NewFromInt(6)}, http.StatusConflict},
		{"store failure", apperrors.Store("insert", errors.New("connection refused")), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			writeError(c, tc.err)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestWriteErrorPayloads(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("validation includes the field", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		writeError(c, apperrors.Validation("image_url", "required for agent submissions"))
		assert.Contains(t, w.Body.String(), `"field":"image_url"`)
	})

	t.Run("capacity includes the remaining headroom", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		writeError(c, &apperrors.CapacityError{
			RemainingQty:    60,
			RemainingWeight: decimal.NewFromInt(6),
		})
		assert.Contains(t, w.Body.String(), `"remaining_qty":60`)
		assert.Contains(t, w.Body.String(), `"remaining_weight":"6"`)
	})
}

func newListRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	handler := &LedgerHandler{
		Inbound: &services.InboundService{
			DB:         db,
			Repo:       &repositories.LedgerRepository{DB: db},
			Reconciler: &services.BalanceReconciler{},
			Log:        zap.NewNop(),
		},
		Log: zap.NewNop(),
	}

	router := gin.New()
	router.GET("/inbound", auth.AgentAPIKey("test-key"), handler.ListInbound)
	return router, mock
}

func expectEmptyListing(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT count\(\*\) FROM "inventory_inbound"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "inventory_inbound"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
}

// A limit of zero (which is also what a non-numeric limit parses to) must
// fall back to the default instead of reaching the page math.
func TestListInboundLimitClamping(t *testing.T) {
	router, mock := newListRouter(t)

	doRequest := func(query string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/inbound?tenant_id="+uuid.New().String()+query, nil)
		req.Header.Set("X-API-Key", "test-key")
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("limit zero falls back to the default", func(t *testing.T) {
		expectEmptyListing(mock)
		w := doRequest("&limit=0")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"limit":20`)
		assert.Contains(t, w.Body.String(), `"total_pages":0`)
	})

	t.Run("non-numeric limit falls back to the default", func(t *testing.T) {
		expectEmptyListing(mock)
		w := doRequest("&limit=abc")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"limit":20`)
	})

	t.Run("negative limit and page are clamped", func(t *testing.T) {
		expectEmptyListing(mock)
		w := doRequest("&limit=-5&page=-1")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"page":1`)
		assert.Contains(t, w.Body.String(), `"limit":20`)
	})
}
