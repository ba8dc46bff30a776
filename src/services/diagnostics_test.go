package services_test

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stock-ledger/src/services"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

func countRows(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

// The pass runs three counts in a fixed order: null references, orphan
// references, cross-tenant references.
func expectChecks(mock sqlmock.Sqlmock, nullRefs, orphans, crossTenant int64) {
	mock.ExpectQuery(`SELECT count\(\*\) FROM "inventory_outbound" WHERE tenant_id = \$1 AND inbound_id IS NULL`).
		WillReturnRows(countRows(nullRefs))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "inventory_outbound" LEFT JOIN inventory_inbound`).
		WillReturnRows(countRows(orphans))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "inventory_outbound" JOIN inventory_inbound`).
		WillReturnRows(countRows(crossTenant))
}

func TestDiagnosticsCleanPass(t *testing.T) {
	db, mock := newMockDB(t)
	expectChecks(mock, 0, 0, 0)

	diag := &services.Diagnostics{Log: zap.NewNop()}
	report := diag.Run(db, uuid.New())

	assert.False(t, report.Degraded)
	assert.Empty(t, report.Warnings)
	assert.NotEqual(t, uuid.Nil, report.TraceID)
}

func TestDiagnosticsWarningCounts(t *testing.T) {
	db, mock := newMockDB(t)
	expectChecks(mock, 3, 1, 2)

	diag := &services.Diagnostics{Log: zap.NewNop()}
	report := diag.Run(db, uuid.New())

	assert.True(t, report.Degraded)
	require.Len(t, report.Warnings, 3)

	assert.Equal(t, services.WarnNullLotReference, report.Warnings[0].Code)
	assert.Equal(t, int64(3), report.Warnings[0].Count)
	assert.Equal(t, services.WarnOrphanLotReference, report.Warnings[1].Code)
	assert.Equal(t, int64(1), report.Warnings[1].Count)
	assert.Equal(t, services.WarnCrossTenantRef, report.Warnings[2].Code)
	assert.Equal(t, int64(2), report.Warnings[2].Count)
}

func TestDiagnosticsSingleWarning(t *testing.T) {
	db, mock := newMockDB(t)
	expectChecks(mock, 5, 0, 0)

	diag := &services.Diagnostics{Log: zap.NewNop()}
	report := diag.Run(db, uuid.New())

	assert.True(t, report.Degraded)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, services.WarnNullLotReference, report.Warnings[0].Code)
	assert.Equal(t, int64(5), report.Warnings[0].Count)
}

// A check that cannot run degrades the report instead of failing the read.
func TestDiagnosticsCheckFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "inventory_outbound" WHERE tenant_id = \$1 AND inbound_id IS NULL`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "inventory_outbound" LEFT JOIN inventory_inbound`).
		WillReturnRows(countRows(0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "inventory_outbound" JOIN inventory_inbound`).
		WillReturnRows(countRows(0))

	diag := &services.Diagnostics{Log: zap.NewNop()}
	report := diag.Run(db, uuid.New())

	assert.True(t, report.Degraded)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, services.WarnDiagnosticsFailed, report.Warnings[0].Code)
}
