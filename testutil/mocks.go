package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sheetfill/engine/pkg/models"
)

// MockSheetRepository is a testify mock of repository.SheetRepository.
type MockSheetRepository struct {
	mock.Mock
}

func (m *MockSheetRepository) GetSheet(ctx context.Context, sheetID string) (*models.Sheet, error) {
	args := m.Called(ctx, sheetID)
	sheet, _ := args.Get(0).(*models.Sheet)
	return sheet, args.Error(1)
}

func (m *MockSheetRepository) ListColumns(ctx context.Context, sheetID string) ([]*models.Column, error) {
	args := m.Called(ctx, sheetID)
	cols, _ := args.Get(0).([]*models.Column)
	return cols, args.Error(1)
}

func (m *MockSheetRepository) GetColumn(ctx context.Context, sheetID string, position int) (*models.Column, error) {
	args := m.Called(ctx, sheetID, position)
	col, _ := args.Get(0).(*models.Column)
	return col, args.Error(1)
}

// MockCellRepository is a testify mock of repository.CellRepository.
type MockCellRepository struct {
	mock.Mock
}

func (m *MockCellRepository) GetCell(ctx context.Context, key models.CellKey) (*models.Cell, error) {
	args := m.Called(ctx, key)
	cell, _ := args.Get(0).(*models.Cell)
	return cell, args.Error(1)
}

func (m *MockCellRepository) ListRowCells(ctx context.Context, sheetID string, rowIndex int) ([]*models.Cell, error) {
	args := m.Called(ctx, sheetID, rowIndex)
	cells, _ := args.Get(0).([]*models.Cell)
	return cells, args.Error(1)
}

func (m *MockCellRepository) UpsertCell(ctx context.Context, cell *models.Cell) error {
	return m.Called(ctx, cell).Error(0)
}

func (m *MockCellRepository) BulkUpsertSeedCells(ctx context.Context, sheetID string, rows [][]string) ([]int, error) {
	args := m.Called(ctx, sheetID, rows)
	indexes, _ := args.Get(0).([]int)
	return indexes, args.Error(1)
}

// MockEventQueue is a testify mock of repository.EventQueue.
type MockEventQueue struct {
	mock.Mock
}

func (m *MockEventQueue) Enqueue(ctx context.Context, sheetID string, rowIndex, colIndex int, eventType models.EventType, payload map[string]interface{}) (string, error) {
	args := m.Called(ctx, sheetID, rowIndex, colIndex, eventType, payload)
	return args.String(0), args.Error(1)
}

func (m *MockEventQueue) Claim(ctx context.Context, limit int) ([]*models.Event, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]*models.Event)
	return events, args.Error(1)
}

func (m *MockEventQueue) Complete(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}

func (m *MockEventQueue) Fail(ctx context.Context, eventID string, cause error) error {
	return m.Called(ctx, eventID, cause).Error(0)
}

func (m *MockEventQueue) IncrementRetry(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}

func (m *MockEventQueue) ReadRetryCount(ctx context.Context, eventID string) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

func (m *MockEventQueue) Reap(ctx context.Context, olderThan time.Duration) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

// MockStatusRepository is a testify mock of repository.StatusRepository.
type MockStatusRepository struct {
	mock.Mock
}

func (m *MockStatusRepository) UpsertStatus(ctx context.Context, status *models.CellProcessingStatus) error {
	return m.Called(ctx, status).Error(0)
}

func (m *MockStatusRepository) GetStatus(ctx context.Context, key models.CellKey) (*models.CellProcessingStatus, error) {
	args := m.Called(ctx, key)
	status, _ := args.Get(0).(*models.CellProcessingStatus)
	return status, args.Error(1)
}

func (m *MockStatusRepository) ListRowStatus(ctx context.Context, sheetID string, rowIndex int) ([]*models.CellProcessingStatus, error) {
	args := m.Called(ctx, sheetID, rowIndex)
	statuses, _ := args.Get(0).([]*models.CellProcessingStatus)
	return statuses, args.Error(1)
}

// MockAuditRepository is a testify mock of repository.AuditRepository.
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, update *models.SheetUpdate) error {
	return m.Called(ctx, update).Error(0)
}
