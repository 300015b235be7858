package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"bondmonitor/internal/models"
)

// ============================================================
// HoldingRepository Tests
// ============================================================

func TestNewHoldingRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := NewHoldingRepository(db)
	if repo == nil {
		t.Fatal("NewHoldingRepository returned nil")
	}
	if repo.db != db {
		t.Error("db not set correctly")
	}
}

func TestHoldingRepositoryOpen(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		mockSetup   func(mock sqlmock.Sqlmock)
		expectCount int
		expectError bool
	}{
		{
			name: "two open holdings",
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"bond_code", "entry_price", "opened_at"}).
					AddRow("110001", 98.5, now).
					AddRow("123456", 115.2, now)
				mock.ExpectQuery(`SELECT bond_code, entry_price, opened_at`).
					WillReturnRows(rows)
			},
			expectCount: 2,
		},
		{
			name: "no open holdings",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT bond_code, entry_price, opened_at`).
					WillReturnRows(sqlmock.NewRows([]string{"bond_code", "entry_price", "opened_at"}))
			},
			expectCount: 0,
		},
		{
			name: "query error",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT bond_code, entry_price, opened_at`).
					WillReturnError(errors.New("connection refused"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.mockSetup(mock)

			repo := NewHoldingRepository(db)
			holdings, err := repo.Open(context.Background())

			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if len(holdings) != tt.expectCount {
					t.Errorf("expected %d holdings, got %d", tt.expectCount, len(holdings))
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestHoldingRepositoryAdd(t *testing.T) {
	tests := []struct {
		name        string
		holding     models.Holding
		mockSetup   func(mock sqlmock.Sqlmock)
		expectError error
	}{
		{
			name:    "success",
			holding: models.Holding{BondCode: "123456", EntryPrice: 115.2},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO holdings`).
					WithArgs("123456", 115.2, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name:    "duplicate open holding",
			holding: models.Holding{BondCode: "123456", EntryPrice: 115.2},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO holdings`).
					WithArgs("123456", 115.2, sqlmock.AnyArg()).
					WillReturnError(errors.New("duplicate key value violates unique constraint"))
			},
			expectError: ErrHoldingExists,
		},
		{
			name:        "empty bond code",
			holding:     models.Holding{EntryPrice: 115.2},
			mockSetup:   func(mock sqlmock.Sqlmock) {},
			expectError: ErrInvalidHolding,
		},
		{
			name:        "non-positive entry price",
			holding:     models.Holding{BondCode: "123456", EntryPrice: 0},
			mockSetup:   func(mock sqlmock.Sqlmock) {},
			expectError: ErrInvalidHolding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.mockSetup(mock)

			repo := NewHoldingRepository(db)
			err = repo.Add(context.Background(), tt.holding)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Errorf("expected %v, got %v", tt.expectError, err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestHoldingRepositoryClose(t *testing.T) {
	tests := []struct {
		name        string
		mockSetup   func(mock sqlmock.Sqlmock)
		expectError error
	}{
		{
			name: "success",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE holdings`).
					WithArgs(sqlmock.AnyArg(), 116.5, 0.011, models.ExitReasonTakeProfit, "123456").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "already closed or missing",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE holdings`).
					WithArgs(sqlmock.AnyArg(), 116.5, 0.011, models.ExitReasonTakeProfit, "123456").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectError: ErrHoldingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.mockSetup(mock)

			repo := NewHoldingRepository(db)
			err = repo.Close(context.Background(), "123456", 116.5, 0.011, models.ExitReasonTakeProfit)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Errorf("expected %v, got %v", tt.expectError, err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestHoldingRepositoryClosed(t *testing.T) {
	now := time.Now()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"bond_code", "entry_price", "opened_at", "closed_at", "exit_price", "pnl", "exit_reason"}).
		AddRow("123456", 115.2, now.Add(-time.Hour), now, 116.5, 0.011, models.ExitReasonTakeProfit).
		AddRow("110001", 98.5, now.Add(-2*time.Hour), now.Add(-time.Minute), 98.0, -0.005, models.ExitReasonStopLoss)
	mock.ExpectQuery(`SELECT bond_code, entry_price, opened_at, closed_at, exit_price, pnl, exit_reason`).
		WithArgs(10).
		WillReturnRows(rows)

	repo := NewHoldingRepository(db)
	history, err := repo.Closed(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(history) != 2 {
		t.Fatalf("expected 2 records, got %d", len(history))
	}
	// DESC LIMIT разворачивается: новые последними
	if history[0].BondCode != "110001" || history[1].BondCode != "123456" {
		t.Errorf("history must be oldest-first, got %s, %s", history[0].BondCode, history[1].BondCode)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
