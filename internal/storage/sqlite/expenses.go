package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitgroup/internal/models"
)

const expenseColumns = "id, group_id, payer_id, description, total_amount, currency, expense_date, split_method, created_at"

// CreateExpense persists a new expense with its participants.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.ExpenseDate == 0 {
		expense.ExpenseDate = expense.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.PayerID, expense.Description,
		expense.TotalAmount, expense.Currency, expense.ExpenseDate, expense.SplitMethod,
		expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertParticipants(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateExpense overwrites an expense and replaces its participants.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET payer_id = ?, description = ?, total_amount = ?, currency = ?,
		 expense_date = ?, split_method = ? WHERE id = ?`,
		expense.PayerID, expense.Description, expense.TotalAmount, expense.Currency,
		expense.ExpenseDate, expense.SplitMethod, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if err := checkAffected(res, "expense", expense.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_participants WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear expense participants: %w", err)
	}
	if err := insertParticipants(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertParticipants(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i, p := range expense.Participants {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, user_id, amount_owed, position) VALUES (?, ?, ?, ?)",
			expense.ID, p.UserID, p.AmountOwed, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense participant: %w", err)
		}
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its participants.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	participants, err := s.participantsOf(ctx, []string{expense.ID})
	if err != nil {
		return nil, err
	}
	expense.Participants = participants[expense.ID]
	return expense, nil
}

// ListExpensesByGroup retrieves all expenses of a group in creation order.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY created_at, rowid",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	var ids []string
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		ids = append(ids, expense.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	participants, err := s.participantsOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, expense := range expenses {
		expense.Participants = participants[expense.ID]
	}
	return expenses, nil
}

// DeleteExpense removes an expense. Participants cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return checkAffected(res, "expense", expenseID)
}

// participantsOf loads the participants of the given expenses, keyed by expense ID.
func (s *SQLiteStore) participantsOf(ctx context.Context, expenseIDs []string) (map[string][]models.ExpenseParticipant, error) {
	out := make(map[string][]models.ExpenseParticipant, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(expenseIDs))
	for i, id := range expenseIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, user_id, amount_owed FROM expense_participants
		 WHERE expense_id IN (`+placeholders(len(expenseIDs))+`) ORDER BY expense_id, position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID string
		var p models.ExpenseParticipant
		if err := rows.Scan(&expenseID, &p.UserID, &p.AmountOwed); err != nil {
			return nil, fmt.Errorf("failed to scan expense participant: %w", err)
		}
		out[expenseID] = append(out[expenseID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense participants: %w", err)
	}
	return out, nil
}

func scanExpense(row scanner) (*models.Expense, error) {
	expense := &models.Expense{}
	err := row.Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PayerID,
		&expense.Description,
		&expense.TotalAmount,
		&expense.Currency,
		&expense.ExpenseDate,
		&expense.SplitMethod,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return expense, nil
}
