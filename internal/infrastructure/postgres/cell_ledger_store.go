package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/ledger"
)

var _ ledger.Store[int64] = (*CellLedgerStore)(nil)

// CellLedgerStore implementa ledger.Store para doações por célula:
// historico_kg é o ledger e celulas.quantidade_kg o saldo materializado.
// Diferente do estoque, o saldo mora na própria linha da célula — a célula
// sempre existe antes do primeiro lançamento, então a versão esperada nunca
// é tratada como "criar linha".
type CellLedgerStore struct {
	pool *pgxpool.Pool
}

// NewCellLedgerStore constrói o adaptador.
func NewCellLedgerStore(pool *pgxpool.Pool) *CellLedgerStore {
	return &CellLedgerStore{pool: pool}
}

// Balance devolve o saldo de kg e a versão da célula.
func (s *CellLedgerStore) Balance(ctx context.Context, cellID int64) (ledger.Balance, error) {
	var b ledger.Balance
	err := s.pool.QueryRow(ctx,
		`SELECT quantidade_kg, version, criado_em FROM celulas WHERE id = $1`,
		cellID,
	).Scan(&b.Quantity, &b.Version, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Balance{Quantity: decimal.Zero}, nil
		}
		return ledger.Balance{}, fmt.Errorf("ler célula: %w", err)
	}
	return b, nil
}

// ApplyLine grava a entrada no historico_kg e o novo total da célula na
// mesma transação, histórico primeiro, total condicionado à versão.
func (s *CellLedgerStore) ApplyLine(ctx context.Context, cellID int64, expectedVersion int64, newQuantity decimal.Decimal, entry ledger.Entry[int64]) error {
	return runTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO historico_kg (celula_id, quantidade, data_chegada, source_transaction_id, line_index)
			VALUES ($1, $2, $3, $4, $5)`,
			cellID, entry.Delta, entry.CreatedAt, entry.TransactionID, entry.LineIndex,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ledger.ErrDuplicateEntry
			}
			return fmt.Errorf("gravar histórico: %w", err)
		}
		return s.casQuantity(ctx, tx, cellID, expectedVersion, newQuantity)
	})
}

func (s *CellLedgerStore) casQuantity(ctx context.Context, tx pgx.Tx, cellID, expectedVersion int64, quantity decimal.Decimal) error {
	tag, err := tx.Exec(ctx, `
		UPDATE celulas
		SET quantidade_kg = $3, version = version + 1
		WHERE id = $1 AND version = $2`,
		cellID, expectedVersion, quantity,
	)
	if err != nil {
		return fmt.Errorf("atualizar total da célula: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrVersionConflict
	}
	return nil
}

// HasTransaction informa se a transação já tem lançamento no histórico.
func (s *CellLedgerStore) HasTransaction(ctx context.Context, transactionID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM historico_kg WHERE source_transaction_id = $1)`,
		transactionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("verificar transação: %w", err)
	}
	return exists, nil
}

// SumEntries soma as quantidades do histórico da célula.
func (s *CellLedgerStore) SumEntries(ctx context.Context, cellID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantidade), 0) FROM historico_kg WHERE celula_id = $1`,
		cellID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("somar histórico: %w", err)
	}
	return sum, nil
}

// SetBalance sobrescreve o total da célula (modo reparo).
func (s *CellLedgerStore) SetBalance(ctx context.Context, cellID int64, expectedVersion int64, quantity decimal.Decimal) error {
	return runTx(ctx, s.pool, func(tx pgx.Tx) error {
		return s.casQuantity(ctx, tx, cellID, expectedVersion, quantity)
	})
}
