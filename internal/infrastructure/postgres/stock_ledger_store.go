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

var _ ledger.Store[int64] = (*StockLedgerStore)(nil)

// StockLedgerStore implementa ledger.Store para o estoque de produtos:
// stock_movements é o ledger, estoque o saldo materializado. Cada ApplyLine
// roda numa transação própria (atomicidade por linha, não por transação de
// negócio), com o lançamento gravado antes do saldo e o saldo condicionado
// à versão lida (compare-and-set).
type StockLedgerStore struct {
	pool *pgxpool.Pool
}

// NewStockLedgerStore constrói o adaptador.
func NewStockLedgerStore(pool *pgxpool.Pool) *StockLedgerStore {
	return &StockLedgerStore{pool: pool}
}

// Balance devolve o saldo corrente do produto; Balance zero (Version 0)
// quando o produto ainda não tem linha em estoque.
func (s *StockLedgerStore) Balance(ctx context.Context, productID int64) (ledger.Balance, error) {
	var b ledger.Balance
	err := s.pool.QueryRow(ctx,
		`SELECT quantidade_atual, version, atualizado_em FROM estoque WHERE produto_id = $1`,
		productID,
	).Scan(&b.Quantity, &b.Version, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Balance{Quantity: decimal.Zero}, nil
		}
		return ledger.Balance{}, fmt.Errorf("ler estoque: %w", err)
	}
	return b, nil
}

// ApplyLine grava o movimento e o novo saldo como uma unidade.
// Ordem: ledger primeiro, saldo depois — um rollback desfaz os dois, e num
// store sem transação a mesma ordem deixaria o saldo subcontado, reparável
// por Reconcile.
func (s *StockLedgerStore) ApplyLine(ctx context.Context, productID int64, expectedVersion int64, newQuantity decimal.Decimal, entry ledger.Entry[int64]) error {
	return runTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO stock_movements (produto_id, quantidade, tipo, source_transaction_id, line_index, criado_em)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			productID, entry.Delta, string(entry.Type), entry.TransactionID, entry.LineIndex, entry.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ledger.ErrDuplicateEntry
			}
			return fmt.Errorf("gravar movimento: %w", err)
		}
		return casBalance(ctx, tx, productID, expectedVersion, newQuantity)
	})
}

// casBalance escreve o saldo condicionado à versão esperada. Version 0
// significa criar a linha (primeira entrada do produto).
func casBalance(ctx context.Context, tx pgx.Tx, productID, expectedVersion int64, quantity decimal.Decimal) error {
	if expectedVersion == 0 {
		tag, err := tx.Exec(ctx, `
			INSERT INTO estoque (produto_id, quantidade_atual, version, atualizado_em)
			VALUES ($1, $2, 1, now())
			ON CONFLICT (produto_id) DO NOTHING`,
			productID, quantity,
		)
		if err != nil {
			return fmt.Errorf("criar saldo: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// A linha apareceu entre a leitura e a escrita.
			return ledger.ErrVersionConflict
		}
		return nil
	}
	tag, err := tx.Exec(ctx, `
		UPDATE estoque
		SET quantidade_atual = $3, version = version + 1, atualizado_em = now()
		WHERE produto_id = $1 AND version = $2`,
		productID, expectedVersion, quantity,
	)
	if err != nil {
		return fmt.Errorf("atualizar saldo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrVersionConflict
	}
	return nil
}

// HasTransaction informa se a transação já tem lançamento no ledger.
func (s *StockLedgerStore) HasTransaction(ctx context.Context, transactionID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock_movements WHERE source_transaction_id = $1)`,
		transactionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("verificar transação: %w", err)
	}
	return exists, nil
}

// SumEntries soma todos os deltas do produto no ledger.
func (s *StockLedgerStore) SumEntries(ctx context.Context, productID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantidade), 0) FROM stock_movements WHERE produto_id = $1`,
		productID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("somar movimentos: %w", err)
	}
	return sum, nil
}

// SetBalance sobrescreve o saldo (modo reparo), condicionado à versão.
func (s *StockLedgerStore) SetBalance(ctx context.Context, productID int64, expectedVersion int64, quantity decimal.Decimal) error {
	return runTx(ctx, s.pool, func(tx pgx.Tx) error {
		return casBalance(ctx, tx, productID, expectedVersion, quantity)
	})
}
