// Package ledger implementa o protocolo de reconciliação saldo+ledger usado
// tanto pelo estoque de produtos (estoque / stock_movements) quanto pelo total
// de doações por célula (celulas.quantidade_kg / historico_kg). As duas
// instâncias compartilham exatamente o mesmo motor, parametrizado pela chave,
// para que os dois ledgers nunca divirjam em comportamento.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Erros do protocolo.
var (
	ErrInvalidQuantity        = errors.New("quantidade deve ser maior que zero")
	ErrUnknownKey             = errors.New("chave não cadastrada")
	ErrInsufficientStock      = errors.New("saldo insuficiente")
	ErrDuplicateTransaction   = errors.New("transação já lançada")
	ErrConcurrentModification = errors.New("conflito de concorrência: tentativas esgotadas")
	ErrPartialFailure         = errors.New("transação aplicada parcialmente")
	ErrEmptyTransaction       = errors.New("transação sem identificador ou sem linhas")

	// ErrVersionConflict e ErrDuplicateEntry são retornados pelo Store;
	// o motor os traduz para a taxonomia acima.
	ErrVersionConflict = errors.New("versão do saldo mudou desde a leitura")
	ErrDuplicateEntry  = errors.New("lançamento duplicado no ledger")
)

// Tipos de lançamento.
type EntryType string

const (
	EntryIn  EntryType = "IN"
	EntryOut EntryType = "OUT"
)

// Balance é o saldo materializado de uma chave, com a versão usada no
// compare-and-set. Version zero significa que o saldo ainda não existe.
type Balance struct {
	Quantity  decimal.Decimal
	Version   int64
	UpdatedAt time.Time
}

// Entry é uma linha imutável do ledger. Delta é assinado: positivo para
// entrada, negativo para saída. (TransactionID, LineIndex) é único.
type Entry[K comparable] struct {
	Key           K
	Delta         decimal.Decimal
	Type          EntryType
	TransactionID string
	LineIndex     int
	CreatedAt     time.Time
}

// Line é uma linha de transação a lançar. OccurredAt opcional: quando zero,
// o motor usa o relógio próprio.
type Line[K comparable] struct {
	Key        K
	Quantity   decimal.Decimal
	Unit       string
	OccurredAt time.Time
}

// Store é a porta de persistência do protocolo. Contrato de ApplyLine:
//   - lançamento e saldo são escritos como uma unidade atômica por linha;
//   - a escrita do lançamento precede a do saldo (ledger primeiro), de modo
//     que uma interrupção entre as duas deixe o saldo subcontado e
//     Reconcile consiga reparar — a ordem inversa é proibida;
//   - a escrita do saldo é condicionada a expectedVersion; se a versão mudou,
//     nada é persistido e ApplyLine retorna ErrVersionConflict;
//   - (TransactionID, LineIndex) repetido retorna ErrDuplicateEntry sem
//     persistir nada.
type Store[K comparable] interface {
	// Balance devolve o saldo corrente da chave; Balance zero (Version 0)
	// quando a chave ainda não tem saldo.
	Balance(ctx context.Context, key K) (Balance, error)

	// ApplyLine grava o lançamento e o novo saldo conforme o contrato acima.
	ApplyLine(ctx context.Context, key K, expectedVersion int64, newQuantity decimal.Decimal, entry Entry[K]) error

	// HasTransaction informa se já existe lançamento com esse TransactionID.
	HasTransaction(ctx context.Context, transactionID string) (bool, error)

	// SumEntries soma todos os deltas do ledger para a chave.
	SumEntries(ctx context.Context, key K) (decimal.Decimal, error)

	// SetBalance sobrescreve o saldo (modo reparo), condicionado à versão.
	SetBalance(ctx context.Context, key K, expectedVersion int64, quantity decimal.Decimal) error
}

// KeyChecker valida a existência da entidade dona da chave (produto, célula).
type KeyChecker[K comparable] interface {
	Exists(ctx context.Context, key K) (bool, error)
}

// LineResult é o desfecho de uma linha aplicada com sucesso.
type LineResult[K comparable] struct {
	Index      int             `json:"index"`
	Key        K               `json:"key"`
	Quantity   decimal.Decimal `json:"quantity"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// LineFailure é o desfecho de uma linha que não foi aplicada.
type LineFailure[K comparable] struct {
	Index    int             `json:"index"`
	Key      K               `json:"key"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
	Err      error           `json:"-"`
}

// PostResult enumera o desfecho de cada linha e os saldos resultantes das
// chaves afetadas. O chamador precisa conseguir distinguir sucesso total,
// rejeição total e aplicação parcial — nunca colapsar os três num erro só.
type PostResult[K comparable] struct {
	TransactionID string                `json:"transaction_id"`
	Committed     []LineResult[K]       `json:"committed"`
	Failed        []LineFailure[K]      `json:"failed"`
	Balances      map[K]decimal.Decimal `json:"balances"`
}

// Partial indica aplicação parcial: algumas linhas gravadas, outras não.
func (r *PostResult[K]) Partial() bool {
	return len(r.Committed) > 0 && len(r.Failed) > 0
}

// ReconcileResult compara o somatório do ledger com o saldo materializado.
type ReconcileResult struct {
	LedgerSum     decimal.Decimal `json:"ledger_sum"`
	CachedBalance decimal.Decimal `json:"cached_balance"`
	Drift         decimal.Decimal `json:"drift"`
	Repaired      bool            `json:"repaired"`
}
