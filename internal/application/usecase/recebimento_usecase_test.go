package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/dto"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/usecase"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/ledger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

// fakeReceiptRepo guarda recebimentos em memória e registra as transições
// de status na ordem em que ocorrem.
type fakeReceiptRepo struct {
	mu       sync.Mutex
	nextID   int64
	receipts map[string]*entity.Receipt // por transaction_id
	statuses []string                   // histórico de UpdateStatus
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{nextID: 1, receipts: make(map[string]*entity.Receipt)}
}

func (r *fakeReceiptRepo) Create(_ context.Context, receipt *entity.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.receipts[receipt.TransactionID]; ok {
		return domain.ErrDuplicate
	}
	receipt.ID = r.nextID
	r.nextID++
	r.receipts[receipt.TransactionID] = receipt
	return nil
}

func (r *fakeReceiptRepo) GetByID(_ context.Context, id int64) (*entity.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.receipts {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *fakeReceiptRepo) List(_ context.Context, _, _ int) ([]*entity.Receipt, error) {
	return nil, nil
}

func (r *fakeReceiptRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
	for _, rec := range r.receipts {
		if rec.ID == id {
			rec.Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeLedgerStore é um Store[int64] em memória com falha injetável por
// índice de linha.
type fakeLedgerStore struct {
	mu         sync.Mutex
	balances   map[int64]ledger.Balance
	entries    []ledger.Entry[int64]
	lineFaults map[int]error
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{
		balances:   make(map[int64]ledger.Balance),
		lineFaults: make(map[int]error),
	}
}

func (s *fakeLedgerStore) Balance(_ context.Context, key int64) (ledger.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[key], nil
}

func (s *fakeLedgerStore) ApplyLine(_ context.Context, key int64, expectedVersion int64, newQuantity decimal.Decimal, entry ledger.Entry[int64]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.lineFaults[entry.LineIndex]; ok {
		return err
	}
	if s.balances[key].Version != expectedVersion {
		return ledger.ErrVersionConflict
	}
	s.entries = append(s.entries, entry)
	s.balances[key] = ledger.Balance{Quantity: newQuantity, Version: expectedVersion + 1, UpdatedAt: time.Now()}
	return nil
}

func (s *fakeLedgerStore) HasTransaction(_ context.Context, transactionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.TransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeLedgerStore) SumEntries(_ context.Context, key int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := decimal.Zero
	for _, e := range s.entries {
		if e.Key == key {
			sum = sum.Add(e.Delta)
		}
	}
	return sum, nil
}

func (s *fakeLedgerStore) SetBalance(_ context.Context, key int64, expectedVersion int64, quantity decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balances[key].Version != expectedVersion {
		return ledger.ErrVersionConflict
	}
	s.balances[key] = ledger.Balance{Quantity: quantity, Version: expectedVersion + 1, UpdatedAt: time.Now()}
	return nil
}

type knownProducts map[int64]bool

func (k knownProducts) Exists(_ context.Context, id int64) (bool, error) { return k[id], nil }

func newReceiptFixture(products knownProducts) (*usecase.ReceiptUseCase, *fakeReceiptRepo, *fakeLedgerStore) {
	repo := newFakeReceiptRepo()
	store := newFakeLedgerStore()
	engine := ledger.New[int64](store, products, zerolog.Nop(), ledger.WithRetryBase[int64](time.Millisecond))
	return usecase.NewReceiptUseCase(repo, engine, zerolog.Nop()), repo, store
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestReceiptCreate_SucessoTotal_FicaPosted(t *testing.T) {
	uc, repo, store := newReceiptFixture(knownProducts{10: true, 11: true})

	out, err := uc.Create(context.Background(), 1, dto.CreateReceiptRequest{
		TransactionID: "tx-rec-1",
		Notes:         "campanha de sábado",
		Items: []dto.ReceiptItemRequest{
			{ProductID: 10, Quantity: mustDec("5.0"), Unit: "kg"},
			{ProductID: 11, Quantity: mustDec("2.5"), Unit: "kg"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, entity.StatusPosted, out.Receipt.Status)
	assert.Equal(t, "posted", out.Posting.Status)
	assert.Len(t, out.Posting.Committed, 2)
	assert.Empty(t, out.Posting.Failed)
	assert.Equal(t, []string{entity.StatusPosted}, repo.statuses)

	bal, _ := store.Balance(context.Background(), 10)
	assert.True(t, bal.Quantity.Equal(mustDec("5.0")))
}

func TestReceiptCreate_GeraTransactionIDQuandoVazio(t *testing.T) {
	uc, _, _ := newReceiptFixture(knownProducts{10: true})

	out, err := uc.Create(context.Background(), 1, dto.CreateReceiptRequest{
		Items: []dto.ReceiptItemRequest{
			{ProductID: 10, Quantity: mustDec("1.0"), Unit: "kg"},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Receipt.TransactionID, "servidor deve gerar o transaction_id")
	assert.Equal(t, out.Receipt.TransactionID, out.Posting.TransactionID)
}

func TestReceiptCreate_TransactionIDRepetido_Rejeita(t *testing.T) {
	uc, _, store := newReceiptFixture(knownProducts{10: true})
	ctx := context.Background()

	req := dto.CreateReceiptRequest{
		TransactionID: "tx-rec-dup",
		Items: []dto.ReceiptItemRequest{
			{ProductID: 10, Quantity: mustDec("1.0"), Unit: "kg"},
		},
	}
	_, err := uc.Create(ctx, 1, req)
	require.NoError(t, err)

	_, err = uc.Create(ctx, 1, req)
	assert.ErrorIs(t, err, domain.ErrDuplicate, "reenvio do mesmo transaction_id deve ser barrado no cabeçalho")

	bal, _ := store.Balance(ctx, 10)
	assert.True(t, bal.Quantity.Equal(mustDec("1.0")), "reenvio não pode dobrar o estoque")
}

func TestReceiptCreate_ProdutoDesconhecido_ViraVoid(t *testing.T) {
	uc, repo, store := newReceiptFixture(knownProducts{10: true})

	out, err := uc.Create(context.Background(), 1, dto.CreateReceiptRequest{
		TransactionID: "tx-rec-x",
		Items: []dto.ReceiptItemRequest{
			{ProductID: 99, Quantity: mustDec("1.0"), Unit: "kg"},
		},
	})
	assert.ErrorIs(t, err, ledger.ErrUnknownKey)
	assert.Nil(t, out)

	// O cabeçalho permanece como registro da tentativa, anulado.
	assert.Equal(t, []string{entity.StatusVoid}, repo.statuses)
	assert.Empty(t, store.entries)
}

func TestReceiptCreate_FalhaParcial_PostedComFalhasListadas(t *testing.T) {
	uc, repo, store := newReceiptFixture(knownProducts{10: true, 11: true})
	store.lineFaults[1] = errors.New("timeout no banco")

	out, err := uc.Create(context.Background(), 1, dto.CreateReceiptRequest{
		TransactionID: "tx-rec-parcial",
		Items: []dto.ReceiptItemRequest{
			{ProductID: 10, Quantity: mustDec("3.0"), Unit: "kg"},
			{ProductID: 11, Quantity: mustDec("4.0"), Unit: "kg"},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrPartialFailure)
	require.NotNil(t, out, "desfecho parcial devolve a resposta completa junto do erro")

	assert.Equal(t, "partial", out.Posting.Status)
	require.Len(t, out.Posting.Committed, 1)
	require.Len(t, out.Posting.Failed, 1)
	assert.Equal(t, int64(10), out.Posting.Committed[0].ProductID)
	assert.Equal(t, int64(11), out.Posting.Failed[0].ProductID)
	assert.NotEmpty(t, out.Posting.Failed[0].Reason)

	// Linha gravada permanece; o recebimento é promovido mesmo assim.
	assert.Equal(t, []string{entity.StatusPosted}, repo.statuses)
	bal, _ := store.Balance(context.Background(), 10)
	assert.True(t, bal.Quantity.Equal(mustDec("3.0")))
}

func TestReceiptCreate_PrioridadePadraoNormal(t *testing.T) {
	uc, repo, _ := newReceiptFixture(knownProducts{10: true})

	out, err := uc.Create(context.Background(), 1, dto.CreateReceiptRequest{
		TransactionID: "tx-rec-prio",
		Items: []dto.ReceiptItemRequest{
			{ProductID: 10, Quantity: mustDec("1.0"), Unit: "kg"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PriorityNormal, out.Receipt.Items[0].Priority)

	saved := repo.receipts["tx-rec-prio"]
	require.NotNil(t, saved)
	assert.Equal(t, entity.PriorityNormal, saved.Items[0].Priority)
}
