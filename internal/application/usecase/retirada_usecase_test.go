package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/dto"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/usecase"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/ledger"
)

// fakeWithdrawalRepo guarda retiradas em memória, mesmo desenho do fake de
// recebimentos.
type fakeWithdrawalRepo struct {
	mu          sync.Mutex
	nextID      int64
	withdrawals map[string]*entity.Withdrawal
	statuses    []string
}

func newFakeWithdrawalRepo() *fakeWithdrawalRepo {
	return &fakeWithdrawalRepo{nextID: 1, withdrawals: make(map[string]*entity.Withdrawal)}
}

func (r *fakeWithdrawalRepo) Create(_ context.Context, w *entity.Withdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.withdrawals[w.TransactionID]; ok {
		return domain.ErrDuplicate
	}
	w.ID = r.nextID
	r.nextID++
	r.withdrawals[w.TransactionID] = w
	return nil
}

func (r *fakeWithdrawalRepo) GetByID(_ context.Context, id int64) (*entity.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.withdrawals {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, nil
}

func (r *fakeWithdrawalRepo) List(_ context.Context, _, _ int) ([]*entity.Withdrawal, error) {
	return nil, nil
}

func (r *fakeWithdrawalRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
	for _, w := range r.withdrawals {
		if w.ID == id {
			w.Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

// newWithdrawalFixture monta o caso de uso com um estoque inicial por produto.
func newWithdrawalFixture(t *testing.T, initial map[int64]string) (*usecase.WithdrawalUseCase, *fakeWithdrawalRepo, *fakeLedgerStore) {
	t.Helper()
	repo := newFakeWithdrawalRepo()
	store := newFakeLedgerStore()
	products := knownProducts{}
	for id := range initial {
		products[id] = true
	}
	engine := ledger.New[int64](store, products, zerolog.Nop(), ledger.WithRetryBase[int64](time.Millisecond))

	// Carga inicial via entrada, para o ledger e o saldo nascerem juntos.
	var lines []ledger.Line[int64]
	for id, qty := range initial {
		lines = append(lines, ledger.Line[int64]{Key: id, Quantity: mustDec(qty), Unit: "kg"})
	}
	if len(lines) > 0 {
		_, err := engine.PostInbound(context.Background(), "tx-carga-inicial", lines)
		require.NoError(t, err)
	}
	return usecase.NewWithdrawalUseCase(repo, engine, zerolog.Nop()), repo, store
}

func TestWithdrawalCreate_Sucesso_BaixaEstoque(t *testing.T) {
	uc, repo, store := newWithdrawalFixture(t, map[int64]string{10: "8.0"})

	out, err := uc.Create(context.Background(), dto.CreateWithdrawalRequest{
		TransactionID: "tx-ret-1",
		Responsible:   "Maria Souza",
		Sector:        "Cestas Básicas",
		Items: []dto.WithdrawalItemRequest{
			{ProductID: 10, Quantity: mustDec("3.0"), Unit: "kg"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPosted, out.Withdrawal.Status)
	assert.Equal(t, []string{entity.StatusPosted}, repo.statuses)

	bal, _ := store.Balance(context.Background(), 10)
	assert.True(t, bal.Quantity.Equal(mustDec("5.0")), "saldo deve cair de 8.0 para 5.0")
}

func TestWithdrawalCreate_SaldoInsuficiente_ViraVoid(t *testing.T) {
	uc, repo, store := newWithdrawalFixture(t, map[int64]string{10: "2.0"})

	out, err := uc.Create(context.Background(), dto.CreateWithdrawalRequest{
		TransactionID: "tx-ret-2",
		Responsible:   "Maria Souza",
		Sector:        "Cestas Básicas",
		Items: []dto.WithdrawalItemRequest{
			{ProductID: 10, Quantity: mustDec("5.0"), Unit: "kg"},
		},
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)
	assert.Nil(t, out)
	assert.Equal(t, []string{entity.StatusVoid}, repo.statuses)

	bal, _ := store.Balance(context.Background(), 10)
	assert.True(t, bal.Quantity.Equal(mustDec("2.0")), "rejeição não pode mexer no saldo")
}

// Duas linhas do mesmo produto que não cabem juntas no saldo são rejeitadas
// antes de qualquer baixa.
func TestWithdrawalCreate_LinhasDoMesmoProdutoNaoCabemJuntas(t *testing.T) {
	uc, _, store := newWithdrawalFixture(t, map[int64]string{10: "5.0"})

	_, err := uc.Create(context.Background(), dto.CreateWithdrawalRequest{
		TransactionID: "tx-ret-3",
		Responsible:   "João Lima",
		Sector:        "Eventos",
		Items: []dto.WithdrawalItemRequest{
			{ProductID: 10, Quantity: mustDec("3.0"), Unit: "kg"},
			{ProductID: 10, Quantity: mustDec("3.0"), Unit: "kg"},
		},
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)

	bal, _ := store.Balance(context.Background(), 10)
	assert.True(t, bal.Quantity.Equal(mustDec("5.0")))
}
