package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/usecase"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/ledger"
)

type staticIDs []int64

func (s staticIDs) ListIDs(_ context.Context) ([]int64, error) { return s, nil }

// corrupt sobrescreve o saldo do store sem passar pelo ledger, simulando a
// interrupção entre a escrita do lançamento e a do saldo.
func (s *fakeLedgerStore) corrupt(key int64, quantity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.balances[key]
	s.balances[key] = ledger.Balance{Quantity: mustDec(quantity), Version: b.Version, UpdatedAt: time.Now()}
}

func TestSweepOnce_ReparaDesviosNosDoisLedgers(t *testing.T) {
	ctx := context.Background()

	stockStore := newFakeLedgerStore()
	stockEngine := ledger.New[int64](stockStore, knownProducts{10: true}, zerolog.Nop(),
		ledger.WithRetryBase[int64](time.Millisecond))
	_, err := stockEngine.PostInbound(ctx, "tx-e-1", []ledger.Line[int64]{
		{Key: 10, Quantity: mustDec("9.0"), Unit: "kg"},
	})
	require.NoError(t, err)

	cellStore := newFakeLedgerStore()
	cellEngine := ledger.New[int64](cellStore, knownProducts{5: true}, zerolog.Nop(),
		ledger.WithRetryBase[int64](time.Millisecond))
	_, err = cellEngine.PostInbound(ctx, "tx-c-1", []ledger.Line[int64]{
		{Key: 5, Quantity: mustDec("4.0"), Unit: "kg"},
	})
	require.NoError(t, err)

	// Desvio num ledger só; o outro serve de controle.
	stockStore.corrupt(10, "6.5")

	sweeper := usecase.NewReconcileSweeper(stockEngine, cellEngine,
		staticIDs{10}, staticIDs{5}, true, zerolog.Nop())
	sweeper.SweepOnce(ctx)

	stockBal, _ := stockStore.Balance(ctx, 10)
	assert.True(t, stockBal.Quantity.Equal(mustDec("9.0")), "saldo corrompido deve voltar ao somatório do ledger")

	cellBal, _ := cellStore.Balance(ctx, 5)
	assert.True(t, cellBal.Quantity.Equal(mustDec("4.0")), "saldo íntegro não pode ser alterado")
}

func TestSweepOnce_SemReparo_SomenteMede(t *testing.T) {
	ctx := context.Background()

	stockStore := newFakeLedgerStore()
	stockEngine := ledger.New[int64](stockStore, knownProducts{10: true}, zerolog.Nop(),
		ledger.WithRetryBase[int64](time.Millisecond))
	_, err := stockEngine.PostInbound(ctx, "tx-e-1", []ledger.Line[int64]{
		{Key: 10, Quantity: mustDec("9.0"), Unit: "kg"},
	})
	require.NoError(t, err)
	stockStore.corrupt(10, "6.5")

	cellEngine := ledger.New[int64](newFakeLedgerStore(), knownProducts{}, zerolog.Nop())

	sweeper := usecase.NewReconcileSweeper(stockEngine, cellEngine,
		staticIDs{10}, staticIDs{}, false, zerolog.Nop())
	sweeper.SweepOnce(ctx)

	bal, _ := stockStore.Balance(ctx, 10)
	assert.True(t, bal.Quantity.Equal(mustDec("6.5")), "sem reparo a varredura não escreve")
}
