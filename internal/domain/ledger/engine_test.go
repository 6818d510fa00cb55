package ledger_test

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

	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/ledger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Store em memória com injeção de falhas
// ──────────────────────────────────────────────────────────────────────────────

// memStore implementa ledger.Store[int64] em memória. O mutex torna cada
// ApplyLine atômico, como a transação SQL do adaptador real. Falhas podem
// ser injetadas por índice de linha (lineFaults), conflitos de versão por
// chave (conflictsLeft decrementa a cada ApplyLine até zerar) e travas que
// seguram a escrita até o contexto expirar (blockLines).
type memStore struct {
	mu            sync.Mutex
	balances      map[int64]ledger.Balance
	entries       []ledger.Entry[int64]
	lineFaults    map[int]error
	conflictsLeft map[int64]int
	blockLines    map[int]bool
}

func newMemStore() *memStore {
	return &memStore{
		balances:      make(map[int64]ledger.Balance),
		lineFaults:    make(map[int]error),
		conflictsLeft: make(map[int64]int),
		blockLines:    make(map[int]bool),
	}
}

func (s *memStore) Balance(_ context.Context, key int64) (ledger.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[key], nil
}

func (s *memStore) ApplyLine(ctx context.Context, key int64, expectedVersion int64, newQuantity decimal.Decimal, entry ledger.Entry[int64]) error {
	s.mu.Lock()
	blocked := s.blockLines[entry.LineIndex]
	s.mu.Unlock()
	if blocked {
		// Simula uma escrita pendurada: só retorna quando o prazo da
		// linha expira.
		<-ctx.Done()
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.lineFaults[entry.LineIndex]; ok {
		delete(s.lineFaults, entry.LineIndex)
		return err
	}
	for _, e := range s.entries {
		if e.TransactionID == entry.TransactionID && e.LineIndex == entry.LineIndex {
			return ledger.ErrDuplicateEntry
		}
	}
	if s.conflictsLeft[key] > 0 {
		s.conflictsLeft[key]--
		return ledger.ErrVersionConflict
	}
	if s.balances[key].Version != expectedVersion {
		return ledger.ErrVersionConflict
	}

	// Ledger primeiro, saldo depois — dentro da mesma seção crítica.
	s.entries = append(s.entries, entry)
	s.balances[key] = ledger.Balance{
		Quantity:  newQuantity,
		Version:   expectedVersion + 1,
		UpdatedAt: time.Now(),
	}
	return nil
}

func (s *memStore) HasTransaction(_ context.Context, transactionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.TransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) SumEntries(_ context.Context, key int64) (decimal.Decimal, error) {
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

func (s *memStore) SetBalance(_ context.Context, key int64, expectedVersion int64, quantity decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balances[key].Version != expectedVersion {
		return ledger.ErrVersionConflict
	}
	s.balances[key] = ledger.Balance{
		Quantity:  quantity,
		Version:   expectedVersion + 1,
		UpdatedAt: time.Now(),
	}
	return nil
}

// corruptBalance sobrescreve o saldo sem passar pelo ledger, simulando a
// interrupção entre a escrita do lançamento e a do saldo.
func (s *memStore) corruptBalance(key int64, quantity decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.balances[key]
	s.balances[key] = ledger.Balance{Quantity: quantity, Version: b.Version, UpdatedAt: time.Now()}
}

// ledgerSum soma o ledger direto (sem engine), para conferir a invariante
// saldo == somatório depois de cada cenário.
func (s *memStore) ledgerSum(key int64) decimal.Decimal {
	sum, _ := s.SumEntries(context.Background(), key)
	return sum
}

// allowKeys aprova as chaves marcadas como true.
type allowKeys map[int64]bool

func (a allowKeys) Exists(_ context.Context, key int64) (bool, error) {
	return a[key], nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestEngine(store *memStore, keys allowKeys, opts ...ledger.Option[int64]) *ledger.Engine[int64] {
	base := []ledger.Option[int64]{ledger.WithRetryBase[int64](time.Millisecond)}
	return ledger.New[int64](store, keys, zerolog.Nop(), append(base, opts...)...)
}

// ──────────────────────────────────────────────────────────────────────────────
// Entradas e saídas
// ──────────────────────────────────────────────────────────────────────────────

// Cenário de referência: entrada de 10.0 kg no produto 42, saída de 4.0 kg,
// saldo final 6.0 e ledger batendo com o saldo.
func TestPost_EntradaESaida_SaldoBateComLedger(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store, allowKeys{42: true})
	ctx := context.Background()

	in, err := engine.PostInbound(ctx, "tx-1", []ledger.Line[int64]{
		{Key: 42, Quantity: dec("10.0"), Unit: "kg"},
	})
	require.NoError(t, err)
	require.Len(t, in.Committed, 1)
	assert.True(t, in.Balances[42].Equal(dec("10.0")), "saldo após entrada deve ser 10.0")

	out, err := engine.PostOutbound(ctx, "tx-2", []ledger.Line[int64]{
		{Key: 42, Quantity: dec("4.0"), Unit: "kg"},
	})
	require.NoError(t, err)
	assert.True(t, out.Balances[42].Equal(dec("6.0")), "saldo após saída deve ser 6.0")

	bal, err := store.Balance(ctx, 42)
	require.NoError(t, err)
	assert.True(t, bal.Quantity.Equal(store.ledgerSum(42)),
		"invariante: saldo materializado deve ser igual ao somatório do ledger")
}

func TestPostInbound_VariasLinhas_AcumulaPorChave(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store, allowKeys{1: true, 2: true})

	res, err := engine.PostInbound(context.Background(), "tx-multi", []ledger.Line[int64]{
		{Key: 1, Quantity: dec("2.5"), Unit: "kg"},
		{Key: 2, Quantity: dec("1.0"), Unit: "kg"},
		{Key: 1, Quantity: dec("0.5"), Unit: "kg"},
	})
	require.NoError(t, err)
	assert.Len(t, res.Committed, 3)
	assert.Empty(t, res.Failed)
	assert.True(t, res.Balances[1].Equal(dec("3.0")))
	assert.True(t, res.Balances[2].Equal(dec("1.0")))
}

func TestPostOutbound_SaldoInsuficiente_NadaEscrito(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store, allowKeys{7: true})
	ctx := context.Background()

	_, err := engine.PostInbound(ctx, "tx-carga", []ledger.Line[int64]{
		{Key: 7, Quantity: dec("10.0"), Unit: "kg"},
	})
	require.NoError(t, err)

	_, err = engine.PostOutbound(ctx, "tx-saida", []ledger.Line[int64]{
		{Key: 7, Quantity: dec("12.0"), Unit: "kg"},
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)

	bal, _ := store.Balance(ctx, 7)
	assert.True(t, bal.Quantity.Equal(dec("10.0")), "rejeição não pode alterar o saldo")
	assert.True(t, store.ledgerSum(7).Equal(dec("10.0")), "rejeição não pode gravar lançamento")
}

// Duas linhas da mesma chave precisam caber juntas no saldo: 6 + 6 não cabem
// em 10, mesmo que cada uma isolada coubesse.
func TestPostOutbound_SuficienciaAcumuladaPorChave(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store, allowKeys{7: true})
	ctx := context.Background()

	_, err := engine.PostInbound(ctx, "tx-carga", []ledger.Line[int64]{
		{Key: 7, Quantity: dec("10.0"), Unit: "kg"},
	})
	require.NoError(t, err)

	_, err = engine.PostOutbound(ctx, "tx-dupla", []ledger.Line[int64]{
		{Key: 7, Quantity: dec("6.0"), Unit: "kg"},
		{Key: 7, Quantity: dec("6.0"), Unit: "kg"},
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)

	bal, _ := store.Balance(ctx, 7)
	assert.True(t, bal.Quantity.Equal(dec("10.0")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validação
// ──────────────────────────────────────────────────────────────────────────────

func TestPost_QuantidadeInvalida(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store, allowKeys{1: true})

	_, err := engine.PostInbound(context.Background(), "tx-zero", []ledger.Line[int64]{
		{Key: 1, Quantity: decimal.Zero, Unit: "kg"},
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidQuantity)

	_, err = engine.PostInbound(context.Background(), "tx-neg", []ledger.Line[int64]{
		{Key: 1, Quantity: dec("-1.0"), Unit: "kg"},
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidQuantity)
	assert.Empty(t, store.entries, "validação reprovada não pode gravar nada")
}

func TestPost_ChaveDesconhecida(t *testing.T) {
	engine := newTestEngine(newMemStore(), allowKeys{1: true})

	_, err := engine.PostInbound(context.Background(), "tx-x", []ledger.Line[int64]{
		{Key: 99, Quantity: dec("1.0"), Unit: "kg"},
	})
	assert.ErrorIs(t, err, ledger.ErrUnknownKey)
}

func TestPost_TransacaoVazia(t *testing.T) {
	engine := newTestEngine(newMemStore(), allowKeys{})

	_, err := engine.PostInbound(context.Background(), "", []ledger.Line[int64]{
		{Key: 1, Quantity: dec("1.0"), Unit: "kg"},
	})
	assert.ErrorIs(t, err, ledger.ErrEmptyTransaction)

	_, err = engine.PostInbound(context.Background(), "tx-sem-linhas", nil)
	assert.ErrorIs(t, err, ledger.ErrEmptyTransaction)
}

// Uma linha inválida derruba a transação inteira antes de qualquer escrita,
// mesmo com linhas válidas antes dela.
func TestPost_ValidaTudoAntesDeEscrever(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store, allowKeys{1: true})

	_, err := engine.PostInbound(context.Background(), "tx-mista", []ledger.Line[int64]{
		{Key: 1, Quantity: dec("5.0"), Unit: "kg"},
		{Key: 1, Quantity: dec("-2.0"), Unit: "kg"},
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidQuantity)
	assert.Empty(t, store.entries)
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotência
// ──────────────────────────────────────────────────────────────────────────────

func TestPost_ReenvioNaoDuplicaSaldo(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store, allowKeys{42: true})
	ctx := context.Background()

	lines := []ledger.Line[int64]{{Key: 42, Quantity: dec("10.0"), Unit: "kg"}}
	_, err := engine.PostInbound(ctx, "tx-1", lines)
	require.NoError(t, err)

	_, err = engine.PostInbound(ctx, "tx-1", lines)
	assert.ErrorIs(t, err, ledger.ErrDuplicateTransaction)

	bal, _ := store.Balance(ctx, 42)
	assert.True(t, bal.Quantity.Equal(dec("10.0")), "reenvio não pode dobrar o saldo")
	assert.Len(t, store.entries, 1)
}

// Corrida pela segunda barreira: a checagem passou mas outro lançamento da
// mesma transação chegou primeiro no store.
func TestPost_DuplicataDetectadaNaEscrita(t *testing.T) {
	store := newMemStore()
	store.lineFaults[0] = ledger.ErrDuplicateEntry
	engine := newTestEngine(store, allowKeys{42: true})

	_, err := engine.PostInbound(context.Background(), "tx-corrida", []ledger.Line[int64]{
		{Key: 42, Quantity: dec("1.0"), Unit: "kg"},
	})
	assert.ErrorIs(t, err, ledger.ErrDuplicateTransaction)
}

// ──────────────────────────────────────────────────────────────────────────────
// Falha parcial
// ──────────────────────────────────────────────────────────────────────────────

// Três linhas, a do meio falha com erro de persistência: as outras duas
// permanecem gravadas e o resultado enumera cada desfecho.
func TestPost_FalhaParcial_MantemLinhasGravadas(t *testing.T) {
	store := newMemStore()
	faultErr := errors.New("disco cheio")
	store.lineFaults[1] = faultErr
	engine := newTestEngine(store, allowKeys{1: true, 2: true, 3: true})

	res, err := engine.PostInbound(context.Background(), "tx-parcial", []ledger.Line[int64]{
		{Key: 1, Quantity: dec("1.0"), Unit: "kg"},
		{Key: 2, Quantity: dec("2.0"), Unit: "kg"},
		{Key: 3, Quantity: dec("3.0"), Unit: "kg"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrPartialFailure)

	require.NotNil(t, res)
	assert.True(t, res.Partial())
	require.Len(t, res.Committed, 2)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 1, res.Failed[0].Index)
	assert.Equal(t, int64(2), res.Failed[0].Key)

	// As linhas gravadas não são desfeitas.
	assert.True(t, store.ledgerSum(1).Equal(dec("1.0")))
	assert.True(t, store.ledgerSum(2).IsZero())
	assert.True(t, store.ledgerSum(3).Equal(dec("3.0")))
}

// Escrita que estoura o prazo da linha é falha de persistência daquela
// linha: a causa é o deadline do contexto e as demais linhas seguem o
// fluxo normal.
func TestPost_LinhaEstouraPrazo_FalhaComDeadline(t *testing.T) {
	store := newMemStore()
	store.blockLines[1] = true
	engine := newTestEngine(store, allowKeys{1: true, 2: true},
		ledger.WithLineTimeout[int64](20*time.Millisecond))

	res, err := engine.PostInbound(context.Background(), "tx-prazo", []ledger.Line[int64]{
		{Key: 1, Quantity: dec("5.0"), Unit: "kg"},
		{Key: 2, Quantity: dec("3.0"), Unit: "kg"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrPartialFailure)

	require.NotNil(t, res)
	require.Len(t, res.Committed, 1)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 1, res.Failed[0].Index)
	assert.ErrorIs(t, res.Failed[0].Err, context.DeadlineExceeded,
		"a causa da falha deve ser o prazo da linha")

	// A linha que coube no prazo foi gravada; a pendurada não deixou rastro.
	assert.True(t, store.ledgerSum(1).Equal(dec("5.0")))
	assert.True(t, store.ledgerSum(2).IsZero())
}

// Todas as linhas falham depois da validação: não é falha parcial, o erro
// propagado é a causa da primeira linha.
func TestPost_TodasAsLinhasFalham(t *testing.T) {
	store := newMemStore()
	faultErr := errors.New("conexão perdida")
	store.lineFaults[0] = faultErr
	engine := newTestEngine(store, allowKeys{1: true})

	res, err := engine.PostInbound(context.Background(), "tx-falha-total", []ledger.Line[int64]{
		{Key: 1, Quantity: dec("1.0"), Unit: "kg"},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ledger.ErrPartialFailure)
	assert.ErrorIs(t, err, faultErr)
	assert.False(t, res.Partial())
	assert.Empty(t, store.entries)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concorrência otimista
// ──────────────────────────────────────────────────────────────────────────────

func TestPost_ConflitoDeVersao_RetentaEConclui(t *testing.T) {
	store := newMemStore()
	store.conflictsLeft[42] = 2 // dois conflitos antes de aceitar
	engine := newTestEngine(store, allowKeys{42: true})

	res, err := engine.PostInbound(context.Background(), "tx-retry", []ledger.Line[int64]{
		{Key: 42, Quantity: dec("1.0"), Unit: "kg"},
	})
	require.NoError(t, err)
	assert.Len(t, res.Committed, 1)
	assert.True(t, res.Balances[42].Equal(dec("1.0")))
}

func TestPost_ConflitosEsgotam_Tentativas(t *testing.T) {
	store := newMemStore()
	store.conflictsLeft[42] = 50
	engine := newTestEngine(store, allowKeys{42: true}, ledger.WithMaxRetries[int64](2))

	_, err := engine.PostInbound(context.Background(), "tx-esgotado", []ledger.Line[int64]{
		{Key: 42, Quantity: dec("1.0"), Unit: "kg"},
	})
	assert.ErrorIs(t, err, ledger.ErrConcurrentModification)
	assert.Empty(t, store.entries)
}

// Duas retiradas concorrentes de 6.0 sobre saldo 10.0: exatamente uma entra,
// a outra é rejeitada por saldo insuficiente; o saldo nunca fica negativo.
func TestPostOutbound_Concorrente_SaldoNuncaNegativo(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store, allowKeys{42: true})
	ctx := context.Background()

	_, err := engine.PostInbound(ctx, "tx-carga", []ledger.Line[int64]{
		{Key: 42, Quantity: dec("10.0"), Unit: "kg"},
	})
	require.NoError(t, err)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, txID := range []string{"tx-a", "tx-b"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := engine.PostOutbound(ctx, id, []ledger.Line[int64]{
				{Key: 42, Quantity: dec("6.0"), Unit: "kg"},
			})
			errs <- err
		}(txID)
	}
	wg.Wait()
	close(errs)

	var failures int
	for err := range errs {
		if err != nil {
			failures++
			assert.ErrorIs(t, err, ledger.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, failures, "exatamente uma das retiradas deve ser rejeitada")

	bal, _ := store.Balance(ctx, 42)
	assert.True(t, bal.Quantity.Equal(dec("4.0")), "saldo final deve ser 4.0")
	assert.False(t, bal.Quantity.IsNegative())
	assert.True(t, bal.Quantity.Equal(store.ledgerSum(42)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconciliação
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_SemDesvio(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store, allowKeys{42: true})
	ctx := context.Background()

	_, err := engine.PostInbound(ctx, "tx-1", []ledger.Line[int64]{
		{Key: 42, Quantity: dec("10.0"), Unit: "kg"},
	})
	require.NoError(t, err)

	res, err := engine.Reconcile(ctx, 42, true)
	require.NoError(t, err)
	assert.True(t, res.Drift.IsZero())
	assert.False(t, res.Repaired, "sem desvio não há o que reparar")
}

func TestReconcile_SomenteLeitura_NaoAlteraSaldo(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store, allowKeys{42: true})
	ctx := context.Background()

	_, err := engine.PostInbound(ctx, "tx-1", []ledger.Line[int64]{
		{Key: 42, Quantity: dec("10.0"), Unit: "kg"},
	})
	require.NoError(t, err)
	store.corruptBalance(42, dec("7.0"))

	res, err := engine.Reconcile(ctx, 42, false)
	require.NoError(t, err)
	assert.True(t, res.LedgerSum.Equal(dec("10.0")))
	assert.True(t, res.CachedBalance.Equal(dec("7.0")))
	assert.True(t, res.Drift.Equal(dec("3.0")))
	assert.False(t, res.Repaired)

	bal, _ := store.Balance(ctx, 42)
	assert.True(t, bal.Quantity.Equal(dec("7.0")), "modo leitura não pode escrever")
}

func TestReconcile_Repara_SaldoVoltaAoLedger(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store, allowKeys{42: true})
	ctx := context.Background()

	_, err := engine.PostInbound(ctx, "tx-1", []ledger.Line[int64]{
		{Key: 42, Quantity: dec("10.0"), Unit: "kg"},
	})
	require.NoError(t, err)
	store.corruptBalance(42, dec("7.0"))

	res, err := engine.Reconcile(ctx, 42, true)
	require.NoError(t, err)
	assert.True(t, res.Repaired)
	assert.True(t, res.CachedBalance.Equal(dec("10.0")))

	bal, _ := store.Balance(ctx, 42)
	assert.True(t, bal.Quantity.Equal(dec("10.0")), "reparo deve restaurar o somatório do ledger")
}
