package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Padrões do motor. As tentativas cobrem apenas ErrVersionConflict; qualquer
// outra falha de persistência encerra a linha imediatamente.
const (
	defaultMaxRetries  = 3
	defaultRetryBase   = 20 * time.Millisecond
	defaultLineTimeout = 5 * time.Second
)

// Engine aplica transações (entradas e saídas) sobre um Store, garantindo:
//   - validação completa antes de qualquer escrita;
//   - atomicidade por linha (nunca por transação inteira): linhas já
//     gravadas permanecem quando uma linha posterior falha, e o resultado
//     reporta explicitamente o desfecho de cada uma;
//   - concorrência otimista com tentativas limitadas por linha;
//   - saldo nunca negativo em saídas, rechecado a cada tentativa;
//   - idempotência por TransactionID.
type Engine[K comparable] struct {
	store       Store[K]
	keys        KeyChecker[K]
	log         zerolog.Logger
	maxRetries  int
	retryBase   time.Duration
	lineTimeout time.Duration
	now         func() time.Time
	sleep       func(context.Context, time.Duration) error
}

// Option configura o motor.
type Option[K comparable] func(*Engine[K])

// WithMaxRetries limita as tentativas por conflito de versão.
func WithMaxRetries[K comparable](n int) Option[K] {
	return func(e *Engine[K]) { e.maxRetries = n }
}

// WithRetryBase define a base do backoff entre tentativas.
func WithRetryBase[K comparable](d time.Duration) Option[K] {
	return func(e *Engine[K]) { e.retryBase = d }
}

// WithLineTimeout limita o tempo de persistência de cada linha.
func WithLineTimeout[K comparable](d time.Duration) Option[K] {
	return func(e *Engine[K]) { e.lineTimeout = d }
}

// WithClock troca o relógio (testes).
func WithClock[K comparable](now func() time.Time) Option[K] {
	return func(e *Engine[K]) { e.now = now }
}

// New constrói o motor sobre o store e o verificador de chaves.
func New[K comparable](store Store[K], keys KeyChecker[K], log zerolog.Logger, opts ...Option[K]) *Engine[K] {
	e := &Engine[K]{
		store:       store,
		keys:        keys,
		log:         log,
		maxRetries:  defaultMaxRetries,
		retryBase:   defaultRetryBase,
		lineTimeout: defaultLineTimeout,
		now:         time.Now,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PostInbound lança uma transação de entrada: cada linha soma Quantity ao
// saldo da chave e registra um delta positivo no ledger.
func (e *Engine[K]) PostInbound(ctx context.Context, transactionID string, lines []Line[K]) (*PostResult[K], error) {
	return e.post(ctx, transactionID, lines, EntryIn)
}

// PostOutbound lança uma transação de saída: cada linha subtrai Quantity do
// saldo e registra um delta negativo. Nenhuma linha pode deixar o saldo
// negativo, nem na validação nem na hora de gravar.
func (e *Engine[K]) PostOutbound(ctx context.Context, transactionID string, lines []Line[K]) (*PostResult[K], error) {
	return e.post(ctx, transactionID, lines, EntryOut)
}

func (e *Engine[K]) post(ctx context.Context, transactionID string, lines []Line[K], typ EntryType) (*PostResult[K], error) {
	if transactionID == "" || len(lines) == 0 {
		return nil, ErrEmptyTransaction
	}

	// Validação completa antes de qualquer escrita: sinal, existência da
	// chave, idempotência e — em saídas — suficiência de saldo.
	if err := e.validate(ctx, transactionID, lines, typ); err != nil {
		return nil, err
	}

	result := &PostResult[K]{
		TransactionID: transactionID,
		Balances:      make(map[K]decimal.Decimal, len(lines)),
	}

	for i, line := range lines {
		newBalance, err := e.applyLine(ctx, transactionID, i, line, typ)
		if err != nil {
			e.log.Warn().
				Str("transaction_id", transactionID).
				Int("line", i).
				Any("key", line.Key).
				Err(err).
				Msg("linha de transação não aplicada")
			result.Failed = append(result.Failed, LineFailure[K]{
				Index:    i,
				Key:      line.Key,
				Quantity: line.Quantity,
				Reason:   err.Error(),
				Err:      err,
			})
			continue
		}
		result.Committed = append(result.Committed, LineResult[K]{
			Index:      i,
			Key:        line.Key,
			Quantity:   line.Quantity,
			NewBalance: newBalance,
		})
		result.Balances[line.Key] = newBalance
	}

	switch {
	case len(result.Failed) == 0:
		return result, nil
	case len(result.Committed) == 0:
		// Rejeição total depois da validação: nada foi gravado; propaga a
		// causa da primeira linha.
		return result, result.Failed[0].Err
	default:
		return result, fmt.Errorf("%w: %d gravadas, %d com falha", ErrPartialFailure, len(result.Committed), len(result.Failed))
	}
}

func (e *Engine[K]) validate(ctx context.Context, transactionID string, lines []Line[K], typ EntryType) error {
	for i, line := range lines {
		if !line.Quantity.GreaterThan(decimal.Zero) {
			return fmt.Errorf("linha %d: %w", i, ErrInvalidQuantity)
		}
		ok, err := e.keys.Exists(ctx, line.Key)
		if err != nil {
			return fmt.Errorf("linha %d: verificar chave: %w", i, err)
		}
		if !ok {
			return fmt.Errorf("linha %d: %w", i, ErrUnknownKey)
		}
	}

	dup, err := e.store.HasTransaction(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("verificar idempotência: %w", err)
	}
	if dup {
		return ErrDuplicateTransaction
	}

	if typ == EntryOut {
		// Suficiência acumulada por chave: duas linhas da mesma chave
		// precisam caber juntas no saldo atual.
		requested := make(map[K]decimal.Decimal, len(lines))
		for i, line := range lines {
			requested[line.Key] = requested[line.Key].Add(line.Quantity)
			bal, err := e.store.Balance(ctx, line.Key)
			if err != nil {
				return fmt.Errorf("linha %d: ler saldo: %w", i, err)
			}
			if requested[line.Key].GreaterThan(bal.Quantity) {
				return fmt.Errorf("linha %d: %w", i, ErrInsufficientStock)
			}
		}
	}
	return nil
}

// applyLine executa o read-modify-write de uma linha com compare-and-set,
// repetindo em conflito de versão até maxRetries. Devolve o saldo resultante.
func (e *Engine[K]) applyLine(ctx context.Context, transactionID string, index int, line Line[K], typ EntryType) (decimal.Decimal, error) {
	delta := line.Quantity
	if typ == EntryOut {
		delta = delta.Neg()
	}
	occurredAt := line.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = e.now()
	}

	lineCtx, cancel := context.WithTimeout(ctx, e.lineTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			if err := e.sleep(lineCtx, e.retryBase<<(attempt-1)); err != nil {
				return decimal.Zero, fmt.Errorf("persistir linha: %w", err)
			}
		}

		bal, err := e.store.Balance(lineCtx, line.Key)
		if err != nil {
			return decimal.Zero, fmt.Errorf("ler saldo: %w", err)
		}
		newQuantity := bal.Quantity.Add(delta)
		if newQuantity.IsNegative() {
			// Corrida desde a validação drenou o saldo: aborta sem escrever.
			return decimal.Zero, ErrInsufficientStock
		}

		entry := Entry[K]{
			Key:           line.Key,
			Delta:         delta,
			Type:          typ,
			TransactionID: transactionID,
			LineIndex:     index,
			CreatedAt:     occurredAt,
		}
		err = e.store.ApplyLine(lineCtx, line.Key, bal.Version, newQuantity, entry)
		if err == nil {
			return newQuantity, nil
		}
		if errors.Is(err, ErrDuplicateEntry) {
			// Outro lançamento da mesma transação chegou primeiro.
			return decimal.Zero, ErrDuplicateTransaction
		}
		if !errors.Is(err, ErrVersionConflict) {
			return decimal.Zero, fmt.Errorf("persistir linha: %w", err)
		}
		lastErr = err
	}
	return decimal.Zero, fmt.Errorf("%w (última causa: %v)", ErrConcurrentModification, lastErr)
}

// Reconcile recomputa o saldo de uma chave a partir do ledger e mede o desvio
// contra o saldo materializado. Com repair=false é somente leitura. Com
// repair=true e desvio não nulo, sobrescreve o saldo com o somatório do
// ledger (escrita condicionada à versão, com as mesmas tentativas do post).
func (e *Engine[K]) Reconcile(ctx context.Context, key K, repair bool) (*ReconcileResult, error) {
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			if err := e.sleep(ctx, e.retryBase<<(attempt-1)); err != nil {
				return nil, err
			}
		}

		sum, err := e.store.SumEntries(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("somar ledger: %w", err)
		}
		bal, err := e.store.Balance(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("ler saldo: %w", err)
		}
		res := &ReconcileResult{
			LedgerSum:     sum,
			CachedBalance: bal.Quantity,
			Drift:         sum.Sub(bal.Quantity),
		}
		if !repair || res.Drift.IsZero() {
			return res, nil
		}

		err = e.store.SetBalance(ctx, key, bal.Version, sum)
		if err == nil {
			e.log.Info().
				Any("key", key).
				Str("drift", res.Drift.String()).
				Msg("saldo reparado a partir do ledger")
			res.Repaired = true
			res.CachedBalance = sum
			return res, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, fmt.Errorf("reparar saldo: %w", err)
		}
		// Saldo mudou entre a soma e a escrita: recomeça a medição.
	}
	return nil, ErrConcurrentModification
}

// sleepCtx dorme respeitando o cancelamento do contexto.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
