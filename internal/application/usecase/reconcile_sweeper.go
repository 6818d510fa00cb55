package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/ledger"
)

// IDLister enumera as chaves vivas de um ledger (produtos ou células ativas).
type IDLister interface {
	ListIDs(ctx context.Context) ([]int64, error)
}

// ReconcileSweeper percorre periodicamente todos os produtos e células,
// medindo o desvio entre saldo materializado e somatório do ledger. Com
// repair ligado, saldos divergentes são sobrescritos a partir do ledger.
// Uma chave com erro não interrompe a varredura das demais.
type ReconcileSweeper struct {
	stockEngine *ledger.Engine[int64]
	cellEngine  *ledger.Engine[int64]
	products    IDLister
	cells       IDLister
	repair      bool
	log         zerolog.Logger
}

// NewReconcileSweeper constrói a varredura.
func NewReconcileSweeper(
	stockEngine, cellEngine *ledger.Engine[int64],
	products, cells IDLister,
	repair bool,
	log zerolog.Logger,
) *ReconcileSweeper {
	return &ReconcileSweeper{
		stockEngine: stockEngine,
		cellEngine:  cellEngine,
		products:    products,
		cells:       cells,
		repair:      repair,
		log:         log,
	}
}

// Run executa a varredura em intervalos regulares até o contexto encerrar.
func (s *ReconcileSweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.log.Info().Dur("interval", interval).Bool("repair", s.repair).Msg("varredura de reconciliação ligada")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("varredura de reconciliação encerrada")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce percorre os dois ledgers uma vez e loga os desvios encontrados.
func (s *ReconcileSweeper) SweepOnce(ctx context.Context) {
	s.sweep(ctx, "estoque", s.stockEngine, s.products)
	s.sweep(ctx, "celulas", s.cellEngine, s.cells)
}

func (s *ReconcileSweeper) sweep(ctx context.Context, name string, engine *ledger.Engine[int64], lister IDLister) {
	ids, err := lister.ListIDs(ctx)
	if err != nil {
		s.log.Error().Str("ledger", name).Err(err).Msg("varredura: falha ao listar chaves")
		return
	}
	var drifted int
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		result, err := engine.Reconcile(ctx, id, s.repair)
		if err != nil {
			s.log.Error().Str("ledger", name).Int64("key", id).Err(err).Msg("varredura: falha ao reconciliar")
			continue
		}
		if !result.Drift.IsZero() || result.Repaired {
			drifted++
			s.log.Warn().
				Str("ledger", name).
				Int64("key", id).
				Str("drift", result.Drift.String()).
				Bool("repaired", result.Repaired).
				Msg("varredura: desvio de saldo detectado")
		}
	}
	s.log.Debug().Str("ledger", name).Int("keys", len(ids)).Int("drifted", drifted).Msg("varredura concluída")
}
