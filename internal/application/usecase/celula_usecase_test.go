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

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeCellRepo struct {
	mu     sync.Mutex
	nextID int64
	cells  map[int64]*entity.Cell
}

func newFakeCellRepo() *fakeCellRepo {
	return &fakeCellRepo{nextID: 1, cells: make(map[int64]*entity.Cell)}
}

func (r *fakeCellRepo) Create(_ context.Context, cell *entity.Cell) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cell.ID = r.nextID
	r.nextID++
	r.cells[cell.ID] = cell
	return nil
}

func (r *fakeCellRepo) GetByID(_ context.Context, id int64) (*entity.Cell, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cells[id], nil
}

func (r *fakeCellRepo) List(_ context.Context) ([]*entity.Cell, error) { return nil, nil }

func (r *fakeCellRepo) Update(_ context.Context, cell *entity.Cell) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cells[cell.ID]; !ok {
		return domain.ErrNotFound
	}
	r.cells[cell.ID] = cell
	return nil
}

func (r *fakeCellRepo) Deactivate(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cell, ok := r.cells[id]
	if !ok {
		return domain.ErrNotFound
	}
	cell.Active = false
	return nil
}

func (r *fakeCellRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cells[id]
	return ok, nil
}

func (r *fakeCellRepo) ListIDs(_ context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.cells))
	for id := range r.cells {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeNetworkRepo struct {
	networks map[int64]*entity.Network
}

func (r *fakeNetworkRepo) Create(_ context.Context, _ *entity.Network) error { return nil }
func (r *fakeNetworkRepo) GetByID(_ context.Context, id int64) (*entity.Network, error) {
	return r.networks[id], nil
}
func (r *fakeNetworkRepo) List(_ context.Context) ([]*entity.Network, error) { return nil, nil }
func (r *fakeNetworkRepo) Update(_ context.Context, _ *entity.Network) error { return nil }
func (r *fakeNetworkRepo) Deactivate(_ context.Context, _ int64) error       { return nil }

// fakeHistoryRepo projeta o extrato a partir dos lançamentos do store.
type fakeHistoryRepo struct {
	store *fakeLedgerStore
}

func (r *fakeHistoryRepo) ListByCell(_ context.Context, cellID int64, limit, offset int) ([]*entity.KGHistoryEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.KGHistoryEntry
	for i, e := range r.store.entries {
		if e.Key != cellID {
			continue
		}
		out = append(out, &entity.KGHistoryEntry{
			ID:                  int64(i + 1),
			CellID:              e.Key,
			Quantity:            e.Delta,
			DeliveredAt:         e.CreatedAt,
			SourceTransactionID: e.TransactionID,
			LineIndex:           e.LineIndex,
		})
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func newCellFixture() (*usecase.CellUseCase, *fakeCellRepo, *fakeLedgerStore) {
	cells := newFakeCellRepo()
	networks := &fakeNetworkRepo{networks: map[int64]*entity.Network{
		1: {ID: 1, Color: "Azul", Hex: "#1E90FF", Active: true},
	}}
	store := newFakeLedgerStore()
	engine := ledger.New[int64](store, cells, zerolog.Nop(), ledger.WithRetryBase[int64](time.Millisecond))
	uc := usecase.NewCellUseCase(cells, networks, &fakeHistoryRepo{store: store}, engine)
	return uc, cells, store
}

func createTestCell(t *testing.T, uc *usecase.CellUseCase) int64 {
	t.Helper()
	cell, err := uc.Create(context.Background(), dto.CreateCellRequest{
		Name:      "Célula Esperança",
		Leader:    "Ana Pereira",
		NetworkID: 1,
	})
	require.NoError(t, err)
	return cell.ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Doações de kg
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterDonation_AcumulaTotalDaCelula(t *testing.T) {
	uc, _, store := newCellFixture()
	cellID := createTestCell(t, uc)
	ctx := context.Background()

	out, err := uc.RegisterDonation(ctx, cellID, dto.RegisterDonationRequest{
		TransactionID: "tx-doacao-1",
		Quantity:      mustDec("12.5"),
	})
	require.NoError(t, err)
	assert.True(t, out.NewTotal.Equal(mustDec("12.5")))

	out, err = uc.RegisterDonation(ctx, cellID, dto.RegisterDonationRequest{
		TransactionID: "tx-doacao-2",
		Quantity:      mustDec("7.5"),
	})
	require.NoError(t, err)
	assert.True(t, out.NewTotal.Equal(mustDec("20.0")), "total deve acumular entre doações")

	sum, _ := store.SumEntries(ctx, cellID)
	bal, _ := store.Balance(ctx, cellID)
	assert.True(t, bal.Quantity.Equal(sum), "total da célula deve bater com o extrato")
}

func TestRegisterDonation_CelulaInexistente(t *testing.T) {
	uc, _, _ := newCellFixture()

	_, err := uc.RegisterDonation(context.Background(), 999, dto.RegisterDonationRequest{
		TransactionID: "tx-doacao-x",
		Quantity:      mustDec("1.0"),
	})
	assert.ErrorIs(t, err, ledger.ErrUnknownKey)
}

func TestRegisterDonation_ReenvioRejeitado(t *testing.T) {
	uc, _, store := newCellFixture()
	cellID := createTestCell(t, uc)
	ctx := context.Background()

	req := dto.RegisterDonationRequest{TransactionID: "tx-doacao-rep", Quantity: mustDec("5.0")}
	_, err := uc.RegisterDonation(ctx, cellID, req)
	require.NoError(t, err)

	_, err = uc.RegisterDonation(ctx, cellID, req)
	assert.ErrorIs(t, err, ledger.ErrDuplicateTransaction)

	bal, _ := store.Balance(ctx, cellID)
	assert.True(t, bal.Quantity.Equal(mustDec("5.0")), "reenvio não pode dobrar o total")
}

func TestRegisterDonation_DataInformadaVaiParaOExtrato(t *testing.T) {
	uc, _, _ := newCellFixture()
	cellID := createTestCell(t, uc)
	delivered := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

	_, err := uc.RegisterDonation(context.Background(), cellID, dto.RegisterDonationRequest{
		TransactionID: "tx-doacao-data",
		Quantity:      mustDec("3.0"),
		DeliveredAt:   &delivered,
	})
	require.NoError(t, err)

	hist, err := uc.History(context.Background(), cellID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, hist.Items, 1)
	assert.True(t, hist.Items[0].DeliveredAt.Equal(delivered))
	assert.Equal(t, "tx-doacao-data", hist.Items[0].TransactionID)
}

func TestCellReconcile_ReparaTotalDivergente(t *testing.T) {
	uc, _, store := newCellFixture()
	cellID := createTestCell(t, uc)
	ctx := context.Background()

	_, err := uc.RegisterDonation(ctx, cellID, dto.RegisterDonationRequest{
		TransactionID: "tx-doacao-1",
		Quantity:      mustDec("10.0"),
	})
	require.NoError(t, err)
	store.corrupt(cellID, "7.0")

	out, err := uc.Reconcile(ctx, cellID, true)
	require.NoError(t, err)
	assert.True(t, out.Repaired)
	assert.True(t, out.Drift.Equal(mustDec("3.0")))
	assert.True(t, out.CachedBalance.Equal(mustDec("10.0")))

	bal, _ := store.Balance(ctx, cellID)
	assert.True(t, bal.Quantity.Equal(mustDec("10.0")))
}

func TestHistory_CelulaInexistente(t *testing.T) {
	uc, _, _ := newCellFixture()

	_, err := uc.History(context.Background(), 999, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
