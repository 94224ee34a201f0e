package crt

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/id"
	"transdoc/internal/core/numerator"
	"transdoc/internal/core/tx"
	"transdoc/internal/domain/audit"
	"transdoc/internal/domain/carrier"
	"transdoc/internal/domain/country"
	"transdoc/internal/domain/license"
	"transdoc/internal/domain/numbering"
	infranumerator "transdoc/internal/infrastructure/numerator"
)

type memoryRepo struct {
	mu   sync.Mutex
	docs map[id.ID]*CRT
	fail error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{docs: make(map[id.ID]*CRT)}
}

func (r *memoryRepo) CreateBatch(_ context.Context, docs []*CRT) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	for _, d := range docs {
		r.docs[d.ID] = d
	}
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, crtID id.ID) (*CRT, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[crtID]
	if !ok {
		return nil, apperror.NewNotFound("crt", crtID)
	}
	return d, nil
}

func (r *memoryRepo) GetByIDs(_ context.Context, ids []id.ID) ([]*CRT, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*CRT
	for _, i := range ids {
		if d, ok := r.docs[i]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memoryRepo) ListByCarrier(_ context.Context, carrierID id.ID, limit int) ([]*CRT, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*CRT
	for _, d := range r.docs {
		if d.CarrierID == carrierID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fixture struct {
	svc     *Service
	repo    *memoryRepo
	seq     *infranumerator.Memory
	entries []audit.Entry
	home    *carrier.Carrier
	other   *carrier.Carrier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := carrier.NewMemoryStore()
	home := store.PutCarrier(&carrier.Carrier{Name: "Sul", Country: "BR", RegistrationNumber: "BR1111/1", StartPrimary: 1})
	store.PutLicense(carrier.DestinationLicense{CarrierID: home.ID, DestinationCountry: "AR", Code: "BR6023/1800648"})
	other := store.PutCarrier(&carrier.Carrier{Name: "Andes", Country: "AR", RegistrationNumber: "AR-1", StartPrimary: 40})
	store.PutLicense(carrier.DestinationLicense{CarrierID: other.ID, DestinationCountry: "BR", Code: "L", Idoneidade: "5678"})

	f := &fixture{repo: newMemoryRepo(), seq: infranumerator.NewMemory(), home: home, other: other}
	numbers := numbering.NewService(store, license.NewResolver(store, country.Default(), "BR"), f.seq, numbering.DefaultOptions())
	recorder := audit.RecorderFunc(func(_ context.Context, e audit.Entry) error {
		f.entries = append(f.entries, e)
		return nil
	})
	f.svc = NewService(f.repo, store, numbers, tx.Passthrough, recorder)
	return f
}

func request(carrierID id.ID, origin, destination string, qty int) IssueRequest {
	return IssueRequest{
		CarrierID:         carrierID,
		Origin:            origin,
		Destination:       destination,
		Quantity:          qty,
		CommercialInvoice: "INV-2026-001",
		Exporter:          "Exportadora Ltda",
		Importer:          "Importadora SA",
	}
}

func TestIssue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	docs, err := f.svc.Issue(ctx, request(f.home.ID, "br", "ar", 3))
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "BR602300001", docs[0].Number)
	assert.Equal(t, "BR602300003", docs[2].Number)
	assert.Equal(t, "INV-2026-001", docs[1].CommercialInvoice)
	assert.Equal(t, "6023", docs[1].ComplementaryCode)

	stored, err := f.svc.GetByID(ctx, docs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, docs[1].Number, stored.Number)

	require.Len(t, f.entries, 3)
	assert.Equal(t, audit.ActionIssue, f.entries[0].Action)
	assert.Equal(t, "crt", f.entries[0].EntityType)
	assert.Equal(t, "system", f.entries[0].Operator)
}

func TestIssue_OriginDefaultsToHomeCountry(t *testing.T) {
	f := newFixture(t)

	docs, err := f.svc.Issue(context.Background(), request(f.other.ID, "", "BR", 1))
	require.NoError(t, err)
	assert.Equal(t, "AR", docs[0].Origin)
	assert.Equal(t, "AR567800040", docs[0].Number)
}

func TestIssue_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := request(f.home.ID, "BR", "AR", 1)
	req.Exporter = " "
	_, err := f.svc.Issue(ctx, req)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "exporter", appErr.Details["field"])

	_, err = f.svc.Issue(ctx, request(f.home.ID, "BR", "", 1))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.svc.Issue(ctx, request(id.New(), "", "AR", 1))
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.Issue(ctx, request(f.home.ID, "BR", "AR", 0))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))

	assert.Empty(t, f.repo.docs)
}

func TestIssue_StoreFailureLeavesGap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.fail = errors.New("disk full")
	_, err := f.svc.Issue(ctx, request(f.home.ID, "BR", "AR", 2))
	require.ErrorContains(t, err, "disk full")

	last, ok, err := f.seq.Current(ctx, numerator.Key{Kind: numerator.KindPrimary, CarrierID: f.home.ID})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), last)

	f.repo.fail = nil
	docs, err := f.svc.Issue(ctx, request(f.home.ID, "BR", "AR", 1))
	require.NoError(t, err)
	assert.Equal(t, int64(3), docs[0].Sequence)
}

func TestGetForCarrier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine, err := f.svc.Issue(ctx, request(f.home.ID, "BR", "AR", 2))
	require.NoError(t, err)
	theirs, err := f.svc.Issue(ctx, request(f.other.ID, "AR", "BR", 1))
	require.NoError(t, err)

	got, err := f.svc.GetForCarrier(ctx, f.home.ID, []id.ID{mine[1].ID, mine[0].ID, mine[1].ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, mine[1].ID, got[0].ID)

	_, err = f.svc.GetForCarrier(ctx, f.home.ID, []id.ID{mine[0].ID, theirs[0].ID})
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))

	_, err = f.svc.GetForCarrier(ctx, f.home.ID, []id.ID{id.New()})
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.GetForCarrier(ctx, f.home.ID, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestListByCarrier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Issue(ctx, request(f.home.ID, "BR", "AR", 5))
	require.NoError(t, err)

	list, err := f.svc.ListByCarrier(ctx, f.home.ID, 0)
	require.NoError(t, err)
	assert.Len(t, list, 5)
	assert.Equal(t, int64(5), list[0].Sequence)
}
