package manifest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/id"
	"transdoc/internal/core/tx"
	"transdoc/internal/domain/audit"
	"transdoc/internal/domain/carrier"
	"transdoc/internal/domain/country"
	"transdoc/internal/domain/documents/crt"
	"transdoc/internal/domain/license"
	"transdoc/internal/domain/numbering"
	infranumerator "transdoc/internal/infrastructure/numerator"
)

type memoryRepo struct {
	mu    sync.Mutex
	docs  map[id.ID]*Manifest
	links map[id.ID][]id.ID
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{docs: make(map[id.ID]*Manifest), links: make(map[id.ID][]id.ID)}
}

func (r *memoryRepo) CreateBatch(_ context.Context, docs []*Manifest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range docs {
		cp := *d
		cp.CRTIDs = nil
		r.docs[d.ID] = &cp
	}
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, manifestID id.ID) (*Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[manifestID]
	if !ok {
		return nil, apperror.NewNotFound("manifest", manifestID)
	}
	cp := *d
	return &cp, nil
}

func (r *memoryRepo) LinkCRTs(_ context.Context, manifestID id.ID, crtIDs []id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := make(map[id.ID]bool)
	for _, c := range r.links[manifestID] {
		existing[c] = true
	}
	for _, c := range crtIDs {
		if !existing[c] {
			r.links[manifestID] = append(r.links[manifestID], c)
			existing[c] = true
		}
	}
	return nil
}

func (r *memoryRepo) ListCRTIDs(_ context.Context, manifestID id.ID) ([]id.ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]id.ID(nil), r.links[manifestID]...), nil
}

// crtStore is a CRTReader over a fixed set of waybills.
type crtStore map[id.ID]*crt.CRT

func (s crtStore) GetForCarrier(_ context.Context, carrierID id.ID, ids []id.ID) ([]*crt.CRT, error) {
	if len(ids) == 0 {
		return nil, apperror.NewValidation("at least one CRT is required")
	}
	out := make([]*crt.CRT, 0, len(ids))
	for _, i := range ids {
		c, ok := s[i]
		if !ok {
			return nil, apperror.NewNotFound("crt", i)
		}
		if c.CarrierID != carrierID {
			return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "CRT belongs to another carrier")
		}
		out = append(out, c)
	}
	return out, nil
}

func (s crtStore) add(carrierID id.ID, origin, destination string) *crt.CRT {
	c := &crt.CRT{ID: id.New(), CarrierID: carrierID, Origin: origin, Destination: destination}
	s[c.ID] = c
	return c
}

type fixture struct {
	svc     *Service
	repo    *memoryRepo
	crts    crtStore
	entries []audit.Entry
	home    *carrier.Carrier
	foreign *carrier.Carrier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := carrier.NewMemoryStore()
	home := store.PutCarrier(&carrier.Carrier{Name: "Sul", Country: "BR", RegistrationNumber: "BR001", StartManifest: 1})
	store.PutLicense(carrier.DestinationLicense{CarrierID: home.ID, DestinationCountry: "AR", Code: "1234/56"})
	foreign := store.PutCarrier(&carrier.Carrier{Name: "Andes", Country: "AR", RegistrationNumber: "AR001", StartManifest: 20})
	store.PutLicense(carrier.DestinationLicense{CarrierID: foreign.ID, DestinationCountry: "BR", Code: "LIC-AR-2024-001", Idoneidade: "5678"})

	f := &fixture{repo: newMemoryRepo(), crts: crtStore{}, home: home, foreign: foreign}
	numbers := numbering.NewService(store, license.NewResolver(store, country.Default(), "BR"),
		infranumerator.NewMemory(), numbering.DefaultOptions())
	recorder := audit.RecorderFunc(func(_ context.Context, e audit.Entry) error {
		f.entries = append(f.entries, e)
		return nil
	})
	f.svc = NewService(f.repo, f.crts, numbers, tx.Passthrough, recorder)
	return f
}

func TestIssueEmptyLeg(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	docs, err := f.svc.IssueEmptyLeg(ctx, f.home.ID, "BR", "AR", 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "BR123400001", docs[0].Number)
	assert.Equal(t, VariantEmptyLeg, docs[0].Variant)

	docs, err = f.svc.IssueEmptyLeg(ctx, f.foreign.ID, "ar", "br", 2)
	require.NoError(t, err)
	assert.Equal(t, "AR567800020", docs[0].Number)
	assert.Equal(t, "AR567800021", docs[1].Number)

	assert.Len(t, f.entries, 3)
}

func TestIssueEmptyLeg_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.IssueEmptyLeg(ctx, f.home.ID, "", "AR", 1)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.svc.IssueEmptyLeg(ctx, f.home.ID, "AR", "AR", 1)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidRoute))

	_, err = f.svc.IssueEmptyLeg(ctx, f.foreign.ID, "PY", "CL", 1)
	assert.True(t, apperror.HasCode(err, apperror.CodeNoLicenseForRoute))

	assert.Empty(t, f.repo.docs)
}

func TestIssueLoaded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.crts.add(f.home.ID, "BR", "AR")
	b := f.crts.add(f.home.ID, "BR", "AR")

	m, err := f.svc.IssueLoaded(ctx, f.home.ID, []id.ID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, VariantLoaded, m.Variant)
	assert.Equal(t, "BR", m.Origin)
	assert.Equal(t, "AR", m.Destination)
	assert.Equal(t, "BR123400001", m.Number)

	got, err := f.svc.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []id.ID{a.ID, b.ID}, got.CRTIDs)

	crts, err := f.svc.ListCRTs(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, crts, 2)

	// loaded and empty-leg manifests share the MANIFEST counter
	empty, err := f.svc.IssueEmptyLeg(ctx, f.home.ID, "AR", "BR", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), empty[0].Sequence)
}

func TestIssueLoaded_RouteMismatch(t *testing.T) {
	f := newFixture(t)
	a := f.crts.add(f.home.ID, "BR", "AR")
	b := f.crts.add(f.home.ID, "AR", "BR")

	_, err := f.svc.IssueLoaded(context.Background(), f.home.ID, []id.ID{a.ID, b.ID})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, CodeRouteMismatch))
	assert.Empty(t, f.repo.docs)
}

func TestIssueLoaded_ForeignCRT(t *testing.T) {
	f := newFixture(t)
	a := f.crts.add(f.foreign.ID, "AR", "BR")

	_, err := f.svc.IssueLoaded(context.Background(), f.home.ID, []id.ID{a.ID})
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))
}

func TestLinkCRTs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.crts.add(f.home.ID, "BR", "AR")
	b := f.crts.add(f.home.ID, "BR", "AR")
	wrongRoute := f.crts.add(f.home.ID, "AR", "BR")

	m, err := f.svc.IssueLoaded(ctx, f.home.ID, []id.ID{a.ID})
	require.NoError(t, err)

	m, err = f.svc.LinkCRTs(ctx, m.ID, []id.ID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, []id.ID{a.ID, b.ID}, m.CRTIDs)

	_, err = f.svc.LinkCRTs(ctx, m.ID, []id.ID{wrongRoute.ID})
	assert.True(t, apperror.HasCode(err, CodeRouteMismatch))

	empty, err := f.svc.IssueEmptyLeg(ctx, f.home.ID, "BR", "AR", 1)
	require.NoError(t, err)
	_, err = f.svc.LinkCRTs(ctx, empty[0].ID, []id.ID{b.ID})
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))

	_, err = f.svc.LinkCRTs(ctx, id.New(), []id.ID{b.ID})
	assert.True(t, apperror.IsNotFound(err))
}

func TestListCRTs_EmptyLeg(t *testing.T) {
	f := newFixture(t)
	docs, err := f.svc.IssueEmptyLeg(context.Background(), f.home.ID, "BR", "AR", 1)
	require.NoError(t, err)

	crts, err := f.svc.ListCRTs(context.Background(), docs[0].ID)
	require.NoError(t, err)
	assert.Empty(t, crts)
}
