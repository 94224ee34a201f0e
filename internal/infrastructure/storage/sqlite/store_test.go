package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/id"
	corenumerator "transdoc/internal/core/numerator"
	"transdoc/internal/domain/carrier"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "numgen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func saveTestCarrier(t *testing.T, s *Store) *carrier.Carrier {
	t.Helper()
	c := &carrier.Carrier{
		Name:               "Transportes Sul",
		Country:            "BR",
		RegistrationNumber: "BR1234/56",
		StartPrimary:       100,
	}
	require.NoError(t, s.SaveCarrier(context.Background(), c))
	return c
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "numgen.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpen_SettingsApplyToEveryConnection(t *testing.T) {
	s := openTestStore(t)
	// Without idle connections every query runs on a freshly opened one.
	s.db.SetMaxIdleConns(0)

	for i := 0; i < 3; i++ {
		var timeout, foreignKeys, synchronous int
		require.NoError(t, s.db.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
		require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
		require.NoError(t, s.db.QueryRow("PRAGMA synchronous").Scan(&synchronous))
		assert.Equal(t, 5000, timeout)
		assert.Equal(t, 1, foreignKeys)
		assert.Equal(t, 1, synchronous) // NORMAL
	}
}

func TestDSN(t *testing.T) {
	got := dsn("/tmp/numgen.db")
	assert.True(t, strings.HasPrefix(got, "file:/tmp/numgen.db?"), got)
	assert.Contains(t, got, "_busy_timeout=5000")
	assert.Contains(t, got, "_foreign_keys=on")
	assert.Contains(t, got, "_journal_mode=WAL")
	assert.Contains(t, got, "_synchronous=NORMAL")
}

func TestSaveCarrier_UpsertsByRegistration(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	c := saveTestCarrier(t, s)

	again := &carrier.Carrier{
		Name:               "Transportes Sul Ltda",
		Country:            "BR",
		RegistrationNumber: "BR1234/56",
	}
	require.NoError(t, s.SaveCarrier(ctx, again))
	assert.Equal(t, c.ID, again.ID)

	got, err := s.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Transportes Sul Ltda", got.Name)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSaveCarrier_Invalid(t *testing.T) {
	s := openTestStore(t)
	err := s.SaveCarrier(context.Background(), &carrier.Carrier{Name: "x", Country: "BRA"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestGetByID_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetByID(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestLicenses(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	c := saveTestCarrier(t, s)

	expires := time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveLicense(ctx, &carrier.DestinationLicense{
		CarrierID:          c.ID,
		DestinationCountry: "CL",
		Code:               "CL-77",
		Idoneidade:         "ID-9",
		ExpiresAt:          &expires,
	}))
	require.NoError(t, s.SaveLicense(ctx, &carrier.DestinationLicense{
		CarrierID:          c.ID,
		DestinationCountry: "AR",
		Code:               "AR-1",
	}))
	// Replaces the AR license.
	require.NoError(t, s.SaveLicense(ctx, &carrier.DestinationLicense{
		CarrierID:          c.ID,
		DestinationCountry: "AR",
		Code:               "AR-2",
	}))

	list, err := s.ListForCarrier(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "AR", list[0].DestinationCountry)
	assert.Equal(t, "AR-2", list[0].Code)
	assert.Nil(t, list[0].ExpiresAt)

	assert.Equal(t, "CL", list[1].DestinationCountry)
	assert.Equal(t, "ID-9", list[1].Idoneidade)
	require.NotNil(t, list[1].ExpiresAt)
	assert.True(t, expires.Equal(*list[1].ExpiresAt))

	empty, err := s.ListForCarrier(ctx, id.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSequencer_IncrementBy(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	c := saveTestCarrier(t, s)
	key := corenumerator.Key{Kind: corenumerator.KindPrimary, CarrierID: c.ID}

	_, ok, err := s.Current(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	prev, err := s.IncrementBy(ctx, key, 100, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(99), prev)

	prev, err = s.IncrementBy(ctx, key, 100, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(102), prev)

	last, ok, err := s.Current(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(104), last)

	// The manifest counter is independent.
	other := corenumerator.Key{Kind: corenumerator.KindManifest, CarrierID: c.ID}
	prev, err = s.IncrementBy(ctx, other, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), prev)
}

func TestSequencer_Rebase(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	c := saveTestCarrier(t, s)
	key := corenumerator.Key{Kind: corenumerator.KindManifest, CarrierID: c.ID}

	v, err := s.Rebase(ctx, key, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), v)

	v, err = s.Rebase(ctx, key, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(500), v)

	prev, err := s.IncrementBy(ctx, key, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(500), prev)
}

func TestSequencer_Concurrent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	c := saveTestCarrier(t, s)
	key := corenumerator.Key{Kind: corenumerator.KindPrimary, CarrierID: c.ID}

	const workers = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev, err := s.IncrementBy(ctx, key, 1, 2)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			seen[prev+1] = true
			seen[prev+2] = true
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*2)
	for v := int64(1); v <= workers*2; v++ {
		assert.True(t, seen[v], "value %d not allocated", v)
	}
}
