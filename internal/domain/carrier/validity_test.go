package carrier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transdoc/internal/core/numerator"
)

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	v, err := ParseExpiry(s)
	require.NoError(t, err)
	return v
}

func TestClassifyLicense(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expires string
		status  ValidityStatus
		days    int
	}{
		{"expired yesterday", "28/02/2026", StatusExpired, -1},
		{"expires today", "01/03/2026", StatusExpiringSoon, 0},
		{"inside window", "2026-06-01", StatusExpiringSoon, 92},
		{"window edge", "28/08/2026", StatusExpiringSoon, 180},
		{"valid", "01/03/2027", StatusValid, 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ClassifyLicense(DestinationLicense{ExpiresAt: date(t, tt.expires)}, now)
			assert.Equal(t, tt.status, v.Status)
			require.NotNil(t, v.DaysRemaining)
			assert.Equal(t, tt.days, *v.DaysRemaining)
		})
	}

	v := ClassifyLicense(DestinationLicense{}, now)
	assert.Equal(t, StatusNoExpiry, v.Status)
	assert.Nil(t, v.DaysRemaining)
}

func TestParseExpiry(t *testing.T) {
	v, err := ParseExpiry("")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = ParseExpiry("2026/13/45")
	assert.Error(t, err)

	v, err = ParseExpiry("31/12/2027")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, 12, 31, 0, 0, 0, 0, time.UTC), *v)
}

func TestBuildValidityReport(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	store := NewMemoryStore()
	c := store.PutCarrier(&Carrier{Name: "Transportes Sul", Country: "BR", RegistrationNumber: "BR6023/1800648"})
	store.PutLicense(DestinationLicense{CarrierID: c.ID, DestinationCountry: "AR", Code: "BR6023/1", ExpiresAt: date(t, "01/01/2026")})
	store.PutLicense(DestinationLicense{CarrierID: c.ID, DestinationCountry: "PY", Code: "BR6023/2", ExpiresAt: date(t, "01/05/2026")})
	store.PutLicense(DestinationLicense{CarrierID: c.ID, DestinationCountry: "UY", Code: "BR6023/3", ExpiresAt: date(t, "01/05/2030")})
	store.PutLicense(DestinationLicense{CarrierID: c.ID, DestinationCountry: "CL", Code: "BR6023/4"})

	report, err := BuildValidityReport(ctx, store, store, now)
	require.NoError(t, err)

	assert.Len(t, report.All, 4)
	require.Len(t, report.Expired, 1)
	assert.Equal(t, "AR", report.Expired[0].DestinationCountry)
	assert.Equal(t, "Transportes Sul", report.Expired[0].Carrier.Name)
	require.Len(t, report.ExpiringSoon, 1)
	assert.Equal(t, "PY", report.ExpiringSoon[0].DestinationCountry)
	require.Len(t, report.Valid, 1)
	assert.Equal(t, "UY", report.Valid[0].DestinationCountry)
	assert.Len(t, report.NoExpiry, 1)
}

func TestCarrier_StartOffset(t *testing.T) {
	c := &Carrier{StartPrimary: 500}
	assert.Equal(t, int64(500), c.StartOffset(numerator.KindPrimary))
	assert.Equal(t, int64(1), c.StartOffset(numerator.KindManifest))
}

func TestCarrier_Validate(t *testing.T) {
	ok := &Carrier{Name: "X", Country: "AR", RegistrationNumber: "123"}
	assert.NoError(t, ok.Validate())

	assert.Error(t, (&Carrier{Country: "AR", RegistrationNumber: "1"}).Validate())
	assert.Error(t, (&Carrier{Name: "X", Country: "ARG", RegistrationNumber: "1"}).Validate())
	assert.Error(t, (&Carrier{Name: "X", Country: "AR"}).Validate())
}

func TestMemoryStore_LicenseUniquePerDestination(t *testing.T) {
	store := NewMemoryStore()
	c := store.PutCarrier(&Carrier{Name: "A", Country: "AR", RegistrationNumber: "1"})
	store.PutLicense(DestinationLicense{CarrierID: c.ID, DestinationCountry: "BR", Code: "old"})
	store.PutLicense(DestinationLicense{CarrierID: c.ID, DestinationCountry: "BR", Code: "new"})

	ls, err := store.ListForCarrier(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, ls, 1)
	assert.Equal(t, "new", ls[0].Code)
}
