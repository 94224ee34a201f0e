package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transdoc/internal/core/id"
	"transdoc/internal/domain/audit"
)

func TestAuditService_EncodeSmall(t *testing.T) {
	s, err := NewAuditService(nil)
	require.NoError(t, err)

	rec, err := s.encode(audit.Entry{
		EntityType: "crt",
		EntityID:   id.New(),
		Action:     audit.ActionIssue,
		Operator:   "ops",
		Changes:    map[string]any{"number": "BR602300001"},
	})
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, rec.CompressionAlgo)
	assert.JSONEq(t, `{"number":"BR602300001"}`, string(rec.Changes))
	assert.Nil(t, rec.ChangesCompressed)
}

func TestAuditService_CompressRoundTrip(t *testing.T) {
	s, err := NewAuditService(nil)
	require.NoError(t, err)

	big := strings.Repeat("BR602300001,", 2000)
	rec, err := s.encode(audit.Entry{
		EntityType: "manifest",
		EntityID:   id.New(),
		Action:     audit.ActionLink,
		Changes:    map[string]any{"numbers": big},
	})
	require.NoError(t, err)
	assert.Equal(t, CompressionZstd, rec.CompressionAlgo)
	assert.Nil(t, rec.Changes)
	assert.Less(t, len(rec.ChangesCompressed), len(big))

	require.NoError(t, s.decode(rec))
	assert.JSONEq(t, `{"numbers":"`+big+`"}`, string(rec.Changes))
}
