package numerator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		origin, compl string
		seq           int64
		want          string
	}{
		{"BR", "6023", 1, "BR602300001"},
		{"BR", "6023", 42, "BR602300042"},
		{"AR", "5678", 99999, "AR567899999"},
		{"PY", "0001", 123456, "PY0001123456"},
		{"UY", "", 7, "UY00007"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.origin, tt.compl, tt.seq))
			// same inputs, same output
			assert.Equal(t, Format(tt.origin, tt.compl, tt.seq), Format(tt.origin, tt.compl, tt.seq))
		})
	}
}

func TestParseSequence_RoundTrip(t *testing.T) {
	for _, seq := range []int64{0, 1, 9, 10, 999, 12345, 99999, 100000, 7654321} {
		number := Format("BR", "6023", seq)
		assert.Equal(t, seq, ParseSequence(number, "BR", "6023"), number)
	}
}

func TestParseSequence_Invalid(t *testing.T) {
	assert.Equal(t, int64(-1), ParseSequence("AR602300001", "BR", "6023"))
	assert.Equal(t, int64(-1), ParseSequence("BR60230001", "BR", "6023"))
	assert.Equal(t, int64(-1), ParseSequence("BR6023ABCDE", "BR", "6023"))
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]DocumentKind{
		"PRIMARY":  KindPrimary,
		"crt":      KindPrimary,
		"manifest": KindManifest,
		"MIC/DTA":  KindManifest,
		" mic ":    KindManifest,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseKind("invoice")
	assert.Error(t, err)
}

func TestDocumentKind_Label(t *testing.T) {
	assert.Equal(t, "CRT", KindPrimary.Label())
	assert.Equal(t, "MIC/DTA", KindManifest.Label())
	assert.False(t, DocumentKind("X").Valid())
}
