package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapkiduki/apnacart/internal/domain/valueobject"
)

func TestDefaultCatalog(t *testing.T) {
	vegetables, err := Default()
	require.NoError(t, err)
	require.Len(t, vegetables, 33)

	first := vegetables[0]
	assert.Equal(t, "Beerakaya", first.Name)
	assert.Equal(t, valueobject.Token500g, first.FixedWeight)
	assert.Equal(t, "/images/Beerakaya.jpeg", first.ImageURL)

	last := vegetables[len(vegetables)-1]
	assert.Equal(t, "Tomato", last.Name)

	for _, v := range vegetables {
		assert.True(t, v.FixedWeight.IsValid(), v.Name)
	}
}

func TestParseRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: "vegetables: []"},
		{name: "bad weight", data: "vegetables:\n  - name: Okra\n    weight: 2kg\n"},
		{name: "missing name", data: "vegetables:\n  - weight: 250g\n"},
		{name: "duplicate", data: "vegetables:\n  - name: Okra\n    weight: 250g\n  - name: OKRA\n    weight: 500g\n"},
		{name: "not yaml", data: "vegetables: [oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("vegetables: []"))
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vegetables:\n  - name: Okra\n    weight: 1kg\n"), 0o644))

	vegetables, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, vegetables, 1)
	assert.Equal(t, valueobject.Token1kg, vegetables[0].FixedWeight)
	assert.Empty(t, vegetables[0].ImageURL)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	all, err := LoadFile("")
	require.NoError(t, err)
	assert.Len(t, all, 33)
}
