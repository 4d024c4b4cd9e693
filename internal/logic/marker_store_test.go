package logic

import (
	"testing"

	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerStore_InitializesToZero(t *testing.T) {
	markers := NewMarkerStore(newTestDB(t))

	last, err := markers.GetLastBlock(model.EventFamilyRegistry)
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)
}

func TestMarkerStore_AdvanceIsMonotonic(t *testing.T) {
	markers := NewMarkerStore(newTestDB(t))

	require.NoError(t, markers.Advance(model.EventFamilyRegistry, 100))

	last, err := markers.GetLastBlock(model.EventFamilyRegistry)
	require.NoError(t, err)
	assert.Equal(t, int64(100), last)

	// 落后的水位写入不会回退
	require.NoError(t, markers.Advance(model.EventFamilyRegistry, 50))
	last, err = markers.GetLastBlock(model.EventFamilyRegistry)
	require.NoError(t, err)
	assert.Equal(t, int64(100), last)

	require.NoError(t, markers.Advance(model.EventFamilyRegistry, 150))
	last, err = markers.GetLastBlock(model.EventFamilyRegistry)
	require.NoError(t, err)
	assert.Equal(t, int64(150), last)
}

func TestMarkerStore_FamiliesAreIndependent(t *testing.T) {
	markers := NewMarkerStore(newTestDB(t))

	require.NoError(t, markers.Advance(model.EventFamilyRegistry, 100))

	last, err := markers.GetLastBlock(model.EventFamilyMpe)
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)
}
