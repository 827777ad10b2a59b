package seed

import (
	"context"
	"errors"
	"testing"

	"stowaway/pkg/logger"
	"stowaway/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	units     []*model.StorageUnit
	countErr  error
	createErr error
}

func (m *memoryStore) Count(context.Context) (int64, error) {
	return int64(len(m.units)), m.countErr
}

func (m *memoryStore) Create(_ context.Context, unit *model.StorageUnit) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.units = append(m.units, unit)
	return nil
}

func TestEnsureUnits_SeedsEmptyCatalogOnce(t *testing.T) {
	store := &memoryStore{}

	created, err := EnsureUnits(context.Background(), store, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	created, err = EnsureUnits(context.Background(), store, logger.Discard())
	require.NoError(t, err)
	assert.Zero(t, created)
	require.Len(t, store.units, 3)

	assert.Equal(t, "Small Locker A", store.units[0].Name)
	assert.Equal(t, "5x5", store.units[0].Size)
	assert.Equal(t, int64(3999), store.units[0].MonthlyPrice.Cents())
	assert.Equal(t, int64(7999), store.units[1].MonthlyPrice.Cents())
	assert.Equal(t, "10x10", store.units[2].Size)
	assert.Equal(t, int64(12999), store.units[2].MonthlyPrice.Cents())
	for _, unit := range store.units {
		assert.True(t, unit.IsActive)
	}
}

func TestEnsureUnits_LeavesExistingCatalog(t *testing.T) {
	store := &memoryStore{units: []*model.StorageUnit{{Name: "Custom"}}}

	created, err := EnsureUnits(context.Background(), store, logger.Discard())

	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Len(t, store.units, 1)
}

func TestEnsureUnits_Errors(t *testing.T) {
	_, err := EnsureUnits(context.Background(), &memoryStore{countErr: errors.New("down")}, logger.Discard())
	assert.ErrorContains(t, err, "failed to count storage units")

	_, err = EnsureUnits(context.Background(), &memoryStore{createErr: errors.New("dup")}, logger.Discard())
	assert.ErrorContains(t, err, `failed to seed storage unit "Small Locker A"`)
}
