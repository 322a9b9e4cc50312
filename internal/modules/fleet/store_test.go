package fleet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadbook/internal/pgtest"
	"roadbook/internal/types"
)

func TestStore_EligibleAndModeration(t *testing.T) {
	db := pgtest.Pool(t, "vehicles")
	ctx := context.Background()
	_, err := db.Exec(ctx, `
		INSERT INTO vehicles (id, driver_id, label, seats, luggage, verification_status, active, main_photo, gallery) VALUES
		('v1', 'd1', 'Sedan', 4, 3, 'approved', true,  'm.jpg', '{a.jpg,b.jpg,c.jpg}'),
		('v2', 'd2', 'Van',   8, 8, 'pending',  false, '',      '{}'),
		('v3', 'd3', 'SUV',   6, 5, 'approved', false, 'm.jpg', '{a.jpg,b.jpg,c.jpg}'),
		('v4', 'd4', 'Coupe', 2, 1, 'approved', true,  'm.jpg', '{a.jpg}')`)
	require.NoError(t, err)

	s := NewStore(db)
	list, err := s.ListEligible(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, types.ID("v1"), list[0].ID)
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, list[0].Gallery)

	require.NoError(t, s.UpdateActive(ctx, "v3", true))
	require.NoError(t, s.UpdateVerification(ctx, "v2", VerificationRejected))

	v2, err := s.Get(ctx, "v2")
	require.NoError(t, err)
	assert.Equal(t, VerificationRejected, v2.VerificationStatus)

	list, err = s.ListEligible(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, s.UpdateActive(ctx, "missing", true), types.ErrNotFound)
}
