package fleets

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/fleetstock-backend/pkg/db"
	"github.com/angelmondragon/fleetstock-backend/pkg/db/dbtest"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), client, logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}))
	require.NoError(t, err)
	return svc, client
}

func TestEnsureDefaultsIsIdempotent(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaults(ctx, DefaultCatalog))
	require.NoError(t, svc.EnsureDefaults(ctx, DefaultCatalog))

	var fleetCount, boatCount int64
	require.NoError(t, client.DB().Table("fleets").Count(&fleetCount).Error)
	require.NoError(t, client.DB().Table("boats").Count(&boatCount).Error)

	wantBoats := 0
	for _, entry := range DefaultCatalog {
		wantBoats += len(entry.Boats)
	}
	assert.EqualValues(t, len(DefaultCatalog), fleetCount)
	assert.EqualValues(t, wantBoats, boatCount)
}

func TestListOrdersFleetsAndBoats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureDefaults(ctx, []CatalogEntry{
		{FleetName: "Zulu", Boats: []string{"Z2", "Z1"}},
		{FleetName: "Alpha", Boats: []string{"A1"}},
	}))

	fleets, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, fleets, 2)
	assert.Equal(t, "Alpha", fleets[0].FleetName)
	assert.Equal(t, "Zulu", fleets[1].FleetName)
	require.Len(t, fleets[1].Boats, 2)
	assert.Equal(t, "Z1", fleets[1].Boats[0].BoatName)
	assert.Equal(t, fleets[1].ID, fleets[1].Boats[0].FleetID)
}

func TestFirstBoatMatchesListOrder(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureDefaults(ctx, []CatalogEntry{{FleetName: "F", Boats: []string{"Bravo", "Alpha"}}}))

	fleets, err := svc.List(ctx)
	require.NoError(t, err)

	first, err := NewRepository(client.DB()).FirstBoat(ctx, fleets[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", first.BoatName)
}

func TestCatalogContainsReferenceFleet(t *testing.T) {
	found := false
	for _, entry := range DefaultCatalog {
		if entry.FleetName == "F/B DONYA DONYA 2x" {
			assert.Contains(t, entry.Boats, "F/B Lady Rachelle")
			found = true
		}
	}
	assert.True(t, found)
}
