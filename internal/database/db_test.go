package database

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchenbot/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate())
	return store
}

func testRun(id, scenario string, score int) *models.RunRecord {
	return &models.RunRecord{
		RunID:           id,
		Scenario:        scenario,
		Seed:            1,
		Bots:            1,
		Menu:            models.StringSlice{"burger", "salad"},
		StartTime:       time.Now(),
		EndTime:         time.Now(),
		SimElapsed:      3 * time.Minute,
		Score:           score,
		OrdersPlaced:    4,
		OrdersDelivered: 3,
		DeliveryRate:    0.75,
		Events: []models.RunEvent{
			{At: 2 * time.Second, Type: "order_placed", OrderID: "o1", Item: "burger"},
			{At: 40 * time.Second, Type: "order_delivered", OrderID: "o1", Item: "burger", Points: 22},
		},
		Actions: []models.AgentActionLog{
			{Player: 0, At: time.Second, Kind: "order_committed", Details: "burger (59.0s left)"},
		},
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}

func TestSaveAndLoadRun(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveRun(testRun("run-1", "burger_rush", 40)))

	rec, err := store.Run("run-1")
	require.NoError(t, err)

	assert.Equal(t, "burger_rush", rec.Scenario)
	assert.Equal(t, models.StringSlice{"burger", "salad"}, rec.Menu)
	assert.Equal(t, 3*time.Minute, rec.SimElapsed)
	assert.Equal(t, 0.75, rec.DeliveryRate)

	require.Len(t, rec.Events, 2)
	assert.Equal(t, "order_placed", rec.Events[0].Type)
	assert.Equal(t, 22, rec.Events[1].Points)
	assert.Equal(t, 40*time.Second, rec.Events[1].At)

	require.Len(t, rec.Actions, 1)
	assert.Equal(t, "order_committed", rec.Actions[0].Kind)
}

func TestRunNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Run("missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	_, err = store.BestRun("burger_rush")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestDuplicateRunID(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveRun(testRun("run-1", "burger_rush", 40)))
	assert.Error(t, store.SaveRun(testRun("run-1", "burger_rush", 50)))
}

func TestRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	for i := 0; i < 5; i++ {
		scenario := "burger_rush"
		if i%2 == 1 {
			scenario = "pizza_night"
		}
		require.NoError(t, store.SaveRun(testRun(fmt.Sprintf("run-%d", i), scenario, i*10)))
	}

	runs, err := store.Runs("", 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-4", runs[0].RunID)
	assert.Equal(t, "run-2", runs[2].RunID)
	assert.Empty(t, runs[0].Events, "listing does not load events")

	runs, err = store.Runs("pizza_night", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-3", runs[0].RunID)
	assert.Equal(t, "run-1", runs[1].RunID)
}

func TestBestRun(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveRun(testRun("a", "burger_rush", 30)))
	require.NoError(t, store.SaveRun(testRun("b", "burger_rush", 55)))
	require.NoError(t, store.SaveRun(testRun("c", "burger_rush", 55)))
	require.NoError(t, store.SaveRun(testRun("d", "pizza_night", 90)))

	best, err := store.BestRun("burger_rush")
	require.NoError(t, err)
	assert.Equal(t, "b", best.RunID)
}
