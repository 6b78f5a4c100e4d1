package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polica/planogram-service/internal/planogram"
)

// assertSpan checks one placement's product and horizontal extent.
func assertSpan(t *testing.T, pl planogram.Placement, productID string, xStart, xEnd float64) {
	t.Helper()
	assert.Equal(t, productID, pl.ProductID)
	assert.InDelta(t, xStart, pl.XStart, 1e-9)
	assert.InDelta(t, xEnd, pl.XEnd, 1e-9)
}

// TestPostOptimizeBalancesShelfLoads moves one placement from a crowded shelf
// to a quiet one, then reflows both shelves into gap-aligned layouts.
func TestPostOptimizeBalancesShelfLoads(t *testing.T) {
	donor := testShelf(t, planogram.Shelf{ID: "donor", Name: "Donor", Width: 50, Y: 20})
	receiver := testShelf(t, planogram.Shelf{ID: "recv", Name: "Receiver", Width: 100, Y: 90})
	store := testStoreWith(t, donor, receiver)

	d1 := testProduct(t, planogram.Product{ID: "d1", Name: "D1", Width: 14, MinFacings: 1, MaxFacings: 1})
	d2 := testProduct(t, planogram.Product{ID: "d2", Name: "D2", Width: 14, MinFacings: 1, MaxFacings: 1})
	d3 := testProduct(t, planogram.Product{ID: "d3", Name: "D3", Width: 14, MinFacings: 1, MaxFacings: 1})
	q1 := testProduct(t, planogram.Product{ID: "q1", Name: "Q1", Width: 10, MinFacings: 1, MaxFacings: 1})

	r := testRun(t, store, d1, d2, d3, q1)
	require.True(t, r.place(donor, d1, 1))
	require.True(t, r.place(donor, d2, 1))
	require.True(t, r.place(donor, d3, 1))
	require.True(t, r.place(receiver, q1, 1))
	require.Greater(t, donor.Utilization(r.gap), overUtilizedPct)
	require.Less(t, receiver.Utilization(r.gap), underUtilizedPct)

	r.postOptimize()

	require.Len(t, donor.Placements, 2)
	assertSpan(t, donor.Placements[0], "d2", 2, 16)
	assertSpan(t, donor.Placements[1], "d3", 18, 32)

	require.Len(t, receiver.Placements, 2)
	assertSpan(t, receiver.Placements[0], "q1", 2, 12)
	assertSpan(t, receiver.Placements[1], "d1", 14, 28)

	assert.Equal(t, "recv", r.shelfOf["d1"])
	assert.Equal(t, "donor", r.shelfOf["d2"])
}

// TestBalanceShelfLoadsRestoresOnFailedMove: the receiver passes the width
// check but cannot take the product with its trailing gap, so every attempted
// move is rolled back to the exact original position.
func TestBalanceShelfLoadsRestoresOnFailedMove(t *testing.T) {
	donor := testShelf(t, planogram.Shelf{ID: "donor", Name: "Donor", Width: 50, Y: 20})
	receiver := testShelf(t, planogram.Shelf{ID: "recv", Name: "Receiver", Width: 20, Y: 90})
	store := testStoreWith(t, donor, receiver)

	d1 := testProduct(t, planogram.Product{ID: "d1", Name: "D1", Width: 14, MinFacings: 1, MaxFacings: 1})
	d2 := testProduct(t, planogram.Product{ID: "d2", Name: "D2", Width: 14, MinFacings: 1, MaxFacings: 1})
	d3 := testProduct(t, planogram.Product{ID: "d3", Name: "D3", Width: 14, MinFacings: 1, MaxFacings: 1})
	q1 := testProduct(t, planogram.Product{ID: "q1", Name: "Q1", Width: 2, MinFacings: 1, MaxFacings: 1})

	r := testRun(t, store, d1, d2, d3, q1)
	require.True(t, r.place(donor, d1, 1))
	require.True(t, r.place(donor, d2, 1))
	require.True(t, r.place(donor, d3, 1))
	require.True(t, r.place(receiver, q1, 1))

	r.balanceShelfLoads()

	require.Len(t, donor.Placements, 3)
	assertSpan(t, donor.Placements[0], "d1", 2, 16)
	assertSpan(t, donor.Placements[1], "d2", 18, 32)
	assertSpan(t, donor.Placements[2], "d3", 34, 48)
	require.Len(t, receiver.Placements, 1)
	assert.Equal(t, "donor", r.shelfOf["d1"])
}

// TestBalanceShelfLoadsMovesSlowestToEmptyShelf: the donor sheds its slowest
// mover first, and an empty shelf qualifies as a receiver.
func TestBalanceShelfLoadsMovesSlowestToEmptyShelf(t *testing.T) {
	donor := testShelf(t, planogram.Shelf{ID: "donor", Name: "Donor", Width: 50, Y: 20})
	receiver := testShelf(t, planogram.Shelf{ID: "recv", Name: "Receiver", Width: 100, Y: 90})
	store := testStoreWith(t, donor, receiver)

	f1 := testProduct(t, planogram.Product{ID: "f1", Name: "F1", Width: 14, AvgWeeklySales: 70, MinFacings: 1, MaxFacings: 1})
	f2 := testProduct(t, planogram.Product{ID: "f2", Name: "F2", Width: 14, AvgWeeklySales: 70, MinFacings: 1, MaxFacings: 1})
	s1 := testProduct(t, planogram.Product{ID: "s1", Name: "S1", Width: 14, AvgWeeklySales: 7, MinFacings: 1, MaxFacings: 1})

	r := testRun(t, store, f1, f2, s1)
	require.True(t, r.place(donor, f1, 1))
	require.True(t, r.place(donor, f2, 1))
	require.True(t, r.place(donor, s1, 1))
	require.Greater(t, donor.Utilization(r.gap), overUtilizedPct)

	r.balanceShelfLoads()

	require.Len(t, donor.Placements, 2)
	assertSpan(t, donor.Placements[0], "f1", 2, 16)
	assertSpan(t, donor.Placements[1], "f2", 18, 32)
	require.Len(t, receiver.Placements, 1)
	assertSpan(t, receiver.Placements[0], "s1", 2, 16)
	assert.Equal(t, "recv", r.shelfOf["s1"])
}

// TestGroupSimilarOrdersByCategoryThenSeries reorders a mixed shelf into
// category blocks with series runs inside them, repacked from the left edge.
func TestGroupSimilarOrdersByCategoryThenSeries(t *testing.T) {
	shelf := testShelf(t, planogram.Shelf{ID: "s1", Name: "Shelf 1"})
	store := testStoreWith(t, shelf)

	caseB := testProduct(t, planogram.Product{ID: "case-b", Name: "Case B", Category: planogram.CategoryCase, Series: "S2", MinFacings: 1, MaxFacings: 1})
	caseA := testProduct(t, planogram.Product{ID: "case-a", Name: "Case A", Category: planogram.CategoryCase, Series: "S1", MinFacings: 1, MaxFacings: 1})
	buds := testProduct(t, planogram.Product{ID: "buds", Name: "Buds", Category: planogram.CategoryAudio, MinFacings: 1, MaxFacings: 1})
	cable := testProduct(t, planogram.Product{ID: "cable", Name: "Cable", Category: planogram.CategoryCable, MinFacings: 1, MaxFacings: 1})

	r := testRun(t, store, caseB, caseA, buds, cable)
	require.True(t, r.place(shelf, caseB, 1))
	require.True(t, r.place(shelf, caseA, 1))
	require.True(t, r.place(shelf, buds, 1))
	require.True(t, r.place(shelf, cable, 1))

	r.groupSimilar()

	require.Len(t, shelf.Placements, 4)
	assertSpan(t, shelf.Placements[0], "buds", 2, 12)
	assertSpan(t, shelf.Placements[1], "cable", 14, 24)
	assertSpan(t, shelf.Placements[2], "case-a", 26, 36)
	assertSpan(t, shelf.Placements[3], "case-b", 38, 48)
}

// TestPostOptimizeIsIdempotent: a second pass over an already smoothed layout
// changes nothing.
func TestPostOptimizeIsIdempotent(t *testing.T) {
	donor := testShelf(t, planogram.Shelf{ID: "donor", Name: "Donor", Width: 50, Y: 20})
	receiver := testShelf(t, planogram.Shelf{ID: "recv", Name: "Receiver", Width: 100, Y: 90})
	store := testStoreWith(t, donor, receiver)

	d1 := testProduct(t, planogram.Product{ID: "d1", Name: "D1", Width: 14, MinFacings: 1, MaxFacings: 1})
	d2 := testProduct(t, planogram.Product{ID: "d2", Name: "D2", Width: 14, MinFacings: 1, MaxFacings: 1})
	d3 := testProduct(t, planogram.Product{ID: "d3", Name: "D3", Width: 14, MinFacings: 1, MaxFacings: 1})
	q1 := testProduct(t, planogram.Product{ID: "q1", Name: "Q1", Width: 10, MinFacings: 1, MaxFacings: 1})

	r := testRun(t, store, d1, d2, d3, q1)
	require.True(t, r.place(donor, d1, 1))
	require.True(t, r.place(donor, d2, 1))
	require.True(t, r.place(donor, d3, 1))
	require.True(t, r.place(receiver, q1, 1))

	r.postOptimize()
	settled := make(map[string][]planogram.Placement, len(store.Shelves))
	for _, shelf := range store.Shelves {
		settled[shelf.ID] = append([]planogram.Placement(nil), shelf.Placements...)
	}

	r.postOptimize()
	for _, shelf := range store.Shelves {
		assert.Equal(t, settled[shelf.ID], shelf.Placements, "shelf %s drifted on the second pass", shelf.ID)
	}
}
