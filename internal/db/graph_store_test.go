package db

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/optofluidics/trackpause/internal/testutil"
	"github.com/optofluidics/trackpause/internal/trackgraph"
)

func sortEdges() cmp.Option {
	return cmpopts.SortSlices(func(a, b trackgraph.Edge) bool { return a.ID < b.ID })
}

func TestGraphStore_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewGraphStore(db)

	tracks := map[int64][]trackgraph.Edge{
		1: testutil.PatternTrack(t, 1, "R3 P4 R2"),
		2: testutil.PatternTrack(t, 2, "P2 R5"),
	}
	testutil.AssertNoError(t, store.InsertTrack(ctx, 1, "first", tracks[1]))
	testutil.AssertNoError(t, store.InsertTrack(ctx, 2, "", tracks[2]))

	if got := store.TrackIDs(); len(got) != 0 {
		t.Fatalf("graph should be empty before Load, got %v", got)
	}
	testutil.AssertNoError(t, store.Load(ctx))

	if diff := cmp.Diff([]int64{1, 2}, store.TrackIDs()); diff != "" {
		t.Errorf("TrackIDs mismatch (-want +got):\n%s", diff)
	}
	for id, want := range tracks {
		if diff := cmp.Diff(want, store.TrackEdges(id), sortEdges()); diff != "" {
			t.Errorf("track %d edges mismatch (-want +got):\n%s", id, diff)
		}
	}
	if store.TrackName(1) != "first" {
		t.Errorf("TrackName(1) = %q", store.TrackName(1))
	}
	if store.TrackName(2) != "Track_2" {
		t.Errorf("TrackName(2) = %q, want default name", store.TrackName(2))
	}
}

func TestGraphStore_KeepsStoredDirection(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewGraphStore(db)

	edges := testutil.PatternTrack(t, 4, "R2")
	testutil.AssertNoError(t, store.InsertTrack(ctx, 4, "t", edges))
	testutil.AssertNoError(t, store.Load(ctx))

	got := store.TrackEdges(4)
	if len(got) != 2 {
		t.Fatalf("got %d edges, want 2", len(got))
	}
	// The second fixture edge is stored target-first.
	if got[1].Source.Frame <= got[1].Target.Frame {
		t.Errorf("edge %d lost its stored direction: %d -> %d", got[1].ID, got[1].Source.Frame, got[1].Target.Frame)
	}
}

func TestGraphStore_NaNVelocity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewGraphStore(db)

	a := trackgraph.Spot{ID: 10, X: 0, T: 1, Frame: 1}
	b := trackgraph.Spot{ID: 11, X: 1, T: 1, Frame: 2}
	e := trackgraph.Edge{ID: 20, Source: a, Target: b, Velocity: math.NaN(), TimeLocation: 1}
	testutil.AssertNoError(t, store.InsertTrack(ctx, 9, "nan", []trackgraph.Edge{e}))

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM edges WHERE velocity IS NULL`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("NaN velocity should be stored as NULL, got %d NULL rows", n)
	}

	testutil.AssertNoError(t, store.Load(ctx))
	got := store.TrackEdges(9)
	if len(got) != 1 || !math.IsNaN(got[0].Velocity) {
		t.Errorf("NULL velocity should load as NaN, got %+v", got)
	}
}

func TestGraphStore_ReplaceTrack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewGraphStore(db)

	testutil.AssertNoError(t, store.InsertTrack(ctx, 3, "old", testutil.PatternTrack(t, 3, "R6")))
	replacement := testutil.PatternTrack(t, 3, "P2")
	testutil.AssertNoError(t, store.InsertTrack(ctx, 3, "new", replacement))
	testutil.AssertNoError(t, store.Load(ctx))

	if diff := cmp.Diff(replacement, store.TrackEdges(3), sortEdges()); diff != "" {
		t.Errorf("edges mismatch after replace (-want +got):\n%s", diff)
	}
	if store.TrackName(3) != "new" {
		t.Errorf("TrackName = %q, want new", store.TrackName(3))
	}

	var spots int
	if err := db.QueryRow(`SELECT COUNT(*) FROM spots WHERE track_id = 3`).Scan(&spots); err != nil {
		t.Fatalf("count spots: %v", err)
	}
	if spots != 3 {
		t.Errorf("track 3 has %d stored spots after replace, want 3", spots)
	}
}

func TestGraphStore_InsertError(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGraphStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tracks").WillReturnError(errDiskIO)
	mock.ExpectRollback()

	err := store.InsertTrack(context.Background(), 1, "x", nil)
	testutil.AssertError(t, err)
}
