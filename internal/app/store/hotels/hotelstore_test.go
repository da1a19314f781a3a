package hotelstore_test

import (
	"errors"
	"testing"

	hotelstore "github.com/dalemusser/venuehub/internal/app/store/hotels"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/dalemusser/venuehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func rating(v float64) *float64 { return &v }

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := hotelstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h, err := store.Create(ctx, models.Hotel{
		Name:      "Riverside Inn",
		Address:   "1 River Rd",
		Rating:    rating(4.5),
		Amenities: []string{"wifi", "breakfast"},
		Contact:   models.Contact{Phone: "555-0100"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if h.ID.IsZero() || h.NameCI == "" {
		t.Error("expected ID and NameCI to be set")
	}

	got, err := store.GetByID(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Rating == nil || *got.Rating != 4.5 || len(got.Amenities) != 2 {
		t.Errorf("unexpected hotel: %+v", got)
	}
}

func TestStore_Create_Invalid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := hotelstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	bad := []models.Hotel{
		{Address: "somewhere"},
		{Name: "No Address"},
		{Name: "Too Good", Address: "x", Rating: rating(5.1)},
		{Name: "Too Bad", Address: "x", Rating: rating(-1)},
	}
	for _, h := range bad {
		if _, err := store.Create(ctx, h); !errors.Is(err, hotelstore.ErrInvalid) {
			t.Errorf("Create(%+v): expected ErrInvalid, got %v", h, err)
		}
	}

	// Boundary ratings are fine.
	for _, r := range []float64{0, 5} {
		if _, err := store.Create(ctx, models.Hotel{Name: "Edge", Address: "x", Rating: rating(r)}); err != nil {
			t.Errorf("rating %v should be accepted: %v", r, err)
		}
	}
}

func TestStore_ListAndGetByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := hotelstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var ids []primitive.ObjectID
	for _, name := range []string{"zeta", "Alpha", "mid"} {
		h, err := store.Create(ctx, models.Hotel{Name: name, Address: "addr"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids = append(ids, h.ID)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 || all[0].Name != "Alpha" || all[2].Name != "zeta" {
		t.Errorf("unexpected order: %+v", all)
	}

	some, err := store.GetByIDs(ctx, ids[:2])
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(some) != 2 {
		t.Errorf("expected 2 hotels, got %d", len(some))
	}

	none, err := store.GetByIDs(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Errorf("GetByIDs(nil) = %v, %v", none, err)
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, hotelstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
