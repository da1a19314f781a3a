package items_test

import (
	"encoding/json"
	"net/http"
	"testing"

	itemstore "github.com/dalemusser/venuehub/internal/app/store/items"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/dalemusser/venuehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUpdate_RoleGate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	it := testutil.NewFixtures(t, db).CreateItem(ctx, "Lagoon")

	regular := testutil.RegularUser()
	for _, path := range []string{"/items/" + it.ID.Hex(), "/updateItem/" + it.ID.Hex()} {
		if rec := serve(newRouter(h, nil), testutil.NewJSONRequest("PUT", path, `{"name":"x"}`)); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s anonymous: got %d, want 401", path, rec.Code)
		}
		if rec := serve(newRouter(h, &regular), testutil.NewJSONRequest("PUT", path, `{"name":"x"}`)); rec.Code != http.StatusForbidden {
			t.Errorf("%s plain user: got %d, want 403", path, rec.Code)
		}
	}
}

func TestUpdate_EditsAllowedFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	it := testutil.NewFixtures(t, db).CreateItem(ctx, "Lagoon")

	officer := testutil.OfficerUser()
	body := `{"name":"Blue Lagoon","detail":"<b>Warm</b><script>x()</script> water","images":[" https://img.example/a.jpg ",""]}`
	rec := serve(newRouter(h, &officer), testutil.NewJSONRequest("PUT", "/updateItem/"+it.ID.Hex(), body))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200; body=%s", rec.Code, rec.Body.String())
	}

	var got models.Item
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "Blue Lagoon" {
		t.Errorf("name: got %q", got.Name)
	}
	if got.Detail != "<b>Warm</b> water" {
		t.Errorf("detail not sanitized: %q", got.Detail)
	}
	if len(got.Images) != 1 || got.Images[0] != "https://img.example/a.jpg" {
		t.Errorf("images: got %v", got.Images)
	}

	stored, err := itemstore.New(db).GetByID(ctx, it.ID)
	if err != nil || stored.NameCI != "blue lagoon" {
		t.Errorf("stored item not updated: %+v, %v", stored, err)
	}
}

func TestUpdate_Rejections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	it := testutil.NewFixtures(t, db).CreateItem(ctx, "Lagoon")
	admin := testutil.AdminUser()
	router := newRouter(h, &admin)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"unknown item", "/items/" + primitive.NewObjectID().Hex(), `{"name":"x"}`, http.StatusNotFound},
		{"malformed id", "/items/not-an-id", `{"name":"x"}`, http.StatusNotFound},
		{"blank name", "/items/" + it.ID.Hex(), `{"name":"   "}`, http.StatusBadRequest},
		{"empty patch", "/items/" + it.ID.Hex(), `{}`, http.StatusBadRequest},
		{"too many images", "/items/" + it.ID.Hex(), `{"images":["1","2","3","4","5","6","7","8"]}`, http.StatusBadRequest},
		{"bad json", "/items/" + it.ID.Hex(), `{"name":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, testutil.NewJSONRequest("PUT", tt.path, tt.body))
			if rec.Code != tt.want {
				t.Errorf("got %d, want %d; body=%s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}
