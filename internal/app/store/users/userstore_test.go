package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/twfhub/internal/app/store/users"
	"github.com/dalemusser/twfhub/internal/app/system/indexes"
	"github.com/dalemusser/twfhub/internal/domain/models"
	"github.com/dalemusser/twfhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_NormalizesAndRejectsDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := userstore.New(db)

	u, err := store.Create(ctx, models.User{FullName: "  Ada   Lovelace ", LoginID: " Ada ", Role: "USER"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.FullName != "Ada Lovelace" || u.LoginID != "Ada" || u.Role != models.RoleUser {
		t.Errorf("unexpected normalisation: %+v", u)
	}
	if u.AuthMethod != "trust" || u.Status != "active" {
		t.Errorf("defaults not applied: auth=%q status=%q", u.AuthMethod, u.Status)
	}

	_, err = store.Create(ctx, models.User{FullName: "Other", LoginID: "ada", Role: models.RoleUser})
	if !errors.Is(err, userstore.ErrDuplicateLoginID) {
		t.Errorf("duplicate login: %v, want ErrDuplicateLoginID", err)
	}

	if _, err := store.Create(ctx, models.User{FullName: "X", LoginID: "x", Role: "superhero"}); err == nil {
		t.Error("expected error for bad role")
	}

	got, err := store.GetByLoginID(ctx, "ADA")
	if err != nil {
		t.Fatalf("GetByLoginID: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByLoginID returned %s, want %s", got.ID.Hex(), u.ID.Hex())
	}
}

func TestListByIDs_OrderedByFoldedName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	store := userstore.New(db)

	c := fx.CreateSiteUser(ctx, "charlie", "c")
	a := fx.CreateSiteUser(ctx, "Álvaro", "a")
	b := fx.CreateSiteUser(ctx, "Bea", "b")

	list, err := store.ListByIDs(ctx, []primitive.ObjectID{c.ID, a.ID, b.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("ListByIDs: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 users, got %d", len(list))
	}
	want := []primitive.ObjectID{a.ID, b.ID, c.ID}
	for i, u := range list {
		if u.ID != want[i] {
			t.Errorf("position %d: got %s, want %s", i, u.FullName, want[i].Hex())
		}
	}
}

func TestSetAutoSubscribe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	store := userstore.New(db)

	u := fx.CreateSiteUser(ctx, "Ada", "ada")
	if err := store.SetAutoSubscribe(ctx, u.ID, true); err != nil {
		t.Fatalf("SetAutoSubscribe: %v", err)
	}
	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.AutoSubscribe {
		t.Error("expected autosubscribe on")
	}
	if err := store.SetAutoSubscribe(ctx, primitive.NewObjectID(), false); err == nil {
		t.Error("expected error for unknown user")
	}
}

func TestFetcher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	u := fx.CreateSiteUser(ctx, "Ada", "ada")
	f := userstore.NewFetcher(db)

	su := f.FetchUser(ctx, u.ID.Hex())
	if su == nil {
		t.Fatal("expected session user")
	}
	if su.Name != "Ada" || su.Role != models.RoleUser || !su.TrackForums {
		t.Errorf("unexpected session user: %+v", su)
	}
	if f.FetchUser(ctx, "not-an-id") != nil {
		t.Error("expected nil for malformed id")
	}
	if f.FetchUser(ctx, primitive.NewObjectID().Hex()) != nil {
		t.Error("expected nil for unknown user")
	}
}
