package trackprefstore_test

import (
	"testing"

	trackprefstore "github.com/dalemusser/twfhub/internal/app/store/trackprefs"
	"github.com/dalemusser/twfhub/internal/app/system/indexes"
	"github.com/dalemusser/twfhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddRemoveExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := trackprefstore.New(db)
	user, forum := primitive.NewObjectID(), primitive.NewObjectID()

	ok, err := store.Exists(ctx, user, forum)
	if err != nil || ok {
		t.Fatalf("Exists before add = %v, %v", ok, err)
	}
	if err := store.Add(ctx, user, forum); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// A second opt-out is a no-op.
	if err := store.Add(ctx, user, forum); err != nil {
		t.Fatalf("second Add: %v", err)
	}
	ok, err = store.Exists(ctx, user, forum)
	if err != nil || !ok {
		t.Fatalf("Exists after add = %v, %v", ok, err)
	}
	if err := store.Remove(ctx, user, forum); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	ok, _ = store.Exists(ctx, user, forum)
	if ok {
		t.Error("expected no opt-out after Remove")
	}
}
