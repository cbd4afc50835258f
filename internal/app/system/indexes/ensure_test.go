package indexes_test

import (
	"testing"

	"github.com/metacode22/study-somoim/internal/app/system/indexes"
	"github.com/metacode22/study-somoim/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestEnsure_IdempotentAndRenames(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	coll := db.Collection("things")

	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "a", Value: 1}}, Options: options.Index().SetName("idx_a")},
		{Keys: bson.D{{Key: "exp", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_ttl")},
	}
	if err := indexes.Ensure(ctx, coll, models); err != nil {
		t.Fatalf("first Ensure: %v", err)
	}
	if err := indexes.Ensure(ctx, coll, models); err != nil {
		t.Fatalf("second Ensure: %v", err)
	}

	renamed := []mongo.IndexModel{{Keys: bson.D{{Key: "a", Value: 1}}, Options: options.Index().SetName("idx_a_v2")}}
	if err := indexes.Ensure(ctx, coll, renamed); err != nil {
		t.Fatalf("rename Ensure: %v", err)
	}
	got, err := indexes.List(ctx, coll)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got["a:1"].Name != "idx_a_v2" {
		t.Errorf("index on a = %+v", got["a:1"])
	}
	if got["exp:1"].TTL() != 0 {
		t.Errorf("ttl index = %+v", got["exp:1"])
	}
}
