package validators_test

import (
	"testing"
	"time"

	"github.com/metacode22/study-somoim/internal/app/store/activity"
	"github.com/metacode22/study-somoim/internal/app/store/audit"
	"github.com/metacode22/study-somoim/internal/app/store/oauthstate"
	"github.com/metacode22/study-somoim/internal/app/system/validators"
	"github.com/metacode22/study-somoim/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{oauthstate.CollectionName: false, audit.CollectionName: false, activity.CollectionName: false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, found := range want {
		if !found {
			t.Errorf("collection %q not created", n)
		}
	}
}

func TestValidators_RejectBadDocuments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := validators.EnsureAll(ctx, db, nil); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		name    string
		coll    string
		doc     bson.M
		wantErr bool
	}{
		{"state ok", oauthstate.CollectionName, bson.M{"state": "s", "expires_at": time.Now(), "created_at": time.Now()}, false},
		{"state blank", oauthstate.CollectionName, bson.M{"state": "  ", "expires_at": time.Now(), "created_at": time.Now()}, true},
		{"audit ok", audit.CollectionName, bson.M{"timestamp": time.Now(), "category": "auth", "event_type": "logout", "success": true}, false},
		{"audit bad category", audit.CollectionName, bson.M{"timestamp": time.Now(), "category": "security", "event_type": "x", "success": true}, true},
		{"activity ok", activity.CollectionName, bson.M{"user_id": "u1", "timestamp": time.Now(), "event_type": "join"}, false},
		{"activity bad type", activity.CollectionName, bson.M{"user_id": "u1", "timestamp": time.Now(), "event_type": "attendance"}, true},
		{"activity missing user", activity.CollectionName, bson.M{"timestamp": time.Now(), "event_type": "join"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("InsertOne err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
