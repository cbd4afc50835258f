// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/metacode22/study-somoim/internal/app/store/activity"
	"github.com/metacode22/study-somoim/internal/app/store/audit"
	"github.com/metacode22/study-somoim/internal/app/store/oauthstate"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Mongo server error codes.
const (
	codeNamespaceExists = 48
	codeNoSuchCommand   = 59
	codeNotImplemented  = 115
)

// EnsureAll creates the local collections (if missing) and attaches their
// JSON-Schema validators. Servers without collMod support (some DocumentDB
// versions) get the collections without validators.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if hasCode(err, codeNoSuchCommand, "no such command") || hasCode(err, codeNotImplemented, "not implemented", "not supported") {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
			return
		}
		logger.Info("validator ensured", zap.String("collection", coll))
	}

	ensure(oauthstate.CollectionName, oauthStatesSchema())
	ensure(audit.CollectionName, auditEventsSchema())
	ensure(activity.CollectionName, activityEventsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure name exists. created is true only
// when this call created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	if exists, listErr := collectionExists(ctx, db, name); listErr == nil && exists {
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if hasCode(err, codeNamespaceExists, "already exists", "namespace exists") {
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	return db.RunCommand(ctx, cmd).Decode(&out)
}

// hasCode matches a Mongo command error by code, or any error by message
// fragment.
func hasCode(err error, code int32, fragments ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, f := range fragments {
		if strings.Contains(msg, f) {
			return true
		}
	}
	return false
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func oauthStatesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"state", "expires_at", "created_at"},
			"properties": bson.M{
				"state":      nonBlank,
				"return_url": bson.M{"bsonType": "string"},
				"expires_at": bson.M{"bsonType": "date"},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func auditEventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"timestamp", "category", "event_type", "success"},
			"properties": bson.M{
				"timestamp":  bson.M{"bsonType": "date"},
				"category":   bson.M{"enum": bson.A{audit.CategoryAuth, audit.CategoryAdmin}},
				"event_type": nonBlank,
				"success":    bson.M{"bsonType": "bool"},
				"details":    bson.M{"bsonType": "object"},
			},
		},
	}
}

func activityEventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "timestamp", "event_type"},
			"properties": bson.M{
				"user_id":   nonBlank,
				"timestamp": bson.M{"bsonType": "date"},
				"event_type": bson.M{"enum": bson.A{
					activity.EventJoin, activity.EventLeave, activity.EventSelect,
					activity.EventUnselect, activity.EventFinalize, activity.EventCreate,
				}},
			},
		},
	}
}
