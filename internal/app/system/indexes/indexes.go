// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*
Ensure reconciles the desired indexes of one collection. It is idempotent:
an index with the same key pattern and options is reused, a name mismatch is
fixed by drop and recreate, and an options mismatch (unique or TTL) is
dropped and recreated. Every failure is collected so startup can report
them all at once.
*/
func Ensure(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	log := zap.L().With(zap.String("collection", coll.Name()))
	var errs []string

	for _, m := range models {
		want := describe(m)
		start := time.Now()

		existing, err := list(ctx, coll)
		if err != nil {
			log.Warn("list indexes failed", zap.Error(err))
		}

		if ex, ok := existing[want.sig]; ok {
			if ex.sameOptions(want) && (want.Name == "" || ex.Name == want.Name) {
				log.Debug("reusing existing index", zap.String("name", ex.Name), zap.String("keys", want.sig))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), want.Name, err))
				continue
			}
			log.Info("dropped mismatched index", zap.String("name", ex.Name), zap.String("keys", want.sig))
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			if isDuplicateKeyErr(err) && want.unique() {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), want.Name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), want.Name, err))
			}
			log.Warn("index ensure failed", zap.String("name", want.Name), zap.String("keys", want.sig), zap.Error(err))
			continue
		}
		log.Info("index ensured",
			zap.String("name", created),
			zap.String("keys", want.sig),
			zap.Bool("unique", want.unique()),
			zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type indexInfo struct {
	Name               string `bson:"name"`
	Key                bson.D `bson:"key"`
	Unique             *bool  `bson:"unique,omitempty"`
	ExpireAfterSeconds *int32 `bson:"expireAfterSeconds,omitempty"`

	sig string
}

func (i indexInfo) unique() bool { return i.Unique != nil && *i.Unique }

func (i indexInfo) ttl() int32 {
	if i.ExpireAfterSeconds == nil {
		return -1
	}
	return *i.ExpireAfterSeconds
}

func (i indexInfo) sameOptions(o indexInfo) bool {
	return i.unique() == o.unique() && i.ttl() == o.ttl()
}

func describe(m mongo.IndexModel) indexInfo {
	keys, _ := m.Keys.(bson.D)
	info := indexInfo{Key: keys, sig: keySig(keys)}
	if m.Options != nil {
		if m.Options.Name != nil {
			info.Name = *m.Options.Name
		}
		info.Unique = m.Options.Unique
		info.ExpireAfterSeconds = m.Options.ExpireAfterSeconds
	}
	return info
}

// list returns the collection's indexes keyed by key signature.
func list(ctx context.Context, coll *mongo.Collection) (map[string]indexInfo, error) {
	out := map[string]indexInfo{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return out, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx indexInfo
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		idx.sig = keySig(idx.Key)
		out[idx.sig] = idx
	}
	return out, cur.Err()
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}
