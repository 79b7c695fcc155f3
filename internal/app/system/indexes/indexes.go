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
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	sets := []struct {
		name   string
		ensure func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"enrolments", ensureEnrolments},
		{"course_groups", ensureCourseGroups},
		{"group_memberships", ensureGroupMemberships},
		{"forums", ensureForums},
		{"course_modules", ensureCourseModules},
		{"discussions", ensureDiscussions},
		{"posts", ensurePosts},
		{"read_marks", ensureReadMarks},
		{"tracking_prefs", ensureTrackingPrefs},
		{"subscriptions", ensureSubscriptions},
		{"discussion_subscriptions", ensureDiscussionSubscriptions},
	}
	for _, s := range sets {
		if err := s.ensure(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool {
	return b != nil && *b
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// listExisting loads the current indexes keyed by key signature.
func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func createErr(coll *mongo.Collection, name string, unique bool, err error) string {
	if isDuplicateKeyErr(err) && unique {
		return fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name)
	}
	return fmt.Sprintf("%s(%s): %v", coll.Name(), name, err)
}

// ensureIndexSet creates each desired index, reusing one with the same key
// pattern and options, and dropping and recreating one whose name or
// uniqueness differs.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	existing := listExisting(ctx, coll)

	for _, m := range models {
		var desiredName string
		var desiredUnique bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = boolVal(m.Options.Unique)
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", sig),
			zap.Bool("unique", desiredUnique))

		if ex, ok := existing[sig]; ok {
			if boolVal(ex.Unique) == desiredUnique && (desiredName == "" || ex.Name == desiredName) {
				log.Debug("reusing existing index", zap.String("took", time.Since(start).String()))
				continue
			}
			// Name or uniqueness differs: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", zap.String("existing", ex.Name), zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			log.Warn("index ensure failed", zap.String("took", time.Since(start).String()), zap.Error(err))
			errs = append(errs, createErr(coll, desiredName, desiredUnique, err))
			continue
		}
		log.Info("index ensured",
			zap.String("created_name", created),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		// Login IDs are unique (case/diacritics folded)
		{
			Keys:    bson.D{{Key: "login_id_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_loginidci"),
		},
		// Subscriber lists sort by folded name with a stable tiebreak
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_fullnameci__id"),
		},
	})
}

func ensureEnrolments(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("enrolments"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "course_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_enrol_course_user"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_enrol_user"),
		},
	})
}

func ensureCourseGroups(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("course_groups"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "course_id", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_cg_course_nameci__id"),
		},
	})
}

func ensureGroupMemberships(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("group_memberships"), []mongo.IndexModel{
		// Exactly one membership per (group, user)
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_gm_group_user"),
		},
		// A user's groups inside one course
		{
			Keys:    bson.D{{Key: "course_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_gm_course_user"),
		},
	})
}

func ensureForums(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("forums"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "course_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_forums_course_name"),
		},
	})
}

func ensureCourseModules(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("course_modules"), []mongo.IndexModel{
		// One module per forum
		{
			Keys:    bson.D{{Key: "forum_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_cm_forum"),
		},
	})
}

func ensureDiscussions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("discussions"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "forum_id", Value: 1}, {Key: "group_id", Value: 1}, {Key: "time_modified", Value: -1}},
			Options: options.Index().SetName("idx_disc_forum_group_modified"),
		},
	})
}

func ensurePosts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("posts"), []mongo.IndexModel{
		// Unread counting: posts per discussion newer than a time
		{
			Keys:    bson.D{{Key: "discussion_id", Value: 1}, {Key: "modified", Value: 1}},
			Options: options.Index().SetName("idx_posts_discussion_modified"),
		},
	})
}

func ensureReadMarks(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("read_marks"), []mongo.IndexModel{
		// Exactly one mark per (user, discussion)
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "discussion_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_rm_user_discussion"),
		},
		// Stop-tracking removes a user's marks in one forum
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "forum_id", Value: 1}},
			Options: options.Index().SetName("idx_rm_user_forum"),
		},
		// Cleanup worker
		{
			Keys:    bson.D{{Key: "last_read", Value: 1}},
			Options: options.Index().SetName("idx_rm_lastread"),
		},
	})
}

func ensureTrackingPrefs(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("tracking_prefs"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "forum_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_tp_user_forum"),
		},
	})
}

func ensureSubscriptions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("subscriptions"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "forum_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_sub_user_forum"),
		},
		{
			Keys:    bson.D{{Key: "forum_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_sub_forum_user"),
		},
	})
}

func ensureDiscussionSubscriptions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("discussion_subscriptions"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "discussion_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_ds_user_discussion"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "forum_id", Value: 1}, {Key: "preference", Value: 1}},
			Options: options.Index().SetName("idx_ds_user_forum_pref"),
		},
	})
}
