package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/agora/server/internal/model"
)

type fakeIndexes map[string]bool

func (f fakeIndexes) HasIndex(_ interface{}, name string) bool {
	return f[name]
}

func TestMissingKeysetIndexes(t *testing.T) {
	t.Run("all present", func(t *testing.T) {
		m := fakeIndexes{"idx_posts_keyset": true, "idx_posts_author_keyset": true, "idx_comments_keyset": true}
		assert.Empty(t, missingKeysetIndexes(m))
	})

	t.Run("reports each missing index", func(t *testing.T) {
		m := fakeIndexes{"idx_posts_keyset": true}
		assert.Equal(t, []string{"idx_posts_author_keyset", "idx_comments_keyset"}, missingKeysetIndexes(m))
	})
}

func TestKeysetIndexes_CoverListingModels(t *testing.T) {
	var posts, comments int
	for _, idx := range keysetIndexes {
		switch idx.model.(type) {
		case *model.Post:
			posts++
		case *model.Comment:
			comments++
		}
	}
	assert.Equal(t, 2, posts)
	assert.Equal(t, 1, comments)
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()
	sql := func() (string, int64) { return `SELECT * FROM "posts" WHERE (created_at, id) < ($1, $2)`, 21 }

	t.Run("slow queries are warned", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := newLogger(zap.New(core), 100*time.Millisecond)

		l.Trace(ctx, time.Now().Add(-time.Second), sql, nil)

		entries := logs.All()
		if assert.Len(t, entries, 1) {
			assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
			assert.Contains(t, entries[0].Message, "SLOW SQL")
		}
	})

	t.Run("fast queries are quiet", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := newLogger(zap.New(core), 100*time.Millisecond)

		l.Trace(ctx, time.Now(), sql, nil)

		assert.Zero(t, logs.Len())
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := newLogger(zap.New(core), 100*time.Millisecond)

		l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
		assert.Zero(t, logs.Len())

		l.Trace(ctx, time.Now(), sql, errors.New("connection refused"))
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("nil logger is silent", func(t *testing.T) {
		assert.NotPanics(t, func() {
			newLogger(nil, time.Second).Trace(ctx, time.Now().Add(-time.Minute), sql, nil)
		})
	})
}
