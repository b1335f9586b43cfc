package repository

import (
	"context"
	"path/filepath"
	"testing"

	"app/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestKV(t *testing.T) *KVGormRepository {
	t.Helper()

	path := filepath.Join(t.TempDir(), "kv.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open failed: %v", err)
	}
	if err := db.AutoMigrate(&model.KVEntry{}); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	return NewKVGormRepository(db)
}

func TestKVGormRepository_GetMissing(t *testing.T) {
	kv := newTestKV(t)

	_, ok, err := kv.Get(context.Background(), "saved_orders")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestKVGormRepository_SetThenGet(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)

	assert.NoError(t, kv.Set(ctx, "saved_orders", `[]`))

	v, ok, err := kv.Get(ctx, "saved_orders")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)
}

func TestKVGormRepository_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)

	assert.NoError(t, kv.Set(ctx, "saved_orders", `[]`))
	assert.NoError(t, kv.Set(ctx, "saved_orders", `[{"id":"1"}]`))

	v, ok, err := kv.Get(ctx, "saved_orders")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, v)
}
