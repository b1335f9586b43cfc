package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 注文コレクションを入れるスロットのキー
const orderStorageKey = "saved_orders"

// OrderStoreKVはKVスロット1個に注文コレクションをJSONで丸ごと持つ実装。
// 変更は毎回「全件読み→メモリで変更→全件書き戻し」で行う。
type OrderStoreKV struct {
	kv    repo.KVStore
	idGen repo.IDGenerator
	clock repo.Clock
}

// DI
func NewOrderStoreKV(kv repo.KVStore, idGen repo.IDGenerator, clock repo.Clock) *OrderStoreKV {
	return &OrderStoreKV{kv: kv, idGen: idGen, clock: clock}
}

func (s *OrderStoreKV) Create(ctx context.Context, lines []model.OrderLine, name string) (string, error) {
	orders, err := s.load(ctx)
	if err != nil {
		return "", err
	}

	if hasName(orders, name, "") {
		return "", repo.ErrDuplicateName
	}

	o := model.SavedOrder{
		ID:         s.idGen.NewID(),
		Name:       name,
		Date:       s.clock.Now(),
		OrderLines: model.CloneLines(lines),
	}
	orders = append(orders, o)

	if err := s.save(ctx, orders); err != nil {
		return "", err
	}
	return o.ID, nil
}

func (s *OrderStoreKV) Find(ctx context.Context, id string) (model.SavedOrder, error) {
	orders, err := s.load(ctx)
	if err != nil {
		return model.SavedOrder{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			o.OrderLines = model.CloneLines(o.OrderLines)
			return o, nil
		}
	}
	return model.SavedOrder{}, repo.ErrNotFound
}

func (s *OrderStoreKV) List(ctx context.Context) ([]model.SavedOrder, error) {
	return s.load(ctx)
}

func (s *OrderStoreKV) Update(ctx context.Context, id string, lines []model.OrderLine, name string) error {
	orders, err := s.load(ctx)
	if err != nil {
		return err
	}

	idx := indexOf(orders, id)
	if idx < 0 {
		return repo.ErrNotFound
	}

	if name != "" {
		if hasName(orders, name, id) {
			return repo.ErrDuplicateName
		}
		orders[idx].Name = name
	}

	// 行は差分マージせず丸ごと差し替える
	orders[idx].OrderLines = model.CloneLines(lines)
	orders[idx].Date = s.clock.Now()

	return s.save(ctx, orders)
}

func (s *OrderStoreKV) Rename(ctx context.Context, id string, name string) error {
	orders, err := s.load(ctx)
	if err != nil {
		return err
	}

	idx := indexOf(orders, id)
	if idx < 0 {
		return repo.ErrNotFound
	}
	if hasName(orders, name, id) {
		return repo.ErrDuplicateName
	}

	orders[idx].Name = name
	orders[idx].Date = s.clock.Now()

	return s.save(ctx, orders)
}

func (s *OrderStoreKV) Delete(ctx context.Context, id string) error {
	orders, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := orders[:0]
	for _, o := range orders {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	if len(kept) == len(orders) {
		// 無いIDの削除は何もしない
		return nil
	}

	return s.save(ctx, kept)
}

func (s *OrderStoreKV) load(ctx context.Context) ([]model.SavedOrder, error) {
	raw, ok, err := s.kv.Get(ctx, orderStorageKey)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if !ok || raw == "" {
		return []model.SavedOrder{}, nil
	}

	var orders []model.SavedOrder
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (s *OrderStoreKV) save(ctx context.Context, orders []model.SavedOrder) error {
	raw, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("encode orders: %w", err)
	}
	if err := s.kv.Set(ctx, orderStorageKey, string(raw)); err != nil {
		return fmt.Errorf("persist orders: %w", err)
	}
	return nil
}

func indexOf(orders []model.SavedOrder, id string) int {
	for i, o := range orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// excludeIDの注文自身は重複とみなさない
func hasName(orders []model.SavedOrder, name string, excludeID string) bool {
	for _, o := range orders {
		if o.ID != excludeID && strings.EqualFold(o.Name, name) {
			return true
		}
	}
	return false
}
