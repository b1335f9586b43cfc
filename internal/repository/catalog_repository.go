package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Sort     string
}

// 商品カタログの読み取りだけを約束。コアはカタログを変更しない。
type ProductCatalog interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindBySKU(ctx context.Context, sku string) (model.Product, error)
}

// 在庫表の読み取り。無いSKUはok=falseで返す（エラーではない）。
type StockCatalog interface {
	FindBySKU(ctx context.Context, sku string) (model.StockItem, bool, error)
}
