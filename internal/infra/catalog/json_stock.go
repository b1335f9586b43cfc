package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"app/internal/domain/model"
)

// rawStockItemは在庫JSONの生の形。
type rawStockItem struct {
	SKU          string    `json:"SKU"`
	QtyAvailable flexFloat `json:"Qty Available"`
	LeadTimeDays flexFloat `json:"Lead Time (days)"`
}

// JSONStockはファイルから読む在庫表。ファイル未指定なら空として動く。
type JSONStock struct {
	bySKU map[string]model.StockItem
}

func NewJSONStock(path string) (*JSONStock, error) {
	s := &JSONStock{bySKU: map[string]model.StockItem{}}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stock: %w", err)
	}

	var raws []rawStockItem
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode stock: %w", err)
	}

	for _, r := range raws {
		if r.SKU == "" {
			continue
		}
		s.bySKU[r.SKU] = model.StockItem{
			SKU:          r.SKU,
			QtyAvailable: int64(nonNegative(float64(r.QtyAvailable))),
			LeadTimeDays: int(nonNegative(float64(r.LeadTimeDays))),
		}
	}
	return s, nil
}

func (s *JSONStock) FindBySKU(ctx context.Context, sku string) (model.StockItem, bool, error) {
	item, ok := s.bySKU[sku]
	return item, ok, nil
}
