package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// CatalogUsecaseは価格表の閲覧。コアは読むだけで、更新は無い。
type CatalogUsecase struct {
	catalog repo.ProductCatalog
	stock   repo.StockCatalog
}

// DI
func NewCatalogUsecase(catalog repo.ProductCatalog, stock repo.StockCatalog) *CatalogUsecase {
	return &CatalogUsecase{catalog: catalog, stock: stock}
}

type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Sort     string
}

// CatalogRowは一覧の1行。割引後の表示価格と在庫信号を足してある。
type CatalogRow struct {
	Product model.Product `json:"product"`

	// 通常割引だけを反映した表示価格（パレット割引は数量が決まるまで不明）
	DisplayUnitPrice      float64 `json:"display_unit_price"`
	DisplayOrderUnitPrice float64 `json:"display_order_unit_price"`

	StockStatus  model.StockStatus `json:"stock_status"`
	QtyAvailable int64             `json:"qty_available"`
	LeadTimeDays int               `json:"lead_time_days"`
}

type ListProductsOutput struct {
	Items []CatalogRow `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

func (u *CatalogUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ListProductsOutput, error) {
	if in.Page < 0 {
		return ListProductsOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 0 || in.Limit > 200 {
		return ListProductsOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Page == 0 {
		in.Page = 1
	}
	if in.Limit == 0 {
		in.Limit = 50
	}

	items, total, err := u.catalog.List(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        in.Q,
		Category: in.Category,
		Sort:     in.Sort,
	})
	if err != nil {
		return ListProductsOutput{}, NewHTTPError(http.StatusInternalServerError, "catalog error")
	}

	rows := make([]CatalogRow, 0, len(items))
	for _, p := range items {
		row := CatalogRow{
			Product:               p,
			DisplayUnitPrice:      discounted(p.PriceUnitPrice, p.DiscountPct),
			DisplayOrderUnitPrice: discounted(p.OrderUnitPrice, p.DiscountPct),
			StockStatus:           model.StockStatus(""),
		}
		if u.stock != nil {
			item, ok, err := u.stock.FindBySKU(ctx, p.SKU)
			if err == nil && ok {
				row.StockStatus = item.Status()
				row.QtyAvailable = item.QtyAvailable
				row.LeadTimeDays = item.LeadTimeDays
			} else {
				// 在庫表に無い商品は在庫0扱いで信号を出す
				row.StockStatus = model.StockItem{SKU: p.SKU}.Status()
			}
		}
		rows = append(rows, row)
	}

	return ListProductsOutput{Items: rows, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func discounted(price float64, discountPct float64) float64 {
	if discountPct <= 0 {
		return price
	}
	if discountPct > 100 {
		discountPct = 100
	}
	return price * (1 - discountPct/100)
}
