package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// flexFloatは数値でも文字列でも受けるカタログ数値。
// 欠損・空文字・壊れた値は0に落とす（価格計算を止めないため）。
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat(v)
		return nil
	}

	*f = 0
	return nil
}

// rawProductは価格表JSONの生の形。キー名はエクスポート元の列名そのまま。
type rawProduct struct {
	SKU            string    `json:"SKU"`
	Name           string    `json:"Name"`
	Category       string    `json:"Product Category"`
	Subcategory    string    `json:"Subcategory"`
	Colli          string    `json:"Colli"`
	PriceUnitPrice flexFloat `json:"Price unit price"`
	PriceUnit      string    `json:"Price Unit"`
	Currency       string    `json:"Currency (Code)"`
	OrderUnitPrice flexFloat `json:"Order unit price"`
	OrderUnit      string    `json:"order unit"`
	DiscountPct    flexFloat `json:"Discount %"`
	ColliPerPallet flexFloat `json:"Colli per pallet"`
	ColliDiscount  flexFloat `json:"Colli discount"`
	Origin         string    `json:"Origin of product"`
	M3             flexFloat `json:"M3"`
	WeightKG       flexFloat `json:"Weight_KG"`
}

// JSONCatalogはファイルから一度だけ読む商品カタログ。
type JSONCatalog struct {
	products []model.Product
	bySKU    map[string]int
}

// NewJSONCatalogは価格表JSONを読み込む。
// 数値の正規化（負値→0など）はここで済ませ、下流は型を信用してよい。
func NewJSONCatalog(path string) (*JSONCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var raws []rawProduct
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &JSONCatalog{bySKU: make(map[string]int, len(raws))}
	for _, r := range raws {
		if r.SKU == "" {
			continue
		}
		p := model.Product{
			SKU:              r.SKU,
			Name:             r.Name,
			Category:         r.Category,
			Subcategory:      r.Subcategory,
			Colli:            r.Colli,
			PriceUnitPrice:   nonNegative(float64(r.PriceUnitPrice)),
			PriceUnit:        r.PriceUnit,
			OrderUnitPrice:   nonNegative(float64(r.OrderUnitPrice)),
			OrderUnit:        r.OrderUnit,
			Currency:         r.Currency,
			DiscountPct:      nonNegative(float64(r.DiscountPct)),
			ColliDiscountPct: nonNegative(float64(r.ColliDiscount)),
			ColliPerPallet:   int(nonNegative(float64(r.ColliPerPallet))),
			VolumeM3:         nonNegative(float64(r.M3)),
			WeightKG:         nonNegative(float64(r.WeightKG)),
			Origin:           r.Origin,
		}
		// 同一SKUは最初の行が勝つ
		if _, exists := c.bySKU[p.SKU]; exists {
			continue
		}
		c.bySKU[p.SKU] = len(c.products)
		c.products = append(c.products, p)
	}

	return c, nil
}

// 検索・絞り込み・並べ替え・ページングつきの一覧。
func (c *JSONCatalog) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}

	items := make([]model.Product, 0, len(c.products))
	needle := strings.ToLower(strings.TrimSpace(q.Q))
	for _, p := range c.products {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.SKU), needle) {
			continue
		}
		if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
			continue
		}
		items = append(items, p)
	}

	switch q.Sort {
	case "price_asc":
		sort.SliceStable(items, func(i, j int) bool { return items[i].OrderUnitPrice < items[j].OrderUnitPrice })
	case "price_desc":
		sort.SliceStable(items, func(i, j int) bool { return items[i].OrderUnitPrice > items[j].OrderUnitPrice })
	case "name_desc":
		sort.SliceStable(items, func(i, j int) bool { return items[i].Name > items[j].Name })
	default:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	}

	total := int64(len(items))

	offset := (q.Page - 1) * q.Limit
	if offset >= len(items) {
		return []model.Product{}, total, nil
	}
	end := offset + q.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], total, nil
}

func (c *JSONCatalog) FindBySKU(ctx context.Context, sku string) (model.Product, error) {
	idx, ok := c.bySKU[sku]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return c.products[idx], nil
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
