package model

// Productは価格表の1商品（カタログ参照データ）。
// 数値フィールドはカタログ読込時に正規化済み（負値や欠損は0に落とす）。
type Product struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`

	// 梱包表示（例: "6 x 1L @ tray"）
	Colli string `json:"colli"`

	PriceUnitPrice float64 `json:"price_unit_price"`
	PriceUnit      string  `json:"price_unit"`
	OrderUnitPrice float64 `json:"order_unit_price"`
	OrderUnit      string  `json:"order_unit"`
	Currency       string  `json:"currency"`

	// 通常割引%（0〜100）
	DiscountPct float64 `json:"discount_pct"`
	// パレット到達時の追加割引%（0〜100）
	ColliDiscountPct float64 `json:"colli_discount_pct"`
	// 1パレットあたりのコリ数。0はパレット段階なし。
	ColliPerPallet int `json:"colli_per_pallet"`

	VolumeM3 float64 `json:"volume_m3"`
	WeightKG float64 `json:"weight_kg"`

	Origin string `json:"origin,omitempty"`
}
