package pricing

// OrderTotalsは注文全体の集計。
type OrderTotals struct {
	TotalVolume float64 `json:"total_volume"`
	TotalWeight float64 `json:"total_weight"`
	TotalCost   float64 `json:"total_cost"`
}

// Aggregateは価格付き行を畳み込んで合計を出す。
// PriceLinesが解決できないSKUを落としているので、ここでは単純に足すだけ。
func Aggregate(lines []PricedLine) OrderTotals {
	var t OrderTotals
	for _, l := range lines {
		t.TotalVolume += l.Volume
		t.TotalWeight += l.Weight
		t.TotalCost += l.LineTotal
	}
	return t
}
