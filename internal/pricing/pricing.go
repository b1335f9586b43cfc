package pricing

import "app/internal/domain/model"

// PricedLineは(商品, 数量)から導出する1行の価格内訳。保存はしない。
type PricedLine struct {
	Line    model.OrderLine `json:"line"`
	Product model.Product   `json:"product"`

	BasePrice         float64 `json:"base_price"`
	FinalPrice        float64 `json:"final_price"`
	TotalDiscountRate float64 `json:"total_discount_rate"`
	LineTotal         float64 `json:"line_total"`
	IsPalletMultiple  bool    `json:"is_pallet_multiple"`
	SavedAmount       float64 `json:"saved_amount"`

	Volume float64 `json:"volume"`
	Weight float64 `json:"weight"`
}

// Priceは1行の価格を計算する。純粋関数で副作用なし。
// 割引は率を合算してから1回だけ適用する（乗算の連鎖はしない）。
// パレット割引の条件は qty >= ColliPerPallet（ColliPerPallet=0なら無効）。
func Price(p model.Product, qty int) PricedLine {
	basePrice := p.OrderUnitPrice

	normalDiscount := nonNegative(p.DiscountPct)
	colliDiscount := nonNegative(p.ColliDiscountPct)
	palletQty := p.ColliPerPallet
	if palletQty < 0 {
		palletQty = 0
	}

	isPalletMultiple := palletQty > 0 && qty >= palletQty

	totalDiscountRate := normalDiscount
	if isPalletMultiple {
		totalDiscountRate += colliDiscount
	}
	totalDiscountRate = clampRate(totalDiscountRate)

	finalPrice := basePrice * (1 - totalDiscountRate/100)
	lineTotal := finalPrice * float64(qty)
	savedAmount := basePrice*float64(qty) - lineTotal

	return PricedLine{
		Line:              model.OrderLine{SKU: p.SKU, Qty: qty},
		Product:           p,
		BasePrice:         basePrice,
		FinalPrice:        finalPrice,
		TotalDiscountRate: totalDiscountRate,
		LineTotal:         lineTotal,
		IsPalletMultiple:  isPalletMultiple,
		SavedAmount:       savedAmount,
		Volume:            nonNegative(p.VolumeM3) * float64(qty),
		Weight:            nonNegative(p.WeightKG) * float64(qty),
	}
}

// PriceLinesは注文行を価格付きの行にする。
// qty<=0の行とカタログに無いSKUは黙って除外する（削除済み商品の残骸扱い）。
func PriceLines(lines []model.OrderLine, lookup func(sku string) (model.Product, bool)) []PricedLine {
	out := make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		if line.Qty <= 0 {
			continue
		}
		p, ok := lookup(line.SKU)
		if !ok {
			continue
		}
		out = append(out, Price(p, line.Qty))
	}
	return out
}

// RoundQtyToPalletは数量をパレット倍数に丸める。
// pallet<=0はそのまま返す。1パレット未満は1パレットに切り上げる。
// それ以外は端数0.5未満で切り捨て、0.5以上で切り上げ。
func RoundQtyToPallet(qty int, pallet int) int {
	if pallet <= 0 {
		return qty
	}
	if qty < pallet {
		return pallet
	}
	floorVal := qty / pallet
	rem := qty % pallet
	if rem == 0 {
		return qty
	}
	if float64(rem)/float64(pallet) < 0.5 {
		return floorVal * pallet
	}
	return (floorVal + 1) * pallet
}

// 0〜100に収める
func clampRate(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
