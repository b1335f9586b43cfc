package model

import "time"

// OrderLineは注文の1行。qty==0の行は保持しない（行ごと消す）。
// JSONキーは保存フォーマット（SKU / qty）に合わせる。
type OrderLine struct {
	SKU string `json:"SKU"`
	Qty int    `json:"qty"`
}

// SavedOrderは保存済み注文。IDは作成時に採番して以後不変。
// Dateは最終更新時刻で、変更のたびに更新される。
type SavedOrder struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Date       time.Time   `json:"date"`
	OrderLines []OrderLine `json:"orderLines"`
}

// CloneLinesは行スライスの複製を返す（呼び出し側との共有を避ける）。
func CloneLines(lines []OrderLine) []OrderLine {
	out := make([]OrderLine, len(lines))
	copy(out, lines)
	return out
}
