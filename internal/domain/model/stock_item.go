package model

type StockStatus string

const (
	StockStatusGreen  StockStatus = "green"
	StockStatusOrange StockStatus = "orange"
	StockStatusRed    StockStatus = "red"
)

// StockItemは在庫表の1行。カタログ同様に外部から読み込むだけ。
type StockItem struct {
	SKU          string `json:"sku"`
	QtyAvailable int64  `json:"qty_available"`
	LeadTimeDays int    `json:"lead_time_days"`
}

// Statusは表示用の在庫信号。
// 在庫0のときはリードタイム16日未満でorange、それ以外はred。
func (s StockItem) Status() StockStatus {
	if s.QtyAvailable == 0 {
		if s.LeadTimeDays < 16 {
			return StockStatusOrange
		}
		return StockStatusRed
	}
	return StockStatusGreen
}
