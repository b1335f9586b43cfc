package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"app/internal/domain/model"
	"app/internal/pricing"
	repo "app/internal/repository"
	"app/internal/validator"
)

// OrderUsecaseは作業中の注文（working lines）と保存済み注文の切替を司る。
// 状態は2つ: currentIDが空なら未保存（NoOrder）、入っていれば保存済み注文に
// 紐づいた状態（ActiveOrder）。ActiveOrder中の行変更は即座にStoreへ書く。
type OrderUsecase struct {
	store   repo.OrderStore
	catalog repo.ProductCatalog
	clock   repo.Clock

	promptDelay time.Duration

	mu              sync.Mutex
	lines           []model.OrderLine
	currentID       string
	currentName     string
	palletMode      map[string]bool
	promptPending   bool
	promptDismissed bool
	promptTimer     *time.Timer
}

// DI
func NewOrderUsecase(
	store repo.OrderStore,
	catalog repo.ProductCatalog,
	clock repo.Clock,
	promptDelay time.Duration,
) *OrderUsecase {
	return &OrderUsecase{
		store:       store,
		catalog:     catalog,
		clock:       clock,
		promptDelay: promptDelay,
		palletMode:  map[string]bool{},
	}
}

type WorkingOrderOutput struct {
	OrderID       string               `json:"order_id,omitempty"`
	OrderName     string               `json:"order_name,omitempty"`
	Lines         []pricing.PricedLine `json:"lines"`
	Totals        pricing.OrderTotals  `json:"totals"`
	PalletMode    map[string]bool      `json:"pallet_mode"`
	PromptPending bool                 `json:"prompt_pending"`
	SuggestedName string               `json:"suggested_name,omitempty"`
}

type OrderSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	LineCount int       `json:"line_count"`
	IsCurrent bool      `json:"is_current"`
}

type CreateOrderInput struct {
	Name       string
	CarryLines bool
}

// WorkingOrderは作業中の注文を価格付きで返す。
func (u *OrderUsecase) WorkingOrder(ctx context.Context) (WorkingOrderOutput, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	priced := pricing.PriceLines(u.lines, func(sku string) (model.Product, bool) {
		p, err := u.catalog.FindBySKU(ctx, sku)
		return p, err == nil
	})

	out := WorkingOrderOutput{
		OrderID:       u.currentID,
		OrderName:     u.currentName,
		Lines:         priced,
		Totals:        pricing.Aggregate(priced),
		PalletMode:    clonePalletMode(u.palletMode),
		PromptPending: u.promptPending,
	}

	if u.promptPending {
		name, err := u.suggestName(ctx)
		if err != nil {
			return WorkingOrderOutput{}, storeError(err)
		}
		out.SuggestedName = name
	}

	return out, nil
}

// Ordersは保存済み注文の一覧（新しい順）。
func (u *OrderUsecase) Orders(ctx context.Context) ([]OrderSummary, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	orders, err := u.store.List(ctx)
	if err != nil {
		return nil, storeError(err)
	}

	sort.SliceStable(orders, func(i, j int) bool { return orders[i].Date.After(orders[j].Date) })

	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderSummary{
			ID:        o.ID,
			Name:      o.Name,
			Date:      o.Date,
			LineCount: len(o.OrderLines),
			IsCurrent: o.ID == u.currentID,
		})
	}
	return out, nil
}

// CreateOrderは新しい注文を作って切り替える。
// 名前が空なら「日付 - Order N」を使う。最初の注文、または明示的に
// 引き継ぎを選んだときだけ作業中の行を新注文に持ち込む。
func (u *OrderUsecase) CreateOrder(ctx context.Context, in CreateOrderInput) (OrderSummary, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	// 切替前に編集中の内容を失わないよう保存する
	if err := u.flushCurrentLocked(ctx); err != nil {
		return OrderSummary{}, err
	}

	orders, err := u.store.List(ctx)
	if err != nil {
		return OrderSummary{}, storeError(err)
	}
	firstEver := len(orders) == 0

	name := in.Name
	if name == "" {
		name = suggestedName(u.clock.Now(), len(orders))
	}
	name, err = validator.OrderName(name)
	if err != nil {
		return OrderSummary{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var carried []model.OrderLine
	if (firstEver || in.CarryLines) && len(u.lines) > 0 {
		carried = model.CloneLines(u.lines)
	}

	id, err := u.store.Create(ctx, carried, name)
	if err != nil {
		return OrderSummary{}, storeError(err)
	}

	u.currentID = id
	u.currentName = name
	u.lines = carried
	u.promptDismissed = false
	u.cancelPromptLocked()

	return OrderSummary{
		ID:        id,
		Name:      name,
		Date:      u.clock.Now(),
		LineCount: len(carried),
		IsCurrent: true,
	}, nil
}

// LoadOrderは保存済み注文に切り替える。切替前に現在の編集を書き戻す。
func (u *OrderUsecase) LoadOrder(ctx context.Context, id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.flushCurrentLocked(ctx); err != nil {
		return err
	}

	o, err := u.store.Find(ctx, id)
	if err != nil {
		return storeError(err)
	}

	u.currentID = o.ID
	u.currentName = o.Name
	u.lines = model.CloneLines(o.OrderLines)
	u.cancelPromptLocked()
	return nil
}

// DeleteOrderは注文を消す。現在の注文を消した場合は、残っていれば
// 一番新しい注文に切り替え、無ければ未保存状態に戻る。
func (u *OrderUsecase) DeleteOrder(ctx context.Context, id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.store.Delete(ctx, id); err != nil {
		return storeError(err)
	}

	if id != u.currentID {
		return nil
	}

	u.currentID = ""
	u.currentName = ""
	u.lines = nil
	u.promptDismissed = false
	u.cancelPromptLocked()

	remaining, err := u.store.List(ctx)
	if err != nil {
		return storeError(err)
	}
	if len(remaining) == 0 {
		return nil
	}

	latest := latestOrder(remaining)
	u.currentID = latest.ID
	u.currentName = latest.Name
	u.lines = model.CloneLines(latest.OrderLines)
	return nil
}

// RenameCurrentは現在の注文の名前を変える。
// 検証に落ちたら何も確定しない（呼び出し側がインラインで出し直す）。
func (u *OrderUsecase) RenameCurrent(ctx context.Context, name string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.currentID == "" {
		return NewHTTPError(http.StatusBadRequest, "no current order")
	}

	name, err := validator.OrderName(name)
	if err != nil {
		return NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := u.store.Rename(ctx, u.currentID, name); err != nil {
		return storeError(err)
	}
	u.currentName = name
	return nil
}

// ResumeLatestは起動時に最後に触った注文を開く。保存が無ければ何もしない。
func (u *OrderUsecase) ResumeLatest(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	orders, err := u.store.List(ctx)
	if err != nil {
		return storeError(err)
	}
	if len(orders) == 0 {
		return nil
	}

	latest := latestOrder(orders)
	u.currentID = latest.ID
	u.currentName = latest.Name
	u.lines = model.CloneLines(latest.OrderLines)
	return nil
}

// DismissPromptは保存促しを閉じる。次に条件が立ち直るまで再表示しない。
func (u *OrderUsecase) DismissPrompt() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.promptDismissed = true
	u.cancelPromptLocked()
}

// ActiveOrder中なら作業行をStoreへ書き戻す。
func (u *OrderUsecase) flushCurrentLocked(ctx context.Context) error {
	if u.currentID == "" {
		return nil
	}
	if err := u.store.Update(ctx, u.currentID, u.lines, ""); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// 消された注文を指していた。未保存状態に落として続行する。
			u.currentID = ""
			u.currentName = ""
			return nil
		}
		return storeError(err)
	}
	return nil
}

func (u *OrderUsecase) suggestName(ctx context.Context) (string, error) {
	orders, err := u.store.List(ctx)
	if err != nil {
		return "", err
	}
	return suggestedName(u.clock.Now(), len(orders)), nil
}

func suggestedName(now time.Time, existing int) string {
	return fmt.Sprintf("%s - Order %d", now.Format("2006-01-02"), existing+1)
}

func latestOrder(orders []model.SavedOrder) model.SavedOrder {
	latest := orders[0]
	for _, o := range orders[1:] {
		if o.Date.After(latest.Date) {
			latest = o
		}
	}
	return latest
}

func clonePalletMode(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Storeのエラーをhandler向けに変換する
func storeError(err error) error {
	switch {
	case errors.Is(err, repo.ErrDuplicateName):
		return NewHTTPError(http.StatusConflict, "order name already used")
	case errors.Is(err, repo.ErrNotFound):
		return NewHTTPError(http.StatusNotFound, "order not found")
	default:
		return NewHTTPError(http.StatusInternalServerError, "storage error")
	}
}
