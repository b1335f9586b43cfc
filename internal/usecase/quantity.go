package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/pricing"
	repo "app/internal/repository"
)

// 数量操作（Quantity Controller）。
// どの操作も成功したら即座に作業行へ反映し、ActiveOrder中ならそのまま保存する。
// 画面と保存状態がずれる瞬間を作らない。

// SetQuantityは数量を直接指定する。負値は0に丸め、0になった行は消す。
func (u *OrderUsecase) SetQuantity(ctx context.Context, sku string, qty int) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, err := u.findProduct(ctx, sku); err != nil {
		return err
	}
	if qty < 0 {
		qty = 0
	}

	u.applyQtyLocked(sku, qty)
	return u.afterLinesChangedLocked(ctx)
}

// Incrementは1ステップ増やす。パレットモード中はパレット1枚分が1ステップ。
func (u *OrderUsecase) Increment(ctx context.Context, sku string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	p, err := u.findProduct(ctx, sku)
	if err != nil {
		return err
	}

	u.applyQtyLocked(sku, u.qtyLocked(sku)+u.stepLocked(sku, p))
	return u.afterLinesChangedLocked(ctx)
}

// Decrementは1ステップ減らす。0未満にはしない。
func (u *OrderUsecase) Decrement(ctx context.Context, sku string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	p, err := u.findProduct(ctx, sku)
	if err != nil {
		return err
	}

	current := u.qtyLocked(sku)
	if current <= 0 {
		return nil
	}
	next := current - u.stepLocked(sku, p)
	if next < 0 {
		next = 0
	}

	u.applyQtyLocked(sku, next)
	return u.afterLinesChangedLocked(ctx)
}

// RemoveLineは行を消す（数量0と同じ扱い）。
func (u *OrderUsecase) RemoveLine(ctx context.Context, sku string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, err := u.findProduct(ctx, sku); err != nil {
		return err
	}

	u.applyQtyLocked(sku, 0)
	return u.afterLinesChangedLocked(ctx)
}

// SetPalletModeはパレット単位の入力に切り替える。
// 有効化した瞬間に現在数量をパレット倍数へ丸め直す。
func (u *OrderUsecase) SetPalletMode(ctx context.Context, sku string, enabled bool) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	p, err := u.findProduct(ctx, sku)
	if err != nil {
		return err
	}

	u.palletMode[sku] = enabled
	if !enabled {
		return nil
	}

	rounded := pricing.RoundQtyToPallet(u.qtyLocked(sku), p.ColliPerPallet)
	u.applyQtyLocked(sku, rounded)
	return u.afterLinesChangedLocked(ctx)
}

func (u *OrderUsecase) findProduct(ctx context.Context, sku string) (model.Product, error) {
	p, err := u.catalog.FindBySKU(ctx, sku)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "unknown sku")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "catalog error")
	}
	return p, nil
}

func (u *OrderUsecase) qtyLocked(sku string) int {
	for _, l := range u.lines {
		if l.SKU == sku {
			return l.Qty
		}
	}
	return 0
}

func (u *OrderUsecase) stepLocked(sku string, p model.Product) int {
	if !u.palletMode[sku] {
		return 1
	}
	if p.ColliPerPallet > 0 {
		return p.ColliPerPallet
	}
	return 1
}

// 行の追加は末尾、更新はその場、0は行ごと削除。並び順は崩さない。
func (u *OrderUsecase) applyQtyLocked(sku string, qty int) {
	for i, l := range u.lines {
		if l.SKU != sku {
			continue
		}
		if qty > 0 {
			u.lines[i].Qty = qty
		} else {
			u.lines = append(u.lines[:i], u.lines[i+1:]...)
		}
		return
	}
	if qty > 0 {
		u.lines = append(u.lines, model.OrderLine{SKU: sku, Qty: qty})
	}
}

// 行が変わった後の共通処理。ActiveOrderなら自動保存、NoOrderなら
// 少し待ってから保存を促すタイマーを仕掛ける。
func (u *OrderUsecase) afterLinesChangedLocked(ctx context.Context) error {
	if u.currentID != "" {
		if err := u.store.Update(ctx, u.currentID, u.lines, ""); err != nil {
			// メモリ上の作業行が正なので状態は巻き戻さない
			return storeError(err)
		}
		return nil
	}

	if len(u.lines) == 0 {
		u.cancelPromptLocked()
		u.promptDismissed = false
		return nil
	}

	if !u.promptDismissed && !u.promptPending && u.promptTimer == nil {
		u.promptTimer = time.AfterFunc(u.promptDelay, u.firePrompt)
	}
	return nil
}

// タイマー発火。条件が崩れていたら何もしない（二重発火しても注文は作らない）。
func (u *OrderUsecase) firePrompt() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.promptTimer = nil
	if u.currentID == "" && len(u.lines) > 0 && !u.promptDismissed {
		u.promptPending = true
	}
}

func (u *OrderUsecase) cancelPromptLocked() {
	if u.promptTimer != nil {
		u.promptTimer.Stop()
		u.promptTimer = nil
	}
	u.promptPending = false
}
