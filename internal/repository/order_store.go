package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
	"time"
)

// 名前が既存の注文と衝突（大文字小文字は区別しない）
var ErrDuplicateName = errors.New("duplicate order name")

// 採番の約束
type IDGenerator interface {
	NewID() string
}

// 現在時刻の約束
type Clock interface {
	Now() time.Time
}

// OrderStoreは保存済み注文コレクションのCRUD。
// 実装は毎回コレクション全体を読み、メモリで変更し、全体を1回で書き戻す。
type OrderStore interface {
	// Createは新しい注文を追加してIDを返す。名前重複はErrDuplicateName。
	Create(ctx context.Context, lines []model.OrderLine, name string) (string, error)
	Find(ctx context.Context, id string) (model.SavedOrder, error)
	// Listは保存順。最近順が欲しい呼び出し側はDateで並べ替える。
	List(ctx context.Context) ([]model.SavedOrder, error)
	// Updateは行を丸ごと差し替えてDateを更新する。nameが空なら名前は変えない。
	Update(ctx context.Context, id string, lines []model.OrderLine, name string) error
	// Renameは自分以外との重複を検査して名前を変える。
	Rename(ctx context.Context, id string, name string) error
	// Deleteは冪等。無いIDでもエラーにしない。
	Delete(ctx context.Context, id string) error
}
