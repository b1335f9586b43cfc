package repository

import "context"

// KVStoreは耐久なkey→string保存。注文コレクションは1キーに丸ごと入る。
// 呼び出しはすべて同期で、部分書き込みはしない。
type KVStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
}
