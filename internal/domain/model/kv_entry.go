package model

import "time"

// KVEntryは耐久KVスロットの1件。注文コレクションは1キーにJSONで丸ごと入る。
type KVEntry struct {
	Key       string    `gorm:"primaryKey;type:varchar(255);column:key" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
