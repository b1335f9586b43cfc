package validator

import (
	"errors"
	"strings"
)

var (
	// 名前が空
	ErrNameRequired = errors.New("order name required")

	// 名前が長すぎる
	ErrNameTooLong = errors.New("order name too long")
)

const maxOrderNameLen = 120

// OrderNameは注文名を整形して検証する。
// 重複チェックはコレクション全体が必要なのでOrderStore側で行う。
func OrderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if len(name) > maxOrderNameLen {
		return "", ErrNameTooLong
	}
	return name, nil
}
