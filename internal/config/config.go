package config

import (
	"fmt"
	"os"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL string // 指定時はPostgres。空ならSQLite
	SQLitePath  string // SQLiteファイルのパス

	CatalogPath string // 価格表JSON
	StockPath   string // 在庫JSON（空なら在庫表示なし）

	JWTSecret         string // JWT署名シークレット
	SalesEmail        string // ログインできる営業担当のメール
	SalesPasswordHash string // そのbcryptハッシュ

	GoEnv string // dev/prod
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getenv("SQLITE_PATH", "orders.db"),

		CatalogPath: getenv("CATALOG_PATH", "CustomerPricing.json"),
		StockPath:   os.Getenv("STOCK_PATH"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		SalesEmail:        os.Getenv("SALES_EMAIL"),
		SalesPasswordHash: os.Getenv("SALES_PASSWORD_HASH"),

		GoEnv: getenv("GO_ENV", "dev"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.SalesEmail == "" {
		return Config{}, fmt.Errorf("SALES_EMAIL is required")
	}
	if cfg.SalesPasswordHash == "" {
		return Config{}, fmt.Errorf("SALES_PASSWORD_HASH is required")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
