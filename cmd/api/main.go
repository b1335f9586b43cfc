package main

import (
	"context"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/catalog"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(email string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub": email,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// 行が入ってから保存を促すまでの待ち時間
const promptDelay = 2 * time.Second

func main() {
	//.envは無くてもよい（環境変数直指定を許す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(&model.KVEntry{}); err != nil {
		panic(err)
	}

	//カタログ読込（セッション中は不変）
	productCatalog, err := catalog.NewJSONCatalog(cfg.CatalogPath)
	if err != nil {
		panic(err)
	}
	stockCatalog, err := catalog.NewJSONStock(cfg.StockPath)
	if err != nil {
		panic(err)
	}

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	verifier := usecase.NewBcryptPasswordVerifier()
	issuer := &jwtIssuer{secret: []byte(cfg.JWTSecret), accessTTL: 12 * time.Hour}

	//Repository生成
	kv := infraRepo.NewKVGormRepository(gormDB)
	orderStore := infraRepo.NewOrderStoreKV(kv, idGen, clock)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg.SalesEmail, cfg.SalesPasswordHash, verifier, issuer, clock)
	catalogUC := usecase.NewCatalogUsecase(productCatalog, stockCatalog)
	orderUC := usecase.NewOrderUsecase(orderStore, productCatalog, clock, promptDelay)

	//前回最後に触っていた注文を開いて再開する
	if err := orderUC.ResumeLatest(context.Background()); err != nil {
		panic(err)
	}

	//Handler生成
	authH := handler.NewAuthHandler(authUC)
	catalogH := handler.NewCatalogHandler(catalogUC)
	orderH := handler.NewOrderHandler(orderUC)
	ordersH := handler.NewOrdersHandler(orderUC)

	//Server起動
	e := server.New(cfg, authH, catalogH, orderH, ordersH)
	if err := server.Start(e, ":"+cfg.Port); err != nil {
		panic(err)
	}
}
