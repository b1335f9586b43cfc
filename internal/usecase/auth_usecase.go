package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	repo "app/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// メールまたはパスワードが違う
var ErrInvalidCredentials = errors.New("invalid credentials")

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(email string, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

type BcryptPasswordVerifier struct{}

func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	Email     string `json:"email"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// AuthUsecaseは営業担当1名分のログインゲート。
// ユーザーテーブルは持たず、設定済みのメール＋パスワードハッシュと照合するだけ。
type AuthUsecase struct {
	salesEmail        string
	salesPasswordHash string
	verifier          PasswordVerifier
	issuer            AccessTokenIssuer
	clock             repo.Clock
}

// DI
func NewAuthUsecase(
	salesEmail string,
	salesPasswordHash string,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock repo.Clock,
) *AuthUsecase {
	return &AuthUsecase{
		salesEmail:        salesEmail,
		salesPasswordHash: salesPasswordHash,
		verifier:          verifier,
		issuer:            issuer,
		clock:             clock,
	}
}

// ログイン処理を実行する
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	if !strings.EqualFold(email, u.salesEmail) {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if !u.verifier.Verify(in.Password, u.salesPasswordHash) {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	now := u.clock.Now()
	token, expiresAt, err := u.issuer.Issue(u.salesEmail, now)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "token issue failed")
	}

	return LoginOutput{
		Email:     u.salesEmail,
		Token:     token,
		ExpiresIn: int64(expiresAt.Sub(now).Seconds()),
	}, nil
}
