package usecase

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// nonceのaction（サイドカート操作用）
const nonceAction = "sidecart"

var ErrInvalidNonce = errors.New("invalid nonce")

// NonceUsecaseはセッションに紐づくnonce(JWT HS256)を発行・検証する。
type NonceUsecase struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewNonceUsecase(secret string, ttl time.Duration) *NonceUsecase {
	return &NonceUsecase{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issueはセッション用のnonceを作る。
func (u *NonceUsecase) Issue(sessionID string) (string, time.Time, error) {
	now := u.now()
	expiresAt := now.Add(u.ttl)

	claims := jwt.MapClaims{
		"sid": sessionID,
		"act": nonceAction,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(u.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verifyは署名・期限・セッション・actionを確認する。
func (u *NonceUsecase) Verify(raw string, sessionID string) error {
	if raw == "" || sessionID == "" {
		return ErrInvalidNonce
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return u.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return ErrInvalidNonce
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidNonce
	}
	//期限は自前の時計で見る
	if !claims.VerifyExpiresAt(u.now().Unix(), true) {
		return ErrInvalidNonce
	}
	if sid, _ := claims["sid"].(string); sid != sessionID {
		return ErrInvalidNonce
	}
	if act, _ := claims["act"].(string); act != nonceAction {
		return ErrInvalidNonce
	}
	return nil
}
