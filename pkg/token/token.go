package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Grants 방 안에서 허용되는 능력
type Grants struct {
	Publish   bool `json:"publish"`
	Subscribe bool `json:"subscribe"`
}

// Claims 방 입장 크리덴셜의 클레임
type Claims struct {
	Identity string `json:"identity"`
	Room     string `json:"room"`
	Grants   Grants `json:"grants"`
	jwt.RegisteredClaims
}

// Issuer {identity, room, grants}를 외부 SFU가 받아주는 불투명한
// bearer 크리덴셜로 교환한다.
type Issuer interface {
	Issue(identity, room string, grants Grants) (string, error)
}

// RoomTokenIssuer HS256 서명 기반 토큰 발급자
type RoomTokenIssuer struct {
	secretKey string
	duration  time.Duration
}

// NewRoomTokenIssuer 토큰 발급자 생성
func NewRoomTokenIssuer(secretKey string, duration time.Duration) *RoomTokenIssuer {
	return &RoomTokenIssuer{
		secretKey: secretKey,
		duration:  duration,
	}
}

// Issue 방 입장 크리덴셜 발급
func (m *RoomTokenIssuer) Issue(identity, room string, grants Grants) (string, error) {
	now := time.Now()
	claims := Claims{
		Identity: identity,
		Room:     room,
		Grants:   grants,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// Verify 토큰 검증 및 Claims 추출 (SFU 쪽 검증 로직과 대칭, 테스트용)
func (m *RoomTokenIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(m.secretKey), nil
		},
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
