package Token

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie the SPA relies on; the Authorization
// header is accepted as well so the API works cross-domain.
const CookieName = "token"

func apiSecret() []byte {
	return []byte(os.Getenv("API_SECRET"))
}

// LifespanHours is the configured session length; the login cookie Max-Age is
// derived from it so cookie and token expire together.
func LifespanHours() int {
	lifespan, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil || lifespan <= 0 {
		return 8
	}
	return lifespan
}

func GenerateToken(userID uint, email string) (string, error) {
	claims := jwt.MapClaims{}
	claims["authorized"] = true
	claims["user_id"] = userID
	claims["email"] = email
	claims["exp"] = time.Now().Add(time.Duration(LifespanHours()) * time.Hour).Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(apiSecret())
}

// ExtractToken reads the raw JWT from the session cookie or, failing that,
// from a bearer Authorization header.
func ExtractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		return cookie
	}
	bearer := c.Request.Header.Get("Authorization")
	if strings.HasPrefix(bearer, "Bearer ") {
		return strings.TrimPrefix(bearer, "Bearer ")
	}
	return ""
}

func parse(c *gin.Context) (jwt.MapClaims, error) {
	tokenString := ExtractToken(c)
	if tokenString == "" {
		return nil, errors.New("no token supplied")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return apiSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func TokenValid(c *gin.Context) error {
	_, err := parse(c)
	return err
}

func ExtractTokenID(c *gin.Context) (uint, error) {
	claims, err := parse(c)
	if err != nil {
		return 0, err
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("token carries no user id")
	}
	return uint(id), nil
}

func ExtractTokenEmail(c *gin.Context) (string, error) {
	claims, err := parse(c)
	if err != nil {
		return "", err
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", errors.New("token carries no email")
	}
	return email, nil
}
