package Controllers

import (
	"log"
	"net/http"
	"os"
	"unicode"

	"github.com/RafaelFrancoD/CRM-hol-stico/Models"
	"github.com/RafaelFrancoD/CRM-hol-stico/Utils/Token"

	"github.com/gin-gonic/gin"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// isStrongPassword mirrors the registration form rule: at least 8 characters
// with an upper, a lower, a digit and a special character.
func isStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}

func cookieSecure() bool {
	return os.Getenv("GIN_MODE") == "release"
}

func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !isStrongPassword(input.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Senha fraca. Use pelo menos 8 caracteres incluindo maiúsculas, minúsculas, números e caracteres especiais"})
		return
	}

	if _, err := Models.GetUserByEmail(input.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Usuário já existe"})
		return
	}

	user := Models.User{Email: input.Email}
	if _, err := user.SaveUser(input.Password); err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "message": "Usuário registrado com sucesso"})
}

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := Models.LoginCheck(input.Email, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciais inválidas"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(Token.CookieName, token, Token.LifespanHours()*60*60, "/", os.Getenv("COOKIE_DOMAIN"), cookieSecure(), true)
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Login realizado com sucesso", "token": token})
}

func Logout(c *gin.Context) {
	c.SetCookie(Token.CookieName, "", -1, "/", os.Getenv("COOKIE_DOMAIN"), cookieSecure(), true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func CurrentUser(c *gin.Context) {
	email, err := Token.ExtractTokenEmail(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := Models.GetUserByEmail(email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"email": user.Email, "created_at": user.CreatedAt})
}
