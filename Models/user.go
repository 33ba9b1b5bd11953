package Models

import (
	"errors"
	"html"
	"strings"

	"github.com/RafaelFrancoD/CRM-hol-stico/Utils/Token"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email        string `gorm:"size:255;not null;unique" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
}

// bcryptCost matches the production hashing strength used at registration.
const bcryptCost = 12

// dummyHash keeps login timing flat when the email is unknown.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

func GetUserByEmail(email string) (User, error) {
	var user User
	if err := DB.Where("email = ?", email).First(&user).Error; err != nil {
		return user, errors.New("user not found")
	}
	return user, nil
}

func VerifyPassword(password, hashedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// LoginCheck verifies the credential pair and returns a signed session token.
func LoginCheck(email string, password string) (string, error) {
	var user User

	err := DB.Model(User{}).Where("email = ?", email).Take(&user).Error
	if err != nil {
		// Burn a compare anyway so a missing account is not distinguishable
		// by response time.
		_ = VerifyPassword(password, dummyHash)
		return "", errors.New("invalid credentials")
	}

	if err := VerifyPassword(password, user.PasswordHash); err != nil {
		return "", errors.New("invalid credentials")
	}

	return Token.GenerateToken(user.ID, user.Email)
}

func (user *User) SaveUser(password string) (*User, error) {

	if err := user.BeforeSave(password); err != nil {
		return &User{}, err
	}

	if err := DB.Create(&user).Error; err != nil {
		return &User{}, err
	}

	return user, nil
}

func (user *User) BeforeSave(password string) error {

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)

	user.Email = html.EscapeString(strings.TrimSpace(strings.ToLower(user.Email)))

	return nil
}
