package handlers

import (
	"crypto/rand"
	"math/big"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt只接受72 bytes以內的密碼
const maxPasswordBytes = 72

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// 檢查信箱是否合法
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func (a *App) hashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost())
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

func passwordTooLong(password string) bool {
	return len(password) > maxPasswordBytes
}

func checkPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// 產生100000~999999的驗證碼
func generateOTP() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + 100000, nil
}
