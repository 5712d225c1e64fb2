package models

const DefaultRole = "user"

// 本地帳號
type User struct {
	Model
	Username string `gorm:"uniqueIndex;size:191;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Otp      *int   `json:"-"`
	Role     string `gorm:"size:32;default:'user'" json:"role"`
}
