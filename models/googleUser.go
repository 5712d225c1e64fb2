package models

// Google登入的帳號，第一次登入時建立
type GoogleUser struct {
	Model
	Picture string `gorm:"not null" json:"picture"`
	Name    string `gorm:"index;size:191;not null" json:"name"`
	Email   string `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Sub     string `gorm:"size:191;not null" json:"sub"`
	Role    string `gorm:"size:32;default:'user'" json:"role"`
}
