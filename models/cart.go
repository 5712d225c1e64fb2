package models

// 每個Google帳號只有一台購物車，Map為前端序列化後的購物車內容
type Cart struct {
	Model
	UserID     uint       `gorm:"column:userid;uniqueIndex;not null" json:"userid"`
	GoogleUser GoogleUser `gorm:"foreignKey:UserID" json:"-"`
	Map        string     `gorm:"type:text" json:"map"`
}
