package models

import "time"

// 所有資料表共用欄位，JSON欄位名稱配合前端使用小寫
type Model struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// 需要AutoMigrate的資料表
func All() []interface{} {
	return []interface{}{
		&User{},
		&GoogleUser{},
		&Product{},
		&Cart{},
	}
}
