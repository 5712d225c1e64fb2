package models

type Product struct {
	Model
	ImageSrc    string `json:"image_src"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Title       string `json:"title"`
}
