package models

// Product представляет товар каталога.
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"product_name"` // Название товара
	Price float64 `json:"price"`        // Цена, неотрицательная
}
