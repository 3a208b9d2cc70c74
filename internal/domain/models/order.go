package models

import "time"

// Статусы заказа. pending — начальный, shipped и cancelled — терминальные.
const (
	OrderStatusPending   = "pending"
	OrderStatusShipped   = "shipped"
	OrderStatusCancelled = "cancelled"
)

// Order представляет заказ пользователя.
// Владелец (UserID) задаётся при создании и не меняется.
type Order struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Status    string    `json:"status"`
	OrderDate time.Time `json:"order_date"` // Выставляется базой при создании
}

// IsFinal сообщает, находится ли заказ в терминальном статусе.
func (o *Order) IsFinal() bool {
	return o.Status == OrderStatusShipped || o.Status == OrderStatusCancelled
}
