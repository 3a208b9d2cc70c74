package models

// User представляет пользователя магазина.
// PassHash никогда не сериализуется в ответах API.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	PassHash []byte `json:"-"`
}
