package cache

import "time"

// Namespace задаёт пространство ключей одного вида сущностей и его TTL
// TTL не глобальный: данные каталога живут в кэше дольше, чем данные,
// близкие к заказам
type Namespace struct {
	Name string
	TTL  time.Duration
}

// Key собирает полный ключ кэша: вид сущности + идентификатор
func (n Namespace) Key(id string) string {
	return n.Name + ":" + id
}
