package model

// Status — статус жизненного цикла заказа
type Status string

const (
	StatusReceived       Status = "RECEIVED"
	StatusConfirmed      Status = "CONFIRMED"
	StatusPreparing      Status = "PREPARING"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCanceled       Status = "CANCELED"
)

// AllowedTransitions описывает граф переходов статусов как данные, а не как
// switch: таблицу можно перебрать в тестах по всем парам (from, to)
// отмена возможна только из RECEIVED; DELIVERED и CANCELED — терминальные
var AllowedTransitions = map[Status][]Status{
	StatusReceived:       {StatusConfirmed, StatusCanceled},
	StatusConfirmed:      {StatusPreparing},
	StatusPreparing:      {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      {},
	StatusCanceled:       {},
}

// CanTransition отвечает, разрешён ли переход из from в to
// функция чистая и тотальная: на любую пару есть ответ, ошибок и паник нет
func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Valid проверяет, что значение является известным статусом
func (s Status) Valid() bool {
	_, ok := AllowedTransitions[s]
	return ok
}

// Terminal — признак терминального статуса: из него нет ни одного перехода
func (s Status) Terminal() bool {
	next, ok := AllowedTransitions[s]
	return ok && len(next) == 0
}
