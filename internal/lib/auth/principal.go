package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// принципал передаётся явно через контекст запроса
// никакого глобального «текущего пользователя» в пакете нет

type principalKey struct{}

// ErrNoPrincipal возвращается, когда в контексте нет аутентифицированного клиента
var ErrNoPrincipal = errors.New("no authenticated principal in context")

// WithPrincipal кладёт ID аутентифицированного клиента в контекст
// проверку токена выполняет транспортный слой до этого вызова
func WithPrincipal(ctx context.Context, customerID uuid.UUID) context.Context {
	return context.WithValue(ctx, principalKey{}, customerID)
}

// CurrentPrincipal возвращает ID аутентифицированного клиента из контекста
func CurrentPrincipal(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(principalKey{}).(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrNoPrincipal
	}
	return id, nil
}
