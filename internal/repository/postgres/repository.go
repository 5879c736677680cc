package postgres

import (
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// сигнальные ошибки хранилища; сервисный слой переводит их
// в свою таксономию и наружу «сырые» ошибки драйвера не выпускает
var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderExists        = errors.New("order already exists")
)

// Repository инкапсулирует работу со всеми таблицами сервиса в PostgreSQL
// это единственный источник правды: кэш никогда не авторитетен
type Repository struct {
	db *pgxpool.Pool
	sq squirrel.StatementBuilderType
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		db: db,
		// использую плейсхолдеры в стиле PostgreSQL ($1, $2, $3,...)
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// isUniqueViolation распознаёт нарушение уникального ключа (код 23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
