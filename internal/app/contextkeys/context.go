package contextkeys

type contextKey string

const (
	// UserIDKey используется для хранения идентификатора пользователя в контексте запроса.
	UserIDKey contextKey = "UserID"
	// RunIDKey используется для хранения идентификатора запуска в контексте логирования.
	RunIDKey contextKey = "RunID"
)
