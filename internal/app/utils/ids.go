package utils

import "github.com/google/uuid"

// NewID возвращает случайный идентификатор (UUID v4) для запусков и анонимных пользователей
func NewID() string {
	return uuid.NewString()
}

// IsID проверяет, что строка является корректным идентификатором
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
