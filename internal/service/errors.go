package service

import "errors"

// Виды ошибок хранилища алиасов. Вызывающая сторона различает их через errors.Is.
var (
	// ErrInvalidInput пустой алиас или URL.
	ErrInvalidInput = errors.New("alias and url required")

	// ErrDuplicateAlias алиас уже занят.
	ErrDuplicateAlias = errors.New("alias already exists")

	// ErrNotFound алиаса нет.
	ErrNotFound = errors.New("alias not found")

	// ErrStorageUnavailable сбой нижележащей таблицы. Исходная ошибка доступна через errors.Unwrap.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
