package store

import "errors"

// Общие ошибки хранилища.
var (
	// ErrNotFound — сущность, на которую ссылается запрос, не существует.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — сущность с таким уникальным ключом уже существует.
	ErrAlreadyExists = errors.New("already exists")
)
