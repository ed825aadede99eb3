package service

import "errors"

// Типизированные ошибки ядра. Вызывающий слой различает их через errors.Is;
// проверки прав ошибок не возвращают вовсе (см. PermissionService).
var (
	// ErrDuplicateEntry — создание узла с именем, уже занятым живым
	// соседом под тем же родителем/владельцем.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrNotFound — запрошенный файл/группа/пользователь не существует
	// либо удалён там, где требовалась живая запись.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied — действие запрещено для пользователя.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidState — нарушение структурного инварианта (цикл в дереве,
	// превышение глубины, процент квоты вне [0,100]). Дефект, не рабочая ветка.
	ErrInvalidState = errors.New("invalid state")

	// ErrStorageBackend — сбой blob-хранилища; мутация дерева откатывается.
	ErrStorageBackend = errors.New("storage backend error")

	// ErrLoginTaken — логин уже занят при регистрации.
	ErrLoginTaken = errors.New("login already taken")

	// ErrQuotaExceeded — загрузка не помещается в квоту пользователя.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)
