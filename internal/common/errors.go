// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях движка баллов.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отдавать наружу понятные коды.
package common

import "errors"

// Ошибки баллов и реакций
var (
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
)

// Ошибки верификации заданий
var (
	// ErrCompletionNotFound — выполнение задания не найдено
	ErrCompletionNotFound = errors.New("выполнение задания не найдено")
	// ErrCompletionNotPending — выполнение уже рассмотрено, повторное решение запрещено
	ErrCompletionNotPending = errors.New("выполнение уже рассмотрено")
	// ErrEmptyRejectReason — отклонение требует причину
	ErrEmptyRejectReason = errors.New("не указана причина отклонения")
)

// Ошибки админки
var (
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
)
