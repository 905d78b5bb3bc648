// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях магазина.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки леджера (баланс, депозиты, покупки)
var (
	// ErrInvalidAmount — некорректная сумма (ноль, отрицательная или не число)
	ErrInvalidAmount = errors.New("amount must be a positive number")
	// ErrInsufficientBalance — недостаточно средств на балансе
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("user not found")
)

// Ошибки очереди депозитов и каталога
var (
	// ErrInvalidTxid — txid не проходит проверку формы (слабый спам-фильтр)
	ErrInvalidTxid = errors.New("invalid transaction id format")
	// ErrNotFound — заявка или позиция каталога больше не существует
	ErrNotFound = errors.New("entry not found")
	// ErrMalformedOffer — текст оффера не распознан
	ErrMalformedOffer = errors.New("offer label not recognized")
	// ErrOfferUnavailable — оффер есть в каталоге, но снят с продажи
	ErrOfferUnavailable = errors.New("offer is out of stock")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("you are not authorized to do that")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("wrong password")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("too many attempts, try again in an hour")
	// ErrSessionExpired — сессия истекла
	ErrSessionExpired = errors.New("session expired, log in again")
)
