// Package common содержит общие утилиты, используемые во всём проекте.
// helpers.go — форматирование времени и валидация txid.
package common

import (
	"regexp"
	"time"
)

// txidPattern — слабый спам-фильтр формы txid: алфавит блокчейн-хешей
// и base64-подобных идентификаторов, длина от 20 символов.
// Это НЕ проверка существования транзакции — её делает админ руками.
var txidPattern = regexp.MustCompile(`^[A-Za-z0-9\-_=+/]{20,}$`)

// ValidTxidShape проверяет, похожа ли строка на идентификатор транзакции.
func ValidTxidShape(txid string) bool {
	return txidPattern.MatchString(txid)
}

// FormatDateTime форматирует время в формат "2006-01-02 15:04" (UTC).
// Используется для отображения дат транзакций и заявок.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}
