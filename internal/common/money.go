// Package common — money.go работает с денежными суммами.
// Все суммы храним в центах (int64), чтобы не ловить ошибки округления
// float64 на балансах. Парсинг принимает максимум два знака после точки.
package common

import (
	"fmt"
	"strconv"
	"strings"
)

// Cents — денежная сумма в центах USD.
// Кредиты положительные, дебеты отрицательные (знак задаёт леджер).
type Cents int64

// ParseAmount разбирает пользовательский ввод вида "25.50", "$25.5", "100"
// в центы. Возвращает ErrInvalidAmount для нечисловых, неположительных
// и слишком точных (больше двух знаков) сумм.
func ParseAmount(text string) (Cents, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0, ErrInvalidAmount
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	// Только цифры: ParseInt сам по себе пропускает знак, и "1.-5"
	// превратилось бы в 95 центов вместо ошибки.
	if !digitsOnly(whole) {
		return 0, ErrInvalidAmount
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	var cents int64
	if hasFrac {
		if len(frac) > 2 || !digitsOnly(frac) {
			return 0, ErrInvalidAmount
		}
		// "5" → 50 центов, "05" → 5 центов
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
	}

	total := units*100 + cents
	if total <= 0 {
		return 0, ErrInvalidAmount
	}
	return Cents(total), nil
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatMoney форматирует центы в строку вида "$25.50".
// Отрицательные суммы получают знак перед долларом: "-$25.50".
func FormatMoney(amount Cents) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s$%d.%02d", sign, amount/100, amount%100)
}

// FormatSignedMoney форматирует сумму со знаком для истории транзакций.
// Пример: +$25.50 для кредита, -$10.00 для дебета.
func FormatSignedMoney(amount Cents) string {
	if amount >= 0 {
		return "+" + FormatMoney(amount)
	}
	return FormatMoney(amount)
}
