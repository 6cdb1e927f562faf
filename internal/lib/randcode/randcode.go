// Package randcode генерирует коды доступа и идентификаторы транзакций.
// Источник случайности криптографический, коллизии на объёмах платформы
// считаются пренебрежимыми и отдельно не проверяются.
package randcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// CodeLength длина кода доступа.
	CodeLength = 8
)

// AccessCode возвращает новый код доступа: CodeLength символов,
// заглавные буквы и цифры.
func AccessCode() (string, error) {
	const op = "randcode.AccessCode"
	var b strings.Builder
	max := big.NewInt(int64(len(codeAlphabet)))
	for range CodeLength {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// TransactionID возвращает идентификатор транзакции вида
// TXN_<время в base36><4 случайных символа>. Составной формат исключает
// коллизии между одновременными платежами.
func TransactionID() (string, error) {
	const op = "randcode.TransactionID"
	var suffix strings.Builder
	max := big.NewInt(int64(len(codeAlphabet)))
	for range 4 {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		suffix.WriteByte(codeAlphabet[n.Int64()])
	}
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	return "TXN_" + ts + suffix.String(), nil
}
