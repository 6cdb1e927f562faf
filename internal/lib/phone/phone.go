// Package phone проверяет руандийские мобильные номера и определяет
// оператора по префиксу. Проверка чисто синтаксическая, без обращения
// к внешним справочникам.
package phone

import (
	"regexp"
	"strings"

	"github.com/mwalimuclement/theory-access/internal/models"
)

// Номер: необязательный код страны (+250/250) или ведущий ноль,
// затем девять цифр, первая из 7-9.
var rwandaPhone = regexp.MustCompile(`^(\+?250|0)?[7-9]\d{8}$`)

// Validate сообщает, похожа ли строка на руандийский мобильный номер.
// Пробелы внутри номера игнорируются. Невалидный ввод даёт false,
// ошибок функция не возвращает.
func Validate(phone string) bool {
	return rwandaPhone.MatchString(strip(phone))
}

// Normalize приводит номер к девятизначной национальной форме без
// кода страны и ведущего нуля. Для невалидного номера возвращает
// пустую строку.
func Normalize(phone string) string {
	p := strip(phone)
	if !rwandaPhone.MatchString(p) {
		return ""
	}
	p = strings.TrimPrefix(p, "+")
	p = strings.TrimPrefix(p, "250")
	p = strings.TrimPrefix(p, "0")
	return p
}

// Carrier определяет оператора по первым двум цифрам национального
// номера: 78/79 MTN, 72/73 Airtel. Для остальных префиксов возвращает
// пустой метод и false.
func Carrier(phone string) (models.PaymentMethod, bool) {
	p := Normalize(phone)
	if p == "" {
		return "", false
	}
	switch p[:2] {
	case "78", "79":
		return models.MethodMTN, true
	case "72", "73":
		return models.MethodAirtel, true
	}
	return "", false
}

func strip(phone string) string {
	return strings.ReplaceAll(phone, " ", "")
}
