package service

import "strings"

// NormalizeTarget добавляет схему http://, если у адреса нет ни http://, ни https://.
// Сохранённое значение не меняется: нормализация выполняется при каждом разрешении.
func NormalizeTarget(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	return "http://" + target
}
