package engine

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Значения полей — это JSON-подобные данные после encoding/json:
// nil, bool, float64, string, []any, map[string]any. Все хелперы
// ниже разбирают значение осторожно и никогда не паникуют.

// toNumber приводит значение к числу.
// Числовые строки ("5", "3.14") приводятся, всё остальное — нет.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// toList приводит значение к срезу элементов.
// Работает и с []any, и с типизированными срезами ([]string и т.п.).
func toList(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// isEmptyValue возвращает true для nil, пустой строки и пустого массива.
func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	if items, ok := toList(v); ok {
		return len(items) == 0
	}
	return false
}

// looseEqual — нестрогое равенство с числовой коэрцией:
// 5 == "5" истинно. Массивы и объекты сравниваются по структуре.
// nil равен только nil.
func looseEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	aNum, aOk := toNumber(a)
	bNum, bOk := toNumber(b)
	if aOk && bOk {
		return aNum == bNum
	}

	_, aList := toList(a)
	_, bList := toList(b)
	_, aMap := a.(map[string]any)
	_, bMap := b.(map[string]any)
	if aList || bList || aMap || bMap {
		return reflect.DeepEqual(a, b)
	}

	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// strictEqual — структурное равенство без коэрции.
// Используется для сравнения значения с default-снимком.
func strictEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// dateLayouts — поддерживаемые форматы дат, от самого точного.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate разбирает дату из строки или time.Time.
func parseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// parseFieldRef разбирает ссылку на поле из параметров правила.
// Допустимые формы: число (9), числовая строка ("9"), "field_9".
func parseFieldRef(v any) (int, bool) {
	switch r := v.(type) {
	case int:
		return r, true
	case float64:
		if r == float64(int(r)) {
			return int(r), true
		}
		return 0, false
	case string:
		s := strings.TrimSpace(r)
		s = strings.TrimPrefix(s, "field_")
		id, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

// toStringList нормализует список значений правила:
// массив или строка с запятыми → срез строк.
func toStringList(v any) ([]string, bool) {
	if s, ok := v.(string); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, len(out) > 0
	}
	items, ok := toList(v)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, fmt.Sprintf("%v", it))
	}
	return out, len(out) > 0
}
