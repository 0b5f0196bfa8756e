package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shaiso/Anketa/internal/domain"
)

// Validator — скомпилированное правило валидации.
// Возвращает текст ошибки или пустую строку, если значение проходит.
// siblings даёт доступ к текущим значениям других полей
// (для межполевых правил same/different/confirmed).
type Validator func(value any, siblings Lookup) string

// factory создаёт Validator из параметров правила.
// Ошибка означает неразборчивые параметры: правило деградирует
// до "без ограничения" и логируется, но никогда не фатально.
type factory func(label string, props map[string]any) (Validator, error)

// ruleFactories — реестр правил: имя → фабрика валидатора.
// Закрытый набор; неизвестные имена попадают в явную ветку
// "игнорировать" в Compile, а не в ошибку времени выполнения.
var ruleFactories = map[string]factory{
	domain.RuleRequired: newRequired,

	domain.RuleEmail:      newEmail,
	domain.RuleURL:        newURL,
	domain.RuleIP:         newIP,
	domain.RuleJSON:       newJSON,
	domain.RuleAlpha:      newPattern(reAlpha, "%s may only contain letters"),
	domain.RuleAlphaNum:   newPattern(reAlphaNum, "%s may only contain letters and numbers"),
	domain.RuleAlphaDash:  newPattern(reAlphaDash, "%s may only contain letters, numbers, dashes and underscores"),
	domain.RuleNumeric:    newNumeric,
	domain.RuleInteger:    newInteger,
	domain.RuleRegex:      newRegex,
	domain.RuleDateFormat: newDateFormat,

	domain.RuleMin:         newMin,
	domain.RuleMax:         newMax,
	domain.RuleBetween:     newBetween,
	domain.RuleSize:        newFileSize,
	domain.RuleMinFileSize: newMinFileSize,
	domain.RuleMaxFileSize: newMaxFileSize,
	domain.RuleDimensions:  newDimensions,

	domain.RuleIn:    newIn,
	domain.RuleNotIn: newNotIn,

	domain.RuleStartsWith: newStartsWith,
	domain.RuleEndsWith:   newEndsWith,

	domain.RuleBefore:        newDateCompare("date", "%s must be a date before %s", func(v, b time.Time) bool { return v.Before(b) }),
	domain.RuleAfter:         newDateCompare("date", "%s must be a date after %s", func(v, b time.Time) bool { return v.After(b) }),
	domain.RuleBeforeOrEqual: newDateCompare("date", "%s must be a date before or equal to %s", func(v, b time.Time) bool { return !v.After(b) }),
	domain.RuleAfterOrEqual:  newDateCompare("date", "%s must be a date after or equal to %s", func(v, b time.Time) bool { return !v.Before(b) }),

	domain.RuleSame:      newCompareField("comparevalue", true),
	domain.RuleDifferent: newCompareField("comparevalue", false),
	domain.RuleConfirmed: newCompareField("confirmationvalue", true),

	domain.RuleLatitude:  newRange(-90, 90, "%s must be a valid latitude"),
	domain.RuleLongitude: newRange(-180, 180, "%s must be a valid longitude"),
}

// CompiledValidator — валидатор поля, собранный из его правил.
type CompiledValidator struct {
	validators []Validator

	// NeedsServerCheck — среди правил есть unique: локально поле
	// считается валидным, но оркестратор должен запросить
	// подтверждение у сервера.
	NeedsServerCheck bool
}

// Compile компилирует правила поля в один валидатор.
//
// Правила выполняются в порядке объявления, fail-fast: возвращается
// сообщение первого нарушенного правила. Неизвестные имена правил
// игнорируются; правила с неразборчивыми параметрами деградируют
// до "без ограничения" с записью в лог.
func Compile(field *domain.FieldDefinition, logger *slog.Logger) CompiledValidator {
	if logger == nil {
		logger = slog.Default()
	}

	label := field.Label
	if label == "" {
		label = fmt.Sprintf("Field %d", field.ID)
	}

	var cv CompiledValidator
	for _, rule := range field.Rules {
		// unique проверяется только на сервере.
		if rule.Name == domain.RuleUnique {
			cv.NeedsServerCheck = true
			continue
		}

		f, ok := ruleFactories[rule.Name]
		if !ok {
			logger.Debug("ignoring unknown rule",
				"field_id", field.ID,
				"rule", rule.Name,
			)
			continue
		}

		v, err := f(label, rule.Props)
		if err != nil {
			logger.Warn("rule degraded to no-op",
				"field_id", field.ID,
				"rule", rule.Name,
				"error", err,
			)
			continue
		}
		cv.validators = append(cv.validators, v)
	}
	return cv
}

// Validate прогоняет значение через правила по порядку.
// Возвращает сообщение первого нарушенного правила или пустую строку.
func (cv *CompiledValidator) Validate(value any, siblings Lookup) string {
	for _, v := range cv.validators {
		if msg := v(value, siblings); msg != "" {
			return msg
		}
	}
	return ""
}

// skipEmpty оборачивает валидатор: пустое значение не проверяется.
// Обязательность выражается отдельным правилом required.
func skipEmpty(v Validator) Validator {
	return func(value any, siblings Lookup) string {
		if isEmptyValue(value) {
			return ""
		}
		return v(value, siblings)
	}
}

// --- Наличие ---

func newRequired(label string, _ map[string]any) (Validator, error) {
	msg := label + " is required"
	return func(value any, _ Lookup) string {
		if isEmptyValue(value) {
			return msg
		}
		return ""
	}, nil
}

// --- Формат ---

var (
	reAlpha     = regexp.MustCompile(`^[\p{L}]+$`)
	reAlphaNum  = regexp.MustCompile(`^[\p{L}\p{N}]+$`)
	reAlphaDash = regexp.MustCompile(`^[\p{L}\p{N}_-]+$`)
)

func newEmail(label string, _ map[string]any) (Validator, error) {
	msg := label + " must be a valid email address"
	return skipEmpty(func(value any, _ Lookup) string {
		s, ok := value.(string)
		if !ok {
			return msg
		}
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s {
			return msg
		}
		return ""
	}), nil
}

func newURL(label string, _ map[string]any) (Validator, error) {
	msg := label + " must be a valid URL"
	return skipEmpty(func(value any, _ Lookup) string {
		s, ok := value.(string)
		if !ok {
			return msg
		}
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return msg
		}
		return ""
	}), nil
}

func newIP(label string, _ map[string]any) (Validator, error) {
	msg := label + " must be a valid IP address"
	return skipEmpty(func(value any, _ Lookup) string {
		s, ok := value.(string)
		if !ok || net.ParseIP(s) == nil {
			return msg
		}
		return ""
	}), nil
}

func newJSON(label string, _ map[string]any) (Validator, error) {
	msg := label + " must be valid JSON"
	return skipEmpty(func(value any, _ Lookup) string {
		s, ok := value.(string)
		if !ok || !json.Valid([]byte(s)) {
			return msg
		}
		return ""
	}), nil
}

func newPattern(re *regexp.Regexp, format string) factory {
	return func(label string, _ map[string]any) (Validator, error) {
		msg := fmt.Sprintf(format, label)
		return skipEmpty(func(value any, _ Lookup) string {
			s, ok := value.(string)
			if !ok || !re.MatchString(s) {
				return msg
			}
			return ""
		}), nil
	}
}

func newNumeric(label string, _ map[string]any) (Validator, error) {
	msg := label + " must be a number"
	return skipEmpty(func(value any, _ Lookup) string {
		if _, ok := toNumber(value); !ok {
			return msg
		}
		return ""
	}), nil
}

func newInteger(label string, _ map[string]any) (Validator, error) {
	msg := label + " must be an integer"
	return skipEmpty(func(value any, _ Lookup) string {
		n, ok := toNumber(value)
		if !ok || n != float64(int64(n)) {
			return msg
		}
		return ""
	}), nil
}

func newRegex(label string, props map[string]any) (Validator, error) {
	pattern, ok := propString(props, "pattern")
	if !ok {
		return nil, fmt.Errorf("%w: regex requires a pattern", ErrBadRuleProps)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: compile pattern: %v", ErrBadRuleProps, err)
	}
	msg := label + " has an invalid format"
	return skipEmpty(func(value any, _ Lookup) string {
		s, ok := value.(string)
		if !ok || !re.MatchString(s) {
			return msg
		}
		return ""
	}), nil
}

// dateTokens переводит шаблон вида "YYYY-MM-DD HH:mm:ss" в Go layout.
var dateTokens = strings.NewReplacer(
	"YYYY", "2006",
	"DD", "02",
	"HH", "15",
	"MM", "01",
	"mm", "04",
	"ss", "05",
)

func newDateFormat(label string, props map[string]any) (Validator, error) {
	format, ok := propString(props, "format")
	if !ok {
		return nil, fmt.Errorf("%w: date_format requires a format", ErrBadRuleProps)
	}
	layout := dateTokens.Replace(format)
	// Известные токены переводятся в числовые layout-элементы, поэтому
	// буква в остатке (кроме литералов T/Z) — неподдерживаемый токен.
	// Такой layout отвергал бы любое значение; правило деградирует.
	for _, r := range layout {
		if r == 'T' || r == 'Z' {
			continue
		}
		if unicode.IsLetter(r) {
			return nil, fmt.Errorf("%w: date_format has unsupported token in %q", ErrBadRuleProps, format)
		}
	}
	msg := fmt.Sprintf("%s must match the format %s", label, format)
	return skipEmpty(func(value any, _ Lookup) string {
		s, ok := value.(string)
		if !ok {
			return msg
		}
		if _, err := time.Parse(layout, s); err != nil {
			return msg
		}
		return ""
	}), nil
}

// --- Диапазоны ---

// measure возвращает "размер" значения: число — само значение,
// строка — длина в рунах, массив — число элементов.
func measure(value any) (float64, bool) {
	if n, ok := toNumber(value); ok {
		return n, true
	}
	if s, ok := value.(string); ok {
		return float64(len([]rune(s))), true
	}
	if items, ok := toList(value); ok {
		return float64(len(items)), true
	}
	return 0, false
}

func newMin(label string, props map[string]any) (Validator, error) {
	min, ok := propNumber(props, "value")
	if !ok {
		return nil, fmt.Errorf("%w: min requires a numeric value", ErrBadRuleProps)
	}
	msg := fmt.Sprintf("%s must be at least %v", label, min)
	return skipEmpty(func(value any, _ Lookup) string {
		n, ok := measure(value)
		if !ok || n < min {
			return msg
		}
		return ""
	}), nil
}

func newMax(label string, props map[string]any) (Validator, error) {
	max, ok := propNumber(props, "value")
	if !ok {
		return nil, fmt.Errorf("%w: max requires a numeric value", ErrBadRuleProps)
	}
	msg := fmt.Sprintf("%s may not be greater than %v", label, max)
	return skipEmpty(func(value any, _ Lookup) string {
		n, ok := measure(value)
		if !ok || n > max {
			return msg
		}
		return ""
	}), nil
}

func newBetween(label string, props map[string]any) (Validator, error) {
	min, okMin := propNumber(props, "min")
	max, okMax := propNumber(props, "max")
	if !okMin || !okMax {
		return nil, fmt.Errorf("%w: between requires numeric min and max", ErrBadRuleProps)
	}
	msg := fmt.Sprintf("%s must be between %v and %v", label, min, max)
	return skipEmpty(func(value any, _ Lookup) string {
		n, ok := measure(value)
		if !ok || n < min || n > max {
			return msg
		}
		return ""
	}), nil
}

func newRange(lo, hi float64, format string) factory {
	return func(label string, _ map[string]any) (Validator, error) {
		msg := fmt.Sprintf(format, label)
		return skipEmpty(func(value any, _ Lookup) string {
			n, ok := toNumber(value)
			if !ok || n < lo || n > hi {
				return msg
			}
			return ""
		}), nil
	}
}

// --- Файлы ---
//
// Файл для движка — непрозрачный объект. Правила читают необязательные
// ключи size (КБ), width и height; не-объект и отсутствующий ключ
// ограничений не накладывают.

// fileProp читает числовой ключ из файлового значения.
func fileProp(value any, key string) (float64, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return 0, false
	}
	return toNumber(m[key])
}

func newFileSize(label string, props map[string]any) (Validator, error) {
	size, ok := propNumber(props, "size")
	if !ok {
		return nil, fmt.Errorf("%w: size requires a numeric size", ErrBadRuleProps)
	}
	msg := fmt.Sprintf("%s must be exactly %v KB", label, size)
	return skipEmpty(func(value any, _ Lookup) string {
		actual, ok := fileProp(value, "size")
		if !ok {
			return ""
		}
		if actual != size {
			return msg
		}
		return ""
	}), nil
}

func newMinFileSize(label string, props map[string]any) (Validator, error) {
	min, ok := propNumber(props, "minsize")
	if !ok {
		return nil, fmt.Errorf("%w: min_file_size requires a numeric minsize", ErrBadRuleProps)
	}
	msg := fmt.Sprintf("%s must be at least %v KB", label, min)
	return skipEmpty(func(value any, _ Lookup) string {
		actual, ok := fileProp(value, "size")
		if ok && actual < min {
			return msg
		}
		return ""
	}), nil
}

func newMaxFileSize(label string, props map[string]any) (Validator, error) {
	max, ok := propNumber(props, "maxsize")
	if !ok {
		return nil, fmt.Errorf("%w: max_file_size requires a numeric maxsize", ErrBadRuleProps)
	}
	msg := fmt.Sprintf("%s may not be larger than %v KB", label, max)
	return skipEmpty(func(value any, _ Lookup) string {
		actual, ok := fileProp(value, "size")
		if ok && actual > max {
			return msg
		}
		return ""
	}), nil
}

func newDimensions(label string, props map[string]any) (Validator, error) {
	// Все ограничения необязательны: применяются только заданные.
	type bound struct {
		key  string
		prop string
		test func(actual, limit float64) bool
	}
	bounds := []bound{
		{"width", "width", func(a, l float64) bool { return a == l }},
		{"height", "height", func(a, l float64) bool { return a == l }},
		{"width", "minwidth", func(a, l float64) bool { return a >= l }},
		{"width", "maxwidth", func(a, l float64) bool { return a <= l }},
		{"height", "minheight", func(a, l float64) bool { return a >= l }},
		{"height", "maxheight", func(a, l float64) bool { return a <= l }},
	}

	var active []bound
	limits := make(map[string]float64)
	for _, b := range bounds {
		if limit, ok := propNumber(props, b.prop); ok {
			active = append(active, b)
			limits[b.prop] = limit
		}
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("%w: dimensions requires at least one constraint", ErrBadRuleProps)
	}

	msg := label + " has invalid image dimensions"
	return skipEmpty(func(value any, _ Lookup) string {
		for _, b := range active {
			actual, ok := fileProp(value, b.key)
			if !ok {
				continue
			}
			if !b.test(actual, limits[b.prop]) {
				return msg
			}
		}
		return ""
	}), nil
}

// --- Членство ---

func newIn(label string, props map[string]any) (Validator, error) {
	values, ok := toStringList(props["values"])
	if !ok {
		return nil, fmt.Errorf("%w: in requires a list of values", ErrBadRuleProps)
	}
	msg := label + " has an invalid value"
	return skipEmpty(func(value any, _ Lookup) string {
		s := fmt.Sprintf("%v", value)
		for _, v := range values {
			if v == s {
				return ""
			}
		}
		return msg
	}), nil
}

func newNotIn(label string, props map[string]any) (Validator, error) {
	values, ok := toStringList(props["values"])
	if !ok {
		return nil, fmt.Errorf("%w: not_in requires a list of values", ErrBadRuleProps)
	}
	msg := label + " has a forbidden value"
	return skipEmpty(func(value any, _ Lookup) string {
		s := fmt.Sprintf("%v", value)
		for _, v := range values {
			if v == s {
				return msg
			}
		}
		return ""
	}), nil
}

// --- Аффиксы ---

func newStartsWith(label string, props map[string]any) (Validator, error) {
	values, ok := toStringList(props["values"])
	if !ok {
		return nil, fmt.Errorf("%w: starts_with requires a list of values", ErrBadRuleProps)
	}
	msg := fmt.Sprintf("%s must start with one of: %s", label, strings.Join(values, ", "))
	return skipEmpty(func(value any, _ Lookup) string {
		s, isStr := value.(string)
		if isStr {
			for _, prefix := range values {
				if strings.HasPrefix(s, prefix) {
					return ""
				}
			}
		}
		return msg
	}), nil
}

func newEndsWith(label string, props map[string]any) (Validator, error) {
	values, ok := toStringList(props["values"])
	if !ok {
		return nil, fmt.Errorf("%w: ends_with requires a list of values", ErrBadRuleProps)
	}
	msg := fmt.Sprintf("%s must end with one of: %s", label, strings.Join(values, ", "))
	return skipEmpty(func(value any, _ Lookup) string {
		s, isStr := value.(string)
		if isStr {
			for _, suffix := range values {
				if strings.HasSuffix(s, suffix) {
					return ""
				}
			}
		}
		return msg
	}), nil
}

// --- Даты ---

func newDateCompare(propKey, format string, test func(v, bound time.Time) bool) factory {
	return func(label string, props map[string]any) (Validator, error) {
		raw, ok := propString(props, propKey)
		if !ok {
			return nil, fmt.Errorf("%w: rule requires a %s", ErrBadRuleProps, propKey)
		}
		bound, ok := parseDate(raw)
		if !ok {
			return nil, fmt.Errorf("%w: unparseable date %q", ErrBadRuleProps, raw)
		}
		msg := fmt.Sprintf(format, label, raw)
		return skipEmpty(func(value any, _ Lookup) string {
			v, ok := parseDate(value)
			if !ok || !test(v, bound) {
				return msg
			}
			return ""
		}), nil
	}
}

// --- Межполевые ---

// newCompareField строит правило сравнения с другим полем.
// wantEqual=true — same/confirmed (ошибка при различии),
// wantEqual=false — different (ошибка при совпадении).
// Сравнение происходит только когда оба значения непусты.
func newCompareField(propKey string, wantEqual bool) factory {
	return func(label string, props map[string]any) (Validator, error) {
		otherID, ok := parseFieldRef(props[propKey])
		if !ok {
			return nil, fmt.Errorf("%w: unresolvable field reference in %s", ErrBadRuleProps, propKey)
		}

		var msg string
		if wantEqual {
			msg = label + " does not match the compared field"
		} else {
			msg = label + " must differ from the compared field"
		}

		return func(value any, siblings Lookup) string {
			other := siblings(otherID)
			if isEmptyValue(value) || isEmptyValue(other) {
				return ""
			}
			if looseEqual(value, other) != wantEqual {
				return msg
			}
			return ""
		}, nil
	}
}

// --- Разбор props ---

func propNumber(props map[string]any, key string) (float64, bool) {
	if props == nil {
		return 0, false
	}
	return toNumber(props[key])
}

func propString(props map[string]any, key string) (string, bool) {
	if props == nil {
		return "", false
	}
	s, ok := props[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// CrossFieldRefs возвращает идентификаторы полей, на которые
// ссылаются межполевые правила поля. Используется при построении
// графа зависимостей.
func CrossFieldRefs(field *domain.FieldDefinition) []int {
	var refs []int
	for _, rule := range field.Rules {
		var key string
		switch rule.Name {
		case domain.RuleSame, domain.RuleDifferent:
			key = "comparevalue"
		case domain.RuleConfirmed:
			key = "confirmationvalue"
		default:
			continue
		}
		if id, ok := parseFieldRef(rule.Props[key]); ok {
			refs = append(refs, id)
		}
	}
	return refs
}
