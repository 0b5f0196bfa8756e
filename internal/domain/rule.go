package domain

// Rule — декларативное правило валидации поля.
//
// Name выбирает семейство правила, Props — нетипизированный мешок
// параметров, специфичный для правила (границы, паттерны, списки
// значений, ссылки на другие поля). Разбор Props всегда может не
// удаться — движок деградирует такое правило до "без ограничения",
// но никогда не падает.
type Rule struct {
	// Name — имя правила: "required", "between", "same" и т.д.
	// Неизвестные имена игнорируются движком.
	Name string `json:"rule_name"`

	// Props — параметры правила.
	Props map[string]any `json:"rule_props,omitempty"`
}

// Имена правил, известных движку.
const (
	RuleRequired = "required"

	RuleEmail      = "email"
	RuleURL        = "url"
	RuleIP         = "ip"
	RuleJSON       = "json"
	RuleAlpha      = "alpha"
	RuleAlphaNum   = "alpha_num"
	RuleAlphaDash  = "alpha_dash"
	RuleNumeric    = "numeric"
	RuleInteger    = "integer"
	RuleRegex      = "regex"
	RuleDateFormat = "date_format"

	RuleMin         = "min"
	RuleMax         = "max"
	RuleBetween     = "between"
	RuleSize        = "size"
	RuleMinFileSize = "min_file_size"
	RuleMaxFileSize = "max_file_size"
	RuleDimensions  = "dimensions"

	RuleIn    = "in"
	RuleNotIn = "not_in"

	RuleStartsWith = "starts_with"
	RuleEndsWith   = "ends_with"

	RuleBefore        = "before"
	RuleAfter         = "after"
	RuleBeforeOrEqual = "before_or_equal"
	RuleAfterOrEqual  = "after_or_equal"

	RuleSame      = "same"
	RuleDifferent = "different"
	RuleConfirmed = "confirmed"

	// RuleUnique проверяется только на сервере: локально всегда
	// проходит, но помечается оркестратору как "требует серверного
	// подтверждения".
	RuleUnique = "unique"

	RuleLatitude  = "latitude"
	RuleLongitude = "longitude"
)
