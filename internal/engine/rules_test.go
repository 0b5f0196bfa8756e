package engine

import (
	"strings"
	"testing"

	"github.com/shaiso/Anketa/internal/domain"
)

func noSiblings(int) any { return nil }

func compileField(t *testing.T, field domain.FieldDefinition) CompiledValidator {
	t.Helper()
	return Compile(&field, nil)
}

func TestCompile_Required(t *testing.T) {
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Full Name",
		Rules: []domain.Rule{{Name: domain.RuleRequired}},
	})

	if msg := cv.Validate(nil, noSiblings); msg != "Full Name is required" {
		t.Errorf("nil value: got %q", msg)
	}
	if msg := cv.Validate("", noSiblings); msg != "Full Name is required" {
		t.Errorf("empty string: got %q", msg)
	}
	if msg := cv.Validate([]any{}, noSiblings); msg != "Full Name is required" {
		t.Errorf("empty array: got %q", msg)
	}
	if msg := cv.Validate("John", noSiblings); msg != "" {
		t.Errorf("non-empty value: got %q", msg)
	}
}

func TestCompile_LabelFallback(t *testing.T) {
	cv := compileField(t, domain.FieldDefinition{
		ID:    42,
		Rules: []domain.Rule{{Name: domain.RuleRequired}},
	})
	if msg := cv.Validate(nil, noSiblings); msg != "Field 42 is required" {
		t.Errorf("got %q", msg)
	}
}

func TestCompile_OptionalRulesSkipEmpty(t *testing.T) {
	// Поле не required: пустое значение проходит любые другие правила.
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Email",
		Rules: []domain.Rule{{Name: domain.RuleEmail}},
	})
	if msg := cv.Validate(nil, noSiblings); msg != "" {
		t.Errorf("empty optional value should pass, got %q", msg)
	}
	if msg := cv.Validate("not-an-email", noSiblings); msg == "" {
		t.Error("invalid email should fail")
	}
	if msg := cv.Validate("user@example.com", noSiblings); msg != "" {
		t.Errorf("valid email should pass, got %q", msg)
	}
}

func TestCompile_FailFastOrder(t *testing.T) {
	// Правила выполняются в порядке объявления, возвращается
	// сообщение первого нарушенного.
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Age",
		Rules: []domain.Rule{
			{Name: domain.RuleRequired},
			{Name: domain.RuleNumeric},
			{Name: domain.RuleBetween, Props: map[string]any{"min": float64(18), "max": float64(99)}},
		},
	})

	if msg := cv.Validate(nil, noSiblings); msg != "Age is required" {
		t.Errorf("first rule should win, got %q", msg)
	}
	if msg := cv.Validate("abc", noSiblings); msg != "Age must be a number" {
		t.Errorf("second rule should win, got %q", msg)
	}
	if msg := cv.Validate(float64(5), noSiblings); msg != "Age must be between 18 and 99" {
		t.Errorf("third rule should win, got %q", msg)
	}
	if msg := cv.Validate(float64(30), noSiblings); msg != "" {
		t.Errorf("valid value should pass, got %q", msg)
	}
}

func TestCompile_Between(t *testing.T) {
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Team Size",
		Rules: []domain.Rule{
			{Name: domain.RuleBetween, Props: map[string]any{"min": float64(15), "max": float64(25)}},
		},
	})

	if msg := cv.Validate(float64(10), noSiblings); msg != "Team Size must be between 15 and 25" {
		t.Errorf("below range: got %q", msg)
	}
	if msg := cv.Validate(float64(15), noSiblings); msg != "" {
		t.Errorf("lower boundary should pass, got %q", msg)
	}
	if msg := cv.Validate(float64(25), noSiblings); msg != "" {
		t.Errorf("upper boundary should pass, got %q", msg)
	}
	// Числовая строка приводится.
	if msg := cv.Validate("20", noSiblings); msg != "" {
		t.Errorf("numeric string should pass, got %q", msg)
	}
	// Для строки between мерит длину.
	if msg := cv.Validate(strings.Repeat("x", 20), noSiblings); msg != "" {
		t.Errorf("string of length 20 should pass, got %q", msg)
	}
}

func TestCompile_MinMax(t *testing.T) {
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Nickname",
		Rules: []domain.Rule{
			{Name: domain.RuleMin, Props: map[string]any{"value": float64(3)}},
			{Name: domain.RuleMax, Props: map[string]any{"value": float64(10)}},
		},
	})

	if msg := cv.Validate("ab", noSiblings); msg != "Nickname must be at least 3" {
		t.Errorf("short string: got %q", msg)
	}
	if msg := cv.Validate("abcdefghijk", noSiblings); msg != "Nickname may not be greater than 10" {
		t.Errorf("long string: got %q", msg)
	}
	if msg := cv.Validate("abcde", noSiblings); msg != "" {
		t.Errorf("ok string: got %q", msg)
	}
	// Для массива min/max мерят число элементов.
	if msg := cv.Validate([]any{"a"}, noSiblings); msg == "" {
		t.Error("one-element array should fail min 3")
	}
}

func TestCompile_FormatRules(t *testing.T) {
	tests := []struct {
		rule    string
		valid   any
		invalid any
	}{
		{domain.RuleURL, "https://example.com/path", "not a url"},
		{domain.RuleIP, "192.168.1.1", "999.999.1.1"},
		{domain.RuleJSON, `{"a":1}`, `{"a":`},
		{domain.RuleAlpha, "Привет", "abc123"},
		{domain.RuleAlphaNum, "abc123", "abc-123"},
		{domain.RuleAlphaDash, "abc-123_x", "abc 123"},
		{domain.RuleInteger, float64(5), float64(5.5)},
		{domain.RuleLatitude, float64(55.75), float64(91)},
		{domain.RuleLongitude, float64(37.62), float64(-181)},
	}

	for _, tc := range tests {
		t.Run(tc.rule, func(t *testing.T) {
			cv := compileField(t, domain.FieldDefinition{
				ID:    1,
				Label: "F",
				Rules: []domain.Rule{{Name: tc.rule}},
			})
			if msg := cv.Validate(tc.valid, noSiblings); msg != "" {
				t.Errorf("valid value %v rejected: %q", tc.valid, msg)
			}
			if msg := cv.Validate(tc.invalid, noSiblings); msg == "" {
				t.Errorf("invalid value %v accepted", tc.invalid)
			}
		})
	}
}

func TestCompile_Regex(t *testing.T) {
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Code",
		Rules: []domain.Rule{
			{Name: domain.RuleRegex, Props: map[string]any{"pattern": `^[A-Z]{3}-\d{2}$`}},
		},
	})
	if msg := cv.Validate("ABC-12", noSiblings); msg != "" {
		t.Errorf("matching value rejected: %q", msg)
	}
	if msg := cv.Validate("abc-12", noSiblings); msg == "" {
		t.Error("non-matching value accepted")
	}
}

func TestCompile_MalformedRegexDegrades(t *testing.T) {
	// Кривой паттерн: правило деградирует до "без ограничения",
	// остальные правила продолжают работать.
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Code",
		Rules: []domain.Rule{
			{Name: domain.RuleRegex, Props: map[string]any{"pattern": `([`}},
			{Name: domain.RuleMin, Props: map[string]any{"value": float64(3)}},
		},
	})

	if msg := cv.Validate("anything at all", noSiblings); msg != "" {
		t.Errorf("degraded regex should not constrain, got %q", msg)
	}
	if msg := cv.Validate("ab", noSiblings); msg == "" {
		t.Error("min rule should still apply after regex degrades")
	}
}

func TestCompile_MissingPropsDegrade(t *testing.T) {
	// between без min/max деградирует, а не падает.
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Age",
		Rules: []domain.Rule{
			{Name: domain.RuleBetween, Props: map[string]any{"min": "abc"}},
		},
	})
	if msg := cv.Validate(float64(999), noSiblings); msg != "" {
		t.Errorf("degraded between should not constrain, got %q", msg)
	}
}

func TestCompile_UnknownRuleIgnored(t *testing.T) {
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "F",
		Rules: []domain.Rule{
			{Name: "quantum_check"},
			{Name: domain.RuleRequired},
		},
	})
	if msg := cv.Validate(nil, noSiblings); msg != "F is required" {
		t.Errorf("known rules should survive unknown ones, got %q", msg)
	}
}

func TestCompile_DateFormat(t *testing.T) {
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Birth Date",
		Rules: []domain.Rule{
			{Name: domain.RuleDateFormat, Props: map[string]any{"format": "YYYY-MM-DD"}},
		},
	})
	if msg := cv.Validate("1990-05-17", noSiblings); msg != "" {
		t.Errorf("valid date rejected: %q", msg)
	}
	if msg := cv.Validate("17.05.1990", noSiblings); msg == "" {
		t.Error("wrong format accepted")
	}
}

func TestCompile_DateFormatUnsupportedTokensDegrade(t *testing.T) {
	// Шаблон с чужими токенами дал бы layout, который отвергает
	// любое значение; такое правило деградирует до "без ограничения".
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Birthday",
		Rules: []domain.Rule{
			{Name: domain.RuleDateFormat, Props: map[string]any{"format": "d/m/Y"}},
		},
	})
	if msg := cv.Validate("01/02/2024", noSiblings); msg != "" {
		t.Errorf("degraded date_format should not constrain, got %q", msg)
	}
	if msg := cv.Validate("anything at all", noSiblings); msg != "" {
		t.Errorf("degraded date_format should not constrain, got %q", msg)
	}
}

func TestCompile_DateFormatLiteralSeparators(t *testing.T) {
	// Литералы T/Z в ISO-подобных шаблонах не считаются чужими токенами.
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Timestamp",
		Rules: []domain.Rule{
			{Name: domain.RuleDateFormat, Props: map[string]any{"format": "YYYY-MM-DDTHH:mm:ss"}},
		},
	})
	if msg := cv.Validate("2024-02-01T10:30:00", noSiblings); msg != "" {
		t.Errorf("valid timestamp rejected: %q", msg)
	}
	if msg := cv.Validate("2024-02-01 10:30:00", noSiblings); msg == "" {
		t.Error("wrong separator accepted")
	}
}

func TestCompile_DateComparisons(t *testing.T) {
	field := func(rule string, props map[string]any) domain.FieldDefinition {
		return domain.FieldDefinition{
			ID:    1,
			Label: "Date",
			Rules: []domain.Rule{{Name: rule, Props: props}},
		}
	}

	before := compileField(t, field(domain.RuleBefore, map[string]any{"date": "2026-01-01"}))
	if msg := before.Validate("2025-12-31", noSiblings); msg != "" {
		t.Errorf("before: got %q", msg)
	}
	if msg := before.Validate("2026-01-01", noSiblings); msg == "" {
		t.Error("before: equal date should fail")
	}

	afterOrEqual := compileField(t, field(domain.RuleAfterOrEqual, map[string]any{"date": "2026-01-01"}))
	if msg := afterOrEqual.Validate("2026-01-01", noSiblings); msg != "" {
		t.Errorf("after_or_equal: got %q", msg)
	}
	if msg := afterOrEqual.Validate("2025-06-01", noSiblings); msg == "" {
		t.Error("after_or_equal: earlier date should fail")
	}
}

func TestCompile_InNotIn(t *testing.T) {
	in := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Color",
		Rules: []domain.Rule{
			{Name: domain.RuleIn, Props: map[string]any{"values": []any{"red", "green"}}},
		},
	})
	if msg := in.Validate("red", noSiblings); msg != "" {
		t.Errorf("member rejected: %q", msg)
	}
	if msg := in.Validate("blue", noSiblings); msg == "" {
		t.Error("non-member accepted")
	}

	// Строка с запятыми тоже валидный формат списка.
	notIn := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Login",
		Rules: []domain.Rule{
			{Name: domain.RuleNotIn, Props: map[string]any{"values": "admin, root"}},
		},
	})
	if msg := notIn.Validate("admin", noSiblings); msg == "" {
		t.Error("forbidden value accepted")
	}
	if msg := notIn.Validate("user1", noSiblings); msg != "" {
		t.Errorf("allowed value rejected: %q", msg)
	}
}

func TestCompile_Affixes(t *testing.T) {
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Phone",
		Rules: []domain.Rule{
			{Name: domain.RuleStartsWith, Props: map[string]any{"values": []any{"+7", "8"}}},
		},
	})
	if msg := cv.Validate("+79991234567", noSiblings); msg != "" {
		t.Errorf("good prefix rejected: %q", msg)
	}
	if msg := cv.Validate("+1555", noSiblings); msg == "" {
		t.Error("bad prefix accepted")
	}
}

func TestCompile_FileRules(t *testing.T) {
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Avatar",
		Rules: []domain.Rule{
			{Name: domain.RuleMaxFileSize, Props: map[string]any{"maxsize": float64(512)}},
			{Name: domain.RuleDimensions, Props: map[string]any{"minwidth": float64(100), "minheight": float64(100)}},
		},
	})

	ok := map[string]any{"size": float64(256), "width": float64(200), "height": float64(150)}
	if msg := cv.Validate(ok, noSiblings); msg != "" {
		t.Errorf("valid file rejected: %q", msg)
	}

	tooBig := map[string]any{"size": float64(1024)}
	if msg := cv.Validate(tooBig, noSiblings); msg != "Avatar may not be larger than 512 KB" {
		t.Errorf("oversized file: got %q", msg)
	}

	tooSmall := map[string]any{"width": float64(50), "height": float64(200)}
	if msg := cv.Validate(tooSmall, noSiblings); msg == "" {
		t.Error("undersized image accepted")
	}

	// Файл без метаданных ограничений не нарушает.
	if msg := cv.Validate(map[string]any{"name": "a.png"}, noSiblings); msg != "" {
		t.Errorf("file without metadata rejected: %q", msg)
	}
}

func TestCompile_CrossFieldRules(t *testing.T) {
	siblings := func(values map[int]any) Lookup {
		return func(id int) any { return values[id] }
	}

	same := compileField(t, domain.FieldDefinition{
		ID:    2,
		Label: "Email Confirmation",
		Rules: []domain.Rule{
			{Name: domain.RuleConfirmed, Props: map[string]any{"confirmationvalue": "field_1"}},
		},
	})

	if msg := same.Validate("a@b.c", siblings(map[int]any{1: "a@b.c"})); msg != "" {
		t.Errorf("matching values rejected: %q", msg)
	}
	if msg := same.Validate("a@b.c", siblings(map[int]any{1: "x@y.z"})); msg == "" {
		t.Error("mismatching values accepted")
	}
	// Пустой операнд с любой стороны — сравнение не выполняется.
	if msg := same.Validate("a@b.c", siblings(map[int]any{})); msg != "" {
		t.Errorf("empty other side should pass, got %q", msg)
	}

	different := compileField(t, domain.FieldDefinition{
		ID:    2,
		Label: "New Password",
		Rules: []domain.Rule{
			{Name: domain.RuleDifferent, Props: map[string]any{"comparevalue": float64(1)}},
		},
	})
	if msg := different.Validate("secret", siblings(map[int]any{1: "secret"})); msg == "" {
		t.Error("equal values accepted by different")
	}
	if msg := different.Validate("secret2", siblings(map[int]any{1: "secret"})); msg != "" {
		t.Errorf("different values rejected: %q", msg)
	}
}

func TestCompile_UniqueNeedsServerCheck(t *testing.T) {
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Username",
		Rules: []domain.Rule{
			{Name: domain.RuleRequired},
			{Name: domain.RuleUnique},
		},
	})

	if !cv.NeedsServerCheck {
		t.Error("unique rule should set NeedsServerCheck")
	}
	// Локально unique всегда проходит.
	if msg := cv.Validate("taken_name", noSiblings); msg != "" {
		t.Errorf("unique should pass locally, got %q", msg)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	cv := compileField(t, domain.FieldDefinition{
		ID:    1,
		Label: "Age",
		Rules: []domain.Rule{
			{Name: domain.RuleRequired},
			{Name: domain.RuleBetween, Props: map[string]any{"min": float64(18), "max": float64(99)}},
		},
	})

	first := cv.Validate(float64(5), noSiblings)
	second := cv.Validate(float64(5), noSiblings)
	if first != second {
		t.Errorf("validation is not idempotent: %q vs %q", first, second)
	}
}

func TestCrossFieldRefs(t *testing.T) {
	field := domain.FieldDefinition{
		ID: 3,
		Rules: []domain.Rule{
			{Name: domain.RuleConfirmed, Props: map[string]any{"confirmationvalue": "field_1"}},
			{Name: domain.RuleDifferent, Props: map[string]any{"comparevalue": float64(2)}},
			{Name: domain.RuleRequired},
		},
	}

	refs := CrossFieldRefs(&field)
	if len(refs) != 2 || refs[0] != 1 || refs[1] != 2 {
		t.Errorf("expected refs [1 2], got %v", refs)
	}
}
