package domain

// AccessRule — правило доступа к этапу.
//
// Движок не интерпретирует правило, а прокидывает его как есть:
// проверка доступа — забота внешнего слоя аутентификации.
type AccessRule string

const (
	// AccessPublic — этап доступен анонимно.
	AccessPublic AccessRule = "public"

	// AccessAuthenticated — этап требует аутентификации.
	AccessAuthenticated AccessRule = "authenticated"
)

// Stage — один экран/шаг многошаговой формы.
type Stage struct {
	// ID — уникальный идентификатор этапа в рамках структуры.
	ID int `json:"stage_id"`

	// Name — человекочитаемое имя этапа.
	Name string `json:"name,omitempty"`

	// Sections — упорядоченные секции с полями.
	Sections []Section `json:"sections"`

	// Visibility — условие видимости этапа.
	// Nil означает "всегда видим".
	Visibility *Condition `json:"visibility_condition,omitempty"`

	// Access — правило доступа (прокидывается без интерпретации).
	Access AccessRule `json:"access_rule,omitempty"`

	// IsInitial — флаг начального этапа.
	// Ровно один этап структуры должен быть начальным.
	IsInitial bool `json:"is_initial,omitempty"`
}

// Fields возвращает все поля этапа в порядке объявления.
func (s *Stage) Fields() []FieldDefinition {
	var fields []FieldDefinition
	for i := range s.Sections {
		fields = append(fields, s.Sections[i].Fields...)
	}
	return fields
}

// Section — группа полей внутри этапа.
type Section struct {
	// ID — идентификатор секции.
	ID int `json:"section_id"`

	// Name — заголовок секции.
	Name string `json:"name,omitempty"`

	// Fields — поля секции.
	Fields []FieldDefinition `json:"fields"`
}

// Transition — условное ребро из этапа в следующий этап
// (или в завершение заявки).
type Transition struct {
	// ID — уникальный идентификатор перехода.
	ID int `json:"transition_id"`

	// FromStageID — этап, из которого ведёт переход.
	FromStageID int `json:"from_stage_id"`

	// Condition — условие применимости перехода.
	// Nil означает "всегда применим".
	Condition *Condition `json:"condition,omitempty"`

	// ToStageID — следующий этап. Игнорируется, если ToComplete=true.
	ToStageID int `json:"to_stage_id,omitempty"`

	// ToComplete — переход завершает заявку.
	ToComplete bool `json:"to_complete,omitempty"`

	// Actions — непрозрачные теги действий.
	// Движок их не вычисляет, а передаёт дальше как есть.
	Actions []string `json:"actions,omitempty"`
}
