package dataset

// Response - одна строка анкеты с переименованными колонками
type Response struct {
	ID       string `json:"id"`
	FreeText string `json:"free_text"`
	WG       Label  `json:"wg"`
	RA       Label  `json:"ra"`
}

// Label - оценка человека, приведенная к строке.
// Present == false означает пустую ячейку.
type Label struct {
	Value   string `json:"value"`
	Present bool   `json:"present"`
}

// NewLabel создает заполненную оценку
func NewLabel(value string) Label {
	return Label{Value: value, Present: true}
}

// Columns - имена колонок в листе
type Columns struct {
	ID       string
	FreeText string
	WG       string
	RA       string
}

// DefaultColumns возвращает колонки исходной анкеты
func DefaultColumns() Columns {
	return Columns{
		ID:       "ResponseId",
		FreeText: "motivation_fr",
		WG:       "WG",
		RA:       "RA",
	}
}
