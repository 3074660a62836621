package config

// Scheme представляет схему кодирования ответов анкеты
type Scheme struct {
	Name           string      `yaml:"name"`
	Instructions   string      `yaml:"instructions"`
	Categories     []Category  `yaml:"categories"`
	AllowedAnswers []string    `yaml:"allowed_answers"`
	Input          InputConfig `yaml:"input"`
}

// Category описывает одну категорию схемы кодирования
type Category struct {
	Code        string `yaml:"code"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

// InputConfig содержит настройки чтения таблицы
type InputConfig struct {
	File       string  `yaml:"file"`
	Sheet      string  `yaml:"sheet"`
	SampleSize int     `yaml:"sample_size"`
	Columns    Columns `yaml:"columns"`
}

// Columns задает имена колонок в исходной таблице
type Columns struct {
	ID       string `yaml:"id"`
	FreeText string `yaml:"free_text"`
	WG       string `yaml:"wg"`
	RA       string `yaml:"ra"`
}

// Методы для удобного доступа к конфигурации
func (s *Scheme) GetSampleSize() int {
	return s.Input.SampleSize
}

func (s *Scheme) GetAllowedAnswers() []string {
	return s.AllowedAnswers
}
