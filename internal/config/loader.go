package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_scheme.yaml
var defaultScheme []byte

// Load загружает схему кодирования из YAML файла
func Load(filename string) (*Scheme, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", filename, err)
	}

	return Parse(data)
}

// LoadDefault возвращает встроенную схему кодирования
func LoadDefault() (*Scheme, error) {
	return Parse(defaultScheme)
}

// Parse разбирает и валидирует схему кодирования
func Parse(data []byte) (*Scheme, error) {
	var scheme Scheme
	err := yaml.Unmarshal(data, &scheme)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML: %w", err)
	}

	applyDefaults(&scheme)

	// Валидация конфигурации
	err = validateScheme(&scheme)
	if err != nil {
		return nil, fmt.Errorf("ошибка валидации схемы: %w", err)
	}

	return &scheme, nil
}

// applyDefaults заполняет пропущенные поля значениями по умолчанию
func applyDefaults(scheme *Scheme) {
	if len(scheme.AllowedAnswers) == 0 {
		scheme.AllowedAnswers = []string{"0", "1", "2", "1,2"}
	}

	if scheme.Input.Sheet == "" {
		scheme.Input.Sheet = "Sheet1"
	}

	if scheme.Input.SampleSize == 0 {
		scheme.Input.SampleSize = 5
	}

	cols := &scheme.Input.Columns
	if cols.ID == "" {
		cols.ID = "ResponseId"
	}
	if cols.FreeText == "" {
		cols.FreeText = "motivation_fr"
	}
	if cols.WG == "" {
		cols.WG = "WG"
	}
	if cols.RA == "" {
		cols.RA = "RA"
	}
}

// validateScheme проверяет корректность схемы
func validateScheme(scheme *Scheme) error {
	if scheme.Instructions == "" {
		return fmt.Errorf("instructions не может быть пустым")
	}

	if scheme.Input.SampleSize < 0 {
		return fmt.Errorf("sample_size должно быть больше 0")
	}

	seen := make(map[string]struct{}, len(scheme.AllowedAnswers))
	for _, answer := range scheme.AllowedAnswers {
		if answer == "" {
			return fmt.Errorf("allowed_answers не может содержать пустую строку")
		}
		if _, ok := seen[answer]; ok {
			return fmt.Errorf("ответ %q указан в allowed_answers дважды", answer)
		}
		seen[answer] = struct{}{}
	}

	// Коды категорий должны быть допустимыми ответами
	for i, category := range scheme.Categories {
		if category.Code == "" {
			return fmt.Errorf("категория %d должна иметь code", i+1)
		}
		if _, ok := seen[category.Code]; !ok {
			return fmt.Errorf("код категории %q отсутствует в allowed_answers", category.Code)
		}
	}

	return nil
}
