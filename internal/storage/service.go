package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultResultsDir = "results"
	filePrefix        = "run_"
)

// Store сохраняет запуски в JSON файлы
type Store struct {
	dir string
}

// NewStore создает хранилище в каталоге dir
func NewStore(dir string) *Store {
	if dir == "" {
		dir = defaultResultsDir
	}
	return &Store{dir: dir}
}

// SaveRun сохраняет результат запуска; при пустом RunID генерирует новый
func (s *Store) SaveRun(result *RunResult) (string, error) {
	if result.RunID == "" {
		result.RunID = uuid.New().String()
	}

	// Создаем директорию если её нет
	err := os.MkdirAll(s.dir, 0755)
	if err != nil {
		return "", fmt.Errorf("ошибка создания директории %s: %w", s.dir, err)
	}

	path := s.pathFor(result.RunID)

	// Сериализуем результат в JSON с отступами
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации результата: %w", err)
	}

	err = os.WriteFile(path, jsonData, 0644)
	if err != nil {
		return "", fmt.Errorf("ошибка записи файла %s: %w", path, err)
	}

	return path, nil
}

// LoadRun загружает результат запуска из JSON файла
func (s *Store) LoadRun(runID string) (*RunResult, error) {
	path := s.pathFor(runID)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}

	var result RunResult
	err = json.Unmarshal(data, &result)
	if err != nil {
		return nil, fmt.Errorf("ошибка десериализации JSON: %w", err)
	}

	return &result, nil
}

// ListRuns возвращает отсортированный список сохраненных запусков
func (s *Store) ListRuns() ([]string, error) {
	// Проверяем существование директории
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", s.dir, err)
	}

	var runs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || !strings.HasPrefix(name, filePrefix) {
			continue
		}
		runs = append(runs, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), ".json"))
	}
	sort.Strings(runs)

	return runs, nil
}

func (s *Store) pathFor(runID string) string {
	return filepath.Join(s.dir, filePrefix+runID+".json")
}
