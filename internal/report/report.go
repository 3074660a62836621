// Package report форматирует результаты запуска для консоли.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"survey-annotator/internal/comparator"
	"survey-annotator/internal/dataset"
	"survey-annotator/internal/metrics"
)

const maxTextWidth = 48

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	matchStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("42"))
	missStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("203"))
)

// Таблица сравнения: колонки с отметками совпадений
const (
	colMatchWG = 5
	colMatchRA = 6
)

// Table рисует таблицу сравнения ответов модели и оценщиков
func Table(rows []comparator.Row) string {
	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		data = append(data, []string{
			strconv.Itoa(row.TextID),
			row.ResponseID,
			Truncate(row.Text, maxTextWidth),
			row.Answer,
			labelCell(row.WG) + " / " + labelCell(row.RA),
			mark(row.WG, row.MatchWG),
			mark(row.RA, row.MatchRA),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "ResponseId", "Текст", "Модель", "WG / RA", "=WG", "=RA").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == colMatchWG || col == colMatchRA {
				if row >= 0 && row < len(data) && data[row][col] == "✗" {
					return missStyle
				}
				return matchStyle
			}
			return cellStyle
		})

	return t.String()
}

// Title оформляет заголовок раздела
func Title(s string) string {
	return titleStyle.Render(s)
}

// AgreementLine - одна строка итогового отчета
func AgreementLine(a comparator.Agreement) string {
	if !a.Available() {
		return fmt.Sprintf("Согласие с %s: н/д (нет оценок)", a.Rater)
	}
	return fmt.Sprintf("Согласие с %s: %.1f%%", a.Rater, a.Percent)
}

// Summary - итоговый отчет из двух строк (WG, затем RA)
func Summary(wg, ra comparator.Agreement) string {
	return AgreementLine(wg) + "\n" + AgreementLine(ra)
}

// Metrics - краткая статистика вызовов API
func Metrics(s metrics.Snapshot) string {
	return fmt.Sprintf("Записей: %d • Вызовов API: %d (успешных %d) • Отклонено схемой: %d • Время: %s",
		s.RecordsLoaded, s.APICallsTotal, s.APICallsSuccessful, s.ValidationFailures, s.Elapsed.Round(time.Millisecond))
}

// Truncate обрезает текст до n символов и убирает переводы строк
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

func labelCell(l dataset.Label) string {
	if !l.Present {
		return "—"
	}
	return l.Value
}

func mark(label dataset.Label, matched bool) string {
	switch {
	case !label.Present:
		return "—"
	case matched:
		return "✓"
	default:
		return "✗"
	}
}
