// Package comparator сопоставляет ответы модели с оценками людей.
package comparator

import (
	"errors"
	"fmt"

	"survey-annotator/internal/annotator"
	"survey-annotator/internal/dataset"
)

// ErrJoinMismatch - аннотации нельзя сопоставить с записями по позиции
var ErrJoinMismatch = errors.New("annotations do not align with records")

// Оценщики
const (
	RaterWG = "WG"
	RaterRA = "RA"
)

// Row - запись сравнения, объединенная по позиции (TextID)
type Row struct {
	TextID     int           `json:"text_id"`
	ResponseID string        `json:"response_id"`
	Text       string        `json:"text"`
	Answer     string        `json:"answer"`
	WG         dataset.Label `json:"wg"`
	RA         dataset.Label `json:"ra"`
	MatchWG    bool          `json:"match_wg"`
	MatchRA    bool          `json:"match_ra"`
}

// Agreement - доля точных совпадений с одним оценщиком
type Agreement struct {
	Rater      string  `json:"rater"`
	Matches    int     `json:"matches"`
	Comparable int     `json:"comparable"`
	Percent    float64 `json:"percent"`
}

// Available сообщает, было ли с чем сравнивать
func (a Agreement) Available() bool {
	return a.Comparable > 0
}

// Compare объединяет аннотации с записями по синтетическому индексу строки.
// Аннотации должны идти в порядке записей: TextID == позиция.
func Compare(records []dataset.Response, annotations []annotator.Annotation) ([]Row, error) {
	if len(annotations) > len(records) {
		return nil, fmt.Errorf("%w: %d annotations for %d records", ErrJoinMismatch, len(annotations), len(records))
	}

	rows := make([]Row, 0, len(annotations))
	for i, a := range annotations {
		if a.TextID != i {
			return nil, fmt.Errorf("%w: annotation %d has text_id %d", ErrJoinMismatch, i, a.TextID)
		}
		record := records[a.TextID]
		rows = append(rows, Row{
			TextID:     a.TextID,
			ResponseID: record.ID,
			Text:       a.Text,
			Answer:     a.Answer,
			WG:         record.WG,
			RA:         record.RA,
			MatchWG:    matches(a.Answer, record.WG),
			MatchRA:    matches(a.Answer, record.RA),
		})
	}
	return rows, nil
}

// matches - точное строковое равенство, "1" не совпадает с "1,2"
func matches(answer string, label dataset.Label) bool {
	return label.Present && answer == label.Value
}

// ComputeAgreement считает процент совпадений с оценщиком.
// Записи без оценки исключаются из знаменателя.
// Для неизвестного оценщика согласие недоступно.
func ComputeAgreement(rows []Row, rater string) Agreement {
	result := Agreement{Rater: rater}
	for _, row := range rows {
		var label dataset.Label
		var matched bool
		switch rater {
		case RaterWG:
			label, matched = row.WG, row.MatchWG
		case RaterRA:
			label, matched = row.RA, row.MatchRA
		default:
			return result
		}
		if !label.Present || row.Answer == "" {
			continue
		}
		result.Comparable++
		if matched {
			result.Matches++
		}
	}
	if result.Comparable > 0 {
		result.Percent = float64(result.Matches) / float64(result.Comparable) * 100
	}
	return result
}
