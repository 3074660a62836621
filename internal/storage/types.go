package storage

import (
	"survey-annotator/internal/annotator"
	"survey-annotator/internal/comparator"
	"survey-annotator/internal/dataset"
	"survey-annotator/internal/metrics"
)

// RunResult представляет результат одного запуска аннотации
type RunResult struct {
	RunID       string                 `json:"run_id"`
	Timestamp   string                 `json:"timestamp"`
	Model       string                 `json:"model"`
	Scheme      string                 `json:"scheme"`
	Source      Source                 `json:"source"`
	Records     []dataset.Response     `json:"records"`
	Annotations []annotator.Annotation `json:"annotations"`
	Rows        []comparator.Row       `json:"rows"`
	Agreements  []comparator.Agreement `json:"agreements"`
	Metrics     metrics.Snapshot       `json:"metrics"`
}

// Source описывает исходную таблицу
type Source struct {
	File       string `json:"file"`
	Sheet      string `json:"sheet"`
	SampleSize int    `json:"sample_size"`
}
