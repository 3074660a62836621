// Package pipeline связывает три этапа: загрузку анкеты, аннотацию и сравнение с оценщиками.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"survey-annotator/internal/annotator"
	"survey-annotator/internal/comparator"
	"survey-annotator/internal/config"
	"survey-annotator/internal/dataset"
	"survey-annotator/internal/metrics"
	"survey-annotator/internal/prompts"
	"survey-annotator/internal/report"
	"survey-annotator/internal/storage"
)

// Options - параметры одного запуска
type Options struct {
	File       string
	Sheet      string
	SampleSize int
	Save       bool
}

// Runner выполняет запуск от начала до конца
type Runner struct {
	app       *config.AppConfig
	scheme    *config.Scheme
	annotator *annotator.Service
	store     *storage.Store
	metrics   *metrics.Metrics
	out       io.Writer
	logger    *zap.Logger
}

// New создает Runner; factory выдает новый клиент API на каждый вызов
func New(app *config.AppConfig, scheme *config.Scheme, factory annotator.ClientFactory, out io.Writer, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Runner{
		app:     app,
		scheme:  scheme,
		store:   storage.NewStore(app.Annotate.ResultsDir),
		metrics: metrics.NewMetrics(),
		out:     out,
		logger:  logger,
	}

	svc, err := annotator.New(factory, annotator.Options{
		AllowedAnswers: scheme.GetAllowedAnswers(),
		StructuredMode: app.Annotate.StructuredMode,
		Delay:          app.Annotate.Delay,
		Progress:       r.printProgress,
	}, r.metrics, logger)
	if err != nil {
		return nil, err
	}
	r.annotator = svc

	return r, nil
}

// Run загружает записи, аннотирует их и печатает отчет о согласии
func (r *Runner) Run(ctx context.Context, opts Options) (*storage.RunResult, error) {
	cols := r.scheme.Input.Columns

	// Этап 1: загрузка данных
	fmt.Fprintf(r.out, "📥 Загрузка %s (лист %q, %d записей)...\n", opts.File, opts.Sheet, opts.SampleSize)
	records, err := dataset.Load(opts.File, opts.Sheet, dataset.Columns{
		ID:       cols.ID,
		FreeText: cols.FreeText,
		WG:       cols.WG,
		RA:       cols.RA,
	}, opts.SampleSize)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки данных: %w", err)
	}
	r.metrics.AddRecordsLoaded(len(records))
	r.logger.Debug("records loaded", zap.String("file", opts.File), zap.Int("count", len(records)))

	// Этап 2: аннотация
	fmt.Fprintf(r.out, "🤖 Аннотация моделью %s...\n", r.app.Groq.Model)
	instructions := annotator.Instructions{
		Chat:       prompts.BuildInstructions(r.scheme),
		Structured: prompts.BuildStructuredInstructions(r.scheme, r.app.Annotate.StructuredMode),
	}
	annotations, err := r.annotator.AnnotateAll(ctx, instructions, records)
	if err != nil {
		return nil, fmt.Errorf("ошибка аннотации: %w", err)
	}

	// Этап 3: сравнение
	rows, err := comparator.Compare(records, annotations)
	if err != nil {
		return nil, fmt.Errorf("ошибка сравнения: %w", err)
	}
	wg := comparator.ComputeAgreement(rows, comparator.RaterWG)
	ra := comparator.ComputeAgreement(rows, comparator.RaterRA)

	result := &storage.RunResult{
		Timestamp: time.Now().Format(time.RFC3339),
		Model:     r.app.Groq.Model,
		Scheme:    r.scheme.Name,
		Source: storage.Source{
			File:       opts.File,
			Sheet:      opts.Sheet,
			SampleSize: opts.SampleSize,
		},
		Records:     records,
		Annotations: annotations,
		Rows:        rows,
		Agreements:  []comparator.Agreement{wg, ra},
		Metrics:     r.metrics.GetSnapshot(),
	}

	PrintResult(r.out, result)

	if opts.Save {
		path, err := r.store.SaveRun(result)
		if err != nil {
			return result, err
		}
		fmt.Fprintf(r.out, "💾 Результат сохранен: %s\n", path)
	}

	return result, nil
}

// PrintResult печатает таблицу сравнения и итоговый отчет из двух строк
func PrintResult(out io.Writer, result *storage.RunResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.Title("📊 Сравнение с оценщиками"))
	fmt.Fprintln(out, report.Table(result.Rows))
	fmt.Fprintln(out, report.Metrics(result.Metrics))
	fmt.Fprintln(out)

	wg, ra := agreementsOf(result)
	fmt.Fprintln(out, report.Summary(wg, ra))
}

func agreementsOf(result *storage.RunResult) (comparator.Agreement, comparator.Agreement) {
	wg := comparator.Agreement{Rater: comparator.RaterWG}
	ra := comparator.Agreement{Rater: comparator.RaterRA}
	for _, a := range result.Agreements {
		switch a.Rater {
		case comparator.RaterWG:
			wg = a
		case comparator.RaterRA:
			ra = a
		}
	}
	return wg, ra
}

func (r *Runner) printProgress(done, total int, a annotator.Annotation) {
	fmt.Fprintf(r.out, "✅ [%d/%d] %s\n", done, total, report.Truncate(a.Text, 60))
	fmt.Fprintf(r.out, "   • Ответ: %s\n", report.Truncate(a.Raw, 120))
	fmt.Fprintf(r.out, "   • Рассуждение: %s\n", report.Truncate(a.Reasoning, 120))
	fmt.Fprintf(r.out, "   • Код: %s\n", a.Answer)
}
