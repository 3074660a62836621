package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"survey-annotator/internal/annotator"
	"survey-annotator/internal/api"
	"survey-annotator/internal/config"
	"survey-annotator/internal/pipeline"
	"survey-annotator/internal/storage"
)

var (
	// Глобальные флаги
	verbose    bool
	apiKey     string
	model      string
	schemePath string
	resultsDir string

	// Флаги запуска
	inputFile  string
	sheetName  string
	sampleSize int
	delay      time.Duration
	mode       string
	save       bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "survey-annotator",
	Short: "Аннотация ответов анкеты моделью и сравнение с оценщиками",
	Long: `Читает свободные ответы из таблицы Excel, отправляет каждый в модель дважды
(свободный ответ и структурированная пара reasoning/answer) и считает
процент точных совпадений кода модели с оценками WG и RA.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runAnnotate,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Список сохраненных запусков",
	Args:  cobra.NoArgs,
	RunE:  listRuns,
}

var showCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Повторно вывести отчет сохраненного запуска",
	Args:  cobra.ExactArgs(1),
	RunE:  showRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Подробные логи")
	rootCmd.PersistentFlags().StringVar(&resultsDir, "results-dir", "", "Каталог сохраненных запусков (по умолчанию ANNOTATE_RESULTS_DIR)")

	rootCmd.Flags().StringVar(&apiKey, "api-key", "", "API ключ (по умолчанию GROQ_API_KEY)")
	rootCmd.Flags().StringVar(&model, "model", "", "Модель (по умолчанию GROQ_MODEL)")
	rootCmd.Flags().StringVar(&schemePath, "scheme", "", "YAML файл схемы кодирования (по умолчанию встроенная)")
	rootCmd.Flags().StringVarP(&inputFile, "file", "f", "", "Файл Excel с ответами")
	rootCmd.Flags().StringVar(&sheetName, "sheet", "", "Имя листа")
	rootCmd.Flags().IntVarP(&sampleSize, "sample", "n", 0, "Сколько первых записей анализировать")
	rootCmd.Flags().DurationVar(&delay, "delay", 0, "Пауза между структурированными вызовами (по умолчанию ANNOTATE_DELAY)")
	rootCmd.Flags().StringVar(&mode, "mode", "", "Режим структурированного ответа: json_schema или json_object")
	rootCmd.Flags().BoolVar(&save, "save", false, "Сохранить результат в JSON")

	rootCmd.AddCommand(runsCmd, showCmd)
}

func main() {
	// .env не обязателен: ключ можно передать через окружение или флаг
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "⚠️ Ошибка загрузки .env файла: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, appCfg)
	if err := appCfg.Validate(); err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	scheme, err := loadScheme()
	if err != nil {
		return fmt.Errorf("ошибка загрузки схемы кодирования: %w", err)
	}

	opts := pipeline.Options{
		File:       scheme.Input.File,
		Sheet:      scheme.Input.Sheet,
		SampleSize: scheme.GetSampleSize(),
		Save:       save,
	}
	if cmd.Flags().Changed("file") {
		opts.File = inputFile
	}
	if cmd.Flags().Changed("sheet") {
		opts.Sheet = sheetName
	}
	if cmd.Flags().Changed("sample") {
		opts.SampleSize = sampleSize
	}
	if opts.File == "" {
		return errors.New("не указан файл с ответами (--file)")
	}

	fmt.Println("🚀 Запуск аннотации ответов...")
	fmt.Println("\n📋 Конфигурация:")
	info := appCfg.Groq.GetModelInfo()
	fmt.Printf("• Модель: %v (%v)\n", info["model"], info["provider"])
	fmt.Printf("• Схема: %s, допустимые коды: %v\n", scheme.Name, scheme.GetAllowedAnswers())
	fmt.Printf("• Режим структурированного ответа: %s\n", appCfg.Annotate.StructuredMode)
	fmt.Printf("• Пауза между вызовами: %s\n\n", appCfg.Annotate.Delay)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Новый клиент на каждый вызов: у структурированных вызовов нет общей сессии
	factory := func() annotator.Completer {
		return api.NewClient(appCfg.Groq, logger)
	}

	runner, err := pipeline.New(appCfg, scheme, factory, os.Stdout, logger)
	if err != nil {
		return err
	}

	_, err = runner.Run(ctx, opts)
	return err
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.AppConfig) {
	if cmd.Flags().Changed("api-key") {
		cfg.Groq.APIKey = apiKey
	}
	if cmd.Flags().Changed("model") {
		cfg.Groq.Model = model
	}
	if cmd.Flags().Changed("delay") {
		cfg.Annotate.Delay = delay
	}
	if cmd.Flags().Changed("mode") {
		cfg.Annotate.StructuredMode = mode
	}
	if resultsDir != "" {
		cfg.Annotate.ResultsDir = resultsDir
	}
}

func loadScheme() (*config.Scheme, error) {
	if schemePath == "" {
		return config.LoadDefault()
	}
	return config.Load(schemePath)
}

func openStore() (*storage.Store, error) {
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		return nil, err
	}
	dir := appCfg.Annotate.ResultsDir
	if resultsDir != "" {
		dir = resultsDir
	}
	return storage.NewStore(dir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	runs, err := store.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("Сохраненных запусков нет")
		return nil
	}

	for _, id := range runs {
		fmt.Println(id)
	}
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	result, err := store.LoadRun(args[0])
	if err != nil {
		return err
	}
	logger.Debug("run loaded", zap.String("run_id", result.RunID), zap.String("model", result.Model))

	fmt.Printf("🗂 Запуск %s (%s), модель %s, файл %s\n", result.RunID, result.Timestamp, result.Model, result.Source.File)
	pipeline.PrintResult(os.Stdout, result)
	return nil
}
