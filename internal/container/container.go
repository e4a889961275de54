package container

import (
	"context"
	"fmt"
	"log/slog"

	"sheetqa/adapters/excel"
	"sheetqa/adapters/llm"
	"sheetqa/adapters/query"
	"sheetqa/ai"
	"sheetqa/app"
	"sheetqa/internal/config"
	"sheetqa/internal/profiling"
	"sheetqa/internal/session"
	"sheetqa/internal/usage"
	"sheetqa/ports"
	"sheetqa/ui"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	LLM      *llm.OpenAIClient
	Reader   ports.WorkbookReader
	Executor ports.QueryExecutor
	Sessions *session.Store
	Usage    *usage.Service

	// AI components
	Prompts *ai.PromptManager
	Planner *ai.Planner

	// Services
	Workbooks *app.WorkbookService
	Queries   *app.QueryService
	Health    *app.HealthProbe
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if err := c.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}
	if err := c.initAIComponents(); err != nil {
		return nil, fmt.Errorf("failed to initialize AI components: %w", err)
	}
	c.initServices()

	logger.Info("container initialized",
		"model", cfg.LLM.Model,
		"base_url", cfg.LLM.BaseURL,
		"engine", c.Executor.Engine(),
		"structured_output", cfg.LLM.StructuredOutput)
	return c, nil
}

// initInfrastructure builds the model client, readers, executor and
// session store
func (c *Container) initInfrastructure() error {
	var err error
	c.LLM, err = llm.NewOpenAIClient(llm.Config{
		BaseURL:     c.Config.LLM.BaseURL,
		Model:       c.Config.LLM.Model,
		APIKey:      c.Config.LLM.APIKey,
		Timeout:     c.Config.LLM.Timeout,
		Temperature: c.Config.LLM.Temperature,
		MaxTokens:   c.Config.LLM.MaxTokens,
	}, c.Logger)
	if err != nil {
		return err
	}

	readerConfig := excel.DefaultReaderConfig()
	readerConfig.MaxBytes = c.Config.Upload.MaxBytes
	c.Reader = excel.NewDataReader(readerConfig, c.Logger)

	c.Executor, err = newExecutor(c.Config.QA, c.Logger)
	if err != nil {
		return err
	}

	c.Usage = usage.NewService(c.Logger)
	c.Sessions, err = session.NewStore(c.Config.Session.Secret, c.Config.Session.TTL, c.Config.Session.MaxEntries, c.Logger)
	return err
}

// initAIComponents builds the prompt manager and the planner
func (c *Container) initAIComponents() error {
	c.Prompts = ai.NewPromptManager(c.Config.QA.PromptsDir, c.Logger)
	structured, err := ai.NewStructuredClient[ai.Plan](c.LLM, c.Prompts, "plan", c.Config.LLM.StructuredOutput, c.Logger)
	if err != nil {
		return err
	}
	describer := ai.NewSheetDescriber(profiling.NewDataProfiler(c.Logger), c.Config.QA.PromptSampleRows)
	c.Planner = ai.NewPlanner(structured, describer, c.Logger)
	return nil
}

func (c *Container) initServices() {
	c.Workbooks = app.NewWorkbookService(c.Reader, c.Config.Server.PreviewRows, c.Logger)
	c.Queries = app.NewQueryService(c.Planner, c.Executor, c.Usage, c.Logger)
	c.Health = app.NewHealthProbe(c.LLM, c.Config.LLM.ProbeTTL, c.Logger)
}

// ServerDeps returns what the web server renders
func (c *Container) ServerDeps() ui.Deps {
	return ui.Deps{
		Workbooks:       c.Workbooks,
		Queries:         c.Queries,
		Health:          c.Health,
		Sessions:        c.Sessions,
		Usage:           c.Usage,
		DefaultLanguage: c.Config.Server.DefaultLanguage,
		MaxUploadBytes:  c.Config.Upload.MaxBytes,
		Model:           c.LLM.Model(),
		BaseURL:         c.LLM.BaseURL(),
	}
}

// Shutdown releases container resources
func (c *Container) Shutdown(ctx context.Context) error {
	if c.LLM != nil {
		c.LLM.Close()
	}
	if c.Sessions != nil {
		c.Logger.Info("container shut down", "live_sessions", c.Sessions.Len(), "total_tokens", c.Usage.Totals().TotalTokens)
	}
	return nil
}

func newExecutor(cfg config.QAConfig, logger *slog.Logger) (ports.QueryExecutor, error) {
	switch cfg.Engine {
	case config.EngineSQL:
		return query.NewSQLExecutor(cfg.MaxResultRows, logger), nil
	case config.EngineJQ:
		return query.NewJQExecutor(cfg.MaxResultRows, logger), nil
	default:
		return nil, fmt.Errorf("unknown QA engine %q", cfg.Engine)
	}
}
