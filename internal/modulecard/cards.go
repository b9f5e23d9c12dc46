package modulecard

import (
	"github.com/paperiq/dashboard/internal/models"
	"go.uber.org/zap"
)

// Standard returns the four dashboard cards keyed by step.
func Standard(logger *zap.Logger) map[models.Step]*Card {
	return map[models.Step]*Card{
		models.StepIngestion: New(models.StepIngestion, "Ingestion Module",
			"Extract and structure content from your documents", "blue", logger),
		models.StepPreprocess: New(models.StepPreprocess, "Preprocessing Module",
			"Clean and prepare data for analysis", "purple", logger),
		models.StepExtract: New(models.StepExtract, "Insight Extraction",
			"Extract key insights and patterns from your data", "amber", logger),
		models.StepSummarize: New(models.StepSummarize, "Summarization Module",
			"Generate concise summaries of your documents", "green", logger),
	}
}
