package models

import "fmt"

// Step identifies one stage of the document pipeline.
type Step string

const (
	StepIngestion  Step = "ingestion"
	StepPreprocess Step = "preprocess"
	StepExtract    Step = "extract"
	StepSummarize  Step = "summarize"
)

// Steps lists the pipeline in the order the dashboard shows and runs it.
var Steps = []Step{StepIngestion, StepPreprocess, StepExtract, StepSummarize}

// ParseStep converts a route or CLI argument into a Step.
func ParseStep(s string) (Step, error) {
	switch Step(s) {
	case StepIngestion, StepPreprocess, StepExtract, StepSummarize:
		return Step(s), nil
	case "ingest":
		return StepIngestion, nil
	case "preprocessing":
		return StepPreprocess, nil
	case "extraction", "insights":
		return StepExtract, nil
	case "summary", "summarization":
		return StepSummarize, nil
	}
	return "", fmt.Errorf("unknown pipeline step %q", s)
}
