// Package dashboard holds the page state of one signed-in user: the uploaded
// document, the four pipeline results, the module cards and pending notices.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/paperiq/dashboard/internal/backend"
	"github.com/paperiq/dashboard/internal/modulecard"
	"github.com/paperiq/dashboard/internal/models"
	"github.com/paperiq/dashboard/internal/notice"
	"github.com/paperiq/dashboard/internal/session"
	"github.com/paperiq/dashboard/internal/upload"
	"go.uber.org/zap"
)

// API is the part of the backend client the dashboard drives.
type API interface {
	Ingest(ctx context.Context, file *models.FileInfo) (models.Result, error)
	Preprocess(ctx context.Context, text string) (models.Result, error)
	Extract(ctx context.Context, text string) (models.Result, error)
	Summarize(ctx context.Context, file *models.FileInfo) (models.Result, error)
	Logout() error
	Storage() session.Storage
}

// Dashboard is safe for concurrent use. The lock is never held across a
// backend call, so overlapping steps run side by side and the last one to
// finish wins. A result that arrives after the document was replaced or
// cleared is dropped.
type Dashboard struct {
	api     API
	uploads *upload.Manager
	notices *notice.Board
	cards   map[models.Step]*modulecard.Card
	logger  *zap.Logger

	mu      sync.RWMutex
	file    *models.FileInfo
	results map[models.Step]models.Result
	gen     uint64 // bumped whenever the document changes
}

// New creates an empty dashboard.
func New(api API, uploads *upload.Manager, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dashboard{
		api:     api,
		uploads: uploads,
		notices: notice.NewBoard(),
		cards:   modulecard.Standard(logger),
		logger:  logger,
		results: make(map[models.Step]models.Result),
	}
}

// Notices returns the dashboard's notice board.
func (d *Dashboard) Notices() *notice.Board {
	return d.notices
}

// Card returns the card for step.
func (d *Dashboard) Card(step models.Step) *modulecard.Card {
	return d.cards[step]
}

// File returns the uploaded document, or nil.
func (d *Dashboard) File() *models.FileInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.file
}

// Result returns the last successful result of step, or nil.
func (d *Dashboard) Result(step models.Step) models.Result {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.results[step]
}

// SetFile replaces the uploaded document. Results of the previous document
// are dropped along with its stored copy.
func (d *Dashboard) SetFile(file *models.FileInfo) {
	d.mu.Lock()
	old := d.file
	d.file = file
	d.results = make(map[models.Step]models.Result)
	d.gen++
	d.mu.Unlock()

	if old != nil && (file == nil || old.ID != file.ID) {
		d.discard(old)
	}
	if file != nil {
		d.notices.Success(fmt.Sprintf("File %q uploaded successfully", file.Name))
	}
}

// ClearFile removes the uploaded document and every result.
func (d *Dashboard) ClearFile() {
	d.mu.Lock()
	old := d.file
	d.file = nil
	d.results = make(map[models.Step]models.Result)
	d.gen++
	d.mu.Unlock()

	if old != nil {
		d.discard(old)
	}
}

// Upload validates and stores a candidate file, then makes it the current
// document. Rejections are posted as notices and returned.
func (d *Dashboard) Upload(ctx context.Context, c upload.Candidate) (*models.FileInfo, error) {
	if d.uploads == nil {
		return nil, errors.New("dashboard: uploads are not configured")
	}
	return d.uploads.Accept(ctx, c, d.notices, d.SetFile)
}

// UploadPath makes a document already on disk the current document.
func (d *Dashboard) UploadPath(ctx context.Context, path string) (*models.FileInfo, error) {
	if d.uploads == nil {
		return nil, errors.New("dashboard: uploads are not configured")
	}
	return d.uploads.AcceptPath(ctx, path, d.notices, d.SetFile)
}

// Run triggers step.
func (d *Dashboard) Run(ctx context.Context, step models.Step) error {
	switch step {
	case models.StepIngestion:
		return d.RunIngestion(ctx)
	case models.StepPreprocess:
		return d.RunPreprocess(ctx)
	case models.StepExtract:
		return d.RunExtraction(ctx)
	case models.StepSummarize:
		return d.RunSummarization(ctx)
	default:
		return fmt.Errorf("unknown step %q", step)
	}
}

// RunIngestion sends the uploaded document for text extraction.
func (d *Dashboard) RunIngestion(ctx context.Context) error {
	file, _, gen := d.current(models.StepIngestion)
	if file == nil {
		return d.refuse(models.StepIngestion, MsgNeedFile)
	}
	return d.runStep(ctx, models.StepIngestion, gen, func(ctx context.Context) (models.Result, error) {
		return d.api.Ingest(ctx, file)
	})
}

// RunPreprocess cleans the text produced by ingestion.
func (d *Dashboard) RunPreprocess(ctx context.Context) error {
	_, prev, gen := d.current(models.StepIngestion)
	text := prev.Text()
	if text == "" {
		return d.refuse(models.StepPreprocess, MsgNeedIngestion)
	}
	return d.runStep(ctx, models.StepPreprocess, gen, func(ctx context.Context) (models.Result, error) {
		return d.api.Preprocess(ctx, text)
	})
}

// RunExtraction pulls keywords and entities out of the cleaned text.
func (d *Dashboard) RunExtraction(ctx context.Context) error {
	_, prev, gen := d.current(models.StepPreprocess)
	text := prev.CleanText()
	if text == "" {
		return d.refuse(models.StepExtract, MsgNeedPreprocess)
	}
	return d.runStep(ctx, models.StepExtract, gen, func(ctx context.Context) (models.Result, error) {
		return d.api.Extract(ctx, text)
	})
}

// RunSummarization summarizes the uploaded document.
func (d *Dashboard) RunSummarization(ctx context.Context) error {
	file, _, gen := d.current(models.StepSummarize)
	if file == nil {
		return d.refuse(models.StepSummarize, MsgNeedFile)
	}
	return d.runStep(ctx, models.StepSummarize, gen, func(ctx context.Context) (models.Result, error) {
		return d.api.Summarize(ctx, file)
	})
}

// Logout forgets the session and the uploaded document.
func (d *Dashboard) Logout() error {
	d.ClearFile()
	if err := d.api.Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	d.notices.Success(MsgLoggedOut)
	return nil
}

// current reads the document, the result of step and the document
// generation in one critical section.
func (d *Dashboard) current(step models.Step) (*models.FileInfo, models.Result, uint64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.file, d.results[step], d.gen
}

func (d *Dashboard) runStep(ctx context.Context, step models.Step, gen uint64, call func(context.Context) (models.Result, error)) error {
	card := d.cards[step]
	var result models.Result
	err := card.Run(ctx, func(ctx context.Context) error {
		r, err := call(ctx)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			d.notices.Error(MsgSessionExpired)
			return err
		}
		d.notices.Error(card.Title + " failed")
		return fmt.Errorf("%s: %w", step, err)
	}

	d.mu.Lock()
	stale := d.gen != gen
	if !stale {
		d.results[step] = result
	}
	d.mu.Unlock()

	if stale {
		d.logger.Info("dropping result for a replaced document", zap.String("step", string(step)))
		return nil
	}

	d.logger.Info("module completed", zap.String("step", string(step)))
	d.notices.Success(card.Title + " completed")
	return nil
}

func (d *Dashboard) refuse(step models.Step, msg string) error {
	d.notices.Error(msg)
	return &PreconditionError{Step: step, Message: msg}
}

func (d *Dashboard) discard(file *models.FileInfo) {
	if d.uploads == nil {
		return
	}
	if err := d.uploads.Discard(file); err != nil {
		d.logger.Warn("failed to delete stored document", zap.String("id", file.ID), zap.Error(err))
	}
}
