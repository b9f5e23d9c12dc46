// Package upload is the document picker: it applies the client-side type and
// size rules, stores accepted files and reports them to the dashboard.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/paperiq/dashboard/internal/models"
	"github.com/paperiq/dashboard/internal/storage"
	"go.uber.org/zap"
)

// Notifier receives the user-facing message for a rejected file.
type Notifier interface {
	Error(msg string)
}

// Candidate is a file offered by drag-and-drop or the browse button.
type Candidate struct {
	Name    string
	Size    int64 // as declared by the client
	Content io.Reader
	Source  string // models.SourceDrop or models.SourceBrowse
}

// Manager validates and stores uploads.
type Manager struct {
	validator Validator
	store     storage.Store
	logger    *zap.Logger
}

// NewManager creates a manager. store may be nil for clients that only ever
// accept files already on disk.
func NewManager(v Validator, store storage.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{validator: v, store: store, logger: logger}
}

// Validator returns the acceptance rules.
func (m *Manager) Validator() Validator {
	return m.validator
}

// Accept validates c, stores it and calls onUpload with the stored file. A
// rejected file is discarded: nothing is stored, onUpload is not called and
// the reason goes to n.
func (m *Manager) Accept(ctx context.Context, c Candidate, n Notifier, onUpload func(*models.FileInfo)) (*models.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.validator.Validate(c.Name, c.Size); err != nil {
		return nil, m.reject(err, n)
	}
	if m.store == nil {
		return nil, errors.New("upload: no store configured")
	}

	// The declared size can lie; never store more than the ceiling allows.
	limited := io.LimitReader(c.Content, m.validator.MaxSize+1)
	info, err := m.store.Save(c.Name, limited)
	if err != nil {
		return nil, fmt.Errorf("storing %s: %w", c.Name, err)
	}
	if err := m.validator.Validate(c.Name, info.Size); err != nil {
		m.discard(info)
		return nil, m.reject(err, n)
	}

	info.Source = c.Source
	m.logger.Info("document accepted",
		zap.String("id", info.ID), zap.String("name", info.Name),
		zap.Int64("size", info.Size), zap.String("source", c.Source))
	if onUpload != nil {
		onUpload(info)
	}
	return info, nil
}

// AcceptPath accepts a file that is already on disk without copying it.
func (m *Manager) AcceptPath(ctx context.Context, path string, n Notifier, onUpload func(*models.FileInfo)) (*models.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	name := filepath.Base(path)
	if err := m.validator.Validate(name, st.Size()); err != nil {
		return nil, m.reject(err, n)
	}

	info := &models.FileInfo{
		ID:         uuid.New().String(),
		Name:       name,
		Size:       st.Size(),
		UploadedAt: time.Now(),
		Source:     models.SourcePath,
		Path:       path,
	}
	if onUpload != nil {
		onUpload(info)
	}
	return info, nil
}

// Discard deletes a stored upload. Files the store does not own, such as
// those from AcceptPath, are left alone.
func (m *Manager) Discard(file *models.FileInfo) error {
	if file == nil || m.store == nil {
		return nil
	}
	err := m.store.Delete(file.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

func (m *Manager) discard(info *models.FileInfo) {
	if err := m.Discard(info); err != nil {
		m.logger.Warn("failed to discard rejected upload", zap.String("id", info.ID), zap.Error(err))
	}
}

func (m *Manager) reject(err error, n Notifier) error {
	var rej *RejectError
	if errors.As(err, &rej) {
		m.logger.Info("document rejected", zap.String("name", rej.Name), zap.String("reason", rej.Reason))
		if n != nil {
			n.Error(rej.Message)
		}
	}
	return err
}
