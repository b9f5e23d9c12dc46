// handlers_upload.go - Document upload handler
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/paperiq/dashboard/internal/models"
	"github.com/paperiq/dashboard/internal/upload"
	"go.uber.org/zap"
)

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	logger *zap.Logger
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(logger *zap.Logger) UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandlerImpl{logger: logger}
}

// HandleUpload accepts a multipart "file" picked by drag-and-drop or the
// browse button and makes it the session's document
func (h *UploadHandlerImpl) HandleUpload(c echo.Context) error {
	s := currentSession(c)
	notices := s.Dashboard.Notices()

	fh, err := c.FormFile("file")
	if err != nil {
		notices.Error("Please choose a file to upload")
		return finish(c, NewValidationError("file is required"), 0, nil)
	}

	src, err := fh.Open()
	if err != nil {
		notices.Error("Upload failed")
		return finish(c, NewBadRequestError("failed to read uploaded file", err), 0, nil)
	}
	defer src.Close()

	file, err := s.Dashboard.Upload(c.Request().Context(), upload.Candidate{
		Name:    fh.Filename,
		Size:    fh.Size,
		Content: src,
		Source:  uploadSource(c.FormValue("source")),
	})
	if err != nil {
		var rej *upload.RejectError
		if !errors.As(err, &rej) {
			h.logger.Error("failed to store upload", zap.String("name", fh.Filename), zap.Error(err))
			notices.Error("Upload failed")
		}
		return finish(c, err, 0, nil)
	}
	return finish(c, nil, http.StatusCreated, file)
}

func uploadSource(v string) string {
	if v == models.SourceDrop {
		return models.SourceDrop
	}
	return models.SourceBrowse
}
