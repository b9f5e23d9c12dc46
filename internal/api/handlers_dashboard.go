// handlers_dashboard.go - Dashboard page, state and pipeline step handlers
package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/paperiq/dashboard/internal/models"
	"github.com/paperiq/dashboard/internal/upload"
	"github.com/paperiq/dashboard/internal/web"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const mimeMsgpack = "application/msgpack"

// DashboardHandlerImpl implements the DashboardHandler interface
type DashboardHandlerImpl struct {
	validator upload.Validator
	logger    *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler. The validator only
// feeds the file picker's hints; uploads are checked by the upload manager.
func NewDashboardHandler(v upload.Validator, logger *zap.Logger) DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandlerImpl{validator: v, logger: logger}
}

// HandleDashboardPage renders the dashboard
func (h *DashboardHandlerImpl) HandleDashboardPage(c echo.Context) error {
	s := currentSession(c)
	view := s.Dashboard.Snapshot(true)
	return c.Render(http.StatusOK, "dashboard", web.Page{
		Title:     "Dashboard",
		Notices:   view.Notices,
		View:      &view,
		Accept:    strings.Join(h.validator.AllowedExtensions, ","),
		MaxSizeMB: int(h.validator.MaxSize / upload.MiB),
		MaxBytes:  h.validator.MaxSize,
	})
}

// HandleState returns the dashboard snapshot as JSON. Notices are consumed
// only with ?drain=true.
func (h *DashboardHandlerImpl) HandleState(c echo.Context) error {
	s := currentSession(c)
	return c.JSON(http.StatusOK, s.Dashboard.Snapshot(c.QueryParam("drain") == "true"))
}

// HandleStateMsgpack returns the dashboard snapshot as MessagePack using the
// same field names as the JSON form.
func (h *DashboardHandlerImpl) HandleStateMsgpack(c echo.Context) error {
	s := currentSession(c)
	view := s.Dashboard.Snapshot(c.QueryParam("drain") == "true")

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(view); err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, mimeMsgpack, buf.Bytes())
}

// HandleMe fetches the signed-in user from the backend
func (h *DashboardHandlerImpl) HandleMe(c echo.Context) error {
	s := currentSession(c)
	user, err := s.Client.CurrentUser(c.Request().Context())
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// HandleRunStep runs one pipeline step for the session's document
func (h *DashboardHandlerImpl) HandleRunStep(c echo.Context) error {
	s := currentSession(c)
	step, err := models.ParseStep(c.Param("step"))
	if err != nil {
		return NewNotFoundError("step", c.Param("step"))
	}

	err = s.Dashboard.Run(c.Request().Context(), step)
	if err != nil {
		h.logger.Info("step did not complete", zap.String("step", string(step)), zap.Error(err))
		return finish(c, err, 0, nil)
	}

	card := s.Dashboard.Snapshot(false).Card(step)
	return finish(c, nil, http.StatusOK, card)
}

// HandleClearFile removes the uploaded document and every result
func (h *DashboardHandlerImpl) HandleClearFile(c echo.Context) error {
	currentSession(c).Dashboard.ClearFile()
	return finish(c, nil, 0, nil)
}
