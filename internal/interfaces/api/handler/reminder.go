package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"remindbot/internal/application/dto"
	"remindbot/internal/application/service"
	appErrors "remindbot/internal/pkg/errors"
	"remindbot/internal/pkg/logger"
)

// ReminderHandler serves the read-only JSON API.
type ReminderHandler struct {
	reminderService  service.ReminderService
	schedulerService service.SchedulerService
	log              logger.Logger
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminderService service.ReminderService, schedulerService service.SchedulerService, log logger.Logger) *ReminderHandler {
	return &ReminderHandler{
		reminderService:  reminderService,
		schedulerService: schedulerService,
		log:              log,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status    string             `json:"status"`
	Scheduler dto.SchedulerStats `json:"scheduler"`
}

// ListReminders handles GET /api/scopes/:scope/reminders.
func (h *ReminderHandler) ListReminders(c echo.Context) error {
	scope := c.Param("scope")
	reminders, err := h.reminderService.ListReminders(c.Request().Context(), scope)
	if err != nil {
		h.log.Error("Failed to list reminders of scope "+scope, err)
		status := http.StatusInternalServerError
		if errors.Is(err, appErrors.ErrDatabaseOperation) {
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, reminders)
}

// GetReminder handles GET /api/scopes/:scope/reminders/:index.
func (h *ReminderHandler) GetReminder(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "index must be an integer"})
	}
	reminder, err := h.reminderService.GetReminder(c.Request().Context(), dto.IndexRequest{Scope: c.Param("scope"), Index: index})
	switch {
	case errors.Is(err, appErrors.ErrIndexOutOfRange):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, appErrors.ErrDatabaseOperation):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case err != nil:
		h.log.Error("Failed to get reminder", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, reminder)
}

// Health handles GET /healthz.
func (h *ReminderHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Scheduler: h.schedulerService.Stats()})
}
