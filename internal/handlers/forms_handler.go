package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"porchlight/internal/api/middleware"
	"porchlight/internal/models"
	"porchlight/internal/services"
	"porchlight/internal/tasks"
	"porchlight/internal/utils/logger"
)

// FormsHandler proxies the GoFormz API. The upstream token stays server-side
// and submissions are filtered to the caller before anything is returned.
type FormsHandler struct {
	db      *gorm.DB
	goformz *services.GoFormzClient
	tasks   *tasks.TaskClient
	log     *logger.Logger
}

func NewFormsHandler(db *gorm.DB, goformz *services.GoFormzClient, taskClient *tasks.TaskClient) *FormsHandler {
	return &FormsHandler{
		db:      db,
		goformz: goformz,
		tasks:   taskClient,
		log:     logger.New("forms_handler"),
	}
}

// ListTemplates returns the available form templates. The live API is
// preferred; the locally synced cache answers when GoFormz is down.
func (h *FormsHandler) ListTemplates(c echo.Context) error {
	if !h.goformz.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Forms service is not configured"})
	}

	templates, err := h.goformz.ListTemplates(c.Request().Context())
	if err != nil {
		h.log.Warn("GoFormz unreachable, serving cached templates: %v", err)

		var cached []models.FormTemplate
		if dbErr := h.db.Order("name").Find(&cached).Error; dbErr != nil {
			_ = h.log.Error("failed to read template cache", dbErr)
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "Forms service unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"templates": cached, "cached": true})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"templates": templates})
}

// ListForms returns form submissions. Non-admin callers only see their own.
func (h *FormsHandler) ListForms(c echo.Context) error {
	if !h.goformz.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Forms service is not configured"})
	}

	forms, err := h.goformz.ListForms(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return h.upstreamError(c, err)
	}

	role := middleware.GetRole(c)
	email := middleware.GetEmail(c)

	visible := make([]services.GoFormzForm, 0, len(forms))
	for _, form := range forms {
		if canAccessForm(role, email, form.OwnerEmail) {
			visible = append(visible, form)
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"forms": visible})
}

// GetForm returns a single submission, applying the same ownership predicate
// as ListForms so a guessed id yields 404, not someone else's data.
func (h *FormsHandler) GetForm(c echo.Context) error {
	if !h.goformz.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Forms service is not configured"})
	}

	formID := c.Param("id")
	if formID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing form id"})
	}

	form, err := h.goformz.GetForm(c.Request().Context(), formID)
	if err != nil {
		return h.upstreamError(c, err)
	}

	if !canAccessForm(middleware.GetRole(c), middleware.GetEmail(c), form.OwnerEmail) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Form not found"})
	}

	return c.JSON(http.StatusOK, form)
}

// ArchiveForm queues the PDF of a completed submission for archival to S3.
func (h *FormsHandler) ArchiveForm(c echo.Context) error {
	if !h.goformz.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Forms service is not configured"})
	}

	formID := c.Param("id")
	if formID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing form id"})
	}

	ctx := c.Request().Context()

	form, err := h.goformz.GetForm(ctx, formID)
	if err != nil {
		return h.upstreamError(c, err)
	}
	if !canAccessForm(middleware.GetRole(c), middleware.GetEmail(c), form.OwnerEmail) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Form not found"})
	}

	var user models.User
	if err := h.db.Where("firebase_uid = ?", middleware.GetUID(c)).First(&user).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unknown user"})
	}

	archive := models.FormArchive{
		FormID:      formID,
		RequestedBy: user.ID,
		Status:      models.ArchiveStatusQueued,
	}
	if err := h.db.Create(&archive).Error; err != nil {
		_ = h.log.Error("failed to create archive record", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not queue archive"})
	}

	task := tasks.FormArchiveTask{ArchiveID: archive.ID, FormID: formID}
	if err := h.tasks.EnqueueFormArchive(ctx, task); err != nil {
		_ = h.log.Error("failed to enqueue archive task", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not queue archive"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"message":    "Archive queued",
		"archive_id": archive.ID,
	})
}

// GetArchive reports archive status; only the requester or an admin may look.
func (h *FormsHandler) GetArchive(c echo.Context) error {
	archiveID := c.Param("id")

	var archive models.FormArchive
	if err := h.db.First(&archive, "id = ?", archiveID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Archive not found"})
	}

	var user models.User
	if err := h.db.Where("firebase_uid = ?", middleware.GetUID(c)).First(&user).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unknown user"})
	}
	if archive.RequestedBy != user.ID && middleware.GetRole(c) != models.UserRoleAdmin {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Archive not found"})
	}

	return c.JSON(http.StatusOK, archive)
}

// canAccessForm is the ownership predicate for GoFormz submissions: admins
// see everything, everyone else only their own submissions.
func canAccessForm(role models.UserRole, callerEmail, ownerEmail string) bool {
	if role == models.UserRoleAdmin {
		return true
	}
	return callerEmail != "" && callerEmail == ownerEmail
}

// upstreamError hides GoFormz internals from clients while keeping the
// status class meaningful.
func (h *FormsHandler) upstreamError(c echo.Context, err error) error {
	var gfErr *services.GoFormzError
	if errors.As(err, &gfErr) && gfErr.StatusCode == http.StatusNotFound {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Form not found"})
	}
	_ = h.log.Error("GoFormz request failed", err)
	return c.JSON(http.StatusBadGateway, map[string]string{"error": "Forms service unavailable"})
}
