package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"porchlight/internal/api/middleware"
	"porchlight/internal/models"
	"porchlight/internal/services"
	"porchlight/internal/utils/logger"
)

var (
	errPropertyNotFound = errors.New("property not found")
	errNotListingOwner  = errors.New("caller does not own this listing")
)

// PropertyHandler serves the property listing surface. Reads are open to any
// authenticated user; writes are gated to agents and admins by the route
// middleware, and agents can only touch their own listings.
type PropertyHandler struct {
	db         *gorm.DB
	properties services.BaseService[models.Property]
	storage    *services.S3Service
	log        *logger.Logger
}

func NewPropertyHandler(db *gorm.DB, storage *services.S3Service) *PropertyHandler {
	return &PropertyHandler{
		db:         db,
		properties: services.NewBaseService(db, models.Property{}),
		storage:    storage,
		log:        logger.New("property_handler"),
	}
}

// List returns properties with pagination and simple equality filters.
func (h *PropertyHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filters := make(map[string]interface{})
	if city := c.QueryParam("city"); city != "" {
		filters["city"] = city
	}
	if status := c.QueryParam("status"); status != "" {
		filters["status"] = status
	}

	properties, total, err := h.properties.List(c.Request().Context(), page, limit, filters)
	if err != nil {
		_ = h.log.Error("failed to list properties", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list properties"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  properties,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Get returns a single property with its photos.
func (h *PropertyHandler) Get(c echo.Context) error {
	id := c.Param("id")

	var property models.Property
	err := h.db.Preload("Photos").First(&property, "id = ? AND is_deleted = ?", id, false).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Property not found"})
	}

	return c.JSON(http.StatusOK, property)
}

// Create stores a new listing owned by the calling agent.
func (h *PropertyHandler) Create(c echo.Context) error {
	var property models.Property
	if err := c.Bind(&property); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(&property); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := h.currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unknown user"})
	}

	// Ownership comes from the verified caller, not the request body
	property.AgentID = user.ID
	if property.Status == "" {
		property.Status = models.PropertyStatusDraft
	}

	if err := h.properties.Create(c.Request().Context(), &property); err != nil {
		_ = h.log.Error("failed to create property", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create property"})
	}

	return c.JSON(http.StatusCreated, property)
}

// Update modifies a listing. Agents may only update their own.
func (h *PropertyHandler) Update(c echo.Context) error {
	id := c.Param("id")

	existing, err := h.ownedProperty(c, id)
	if err != nil {
		return h.propertyError(c, err)
	}

	var update models.Property
	if err := c.Bind(&update); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(&update); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	// Immutable fields stay as stored
	update.ID = existing.ID
	update.AgentID = existing.AgentID

	if err := h.properties.Update(c.Request().Context(), id, &update); err != nil {
		_ = h.log.Error("failed to update property", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update property"})
	}

	return c.JSON(http.StatusOK, update)
}

// Delete soft-deletes a listing. Agents may only delete their own.
func (h *PropertyHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	if _, err := h.ownedProperty(c, id); err != nil {
		return h.propertyError(c, err)
	}

	if err := h.properties.Delete(c.Request().Context(), id); err != nil {
		_ = h.log.Error("failed to delete property", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete property"})
	}

	return c.NoContent(http.StatusNoContent)
}

// UploadPhoto attaches an image to a listing via S3.
func (h *PropertyHandler) UploadPhoto(c echo.Context) error {
	if h.storage == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Storage is not configured"})
	}

	id := c.Param("id")
	property, err := h.ownedProperty(c, id)
	if err != nil {
		return h.propertyError(c, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No file provided"})
	}

	url, err := h.storage.UploadFile(c.Request().Context(), file, types.ObjectCannedACLPublicRead)
	if err != nil {
		_ = h.log.Error("failed to upload photo", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to upload photo"})
	}

	user, err := h.currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unknown user"})
	}

	photo := models.PropertyPhoto{
		PropertyID: property.ID,
		URL:        url,
		Name:       file.Filename,
		Size:       file.Size,
		Type:       file.Header.Get("Content-Type"),
		UploadedBy: user.ID,
	}
	if err := h.db.Create(&photo).Error; err != nil {
		_ = h.log.Error("failed to store photo record", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store photo"})
	}

	h.log.Success("photo uploaded for property %s", property.ID)
	return c.JSON(http.StatusCreated, photo)
}

// Export writes all listings to an xlsx workbook, admin only.
func (h *PropertyHandler) Export(c echo.Context) error {
	var properties []models.Property
	if err := h.db.Where("is_deleted = ?", false).Order("created_at").Find(&properties).Error; err != nil {
		_ = h.log.Error("failed to load properties for export", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to export properties"})
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Properties"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Title", "Address", "City", "Price", "Bedrooms", "Bathrooms", "Status", "Created"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	for row, p := range properties {
		values := []interface{}{
			p.ID, p.Title, p.Address, p.City, p.Price,
			p.Bedrooms, p.Bathrooms, string(p.Status),
			p.CreatedAt.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="properties.xlsx"`)
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)

	if err := f.Write(c.Response()); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (h *PropertyHandler) currentUser(c echo.Context) (*models.User, error) {
	var user models.User
	err := h.db.Where("firebase_uid = ?", middleware.GetUID(c)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ownedProperty loads a property and enforces that the caller may modify it:
// admins always, agents only when they own the listing. A rejected check is
// reported through the sentinel errors so callers stop instead of mutating.
func (h *PropertyHandler) ownedProperty(c echo.Context, id string) (*models.Property, error) {
	var property models.Property
	if err := h.db.First(&property, "id = ? AND is_deleted = ?", id, false).Error; err != nil {
		return nil, errPropertyNotFound
	}

	if middleware.GetRole(c) == models.UserRoleAdmin {
		return &property, nil
	}

	user, err := h.currentUser(c)
	if err != nil || property.AgentID != user.ID {
		return nil, errNotListingOwner
	}
	return &property, nil
}

func (h *PropertyHandler) propertyError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errPropertyNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Property not found"})
	case errors.Is(err, errNotListingOwner):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Not your listing"})
	default:
		_ = h.log.Error("property access check failed", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Something went wrong"})
	}
}
