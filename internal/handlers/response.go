package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"agency-billing-backend/internal/export"
	"agency-billing-backend/internal/middleware"
	"agency-billing-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// respondSuccess sends a standardized success response
func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	response := gin.H{
		"success":    true,
		"message":    message,
		"request_id": c.GetString(middleware.RequestIDKey),
	}
	if data != nil {
		response["data"] = data
	}
	c.JSON(status, response)
}

// respondError maps service errors onto status codes. Unknown errors are
// logged and reported as 500 without details outside debug mode.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	requestID := c.GetString(middleware.RequestIDKey)

	if authErr, ok := services.IsAuthorizationError(err); ok {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": authErr.Message, "request_id": requestID})
		return
	}
	if vErr, ok := services.IsValidationError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success":    false,
			"message":    "Validation failed",
			"errors":     vErr.Fields,
			"request_id": requestID,
		})
		return
	}
	if refErr, ok := services.IsReferentialIntegrityError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": refErr.Message, "request_id": requestID})
		return
	}
	if conflict, ok := services.IsStateConflictError(err); ok {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": conflict.Message, "request_id": requestID})
		return
	}
	if nf, ok := services.IsNotFoundError(err); ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": nf.Error(), "request_id": requestID})
		return
	}

	log.WithError(err).WithField("request_id", requestID).Error("request failed")
	response := gin.H{
		"success":    false,
		"message":    "Internal server error",
		"request_id": requestID,
	}
	if gin.Mode() == gin.DebugMode {
		response["error_details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, response)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success":    false,
		"message":    message,
		"request_id": c.GetString(middleware.RequestIDKey),
	})
}

// bind decodes the JSON body. Binding tag failures become a 422 with one
// message per field; malformed bodies are a 400.
func bind(c *gin.Context, log *logrus.Logger, payload any) bool {
	err := c.ShouldBindJSON(payload)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			// Field() reports the json name, see RegisterValidators.
			fields[fe.Field()] = fieldMessage(fe)
		}
		respondError(c, log, &services.ValidationError{Fields: fields})
		return false
	}
	badRequest(c, "invalid payload")
	return false
}

func fieldMessage(fe validator.FieldError) string {
	name := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", name)
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s.", name, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("The %s must be at least %s.", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", name)
	case "yearmonth":
		return fmt.Sprintf("The %s must use the YYYY-MM format.", name)
	case "url":
		return fmt.Sprintf("The %s format is invalid.", name)
	}
	return fmt.Sprintf("The %s field is invalid.", name)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUID parses a query parameter; ok is false only for malformed ids.
func optionalUUID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "invalid "+key)
		return nil, false
	}
	return &id, true
}

// parseDate accepts ISO dates and the dd-mm-yyyy form.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("02-01-2006", s)
}

// dateFields parses request dates, collecting failures into one
// validation error.
type dateFields struct {
	v services.Validator
}

func (d *dateFields) parse(field, raw string) time.Time {
	t, err := parseDate(raw)
	if err != nil {
		d.v.Add(field, fmt.Sprintf("The %s is not a valid date.", strings.ReplaceAll(field, "_", " ")))
	}
	return t
}

func (d *dateFields) optional(field string, raw *string) *time.Time {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	t := d.parse(field, *raw)
	return &t
}

func (d *dateFields) err() error {
	return d.v.Err()
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}

func sendXLSX(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, export.ContentType, data)
}
