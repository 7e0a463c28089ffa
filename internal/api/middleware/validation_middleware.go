package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	validatedModelKey = "validated_model"
	validatedQueryKey = "validated_query"
	maxJSONBody       = 64 << 10
)

var aliasExp = regexp.MustCompile(`^[A-Za-z0-9_-]{3,50}$`)

// ValidationMiddleware decodes and validates request payloads.
type ValidationMiddleware struct {
	validator *validator.Validate
}

func NewValidationMiddleware() *ValidationMiddleware {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("not_empty", validateNotEmpty)
	_ = v.RegisterValidation("valid_uuid", validateUUID)
	_ = v.RegisterValidation("alias", validateAlias)

	return &ValidationMiddleware{validator: v}
}

// Struct validates an already decoded value.
func (m *ValidationMiddleware) Struct(v interface{}) error {
	return m.validator.Struct(v)
}

// ValidateRequest decodes the body as JSON whatever the Content-Type, since
// sendBeacon posts text/plain, and stores the result under validated_model.
func (m *ValidationMiddleware) ValidateRequest(model interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		modelType := reflect.TypeOf(model)
		if modelType.Kind() == reflect.Ptr {
			modelType = modelType.Elem()
		}
		modelValue := reflect.New(modelType).Interface()

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxJSONBody))
		}
		if len(body) == 0 {
			body = []byte("{}")
		}

		if err := json.Unmarshal(body, modelValue); err != nil {
			log.Warn("Invalid JSON body",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path))
			abort(c, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		if err := m.validator.Struct(modelValue); err != nil {
			m.reject(c, err)
			return
		}

		c.Set(validatedModelKey, modelValue)
		c.Next()
	}
}

// ValidateQuery validates query parameters against the provided struct
func (m *ValidationMiddleware) ValidateQuery(model interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		modelType := reflect.TypeOf(model)
		if modelType.Kind() == reflect.Ptr {
			modelType = modelType.Elem()
		}
		modelValue := reflect.New(modelType).Interface()

		if err := c.ShouldBindQuery(modelValue); err != nil {
			abort(c, http.StatusBadRequest, "Invalid query parameters")
			return
		}
		if err := m.validator.Struct(modelValue); err != nil {
			m.reject(c, err)
			return
		}

		c.Set(validatedQueryKey, modelValue)
		c.Next()
	}
}

func (m *ValidationMiddleware) reject(c *gin.Context, err error) {
	details := make(map[string]string)
	var messages []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			msg := formatValidationError(fe)
			details[fe.Field()] = msg
			messages = append(messages, fe.Field()+": "+msg)
		}
	}
	log.Warn("Validation failed",
		zap.Any("errors", details),
		zap.String("path", c.Request.URL.Path))

	message := "Validation failed"
	if len(messages) > 0 {
		message = strings.Join(messages, "; ")
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": message,
		"details": details,
	})
}

// GetValidated returns the payload stored by ValidateRequest.
func GetValidated[T any](c *gin.Context) *T {
	v, _ := c.Get(validatedModelKey)
	out, _ := v.(*T)
	return out
}

// GetValidatedQuery returns the query stored by ValidateQuery.
func GetValidatedQuery[T any](c *gin.Context) *T {
	v, _ := c.Get(validatedQueryKey)
	out, _ := v.(*T)
	return out
}

func validateNotEmpty(fl validator.FieldLevel) bool {
	return len(strings.TrimSpace(fl.Field().String())) > 0
}

func validateUUID(fl validator.FieldLevel) bool {
	_, err := uuid.Parse(fl.Field().String())
	return err == nil
}

// validateAlias accepts the empty string, which clears an alias.
func validateAlias(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	return value == "" || aliasExp.MatchString(value)
}

func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "invalid email format"
	case "min":
		return "value is too short"
	case "max":
		return "value is too long"
	case "oneof":
		return "must be one of " + err.Param()
	case "not_empty":
		return "this field cannot be empty"
	case "valid_uuid":
		return "invalid UUID format"
	case "alias":
		return "must be 3-50 letters, digits, '-' or '_'"
	default:
		return "invalid value"
	}
}
