package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/granjaops/taskward/internal/models"
)

// Zero-padded 24h HH:mm. The engine compares schedule times as strings, so
// the padded form is part of the contract, not just a formatting nicety.
var scheduleTimeRE = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("schedule_time", validateScheduleTime); err != nil {
		panic(fmt.Sprintf("failed to register schedule_time validator: %v", err))
	}
	if err := Validate.RegisterValidation("task_type", validateTaskType); err != nil {
		panic(fmt.Sprintf("failed to register task_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("group_category", validateGroupCategory); err != nil {
		panic(fmt.Sprintf("failed to register group_category validator: %v", err))
	}
}

// validateScheduleTime validates that a string is a 24h HH:mm time of day
func validateScheduleTime(fl validator.FieldLevel) bool {
	return ValidateScheduleTime(fl.Field().String()) == nil
}

// validateTaskType validates that a string is a usable task type token
func validateTaskType(fl validator.FieldLevel) bool {
	return ValidateTaskType(fl.Field().String()) == nil
}

// validateGroupCategory validates that a string is a normalized GroupCategory value
func validateGroupCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.GroupCategory(value) {
	case models.GroupCategoryProduction, models.GroupCategoryBreeders, models.GroupCategoryMales:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateScheduleTime validates a zero-padded 24h HH:mm time-of-day string
func ValidateScheduleTime(value string) error {
	if !scheduleTimeRE.MatchString(value) {
		return fmt.Errorf("invalid schedule time: %s (must be zero-padded HH:mm, 24h)", value)
	}
	return nil
}

// ValidateTaskType validates a task type token. "feed" is reserved for the
// feed schedule; any other non-empty token names a custom task type, so
// templates like "weighing" are admissible.
func ValidateTaskType(value string) error {
	if value == "" || strings.ContainsFunc(value, unicode.IsSpace) {
		return fmt.Errorf("invalid task type: %q (must be a non-empty token without spaces)", value)
	}
	return nil
}

// ValidateGroupCategory validates a normalized GroupCategory string value
func ValidateGroupCategory(value string) error {
	switch models.GroupCategory(value) {
	case models.GroupCategoryProduction, models.GroupCategoryBreeders, models.GroupCategoryMales:
		return nil
	default:
		return fmt.Errorf("invalid group category: %s (must be 'production', 'breeders', or 'males')", value)
	}
}
