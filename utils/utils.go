package utils

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"parcel-delivery/types"

	"github.com/gofiber/fiber/v2"
)

// ParseIDParam reads a numeric :id route parameter.
func ParseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, err
	}
	return uint(id), nil
}

// ParseBoolQuery reads an optional boolean query parameter; nil means absent.
func ParseBoolQuery(c *fiber.Ctx, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value := raw == "true" || raw == "1"
	return &value
}

// sanitizeRequestBody redacts request bodies that look like file uploads or
// embedded base64 content before they reach the audit log.
func sanitizeRequestBody(c *fiber.Ctx) string {
	contentType := c.Get("Content-Type")
	if strings.Contains(contentType, "multipart/form-data") {
		formData := make(map[string]interface{})

		if form, err := c.MultipartForm(); err == nil {
			for key, values := range form.Value {
				if len(values) > 0 {
					formData[key] = values[0]
				}
			}
			for key, files := range form.File {
				fileInfo := make([]map[string]interface{}, len(files))
				for i, file := range files {
					fileInfo[i] = map[string]interface{}{
						"filename": file.Filename,
						"size":     file.Size,
						"content":  "[FILE_CONTENT_REMOVED]",
					}
				}
				formData[key] = fileInfo
			}
		}

		if jsonBytes, err := json.Marshal(formData); err == nil {
			return string(jsonBytes)
		}
		return "[MULTIPART_FORM_DATA]"
	}

	body := string(c.Body())
	if len(body) > 1000 && (strings.Contains(body, "data:image/") ||
		strings.Contains(body, "base64")) {
		return "[LARGE_REQUEST_BODY_WITH_POSSIBLE_FILE_CONTENT]"
	}

	return body
}

// CreateSanitizedLogEntry creates a deep copied and sanitized log entry for
// the async request logger. Credential fields are stripped so password
// payloads never land in the logs table.
func CreateSanitizedLogEntry(c *fiber.Ctx, userID *uint) types.LogEntry {
	method := string([]byte(c.Method()))
	url := string([]byte(c.OriginalURL()))
	requestBody := redactCredentials(sanitizeRequestBody(c))
	responseBody := string(append([]byte(nil), c.Response().Body()...))

	requestHeaders := make([]byte, len(c.Request().Header.Header()))
	copy(requestHeaders, c.Request().Header.Header())

	responseHeaders := make([]byte, len(c.Response().Header.Header()))
	copy(responseHeaders, c.Response().Header.Header())

	return types.LogEntry{
		Method:          method,
		URL:             url,
		RequestBody:     requestBody,
		ResponseBody:    responseBody,
		RequestHeaders:  string(requestHeaders),
		ResponseHeaders: string(responseHeaders),
		StatusCode:      c.Response().StatusCode(),
		UserID:          userID,
		CreatedAt:       time.Now(),
	}
}

// redactCredentials blanks any password-like field in a JSON body.
func redactCredentials(body string) string {
	if !strings.Contains(body, "assword") {
		return body
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return body
	}
	for key := range payload {
		if strings.Contains(strings.ToLower(key), "password") {
			payload[key] = "[REDACTED]"
		}
	}
	if redacted, err := json.Marshal(payload); err == nil {
		return string(redacted)
	}
	return body
}
