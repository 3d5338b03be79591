package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, hash, err := GenerateToken()
	require.NoError(t, err)

	assert.Len(t, token, 43)
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.Equal(t, HashString(token), hash)
	assert.Len(t, hash, 64)

	other, _, err := GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestDateOnlyKeepsCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2025, 3, 31, 23, 30, 0, 0, loc)

	assert.Equal(t, "2025-03-31", FormatDate(DateOnly(late)))
	assert.Equal(t, "", FormatDatePtr(nil))

	_, err := ParseDate("2025-02-30")
	assert.Error(t, err)
}

func TestErrorResponseEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(ContextRequestID, "01J0000000000000000000000")

	ConflictResponse(c, "contract has amendments")

	assert.Equal(t, http.StatusConflict, w.Code)
	var body APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "01J0000000000000000000000", body.RequestID)
	require.NotNil(t, body.Error)
	assert.Equal(t, CodeConflict, body.Error.Code)
	assert.Equal(t, "contract has amendments", body.Error.Message)
}

func TestAttachmentResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	AttachmentResponse(c, "statement.xlsx", "application/octet-stream", []byte("PK"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="statement.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK", w.Body.String())
}

func TestContextGetters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Equal(t, "en", GetLangFromContext(c))
	_, ok := GetUserIDFromContext(c)
	assert.False(t, ok)

	c.Set(ContextLang, "es")
	c.Set(ContextRole, "Legal")
	assert.Equal(t, "es", GetLangFromContext(c))
	role, ok := GetUserRoleFromContext(c)
	assert.True(t, ok)
	assert.Equal(t, "Legal", role)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%US%", LikePattern("US"))
	assert.Equal(t, `%100\%\_off%`, LikePattern("100%_off"))
	assert.Equal(t, `%a\\b%`, LikePattern(`a\b`))
}
