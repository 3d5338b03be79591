// internal/middleware/i18n.go
package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/rights-backend/internal/i18n"
	"github.com/javajoker/rights-backend/internal/utils"
)

// I18nMiddleware picks the first supported language from Accept-Language,
// falling back to defaultLang.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	if defaultLang == "" {
		defaultLang = "en"
	}

	return func(c *gin.Context) {
		c.Set(utils.ContextLang, negotiateLanguage(c.GetHeader("Accept-Language"), i18n.GetSupportedLanguages(), defaultLang))
		c.Next()
	}
}

// negotiateLanguage handles headers like "es-MX,es;q=0.9,en;q=0.8". Quality
// values are ignored; order decides.
func negotiateLanguage(header string, supported []string, fallback string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		if tag == "" {
			continue
		}
		base := strings.SplitN(strings.ReplaceAll(tag, "_", "-"), "-", 2)[0]
		if slices.Contains(supported, base) {
			return base
		}
	}
	return fallback
}
