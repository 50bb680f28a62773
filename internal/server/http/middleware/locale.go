package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/polkiloo/storefront/internal/server/http/i18n"
)

// LanguageContextKey is a gin context key for the negotiated response language.
const LanguageContextKey = "language"

// Locale negotiates the response language from Accept-Language.
func Locale() gin.HandlerFunc {
	return func(c *gin.Context) {
		tag := i18n.Match(c.GetHeader("Accept-Language"))
		c.Set(LanguageContextKey, tag)
		c.Header("Content-Language", tag.String())
		c.Next()
	}
}

// Language returns the negotiated language, English when Locale did not run.
func Language(c *gin.Context) language.Tag {
	if val, ok := c.Get(LanguageContextKey); ok {
		if tag, ok := val.(language.Tag); ok {
			return tag
		}
	}
	return language.English
}
