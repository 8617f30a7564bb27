// Package locale resolves user-facing messages through go-i18n. The
// language comes from the "lang" cookie or the Accept-Language header.
package locale

import (
	"io/fs"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"github.com/usjp/campus-panel/logger"
)

const (
	localizerKey = "localizer"
	// I18nKey holds the template helper in the gin context.
	I18nKey = "I18n"
)

var i18nBundle *i18n.Bundle

// InitLocalizer parses every file under dir of fsys into the bundle.
// English is the fallback language.
func InitLocalizer(fsys fs.FS, dir string) error {
	bundle := i18n.NewBundle(language.MustParse("en-US"))
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	if err := parseTranslationFiles(fsys, dir, bundle); err != nil {
		return err
	}
	i18nBundle = bundle
	return nil
}

func parseTranslationFiles(fsys fs.FS, dir string, bundle *i18n.Bundle) error {
	return fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		_, err = bundle.ParseMessageFileBytes(data, path)
		return err
	})
}

func createTemplateData(params []string, separator ...string) map[string]any {
	sep := "=="
	if len(separator) > 0 {
		sep = separator[0]
	}
	templateData := make(map[string]any, len(params))
	for _, param := range params {
		parts := strings.SplitN(param, sep, 2)
		if len(parts) == 2 {
			templateData[parts[0]] = parts[1]
		}
	}
	return templateData
}

// LocalizerMiddleware attaches a request scoped localizer and the template
// helper to the context.
func LocalizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var langs []string
		if cookie, err := c.Request.Cookie("lang"); err == nil {
			langs = append(langs, cookie.Value)
		}
		langs = append(langs, c.GetHeader("Accept-Language"))

		if i18nBundle != nil {
			localizer := i18n.NewLocalizer(i18nBundle, langs...)
			c.Set(localizerKey, localizer)
		}
		c.Set(I18nKey, func(key string, params ...string) string {
			return T(c, key, params...)
		})
		c.Next()
	}
}

// T localizes key for the request. Params are "name==value" pairs. The key
// itself is returned when no translation is available.
func T(c *gin.Context, key string, params ...string) string {
	v, ok := c.Get(localizerKey)
	if !ok {
		return key
	}
	localizer := v.(*i18n.Localizer)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
	if err != nil {
		logger.Warningf("Failed to localize message %q: %v", key, err)
		return key
	}
	return msg
}
