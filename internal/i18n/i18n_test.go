package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMatchLocale(t *testing.T) {
	cases := map[string]string{
		"":                      LocaleZhCN,
		"zh-CN,zh;q=0.9":        LocaleZhCN,
		"zh":                    LocaleZhCN,
		"en-US,en;q=0.8":        LocaleEnUS,
		"en-GB":                 LocaleEnUS,
		"fr-FR,en;q=0.5":        LocaleEnUS,
		"not a language tag!!!": LocaleZhCN,
	}
	for raw, want := range cases {
		assert.Equal(t, want, MatchLocale(raw), raw)
	}
}

func TestResolveLocalePrefersQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/balance?lang=en", nil)
	c.Request.Header.Set("Accept-Language", "zh-CN")
	assert.Equal(t, LocaleEnUS, ResolveLocale(c))

	assert.Equal(t, DefaultLocale, ResolveLocale(nil))
}

func TestTranslateFallback(t *testing.T) {
	assert.Equal(t, "服务器内部错误", T(LocaleZhCN, "error.internal"))
	assert.Equal(t, "Internal server error", T(LocaleEnUS, "error.internal"))
	assert.Equal(t, "服务器内部错误", T("ja-JP", "error.internal"))
	assert.Equal(t, "error.unknown_key", T(LocaleEnUS, "error.unknown_key"))
	assert.Equal(t, "操作过于频繁，请 30 秒后重试", Sprintf(LocaleZhCN, "error.too_many_requests", 30))
}

func TestMessageTablesHaveSameKeys(t *testing.T) {
	for key := range messages[LocaleZhCN] {
		_, ok := messages[LocaleEnUS][key]
		assert.True(t, ok, "missing en-US message for %s", key)
	}
	assert.Len(t, messages[LocaleEnUS], len(messages[LocaleZhCN]))
}
