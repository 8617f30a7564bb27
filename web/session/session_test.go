package session

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))
	r.Use(sessions.Sessions(CookieName, store))
	r.GET("/login/:id", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		if err := SetLoginUser(c, id); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := GetLoginUserID(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, strconv.Itoa(id))
	})
	r.GET("/flash", func(c *gin.Context) {
		_ = AddError(c, "bad")
		_ = AddSuccess(c, "good")
		c.Status(http.StatusOK)
	})
	r.GET("/pop", func(c *gin.Context) {
		f := PopFlashes(c)
		c.String(http.StatusOK, strings.Join(f.Errors, ",")+"|"+strings.Join(f.Success, ","))
	})
	r.GET("/logout", func(c *gin.Context) {
		_ = ClearSession(c)
		c.Status(http.StatusOK)
	})
	return r
}

// client keeps one cookie per name; a later Set-Cookie in the same
// response replaces an earlier one, as browsers do.
type client struct {
	t       *testing.T
	r       *gin.Engine
	cookies map[string]*http.Cookie
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	if c.cookies == nil {
		c.cookies = map[string]*http.Cookie{}
	}
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

func TestLoginBinding(t *testing.T) {
	c := &client{t: t, r: newRouter()}

	assert.Equal(t, "anonymous", c.get("/whoami").Body.String())

	require.Equal(t, http.StatusOK, c.get("/login/7").Code)
	assert.Equal(t, "7", c.get("/whoami").Body.String())

	// a second login replaces the first binding
	c.get("/login/9")
	assert.Equal(t, "9", c.get("/whoami").Body.String())

	c.get("/logout")
	assert.Equal(t, "anonymous", c.get("/whoami").Body.String())
}

func TestFlashesShownOnce(t *testing.T) {
	c := &client{t: t, r: newRouter()}

	w := c.get("/flash")
	// each flash saves the session; the last cookie carries both
	assert.Len(t, w.Result().Cookies(), 2)
	assert.Equal(t, "bad|good", c.get("/pop").Body.String())
	assert.Equal(t, "|", c.get("/pop").Body.String())
}
