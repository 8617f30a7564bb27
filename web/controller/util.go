package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/usjp/campus-panel/config"
	"github.com/usjp/campus-panel/logger"
	"github.com/usjp/campus-panel/web/entity"
	"github.com/usjp/campus-panel/web/middleware"
	"github.com/usjp/campus-panel/web/service"
	"github.com/usjp/campus-panel/web/session"
)

// jsonMsg sends a JSON response with a message and error status.
func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

// jsonObj sends a JSON response with an object and error status.
func jsonObj(c *gin.Context, obj any, err error) {
	jsonMsgObj(c, "", obj, err)
}

// jsonMsgObj sends a JSON response with a message, object, and error status.
// Errors are reported by their localized message, never by their text.
func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	m := entity.Msg{
		Obj: obj,
	}
	if err == nil {
		m.Success = true
		m.Msg = msg
	} else {
		m.Success = false
		m.Msg = I18nWeb(c, service.MessageKey(err))
		if service.MessageKey(err) == "errors.internal" {
			logger.Warning(c.Request.URL.Path, "failed:", err)
		}
	}
	c.JSON(http.StatusOK, m)
}

// pureJsonMsg sends a pure JSON message response with custom status code.
func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// html renders a page with the shared layout data and drains pending
// flash messages into it.
func html(c *gin.Context, name string, title string, data gin.H) {
	htmlStatus(c, http.StatusOK, name, title, data)
}

func htmlStatus(c *gin.Context, code int, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = I18nWeb(c, title)
	data["base_path"] = c.GetString("base_path")
	data["request_uri"] = c.Request.RequestURI
	data["request_id"] = middleware.GetRequestID(c)
	data["flashes"] = session.PopFlashes(c)
	data["T"] = func(key string, params ...string) string {
		return I18nWeb(c, key, params...)
	}
	if user := middleware.Principal(c); user != nil {
		data["principal"] = user
	}
	c.HTML(code, name, getContext(data))
}

// getContext adds version and other context data to the provided gin.H.
func getContext(h gin.H) gin.H {
	a := gin.H{
		"cur_ver": config.GetVersion(),
		"app":     config.GetName(),
	}
	for key, value := range h {
		a[key] = value
	}
	return a
}

// paramID parses a positive integer path parameter. Malformed ids are
// reported as missing records.
func paramID(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, service.ErrNotFound
	}
	return id, nil
}
