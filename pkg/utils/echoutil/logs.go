package echoutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// LogHandlerFunc is a middleware logging each request and its response.
func LogHandlerFunc(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		meth := c.Request().Method
		path := c.Request().URL
		BEGIN := time.Now()
		c.Logger().Infof(
			"< request @[%s] %s %s", BEGIN.Format(time.RFC3339Nano), meth, path,
		)

		var err error

		defer func() {
			END := time.Now()
			c.Logger().Infof(
				"> response status = %d (for request @[%s] %s %s) in %v / error = %v",
				c.Response().Status, BEGIN.Format(time.RFC3339Nano), meth, path, END.Sub(BEGIN), err,
			)
		}()

		err = next(c)
		return err
	}
}

// Levels are names of log levels which ParseLevel accepts.
var Levels = []string{"debug", "info", "warn", "error", "off"}

// ParseLevel returns the log level for its name.
//
// Empty name means "warn".
func ParseLevel(name string) (log.Lvl, error) {
	switch strings.ToLower(name) {
	case "debug":
		return log.DEBUG, nil
	case "info":
		return log.INFO, nil
	case "warn", "":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	default:
		return log.WARN, fmt.Errorf("unknown loglevel: %s", name)
	}
}

// SetLevel sets the log level of e by its name.
//
// Unknown names fall back to "warn".
func SetLevel(e *echo.Echo, loglevel string) {
	lvl, err := ParseLevel(loglevel)
	e.Logger.SetLevel(lvl)
	if err != nil {
		e.Logger.Warnf("%s. fall-backed to warn", err)
	}
}
