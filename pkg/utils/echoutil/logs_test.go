package echoutil_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fnndsc/chrisctl/pkg/utils/echoutil"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

func TestParseLevel(t *testing.T) {
	for name, expected := range map[string]log.Lvl{
		"debug": log.DEBUG,
		"INFO":  log.INFO,
		"warn":  log.WARN,
		"":      log.WARN,
		"error": log.ERROR,
		"off":   log.OFF,
	} {
		t.Run("level "+name, func(t *testing.T) {
			actual, err := echoutil.ParseLevel(name)
			if err != nil {
				t.Fatal(err)
			}
			if actual != expected {
				t.Errorf("(actual, expected) = (%d, %d)", actual, expected)
			}
		})
	}

	t.Run("unknown level is error, and falls back to warn", func(t *testing.T) {
		actual, err := echoutil.ParseLevel("verbose")
		if err == nil {
			t.Error("expected error is not returned")
		}
		if actual != log.WARN {
			t.Errorf("unexpected level: %d", actual)
		}
	})
}

func TestSetLevel(t *testing.T) {
	t.Run("it sets the level of the logger", func(t *testing.T) {
		e := echo.New()
		echoutil.SetLevel(e, "error")
		if e.Logger.Level() != log.ERROR {
			t.Errorf("unexpected level: %d", e.Logger.Level())
		}
	})

	t.Run("with unknown level, it warns and falls back to warn", func(t *testing.T) {
		e := echo.New()
		buf := new(bytes.Buffer)
		e.Logger.SetOutput(buf)
		echoutil.SetLevel(e, "verbose")
		if e.Logger.Level() != log.WARN {
			t.Errorf("unexpected level: %d", e.Logger.Level())
		}
		if !strings.Contains(buf.String(), "verbose") {
			t.Errorf("no warning: %s", buf.String())
		}
	})
}

func TestLogHandlerFunc(t *testing.T) {
	e := echo.New()
	buf := new(bytes.Buffer)
	e.Logger.SetOutput(buf)
	e.Logger.SetLevel(log.INFO)
	e.Use(echoutil.LogHandlerFunc)
	e.GET("/api/feeds/:feedId/tree", func(c echo.Context) error {
		return c.String(http.StatusTeapot, "tree")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/feeds/3/tree", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("unexpected status: %d", rec.Code)
	}
	logged := buf.String()
	for _, expected := range []string{
		"< request", "GET /api/feeds/3/tree",
		"> response status = 418",
	} {
		if !strings.Contains(logged, expected) {
			t.Errorf("log does not contain %q:\n%s", expected, logged)
		}
	}
}
