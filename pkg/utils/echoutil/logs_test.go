package echoutil_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/keti-strato/pms/pkg/utils/echoutil"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

func TestParseLevel(t *testing.T) {
	theory := func(name string, want log.Lvl, wantOk bool) func(*testing.T) {
		return func(t *testing.T) {
			got, ok := echoutil.ParseLevel(name)
			if got != want || ok != wantOk {
				t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", name, got, ok, want, wantOk)
			}
		}
	}

	t.Run("debug", theory("debug", log.DEBUG, true))
	t.Run("INFO", theory("INFO", log.INFO, true))
	t.Run("warn", theory("warn", log.WARN, true))
	t.Run("empty", theory("", log.WARN, true))
	t.Run("error", theory("error", log.ERROR, true))
	t.Run("off", theory("off", log.OFF, true))
	t.Run("unknown", theory("verbose", log.WARN, false))
}

func TestMiddlewares(t *testing.T) {
	e := echo.New()
	buf := new(bytes.Buffer)
	e.Logger.SetOutput(buf)
	echoutil.SetLevel(e, "info")
	e.Use(echoutil.RequestID(), echoutil.LogHandlerFunc)
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	t.Run("it gives a request id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		rid := rec.Header().Get(echo.HeaderXRequestID)
		if rid == "" {
			t.Fatal("request id is not set")
		}
		if !strings.Contains(buf.String(), rid) {
			t.Errorf("request id is not logged: %s", buf.String())
		}
		if !strings.Contains(buf.String(), "status = 200") {
			t.Errorf("response is not logged: %s", buf.String())
		}
	})

	t.Run("it keeps a request id from client", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(echo.HeaderXRequestID, "client-given-id")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rid := rec.Header().Get(echo.HeaderXRequestID); rid != "client-given-id" {
			t.Errorf("unexpected request id: %s", rid)
		}
	})
}
