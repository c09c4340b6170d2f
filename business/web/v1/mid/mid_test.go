package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/quarrychain/quarry/business/sys/validate"
	v1 "github.com/quarrychain/quarry/business/web/v1"
	"github.com/quarrychain/quarry/business/web/v1/mid"
	"github.com/quarrychain/quarry/foundation/web"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func newApp() (*web.App, chan os.Signal) {
	shutdown := make(chan os.Signal, 1)
	log := zap.NewNop().Sugar()

	app := web.NewApp(
		shutdown,
		mid.Logger(log),
		mid.Errors(log),
		mid.Metrics(),
		mid.Panics(),
	)

	return app, shutdown
}

func serve(t *testing.T, app *web.App, method string, path string) (int, v1.ErrorResponse) {
	t.Helper()

	r := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, r)

	var er v1.ErrorResponse
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
			t.Fatalf("\t%s\tShould be able to parse the response : %v", failed, err)
		}
	}

	return w.Code, er
}

func Test_ErrorMapping(t *testing.T) {
	t.Log("Given the need to map handler errors to client responses.")
	{
		app, shutdown := newApp()

		app.Handle(http.MethodGet, "v1", "/trusted", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return v1.NewRequestError(errors.New("block not accepted"), http.StatusNotAcceptable)
		})
		app.Handle(http.MethodGet, "v1", "/fields", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			val := struct {
				Receiver string  `json:"receiver_address" validate:"required"`
				Amount   float64 `json:"amount" validate:"required,gt=0"`
			}{}
			return validate.Check(val)
		})
		app.Handle(http.MethodGet, "v1", "/untrusted", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return errors.New("connection reset")
		})
		app.Handle(http.MethodGet, "v1", "/panics", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			panic("boom")
		})
		app.Handle(http.MethodGet, "v1", "/ok", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return web.Respond(ctx, w, struct {
				Status string `json:"status"`
			}{"up"}, http.StatusOK)
		})

		t.Logf("\tTest 0:\tWhen a handler returns a trusted request error.")
		{
			code, er := serve(t, app, http.MethodGet, "/v1/trusted")
			if code != http.StatusNotAcceptable || er.Error != "block not accepted" {
				t.Errorf("\t%s\tTest 0:\tShould respond with the trusted status and message. code[%d] error[%q]", failed, code, er.Error)
			} else {
				t.Logf("\t%s\tTest 0:\tShould respond with the trusted status and message.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen a handler returns field validation errors.")
		{
			code, er := serve(t, app, http.MethodGet, "/v1/fields")
			if code != http.StatusBadRequest || er.Error != "data validation error" {
				t.Errorf("\t%s\tTest 1:\tShould respond with a data validation error. code[%d] error[%q]", failed, code, er.Error)
			} else {
				t.Logf("\t%s\tTest 1:\tShould respond with a data validation error.", success)
			}

			if er.Fields["receiver_address"] == "" || er.Fields["amount"] == "" {
				t.Errorf("\t%s\tTest 1:\tShould name the failing fields. fields[%v]", failed, er.Fields)
			} else {
				t.Logf("\t%s\tTest 1:\tShould name the failing fields.", success)
			}
		}

		t.Logf("\tTest 2:\tWhen a handler returns an untrusted error.")
		{
			code, er := serve(t, app, http.MethodGet, "/v1/untrusted")
			if code != http.StatusInternalServerError || er.Error != http.StatusText(http.StatusInternalServerError) {
				t.Errorf("\t%s\tTest 2:\tShould hide the error behind a 500. code[%d] error[%q]", failed, code, er.Error)
			} else {
				t.Logf("\t%s\tTest 2:\tShould hide the error behind a 500.", success)
			}
		}

		t.Logf("\tTest 3:\tWhen a handler panics.")
		{
			code, _ := serve(t, app, http.MethodGet, "/v1/panics")
			if code != http.StatusInternalServerError {
				t.Errorf("\t%s\tTest 3:\tShould recover and respond with a 500. code[%d]", failed, code)
			} else {
				t.Logf("\t%s\tTest 3:\tShould recover and respond with a 500.", success)
			}

			if len(shutdown) != 0 {
				t.Errorf("\t%s\tTest 3:\tShould not signal a shutdown for a handled error.", failed)
			} else {
				t.Logf("\t%s\tTest 3:\tShould not signal a shutdown for a handled error.", success)
			}
		}

		t.Logf("\tTest 4:\tWhen a handler succeeds.")
		{
			code, _ := serve(t, app, http.MethodGet, "/v1/ok")
			if code != http.StatusOK {
				t.Errorf("\t%s\tTest 4:\tShould pass the response through untouched. code[%d]", failed, code)
			} else {
				t.Logf("\t%s\tTest 4:\tShould pass the response through untouched.", success)
			}
		}
	}
}

func Test_ShutdownSignal(t *testing.T) {
	t.Log("Given the need to bring the service down on integrity errors.")
	{
		t.Logf("\tTest 0:\tWhen a handler reports a shutdown error.")
		{
			app, shutdown := newApp()

			app.Handle(http.MethodGet, "v1", "/integrity", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				return web.NewShutdownError("web value missing from context")
			})

			code, _ := serve(t, app, http.MethodGet, "/v1/integrity")
			if code != http.StatusInternalServerError {
				t.Errorf("\t%s\tTest 0:\tShould respond with a 500 first. code[%d]", failed, code)
			} else {
				t.Logf("\t%s\tTest 0:\tShould respond with a 500 first.", success)
			}

			select {
			case <-shutdown:
				t.Logf("\t%s\tTest 0:\tShould signal the service to shut down.", success)
			default:
				t.Errorf("\t%s\tTest 0:\tShould signal the service to shut down.", failed)
			}
		}
	}
}
