package web_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/web"
	"github.com/stretchr/testify/require"
)

func TestHandle(t *testing.T) {
	shutdown := make(chan os.Signal, 1)

	var order []string
	mw := func(name string) web.Middleware {
		return func(handler web.Handler) web.Handler {
			return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				order = append(order, name)
				return handler(ctx, w, r)
			}
		}
	}

	app := web.NewApp(shutdown, mw("app"))

	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		v, err := web.GetValues(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, v.TraceID)

		var body struct {
			Name string `json:"name"`
		}
		if err := web.Decode(r, &body); err != nil {
			return err
		}

		return web.Respond(ctx, w, map[string]string{"id": web.Param(r, "id"), "name": body.Name}, http.StatusOK)
	}
	app.Handle(http.MethodPost, "v1", "/things/:id", h, mw("route"))

	r := httptest.NewRequest(http.MethodPost, "/v1/things/42", strings.NewReader(`{"name":"bill"}`))
	w := httptest.NewRecorder()
	app.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":"42","name":"bill"}`, w.Body.String())
	require.Equal(t, []string{"app", "route"}, order)
}

func TestShutdownError(t *testing.T) {
	shutdown := make(chan os.Signal, 1)
	app := web.NewApp(shutdown)

	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.NewShutdownError("integrity issue")
	}
	app.Handle(http.MethodGet, "", "/fail", h)

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	require.Len(t, shutdown, 1)
	require.True(t, web.IsShutdown(web.NewShutdownError("x")))
	require.False(t, web.IsShutdown(errors.New("x")))
}
