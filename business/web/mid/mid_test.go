package mid_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/utxochain/business/web/errs"
	"github.com/ardanlabs/utxochain/business/web/mid"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/web"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func serve(t *testing.T, h web.Handler) *httptest.ResponseRecorder {
	t.Helper()

	log := zaptest.NewLogger(t).Sugar()

	app := web.NewApp(make(chan os.Signal, 1), mid.Logger(log), mid.Errors(log), mid.Cors("*"), mid.Panics())
	app.Handle(http.MethodGet, "v1", "/test", h)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/test", nil))

	return w
}

func TestErrors(t *testing.T) {
	t.Run("trusted", func(t *testing.T) {
		w := serve(t, func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return errs.NewTrusted(database.ErrInvalidBlock, http.StatusBadRequest)
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t, `{"error":"invalid block"}`, w.Body.String())
		require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("untrusted", func(t *testing.T) {
		w := serve(t, func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return errors.New("disk on fire")
		})

		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.NotContains(t, w.Body.String(), "disk on fire")
	})

	t.Run("panic", func(t *testing.T) {
		w := serve(t, func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			panic("boom")
		})

		require.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("unwrap", func(t *testing.T) {
		err := errs.NewTrusted(database.ErrInvalidMerkleRoot, http.StatusBadRequest)
		require.ErrorIs(t, err, database.ErrInvalidMerkleRoot)
	})
}
