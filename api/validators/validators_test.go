package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type couponBody struct {
	Code  string `json:"code" validate:"required,notblank,max=8"`
	Email string `json:"email" validate:"omitempty,email"`
}

func decode(body string) (couponBody, error) {
	var dest couponBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return dest, DecodeJSONBody(req, &dest)
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	got, err := decode(`{"code":"SAVE10","email":"a@b.co"}`)
	require.NoError(t, err)
	require.Equal(t, "SAVE10", got.Code)
}

func TestDecodeJSONBodyRejections(t *testing.T) {
	cases := map[string]string{
		"unknown field": `{"code":"SAVE10","extra":1}`,
		"blank code":    `{"code":"   "}`,
		"too long":      `{"code":"WAYTOOLONGCODE"}`,
		"bad email":     `{"code":"X","email":"nope"}`,
		"trailing data": `{"code":"X"}{"code":"Y"}`,
		"malformed":     `{"code":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decode(body)
			require.Error(t, err)
			require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestValidationDetailsUseJSONNames(t *testing.T) {
	_, err := decode(`{"code":""}`)
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	require.Equal(t, "is required", details["code"])
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	_, err := decode(`{"code":"` + strings.Repeat("A", maxBodyBytes) + `"}`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds")
}

func TestSanitizeString(t *testing.T) {
	require.Equal(t, "save 10", SanitizeString("  save \t  10 \n", 0))
	require.Equal(t, "héll", SanitizeString("héllo", 4))
	require.Equal(t, "", SanitizeString("   ", 10))
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=25&bad=x&big=900", nil)

	n, err := ParseQueryInt(req, "limit", 10, 1, 100)
	require.NoError(t, err)
	require.Equal(t, 25, n)

	n, err = ParseQueryInt(req, "missing", 10, 1, 100)
	require.NoError(t, err)
	require.Equal(t, 10, n)

	_, err = ParseQueryInt(req, "bad", 10, 1, 100)
	require.Error(t, err)

	_, err = ParseQueryInt(req, "big", 10, 1, 100)
	require.Error(t, err)
}
