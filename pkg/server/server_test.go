package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Beastly713/bpcs/pkg/bitmap"
)

func checkerboardBMP(t *testing.T, w, h int) []byte {
	t.Helper()
	img := bitmap.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0xAA)
			if (x+y)%2 == 1 {
				v = 0x55
			}
			img.Set(x, y, bitmap.Pixel{R: v, G: v, B: v})
		}
	}
	data, err := bitmap.EncodeBytes(img)
	require.NoError(t, err)
	return data
}

func alternating(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = 0x55
		if i%2 == 1 {
			b[i] = 0xAA
		}
	}
	return b
}

type upload struct {
	field, name string
	data        []byte
}

func post(t *testing.T, h http.Handler, path string, files []upload, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestEmbedThenExtract(t *testing.T) {
	h := New(Options{}).Handler()
	fields := map[string]string{"password": "\x80", "encrypt": "true", "randomize": "on"}

	rec := post(t, h, "/embed", []upload{
		{"cover", "holiday.bmp", checkerboardBMP(t, 64, 64)},
		{"secret", "noise.bin", alternating(62)},
	}, fields)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/bmp", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "holiday_stego.bmp")
	assert.NotEmpty(t, rec.Header().Get("X-BPCS-PSNR"))

	stego, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	rec = post(t, h, "/extract", []upload{{"stego", "holiday_stego.bmp", stego}}, fields)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="noise.bin"`)
	assert.Equal(t, alternating(62), rec.Body.Bytes())
}

func TestEmbedTooLarge(t *testing.T) {
	h := New(Options{}).Handler()
	rec := post(t, h, "/embed", []upload{
		{"cover", "tiny.bmp", checkerboardBMP(t, 8, 8)},
		{"secret", "b", alternating(187)},
	}, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "error", env["status"])
	assert.Equal(t, float64(192), env["data"].(map[string]any)["maxCapacity"])
}

func TestExtractErrors(t *testing.T) {
	h := New(Options{}).Handler()

	rec := post(t, h, "/extract", []upload{{"stego", "x.png", []byte("\x89PNG\r\n\x1a\nnot a bitmap at all, padded out past the header")}}, nil)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = post(t, h, "/extract", []upload{{"stego", "clean.bmp", checkerboardBMP(t, 64, 64)}}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = post(t, h, "/extract", nil, map[string]string{"password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCapacityEndpoint(t *testing.T) {
	h := New(Options{}).Handler()
	rec := post(t, h, "/capacity", []upload{{"cover", "c.bmp", checkerboardBMP(t, 16, 8)}}, map[string]string{"threshold": "50"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decodeEnvelope(t, rec)
	data := env["data"].(map[string]any)
	assert.Equal(t, float64(48), data["eligible"])
	assert.Equal(t, float64(384), data["maxCapacity"])
	assert.Equal(t, float64(50), data["threshold"])
}

func TestUploadLimit(t *testing.T) {
	h := New(Options{MaxUploadBytes: 1024}).Handler()
	rec := post(t, h, "/capacity", []upload{{"cover", "c.bmp", checkerboardBMP(t, 64, 64)}}, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRoutes(t *testing.T) {
	h := New(Options{}).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "service up")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/embed", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
