package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Beastly713/bpcs/pkg/bitmap"
	"github.com/Beastly713/bpcs/pkg/pipeline"
)

// envelope is the body of every JSON response.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, envelope{Status: "error", Message: msg, Data: struct{}{}})
}

// writeError reports a pipeline failure with the status its kind maps to.
func writeError(w http.ResponseWriter, err error) {
	res := pipeline.Classify(err)
	var data any = struct{}{}
	code := http.StatusBadRequest

	switch res.Kind {
	case pipeline.CapacityExceeded:
		data = map[string]int{"maxCapacity": res.MaxBytes}
	case pipeline.UnsupportedFormat:
		code = http.StatusUnsupportedMediaType
	case pipeline.CorruptData:
		code = http.StatusUnprocessableEntity
	case pipeline.IoError:
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, envelope{Status: "error", Message: res.Reason, Data: data})
}

// formConfig reads the optional pipeline fields of a request.
func (s *Server) formConfig(r *http.Request) (pipeline.Config, error) {
	cfg := pipeline.Config{
		Threshold: s.opts.Threshold,
		Encrypt:   formBool(r, "encrypt"),
		Randomize: formBool(r, "randomize"),
		Password:  r.FormValue("password"),
	}
	if v := r.FormValue("threshold"); v != "" {
		t, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("threshold %q is not a number", v)
		}
		cfg.Threshold = t
	}
	return cfg, nil
}

func formBool(r *http.Request, key string) bool {
	switch strings.ToLower(r.FormValue(key)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// parseForm bounds and parses a multipart request. It reports failures itself.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeFailure(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooBig.Limit))
			return false
		}
		writeFailure(w, http.StatusBadRequest, "bad form: "+err.Error())
		return false
	}
	return true
}

// formImage decodes the bitmap uploaded as field and returns its file name.
func formImage(r *http.Request, field string) (*bitmap.Image, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("missing %s file", field)
	}
	defer file.Close()

	img, err := bitmap.Decode(file)
	if err != nil {
		return nil, "", err
	}
	return img, filepath.Base(header.Filename), nil
}

// EmbedHandler: multipart form: cover (file), secret (file), password,
// encrypt, randomize, threshold
func (s *Server) EmbedHandler(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	cfg, err := s.formConfig(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	cover, coverName, err := formImage(r, "cover")
	if err != nil {
		writeError(w, err)
		return
	}

	file, header, err := r.FormFile("secret")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "missing secret file")
		return
	}
	defer file.Close()
	secret, err := io.ReadAll(file)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "could not read secret: "+err.Error())
		return
	}

	res, err := pipeline.Embed(r.Context(), cover, filepath.Base(header.Filename), secret, cfg)
	if err != nil {
		s.log.Debug().Err(err).Str("cover", coverName).Msg("embed failed")
		writeError(w, err)
		return
	}

	out, err := bitmap.EncodeBytes(res.Image)
	if err != nil {
		writeError(w, err)
		return
	}

	outName := strings.TrimSuffix(coverName, filepath.Ext(coverName)) + "_stego.bmp"
	w.Header().Set("Content-Type", "image/bmp")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outName))
	w.Header().Set("X-BPCS-PSNR", strconv.FormatFloat(res.PSNR, 'f', 4, 64))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	if _, err := w.Write(out); err != nil {
		s.log.Warn().Err(err).Msg("error writing bitmap to response")
	}
}

// ExtractHandler: multipart form: stego (file), password, encrypt,
// randomize, threshold
func (s *Server) ExtractHandler(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	cfg, err := s.formConfig(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	stego, _, err := formImage(r, "stego")
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := pipeline.Extract(r.Context(), stego, cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(res.Filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Secret)))
	if _, err := w.Write(res.Secret); err != nil {
		s.log.Warn().Err(err).Msg("error writing secret to response")
	}
}

// CapacityHandler: multipart form: cover (file), threshold
func (s *Server) CapacityHandler(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	cfg, err := s.formConfig(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	cover, _, err := formImage(r, "cover")
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := pipeline.Capacity(cover, cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: "success", Message: "capacity computed", Data: report})
}
