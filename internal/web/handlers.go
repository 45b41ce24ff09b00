package web

import (
	"bytes"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ironsheep/image-brightness/internal/imaging"
	"github.com/ironsheep/image-brightness/internal/pipeline"
)

// Form field names, compatible with the original upload form.
const (
	fieldFile       = "file"
	fieldBrightness = "brightness"
	fieldCaptcha    = "g-recaptcha-response"
)

var channelFields = []struct {
	field   string
	channel imaging.Channel
}{
	{"red_checkbox", imaging.Red},
	{"green_checkbox", imaging.Green},
	{"blue_checkbox", imaging.Blue},
}

// multipartOverhead is the allowance on top of MaxUploadBytes for form
// fields and multipart framing.
const multipartOverhead = 64 << 10

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index.html", indexPage{
		SiteKey:     s.cfg.Recaptcha.SiteKey,
		Accept:      strings.Join(imaging.SupportedExtensions(), ","),
		MaxUploadKB: s.cfg.MaxUploadBytes / 1024,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

// handleBrightness validates an upload, runs the pipeline and renders the
// comparison page. Checks run in order: file present, extension, CAPTCHA,
// brightness value, decode.
func (s *Server) handleBrightness(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, http.StatusRequestEntityTooLarge, "The uploaded file is too large", err)
			return
		}
		s.fail(w, r, http.StatusBadRequest, "No file was uploaded", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(fieldFile)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "No file was uploaded", err)
		return
	}
	defer file.Close()

	if !imaging.IsSupportedExtension(header.Filename) {
		s.fail(w, r, http.StatusBadRequest, "File is not an image", nil)
		return
	}

	if err := s.verifier.Verify(r.Context(), r.FormValue(fieldCaptcha), clientIP(r)); err != nil {
		if errors.Is(err, ErrCaptchaFailed) {
			s.fail(w, r, http.StatusBadRequest, ErrCaptchaFailed.Error(), err)
			return
		}
		s.fail(w, r, http.StatusServiceUnavailable, "reCAPTCHA verification is unavailable, please retry", err)
		return
	}

	delta, err := strconv.Atoi(strings.TrimSpace(r.FormValue(fieldBrightness)))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "Brightness must be an integer", err)
		return
	}

	var channels imaging.ChannelSelection
	for _, cf := range channelFields {
		if r.FormValue(cf.field) != "" {
			channels = append(channels, cf.channel)
		}
	}

	raster, format, err := imaging.Decode(file, header.Filename, s.cfg.MaxUploadBytes)
	if err != nil {
		s.failPipeline(w, r, err)
		return
	}

	id, err := s.newID()
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Internal error", err)
		return
	}

	s.logger.Info("processing upload", "request_id", id, "format", format,
		"width", raster.Width, "height", raster.Height, "delta", delta, "channels", channels.Names())

	res, err := s.processor.Process(r.Context(), pipeline.Request{
		ID:       id,
		Image:    raster,
		Delta:    delta,
		Channels: channels,
	})
	if err != nil {
		s.failPipeline(w, r, err)
		return
	}

	art, err := s.store.Save(res)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to store results", err)
		return
	}

	url := func(name string) string {
		return "/uploads/" + art.ID + "/" + name
	}
	s.render(w, http.StatusOK, "result.html", resultPage{
		Delta:    res.Delta,
		Channels: res.Channels.Names(),
		Elapsed:  res.Elapsed.Round(time.Millisecond).String(),
		Sides: []resultSide{
			{Title: "Original", ImageURL: url(art.OriginalImage), PlotURL: url(art.OriginalPlot), Colors: res.OriginalColors},
			{Title: "Modified", ImageURL: url(art.ModifiedImage), PlotURL: url(art.ModifiedPlot), Colors: res.ModifiedColors},
		},
	})
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	path, err := s.store.Path(r.PathValue("id"), r.PathValue("name"))
	if err != nil {
		if errors.Is(err, ErrArtifactNotFound) {
			http.NotFound(w, r)
			return
		}
		s.fail(w, r, http.StatusInternalServerError, "Internal error", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeFile(w, r, path)
}

// failPipeline maps an imaging error kind to a response.
func (s *Server) failPipeline(w http.ResponseWriter, r *http.Request, err error) {
	switch imaging.Kind(err) {
	case imaging.KindInvalidInput:
		s.fail(w, r, http.StatusBadRequest, "The file could not be read as an image", err)
	case imaging.KindOutOfRangeChannel:
		s.fail(w, r, http.StatusBadRequest, "Unknown color channel selected", err)
	case imaging.KindDegenerateInput:
		s.fail(w, r, http.StatusUnprocessableEntity, "The image has no pixels", err)
	case imaging.KindRenderingFailure:
		s.fail(w, r, http.StatusInternalServerError, "Failed to draw the color distribution", err)
	default:
		if r.Context().Err() != nil {
			s.logger.Debug("request canceled", "path", r.URL.Path)
			return
		}
		s.fail(w, r, http.StatusInternalServerError, "Internal error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "reason", msg, "error", err)
	}
	s.render(w, status, "error.html", errorPage{
		Status:     status,
		StatusText: http.StatusText(status),
		Message:    msg,
	})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("template failed", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
