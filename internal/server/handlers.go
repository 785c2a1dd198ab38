package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kapu/digital-card-go/internal/constants"
	"github.com/kapu/digital-card-go/internal/domain"
	"github.com/kapu/digital-card-go/internal/i18n"
	"github.com/kapu/digital-card-go/internal/qrcode"
	"github.com/kapu/digital-card-go/internal/share"
	"github.com/kapu/digital-card-go/internal/util"
	"github.com/kapu/digital-card-go/internal/vcard"
	"github.com/kapu/digital-card-go/internal/web"
	"github.com/kapu/digital-card-go/pkg/errors"
)

type handlers struct {
	deps   Dependencies
	logger *zap.Logger
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

type localesResponse struct {
	i18n.Rendered
	OtherLang i18n.Language `json:"other"`
	OtherName string        `json:"otherName"`
}

type healthResponse struct {
	Status string          `json:"status"`
	Cache  cacheHealth     `json:"cache"`
	AI     aiHealth        `json:"ai"`
	Time   time.Time       `json:"time"`
	Langs  []i18n.Language `json:"languages"`
}

type cacheHealth struct {
	Backend string `json:"backend"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

type aiHealth struct {
	Enabled bool                       `json:"enabled"`
	Circuit *util.CircuitBreakerStatus `json:"circuit,omitempty"`
}

func (h *handlers) page(w http.ResponseWriter, r *http.Request) {
	loc := h.deps.Localizer
	session := loc.SessionFor(loc.Negotiate(r.URL.Query().Get("lang")))
	links := share.Build(domain.ShareInputFrom(h.deps.Profile))

	data := web.NewPageData(h.deps.Profile, loc, session, links)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", string(session.Active()))
	if err := h.deps.Renderer.Render(w, data); err != nil {
		h.logger.Error("Failed to render card page", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

func (h *handlers) vcard(w http.ResponseWriter, r *http.Request) {
	body := vcard.Encode(h.deps.Profile)

	w.Header().Set("Content-Type", vcard.ContentType)
	w.Header().Set("Content-Disposition", vcard.ContentDisposition(h.deps.Profile))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (h *handlers) share(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := share.LinkOptions{
		Recipient: query.Get("to"),
		Suggest:   parseBool(query.Get("suggest")),
	}

	result := h.deps.Share.Links(r.Context(), domain.ShareInputFrom(h.deps.Profile), opts)
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) qr(w http.ResponseWriter, r *http.Request) {
	opts, err := h.qrOptions(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	img, err := h.deps.QR.Generate(r.Context(), h.deps.Profile.CardURL, opts)
	if err != nil {
		if stderrors.Is(err, context.Canceled) {
			return
		}
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", qrcode.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.PNG)))
	if parseBool(r.URL.Query().Get("download")) {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, constants.QRDefaults.DownloadFilename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.PNG)
}

func (h *handlers) qrOptions(r *http.Request) (qrcode.Options, error) {
	opts := h.deps.QROptions
	query := r.URL.Query()

	if v := query.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.NewValidationError("size must be an integer", "size", v)
		}
		opts.Size = size
	}
	if v := query.Get("margin"); v != "" {
		margin, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.NewValidationError("margin must be an integer", "margin", v)
		}
		opts.Margin = margin
	}
	if v := query.Get("level"); v != "" {
		level, err := qrcode.ParseLevel(v)
		if err != nil {
			return opts, err
		}
		opts.Level = level
	}

	return opts, opts.Validate()
}

func (h *handlers) locales(w http.ResponseWriter, r *http.Request) {
	loc := h.deps.Localizer
	lang := i18n.Language(chi.URLParam(r, "lang"))
	if !loc.Supports(lang) {
		writeError(w, http.StatusNotFound, "UNKNOWN_LANGUAGE", fmt.Sprintf("language %q is not supported", lang))
		return
	}

	session := loc.SessionFor(lang)
	writeJSON(w, http.StatusOK, localesResponse{
		Rendered:  loc.Render(lang, map[string]any{"Name": h.deps.Profile.Name}),
		OtherLang: session.Other(),
		OtherName: loc.Text(session.Other(), i18n.LanguageNameKey),
	})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Time:   time.Now().UTC(),
		Langs:  h.deps.Localizer.Languages(),
		Cache:  cacheHealth{Backend: "none", OK: true},
	}

	if h.deps.Cache != nil {
		resp.Cache.Backend = h.deps.Cache.Name()
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.deps.Cache.Ping(ctx); err != nil {
			resp.Cache.OK = false
			resp.Cache.Error = err.Error()
			resp.Status = "degraded"
		}
	}

	resp.AI.Enabled = h.deps.Share.SuggestionsEnabled()
	if h.deps.Circuit != nil {
		status := h.deps.Circuit.GetCircuitStatus()
		resp.AI.Circuit = &status
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.StatusOf(err)
	code := errors.CodeOf(err)

	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= 500 {
		h.logger.Error("Request failed", fields...)
	} else {
		h.logger.Warn("Request rejected", fields...)
	}

	message := err.Error()
	if status >= 500 {
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: message, Code: code, RequestID: RequestIDFrom(r.Context())})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
