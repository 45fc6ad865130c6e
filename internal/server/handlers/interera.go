package handlers

import (
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/interera/interera/internal/server/response"
	"github.com/interera/interera/internal/sessions"
	"github.com/interera/interera/internal/studio"
	"github.com/interera/interera/pkg/constants"
	"github.com/interera/interera/pkg/errors"
)

// maxRequestBytes caps a multipart request body: two uploads plus form
// field overhead.
const maxRequestBytes = 2*constants.MaxUploadBytes + 1<<20

// HandleFurnish handles POST /api/v1/interera.
// @Summary Furnish an interior photo
// @Description Generate a furnished rendering of an empty interior photo
// @Tags interera
// @Accept multipart/form-data
// @Produce image/png
// @Param image formData file true "Interior photo (JPEG, PNG, or WebP)"
// @Param style formData string false "Style preset id (default: modern)"
// @Success 200 {file} binary "Generated image"
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 415 {object} response.Response{error=response.Error}
// @Failure 502 {object} response.Response{error=response.Error}
// @Failure 504 {object} response.Response{error=response.Error}
// @Router /api/v1/interera [post].
func (h *Handlers) HandleFurnish(w http.ResponseWriter, r *http.Request) {
	image, ok := h.readUpload(w, r, "image")
	if !ok {
		return
	}
	style := r.FormValue("style")

	sessionID := sessionFromRequest(r)
	isNew := sessionID == ""
	if isNew {
		sessionID = sessions.NewID()
	}

	result, err := h.studio.Furnish(r.Context(), sessionID, image, style)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	h.cache.Delete(historyCacheKey(sessionID))
	if isNew {
		setSessionCookie(w, sessionID)
	}
	h.writeImage(w, result)
}

// HandleInpaint handles POST /api/v1/interera/inpaint.
// @Summary Generate a furniture design sheet
// @Description Isolate the masked furniture object and render an orthographic design sheet
// @Tags interera
// @Accept multipart/form-data
// @Produce image/png
// @Param image formData file true "Room photo containing the object"
// @Param mask formData file true "Binary mask; white marks the target object"
// @Param optional_detail formData string false "Free-form note appended to the prompt"
// @Success 200 {file} binary "Generated design sheet"
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 415 {object} response.Response{error=response.Error}
// @Failure 502 {object} response.Response{error=response.Error}
// @Failure 504 {object} response.Response{error=response.Error}
// @Router /api/v1/interera/inpaint [post].
func (h *Handlers) HandleInpaint(w http.ResponseWriter, r *http.Request) {
	image, ok := h.readUpload(w, r, "image")
	if !ok {
		return
	}
	mask, ok := h.readUpload(w, r, "mask")
	if !ok {
		return
	}
	detail := r.FormValue("optional_detail")

	sessionID := sessionFromRequest(r)
	isNew := sessionID == ""
	if isNew {
		sessionID = sessions.NewID()
	}

	result, err := h.studio.Inpaint(r.Context(), sessionID, image, mask, detail)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	h.cache.Delete(historyCacheKey(sessionID))
	if isNew {
		setSessionCookie(w, sessionID)
	}
	h.writeImage(w, result)
}

// HandleHistory handles GET /api/v1/interera/history.
// @Summary Session generation history
// @Description List the generated images retained for the caller's session
// @Tags interera
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Failure 401 {object} response.Response{error=response.Error}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/interera/history [get].
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, err := requireSession(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	// Check cache
	cacheKey := historyCacheKey(sessionID)
	if cached, found := h.cache.Get(cacheKey); found {
		response.OK(w, cached)
		return
	}

	images, err := h.studio.History(r.Context(), sessionID)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	encoded := make([]string, len(images))
	for i, img := range images {
		encoded[i] = base64.StdEncoding.EncodeToString(img.Data)
	}
	result := map[string]any{
		"count":         len(images),
		"images_base64": encoded,
	}

	h.cache.Set(cacheKey, result)

	response.OK(w, result)
}

// HandleHistoryImage handles GET /api/v1/interera/history/{index}.
// @Summary One history entry
// @Description Return a single generated image from the caller's session history
// @Tags interera
// @Produce image/png
// @Param index path integer true "History index, 0 is the oldest entry"
// @Success 200 {file} binary "Stored image"
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 401 {object} response.Response{error=response.Error}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/interera/history/{index} [get].
func (h *Handlers) HandleHistoryImage(w http.ResponseWriter, r *http.Request, indexParam string) {
	sessionID, err := requireSession(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	index, err := strconv.Atoi(indexParam)
	if err != nil {
		response.BadRequest(w, "Invalid history index", indexParam)
		return
	}

	img, err := h.studio.HistoryImage(r.Context(), sessionID, index)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	w.Header().Set("Content-Type", img.MIMEType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		h.logger.Error().Err(err).Msg("Writing history image failed")
	}
}

// HandleClearHistory handles DELETE /api/v1/interera/history.
// @Summary Clear session history
// @Description Remove every generated image retained for the caller's session
// @Tags interera
// @Success 204 "History cleared"
// @Failure 401 {object} response.Response{error=response.Error}
// @Router /api/v1/interera/history [delete].
func (h *Handlers) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, err := requireSession(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	if err := h.studio.ClearHistory(r.Context(), sessionID); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	h.cache.Delete(historyCacheKey(sessionID))

	w.WriteHeader(http.StatusNoContent)
}

// HandleStyles handles GET /api/v1/interera/styles.
// @Summary List style presets
// @Description List the style presets accepted by the furnish endpoint
// @Tags interera
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /api/v1/interera/styles [get].
func (h *Handlers) HandleStyles(w http.ResponseWriter, _ *http.Request) {
	// Check cache
	if cached, found := h.cache.Get("styles"); found {
		response.OK(w, cached)
		return
	}

	styles := h.studio.Styles()
	result := map[string]any{
		"styles":  styles,
		"default": h.studio.DefaultStyle(),
		"count":   len(styles),
	}

	h.cache.Set("styles", result)

	response.OK(w, result)
}

// readUpload pulls one file out of the multipart form, writing the error
// response itself when the request is unusable. The body cap must be in
// place before the first FormFile call parses the form.
func (h *Handlers) readUpload(w http.ResponseWriter, r *http.Request, field string) (studio.Upload, bool) {
	if r.MultipartForm == nil && r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		response.BadRequest(w, "Missing or unreadable file field", field)
		return studio.Upload{}, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "Reading uploaded file failed", field)
		return studio.Upload{}, false
	}

	return studio.Upload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	}, true
}

// writeImage sends a generation result as a raw image body.
func (h *Handlers) writeImage(w http.ResponseWriter, result studio.Result) {
	w.Header().Set("Content-Type", result.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Image)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Image); err != nil {
		h.logger.Error().Err(err).Msg("Writing generated image failed")
	}
}

func historyCacheKey(sessionID string) string {
	return "history:" + sessionID
}

// sessionFromRequest returns the caller's session id, or "" when the cookie
// is absent.
func sessionFromRequest(r *http.Request) string {
	c, err := r.Cookie(constants.SessionCookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	return c.Value
}

// requireSession returns the caller's session id or a SessionError when the
// cookie is missing.
func requireSession(r *http.Request) (string, error) {
	sessionID := sessionFromRequest(r)
	if sessionID == "" {
		return "", errors.NewSessionError("missing session cookie")
	}
	return sessionID, nil
}

// setSessionCookie attaches a new session cookie to the response. The cookie
// is the sole client identity: HttpOnly, lax, one week.
func setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(constants.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	})
}
