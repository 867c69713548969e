package httphandlers

import (
	"accordee/internal/eventbus"
	"accordee/internal/manager"
	"accordee/internal/types"
	"accordee/logger"
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"net/http"
	"strconv"
)

var (
	maxUploadSize int64 = 10 << 20 // 10MB
)

type (
	ApiHandler struct {
		mn manager.Manager
	}
)

func NewApiHandler(mn manager.Manager) *ApiHandler {
	return &ApiHandler{mn: mn}
}

func (handler *ApiHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var params types.SignupParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		badRequest(w, errors.Wrap(err, "invalid request body"))
		return
	}

	resp, err := handler.mn.Signup(r.Context(), params)
	if err != nil {
		writeError(w, err, nil)
		return
	}

	created(w, "user created", resp)
}

func (handler *ApiHandler) Login(w http.ResponseWriter, r *http.Request) {
	var params types.LoginParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		badRequest(w, errors.Wrap(err, "invalid request body"))
		return
	}

	resp, err := handler.mn.Login(r.Context(), params)
	if err != nil {
		writeError(w, err, nil)
		return
	}

	ok(w, "logged in", resp)
}

func (handler *ApiHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ok(w, "token is valid", userFrom(r.Context()))
}

func (handler *ApiHandler) ListDashboards(w http.ResponseWriter, r *http.Request) {
	dashboards, err := handler.mn.ListDashboards(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err, nil)
		return
	}

	ok(w, "success", dashboards)
}

func (handler *ApiHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	dashboard, err := handler.mn.GetPage(r.Context(), chi.URLParam(r, "url"))
	if err != nil {
		writeError(w, err, nil)
		return
	}

	ok(w, "success", dashboard)
}

func (handler *ApiHandler) CreateDashboard(w http.ResponseWriter, r *http.Request) {
	var params types.CreateDashboardParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		badRequest(w, errors.Wrap(err, "invalid request body"))
		return
	}

	dashboard, err := handler.mn.CreateDashboard(r.Context(), userFrom(r.Context()), params)
	if err != nil {
		writeError(w, err, nil)
		return
	}

	created(w, "dashboard created", dashboard)
}

func (handler *ApiHandler) UpdateDashboard(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	var params types.UpdateDashboardParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		badRequest(w, errors.Wrap(err, "invalid request body"))
		return
	}

	dashboard, err := handler.mn.UpdateDashboard(r.Context(), userFrom(r.Context()), id, params)
	if err != nil {
		writeError(w, err, nil)
		return
	}

	ok(w, "dashboard updated", dashboard)
}

func (handler *ApiHandler) DeleteDashboard(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	if err := handler.mn.DeleteDashboard(r.Context(), userFrom(r.Context()), id); err != nil {
		writeError(w, err, nil)
		return
	}

	ok(w, "dashboard deleted", nil)
}

func (handler *ApiHandler) ReplaceSections(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	var params types.ReplaceSectionsParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		badRequest(w, errors.Wrap(err, "invalid request body"))
		return
	}

	sections, err := handler.mn.ReplaceSections(r.Context(), userFrom(r.Context()), id, params)
	if err != nil {
		writeError(w, err, nil)
		return
	}

	ok(w, "sections updated", sections)
}

func (handler *ApiHandler) VerificationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	status, err := handler.mn.VerificationStatus(r.Context(), id)
	if err != nil {
		writeError(w, err, nil)
		return
	}

	ok(w, "success", status)
}

func (handler *ApiHandler) IssueVerificationToken(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	var params types.IssueTokenParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		badRequest(w, errors.Wrap(err, "invalid request body"))
		return
	}

	status, err := handler.mn.IssueVerificationToken(r.Context(), userFrom(r.Context()), id, params)
	if err != nil {
		writeError(w, err, nil)
		return
	}

	ok(w, "add a TXT record with the given value to your domain, then verify", status)
}

// VerifyDomain answers with the verification result even when verification or provisioning fails,
// so clients can tell a missing TXT record from a failed proxy registration.
func (handler *ApiHandler) VerifyDomain(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	result, err := handler.mn.VerifyDomain(r.Context(), userFrom(r.Context()), id)
	if err != nil {
		writeError(w, err, result)
		return
	}

	ok(w, "domain verified", result)
}

// VerificationEvents streams verification progress for a dashboard as newline delimited JSON,
// starting with the current status, until a verification completes or the client goes away.
func (handler *ApiHandler) VerificationEvents(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	ch, unsubscribe, err := handler.mn.SubscribeVerification(r.Context(), userFrom(r.Context()), id)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	defer unsubscribe()

	status, err := handler.mn.VerificationStatus(r.Context(), id)
	if err != nil {
		writeError(w, err, nil)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	data, _ := json.Marshal(status)
	_ = writeSSELine(w, eventbus.Event{Type: eventbus.Info, Message: string(status.State), Data: data})

	for {
		select {
		case ev, open := <-ch:
			if !open {
				return
			}

			_ = writeSSELine(w, ev)
			if ev.Type == eventbus.Complete {
				return
			}
		case <-r.Context().Done():
			logger.Debug("verification event client disconnected", zap.Uint("dashboard_id", id))
			return
		}
	}
}

func (handler *ApiHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	media, err := handler.mn.ListMedia(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, err, nil)
		return
	}

	ok(w, "success", media)
}

func (handler *ApiHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		badRequest(w, errors.Wrap(err, "failed to parse upload"))
		return
	}

	file, header, err := r.FormFile("media")
	if err != nil {
		badRequest(w, errors.Wrap(err, "media file is required"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	media, err := handler.mn.UploadMedia(r.Context(), userFrom(r.Context()), types.File{
		Content: file,
		Stat: types.FileStat{
			Size:        header.Size,
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		},
	})
	if err != nil {
		writeError(w, err, nil)
		return
	}

	created(w, "media uploaded", media)
}

func (handler *ApiHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	if err := handler.mn.DeleteMedia(r.Context(), userFrom(r.Context()), id); err != nil {
		writeError(w, err, nil)
		return
	}

	ok(w, "media deleted", nil)
}

func (handler *ApiHandler) Ping(w http.ResponseWriter, r *http.Request) {
	if err := handler.mn.Ping(r.Context()); err != nil {
		writeError(w, err, nil)
		return
	}

	ok(w, "Hoi, we're HTTPs live!", struct{}{})
}

func writeNotFound(w http.ResponseWriter) {
	writeError(w, types.ErrNotFound("route not found"), nil)
}

func idParam(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id: " + chi.URLParam(r, "id"))
	}
	return uint(id), nil
}
