package httpapi

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/PNG-POM/field-dashboard/internal/domain"
	"github.com/PNG-POM/field-dashboard/internal/location"
	"github.com/PNG-POM/field-dashboard/internal/photos"
	"github.com/PNG-POM/field-dashboard/internal/service"

	"go.uber.org/zap"
)

// maxPhotoBytes 照片上传上限
const maxPhotoBytes = 10 << 20 // 10MB

// VisitHandler 外勤登入/登出 Handler
type VisitHandler struct {
	visits  *service.VisitService
	photos  *photos.Store
	locator *location.Bounded
	logger  *zap.Logger
}

// NewVisitHandler 创建外勤 Handler
func NewVisitHandler(visits *service.VisitService, photoStore *photos.Store, locator *location.Bounded, logger *zap.Logger) *VisitHandler {
	return &VisitHandler{
		visits:  visits,
		photos:  photoStore,
		locator: locator,
		logger:  logger,
	}
}

// visitForm 登入/登出共用的表单字段
type visitForm struct {
	SiteID    string `json:"site_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Remarks   string `json:"remarks"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`

	photoData []byte
	photoExt  string
}

// Login 登入：开启一条 OPEN 访问记录
func (h *VisitHandler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseForm(r)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	lat := parseFloatPtr(form.Latitude)
	lon := parseFloatPtr(form.Longitude)
	if lat == nil && lon == nil && h.locator != nil {
		// 表单没带坐标时尝试限时定位；失败回退为空坐标
		lat, lon = h.locator.Locate(r.Context())
	}

	photoRef := ""
	if len(form.photoData) > 0 {
		name, err := h.photos.Save(form.SiteID, h.visits.Now(), form.photoExt, form.photoData)
		if err != nil {
			h.logger.Error("photo save failed", zap.Error(err))
			writeJSON(w, http.StatusOK, Fail("failed to store photo"))
			return
		}
		photoRef = name
	}

	rec, err := h.visits.BeginVisit(r.Context(), service.BeginVisitRequest{
		SiteID:     form.SiteID,
		PersonName: form.Name,
		Phone:      form.Phone,
		Remarks:    form.Remarks,
		Latitude:   lat,
		Longitude:  lon,
		PhotoRef:   photoRef,
	})
	if err != nil {
		h.writeVisitError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"record": rec,
	}))
}

// Logout 登出：关闭 OPEN 访问记录并返回停留时长
func (h *VisitHandler) Logout(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseForm(r)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	photoRef := ""
	if len(form.photoData) > 0 {
		name, err := h.photos.Save(form.SiteID, h.visits.Now(), form.photoExt, form.photoData)
		if err != nil {
			h.logger.Error("photo save failed", zap.Error(err))
			writeJSON(w, http.StatusOK, Fail("failed to store photo"))
			return
		}
		photoRef = name
	}

	rec, dwell, err := h.visits.EndVisit(r.Context(), service.EndVisitRequest{
		SiteID:     form.SiteID,
		PersonName: form.Name,
		Remarks:    form.Remarks,
		PhotoRef:   photoRef,
	})
	if err != nil {
		h.writeVisitError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"record":           rec,
		"duration":         dwell.String(),
		"duration_seconds": dwell.Seconds(),
	}))
}

// MasterPreview 登入前的主数据预览（与原表单展示 RTO/Region/TT Number 对齐）
func (h *VisitHandler) MasterPreview(w http.ResponseWriter, r *http.Request, siteID string) {
	entry := h.visits.PreviewMaster(r.Context(), siteID)
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"site_id":   entry.SiteID,
		"rto":       entry.RTO,
		"region":    entry.Region,
		"tt_number": service.TicketNumber(siteID, h.visits.Now()),
	}))
}

// parseForm 解析 multipart（带照片）或 JSON 提交
func (h *VisitHandler) parseForm(r *http.Request) (*visitForm, error) {
	form := &visitForm{}

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
			return nil, errors.New("failed to parse form")
		}
		form.SiteID = r.FormValue("site_id")
		form.Name = r.FormValue("name")
		form.Phone = r.FormValue("phone")
		form.Remarks = r.FormValue("remarks")
		form.Latitude = r.FormValue("latitude")
		form.Longitude = r.FormValue("longitude")

		if file, header, err := r.FormFile("photo"); err == nil {
			defer file.Close()
			data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes))
			if err != nil {
				return nil, errors.New("failed to read photo")
			}
			form.photoData = data
			form.photoExt = strings.TrimPrefix(filepath.Ext(header.Filename), ".")
		}
		return form, nil
	}

	if err := readBodyJSON(r, 1<<20, form); err != nil {
		return nil, errors.New("invalid request body")
	}
	return form, nil
}

// writeVisitError 把 service 错误映射成用户可见消息（不让任何错误冒泡成 500 崩溃）
func (h *VisitHandler) writeVisitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicateOpenSession):
		writeJSON(w, http.StatusOK, Fail("already logged in at this site, please log out first"))
	case errors.Is(err, domain.ErrNoOpenSession):
		writeJSON(w, http.StatusOK, Fail("no open visit found for this site, please log in first"))
	case errors.Is(err, domain.ErrStorageUnavailable):
		h.logger.Error("visit log storage unavailable", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("visit log is busy or unreadable, your entry was not saved, please retry"))
	default:
		writeJSON(w, http.StatusOK, Fail(err.Error()))
	}
}
