package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/PNG-POM/field-dashboard/internal/domain"
	"github.com/PNG-POM/field-dashboard/internal/photos"
	"github.com/PNG-POM/field-dashboard/internal/service"

	"go.uber.org/zap"
)

// AdminHandler 后台 Handler：全量日志、过滤、聚合、CSV 下载、照片浏览
type AdminHandler struct {
	gate    *AdminGate
	reports *service.ReportService
	photos  *photos.Store
	loc     *time.Location
	logger  *zap.Logger
}

// NewAdminHandler 创建后台 Handler
func NewAdminHandler(gate *AdminGate, reports *service.ReportService, photoStore *photos.Store, loc *time.Location, logger *zap.Logger) *AdminHandler {
	if loc == nil {
		loc = time.Local
	}
	return &AdminHandler{
		gate:    gate,
		reports: reports,
		photos:  photoStore,
		loc:     loc,
		logger:  logger,
	}
}

// Login 口令换 token
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	token, ok := h.gate.Login(r.Context(), body.Password)
	if !ok {
		writeJSON(w, http.StatusOK, Fail("access denied"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"token": token}))
}

// withToken token 校验中间件
func (h *AdminHandler) withToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		if token == "" {
			// 也接受 Authorization: Bearer <token>
			auth := r.Header.Get("Authorization")
			token = strings.TrimPrefix(auth, "Bearer ")
			if token == auth {
				token = ""
			}
		}
		if !h.gate.Check(r.Context(), token) {
			writeJSON(w, http.StatusUnauthorized, Result[any]{
				Code:    ResultTokenExpired,
				Type:    "error",
				Message: "admin token missing or expired",
			})
			return
		}
		next(w, r)
	}
}

// ListVisits 过滤列表
// 查询参数：from / to（2006-01-02）、name、region、status
func (h *AdminHandler) ListVisits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	filter := service.VisitFilter{
		PersonName: q.Get("name"),
		Region:     q.Get("region"),
		Status:     domain.VisitStatus(strings.ToUpper(q.Get("status"))),
	}
	if v := q.Get("from"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, h.loc); err == nil {
			filter.From = &t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, h.loc); err == nil {
			// to 为闭区间：包含当天
			end := t.Add(24*time.Hour - time.Second)
			filter.To = &end
		}
	}

	records, err := h.reports.ListVisits(r.Context(), filter)
	if err != nil {
		h.writeReportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": records,
		"total": len(records),
	}))
}

// Summary 聚合统计
func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	summary, err := h.reports.Summary(r.Context())
	if err != nil {
		h.writeReportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(summary))
}

// ExportCSV 全量日志 CSV 下载
func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data, err := h.reports.ExportCSV(r.Context())
	if err != nil {
		h.writeReportError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="Visit_Log.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ListPhotos 照片列表
func (h *AdminHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	names, err := h.photos.List()
	if err != nil {
		h.logger.Error("photo listing failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to list photos"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": names,
		"total": len(names),
	}))
}

// GetPhoto 照片内容 photos/{name}
func (h *AdminHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/admin/api/v1/photos/")
	if name == "" || strings.Contains(name, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	data, err := h.photos.Open(name)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	contentType := "image/jpeg"
	if strings.HasSuffix(strings.ToLower(name), ".png") {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *AdminHandler) writeReportError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		h.logger.Error("visit log storage unavailable", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("visit log is busy or unreadable, please retry"))
		return
	}
	writeJSON(w, http.StatusOK, Fail(err.Error()))
}
