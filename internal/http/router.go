package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于 promhttp 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterVisitRoutes 注册外勤登入/登出路由
func (r *Router) RegisterVisitRoutes(v *VisitHandler) {
	r.Handle("/visit/api/v1/login", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		v.Login(w, req)
	})

	r.Handle("/visit/api/v1/logout", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		v.Logout(w, req)
	})

	// master/{site_id}
	r.Handle("/visit/api/v1/master/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		siteID := strings.TrimPrefix(req.URL.Path, "/visit/api/v1/master/")
		if siteID == "" || strings.Contains(siteID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		v.MasterPreview(w, req, siteID)
	})
}

// RegisterAdminRoutes 注册后台路由（除 login 外都要求 token）
func (r *Router) RegisterAdminRoutes(a *AdminHandler) {
	r.Handle("/admin/api/v1/login", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		a.Login(w, req)
	})

	r.Handle("/admin/api/v1/visits", a.withToken(a.ListVisits))
	r.Handle("/admin/api/v1/visits/summary", a.withToken(a.Summary))
	r.Handle("/admin/api/v1/visits/export", a.withToken(a.ExportCSV))
	r.Handle("/admin/api/v1/photos", a.withToken(a.ListPhotos))
	r.Handle("/admin/api/v1/photos/", a.withToken(a.GetPhoto))
}
