package httpapi

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/PNG-POM/field-dashboard/internal/store"

	"github.com/google/uuid"
)

const adminTokenPrefix = "admin:token:"

// AdminGate 后台口令门
// 单一共享口令 + KV 里带 TTL 的 uuid token。不是安全边界：没有用户身份、
// 没有口令哈希，只是挡住误入后台页面的普通表单用户。
type AdminGate struct {
	password string
	tokenTTL time.Duration
	kv       store.KV
}

func NewAdminGate(password string, tokenTTL time.Duration, kv store.KV) *AdminGate {
	return &AdminGate{password: password, tokenTTL: tokenTTL, kv: kv}
}

// Login 校验口令，通过则签发 token
func (g *AdminGate) Login(ctx context.Context, password string) (string, bool) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) != 1 {
		return "", false
	}
	token := uuid.NewString()
	if err := g.kv.Set(ctx, adminTokenPrefix+token, "1", g.tokenTTL); err != nil {
		return "", false
	}
	return token, true
}

// Check token 是否有效
func (g *AdminGate) Check(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	_, err := g.kv.Get(ctx, adminTokenPrefix+token)
	return err == nil
}
