package domain

import "errors"

// 会话/存储错误分类。Lookup 未命中不是错误（返回空串）。
var (
	// ErrStorageUnavailable 底层文件损坏或被占用；内存数据保留，用户可重试
	ErrStorageUnavailable = errors.New("visit log storage unavailable")

	// ErrDuplicateOpenSession 同一 (site, person) 已存在 OPEN 会话
	ErrDuplicateOpenSession = errors.New("duplicate open session")

	// ErrNoOpenSession 登出时找不到对应的 OPEN 会话
	ErrNoOpenSession = errors.New("no open session")
)
