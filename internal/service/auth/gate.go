package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrMissingCredentials = errors.New("缺少密码或会话ID")
	ErrWrongPassword      = errors.New("密码错误")
)

// Gate 是全站共享密码的访问控制。通过验证的会话 ID 保存在内存中，
// 服务重启后需要重新验证。密码为空时不做任何限制。
type Gate struct {
	password string

	mu       sync.RWMutex
	sessions map[string]struct{}
}

func NewGate(password string) *Gate {
	return &Gate{
		password: password,
		sessions: make(map[string]struct{}),
	}
}

func (g *Gate) Enabled() bool {
	return g.password != ""
}

// Verify 校验密码，通过后登记会话 ID
func (g *Gate) Verify(password, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if password == "" || sessionID == "" {
		return ErrMissingCredentials
	}

	if !g.passwordMatches(password) {
		zap.L().Info("密码验证失败", zap.String("session_id", sessionID))
		return ErrWrongPassword
	}

	g.mu.Lock()
	g.sessions[sessionID] = struct{}{}
	g.mu.Unlock()

	zap.L().Debug("会话已通过验证", zap.String("session_id", sessionID))

	return nil
}

func (g *Gate) passwordMatches(password string) bool {
	if !g.Enabled() {
		return true
	}

	return subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) == 1
}

// Allowed 判断请求是否放行：会话已验证，或者直接携带了正确的密码
func (g *Gate) Allowed(sessionID, password string) bool {
	if !g.Enabled() {
		return true
	}

	if password != "" && g.passwordMatches(password) {
		return true
	}

	if sessionID == "" {
		return false
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.sessions[sessionID]
	return ok
}
