package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// secretKey 是服务器启动时生成的32字节密钥，仅存在于进程内存中。
var secretKey []byte

// AdminPayload 是管理端令牌签名所覆盖的数据。
// Scope限定令牌能做的事情，例如 "recompute" 或 "reports"。
type AdminPayload struct {
	Scope string `json:"s"`
}

// GenerateSecretKey 生成一个密码学安全的随机密钥。
// 必须在应用启动早期调用一次；密钥不持久化，重启后旧令牌全部失效。
func GenerateSecretKey() {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	log.Info("HMAC密钥已生成")
}

// GenerateAdminToken 为给定scope签发一个管理端令牌。
// 运维人员从启动日志中获取令牌后，放入Authorization头调用管理接口。
func GenerateAdminToken(scope string) (string, error) {
	payload, err := json.Marshal(AdminPayload{Scope: scope})
	if err != nil {
		return "", fmt.Errorf("无法序列化令牌payload: %w", err)
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payload)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}

// ValidateAdminToken 校验令牌是否是本进程为该scope签发的。
func ValidateAdminToken(scope, tokenB64 string) bool {
	payload, err := json.Marshal(AdminPayload{Scope: scope})
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payload)
	expected := mac.Sum(nil)

	actual, err := base64.RawURLEncoding.DecodeString(tokenB64)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, actual)
}
