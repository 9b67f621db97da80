package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTokenLifecycle(t *testing.T) {
	GenerateSecretKey()

	tok, err := GenerateAdminToken("recompute")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	assert.True(t, ValidateAdminToken("recompute", tok))

	// scope不匹配的令牌无效
	assert.False(t, ValidateAdminToken("reports", tok))

	// 篡改后的令牌无效
	assert.False(t, ValidateAdminToken("recompute", tok[:len(tok)-2]))
	assert.False(t, ValidateAdminToken("recompute", "不是base64"))

	// 密钥轮换后旧令牌全部失效
	GenerateSecretKey()
	assert.False(t, ValidateAdminToken("recompute", tok))
}
