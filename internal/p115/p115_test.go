package p115

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// plainCipher 测试桩：用 base64 顶替真实报文加密
type plainCipher struct{}

func (plainCipher) Encrypt(plain []byte) (string, []byte, error) {
	return base64.StdEncoding.EncodeToString(plain), nil, nil
}

func (plainCipher) Decrypt(ciphertext string, _ []byte) ([]byte, error) {
	return base64.StdEncoding.DecodeString(ciphertext)
}

// sealData 按测试桩的方式给 data 字段“加密”
func sealData(t *testing.T, payload any) string {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

// openData 解出测试桩“加密”的请求体
func openData(t *testing.T, ciphertext string) []byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	require.NoError(t, err)
	return raw
}

func newTestClient(t *testing.T, webapi, proapi string) *Client {
	t.Helper()
	c, err := NewClient(Options{
		Cookie:         "UID=test; CID=test",
		Cipher:         plainCipher{},
		CacheSize:      16,
		DownloadURLTTL: time.Minute,
		WebAPIURLs:     []string{webapi},
		ProAPIURLs:     []string{proapi},
	})
	require.NoError(t, err)
	return c
}
