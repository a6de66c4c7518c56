package p115

import (
	crypto115 "github.com/gaoyb7/115drive-webdav/115"
)

// Cipher 115 下载接口报文的加解密能力。
// 网关不关心算法细节，只把它当作不透明的 encrypt/decrypt 对；
// 测试里用桩实现替换。
type Cipher interface {
	Encrypt(plain []byte) (ciphertext string, key []byte, err error)
	Decrypt(ciphertext string, key []byte) ([]byte, error)
}

// rsaCipher 生产实现，包装 115drive-webdav 的 RSA 报文加密
type rsaCipher struct{}

// NewCipher 返回生产用的报文加解密实现
func NewCipher() Cipher {
	return rsaCipher{}
}

func (rsaCipher) Encrypt(plain []byte) (string, []byte, error) {
	key := crypto115.GenerateKey()
	return crypto115.Encode(plain, key), key[:], nil
}

func (rsaCipher) Decrypt(ciphertext string, key []byte) ([]byte, error) {
	return crypto115.Decode(ciphertext, crypto115.Key(key))
}
