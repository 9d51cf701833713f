package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
	"k8s.io/klog/v2"
)

const nonceSize = 24

// DefaultSecret 未配置应用密钥时使用的默认值
const DefaultSecret = "change-me"

var errShortToken = errors.New("token too short")

// Box 使用应用密钥对敏感值做对称加密
type Box struct {
	key [32]byte
}

// NewBox 由应用密钥派生加密密钥
func NewBox(appSecret string) *Box {
	if appSecret == "" {
		appSecret = DefaultSecret
	}
	return &Box{key: sha256.Sum256([]byte(appSecret))}
}

// Encrypt 加密并编码为 URL 安全的 base64，空值返回空字符串
func (b *Box) Encrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(value), &nonce, &b.key)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt 解密，令牌无效时返回空字符串
func (b *Box) Decrypt(token string) string {
	if token == "" {
		return ""
	}
	value, err := b.open(token)
	if err != nil {
		klog.V(6).Infof("解密失败: %v", err)
		return ""
	}
	return value
}

func (b *Box) open(token string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", errShortToken
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	out, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &b.key)
	if !ok {
		return "", errors.New("authentication failed")
	}
	return string(out), nil
}

// Mask 脱敏显示 API Key：保留前 4 位和后 4 位，短值只保留后 2 位
func Mask(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		tail := value
		if len(tail) > 2 {
			tail = tail[len(tail)-2:]
		}
		return "***" + tail
	}
	return value[:4] + "..." + value[len(value)-4:]
}
