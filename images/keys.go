package images

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultKeyPrefix 是物件儲存中存放上傳圖片的路徑前綴
const DefaultKeyPrefix = "uploads"

// keyTimeLayout 是 ISO-8601 的 UTC 時間格式，精確到毫秒
const keyTimeLayout = "2006-01-02T15:04:05.000Z"

// ":" 和 "." 不適合放在 URL 的路徑中，統一換成 "-"
var keyTimeReplacer = strings.NewReplacer(":", "-", ".", "-")

// normalizeTime 將時間轉為可以安全放進路徑的字串，例如 2024-01-02T03-04-05-678Z
func normalizeTime(now time.Time) string {
	return keyTimeReplacer.Replace(now.UTC().Format(keyTimeLayout))
}

// GenerateKey 依照原始檔名與時間產生儲存路徑，格式為
// uploads/<timestamp>-<originalName>。
//
// 相同的輸入永遠得到相同的結果；同一毫秒內上傳同名檔案會產生相同的路徑，
// 需要唯一路徑時請使用 KeyGenerator。
func GenerateKey(originalName string, now time.Time) string {
	return fmt.Sprintf("%s/%s-%s", DefaultKeyPrefix, normalizeTime(now), originalName)
}

// KeyGenerator 產生帶有唯一識別碼的儲存路徑，格式為
// <prefix>/<timestamp>-<id>-<originalName>
type KeyGenerator struct {
	prefix string
	now    func() time.Time
	newID  func() string
}

type KeyGeneratorOption func(*KeyGenerator)

// WithKeyPrefix 設定路徑前綴
func WithKeyPrefix(prefix string) KeyGeneratorOption {
	return func(g *KeyGenerator) {
		g.prefix = strings.Trim(prefix, "/")
	}
}

// WithKeyClock 設定取得目前時間的函數
func WithKeyClock(now func() time.Time) KeyGeneratorOption {
	return func(g *KeyGenerator) {
		g.now = now
	}
}

// WithKeyIDSource 設定產生唯一識別碼的函數
func WithKeyIDSource(newID func() string) KeyGeneratorOption {
	return func(g *KeyGenerator) {
		g.newID = newID
	}
}

func NewKeyGenerator(opts ...KeyGeneratorOption) *KeyGenerator {
	g := &KeyGenerator{
		prefix: DefaultKeyPrefix,
		now:    time.Now,
		newID:  newUUIDv7,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next 為一個檔案產生儲存路徑，每次呼叫都會重新取得時間
func (g *KeyGenerator) Next(originalName string) string {
	return fmt.Sprintf("%s/%s-%s-%s", g.prefix, normalizeTime(g.now()), g.newID(), originalName)
}

func newUUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		// 只有在亂數來源失敗時才會發生
		return uuid.NewString()
	}
	return id.String()
}
