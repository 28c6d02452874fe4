package api

import (
	"github.com/gabriel-vasile/mimetype"
)

// secureImageTypes 是允許上傳的圖片類型，不包含 SVG 這類可以夾帶腳本的格式
var secureImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/bmp":  {},
	"image/tiff": {},
	"image/webp": {},
}

// detectContentType 在客戶端沒有提供明確的類型時，依照內容判斷 MIME 類型
func detectContentType(declared string, content []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(content).String()
}

// checkSecureImage 依照檔案內容判斷是否為允許的圖片，不採信客戶端宣告的類型
func checkSecureImage(content []byte) (string, bool) {
	detected := mimetype.Detect(content).String()
	_, ok := secureImageTypes[detected]
	return detected, ok
}
