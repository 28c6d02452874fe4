package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	internalS3 "imagestore/adapters/s3"
	"imagestore/images"
)

var errNoFiles = errors.New("no files in request")

// readUploadedFiles 逐一讀取 multipart 中指定欄位的檔案。
// maxSize 大於 0 時，任何一個檔案超過上限就回傳 *s3.ReachLimitError，不會進行上傳。
func readUploadedFiles(r *http.Request, field string, maxSize int64) ([]images.UploadedFile, error) {
	const op = "readUploadedFiles"
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to read multipart body, err=%w", op, err)
	}

	files := make([]images.UploadedFile, 0)
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to read next part, err=%w", op, err)
		}
		// 非指定欄位或不是檔案的欄位直接略過
		if part.FormName() != field || part.FileName() == "" {
			part.Close()
			continue
		}
		file, err := readPart(part, maxSize)
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to read file %q, err=%w", op, part.FileName(), err)
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		return nil, errNoFiles
	}
	return files, nil
}

func readPart(part *multipart.Part, maxSize int64) (images.UploadedFile, error) {
	var body io.Reader = part
	if maxSize > 0 {
		body = internalS3.NewMaxSizeReader(part, maxSize)
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return images.UploadedFile{}, err
	}
	return images.UploadedFile{
		Name:        part.FileName(),
		ContentType: detectContentType(part.Header.Get("Content-Type"), content),
		Content:     content,
	}, nil
}
