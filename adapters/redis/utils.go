package redis

import (
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// messageField 是 Stream 訊息中存放序列化資料的欄位
const messageField = "data"

var (
	ErrPointerType = errors.New("pointer type is not allowed")
)

// DefaultParseToMessage 以 msgpack 序列化後 base64 編碼，放進 Stream 訊息的 data 欄位
func DefaultParseToMessage[T any](data T) (map[string]any, error) {
	if reflect.TypeOf(data).Kind() == reflect.Ptr {
		return nil, ErrPointerType
	}

	bytes, err := msgpack.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("msgpack marshal error: %w", err)
	}

	return map[string]any{
		messageField: base64.StdEncoding.EncodeToString(bytes),
	}, nil
}

// DefaultParseFromMessage 將 Stream 訊息的 data 欄位還原為 T
func DefaultParseFromMessage[T any](message map[string]any) (T, error) {
	var result T

	if reflect.TypeOf(result).Kind() == reflect.Ptr {
		return result, ErrPointerType
	}

	if len(message) == 0 {
		return result, nil
	}

	dataStr, ok := message[messageField].(string)
	if !ok {
		return result, fmt.Errorf("%s field not found or invalid type", messageField)
	}

	bytes, err := base64.StdEncoding.DecodeString(dataStr)
	if err != nil {
		return result, fmt.Errorf("base64 decode error: %w", err)
	}

	if err := msgpack.Unmarshal(bytes, &result); err != nil {
		return result, fmt.Errorf("msgpack unmarshal error: %w", err)
	}

	return result, nil
}
