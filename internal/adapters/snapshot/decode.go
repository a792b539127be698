package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mac-advisor/internal/domain/model"

	"howett.net/plist"
)

// 采集端有两类客户端：脚本直接 POST JSON，macOS 原生探针上报 plist。
// 这里统一解码成 ScanRecord，上层不感知线格式。

// Envelope 是扫描请求的完整载荷：快照字段加上客户邮箱。
// 两个邮箱字段是历史兼容，老探针用 email，新探针用 customerEmail。
type Envelope struct {
	Email            string `json:"email" plist:"email"`
	CustomerEmail    string `json:"customerEmail" plist:"customerEmail"`
	model.ScanRecord `yaml:"-"`
}

// RecipientEmail 返回请求里给出的客户邮箱，customerEmail 优先。
func (e *Envelope) RecipientEmail() string {
	if v := strings.TrimSpace(e.CustomerEmail); v != "" {
		return v
	}
	return strings.TrimSpace(e.Email)
}

// DecodeEnvelope 按内容类型（或内容嗅探）解码扫描请求。
func DecodeEnvelope(data []byte, contentType string) (*Envelope, error) {
	var env Envelope
	if err := decode(data, contentType, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// DecodeRecord 只解码快照本身，不要求邮箱字段。
func DecodeRecord(data []byte, contentType string) (model.ScanRecord, error) {
	var rec model.ScanRecord
	if err := decode(data, contentType, &rec); err != nil {
		return model.ScanRecord{}, err
	}
	return rec, nil
}

// DecodeRecordFile 按扩展名从磁盘读取快照，供 CLI 使用。
func DecodeRecordFile(path string) (model.ScanRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.ScanRecord{}, fmt.Errorf("read snapshot: %w", err)
	}
	contentType := ""
	switch strings.ToLower(filepath.Ext(path)) {
	case ".plist":
		contentType = "application/x-plist"
	case ".json":
		contentType = "application/json"
	}
	return DecodeRecord(raw, contentType)
}

func decode(data []byte, contentType string, dst any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("decode snapshot: empty payload")
	}
	switch {
	case isPlistContentType(contentType), contentType == "" && looksLikePlist(data):
		if _, err := plist.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("decode plist snapshot: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(dst); err != nil {
			return fmt.Errorf("decode json snapshot: %w", err)
		}
	}
	return nil
}

func isPlistContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "plist") || strings.Contains(ct, "xml")
}

func looksLikePlist(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return bytes.HasPrefix(trimmed, []byte("<?xml")) ||
		bytes.HasPrefix(trimmed, []byte("<plist")) ||
		bytes.HasPrefix(trimmed, []byte("bplist00"))
}
