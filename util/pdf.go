package util

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText 从PDF字节流中提取纯文本，各页之间以换行分隔
func ExtractText(content []byte) (text string, err error) {
	// pdf 库遇到损坏文件可能 panic，统一转成错误返回
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("error reading PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("error reading PDF: %v", err)
	}

	var buf bytes.Buffer
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("error reading PDF: %v", err)
		}
		buf.WriteString(pageText)
		buf.WriteString("\n")
	}
	return strings.TrimSpace(buf.String()), nil
}
