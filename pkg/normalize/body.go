package normalize

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"

	"github.com/recapd/recap-cli/pkg/payload"
)

// decodeBodyParts selects and decodes the message body from a Gmail-style
// parts array: {mimeType, body.data, headers[]?}. The first text/plain part
// wins; text/html is the fallback only when no plain-text part exists. The
// transport encoding is URL-safe base64. On failure the content stays
// absent and a decode error is recorded on the entity instead of aborting
// extraction.
func (e *Entity) decodeBodyParts(parts payload.Value) {
	arr, ok := parts.Array()
	if !ok {
		return
	}

	pick := payload.Absent
	for _, part := range arr {
		mt := part.Get("mimeType").StringOr("")
		if strings.HasPrefix(mt, "text/plain") {
			pick = part
			break
		}
		if strings.HasPrefix(mt, "text/html") && !pick.Present() {
			pick = part
		}
	}
	if !pick.Present() {
		return
	}

	data, ok := pick.Get("body", "data").String()
	if !ok {
		return
	}

	raw, err := decodeBase64URL(data)
	if err != nil {
		e.addError(ErrKindDecode, "body", err)
		return
	}

	// Parts may declare a charset on their own Content-Type header.
	headers := payload.IndexPairs(pick.Get("headers"), "name", "value")
	if ct, ok := headers.Get("Content-Type"); ok {
		if _, params, err := mime.ParseMediaType(ct); err == nil {
			charset := params["charset"]
			if charset != "" && !strings.EqualFold(charset, "utf-8") && !strings.EqualFold(charset, "us-ascii") {
				if decoded, err := decodeCharset(raw, charset); err == nil {
					raw = decoded
				} else {
					e.addError(ErrKindDecode, "body.charset", err)
				}
			}
		}
	}

	e.SetContent(string(raw))
}

// decodeBase64URL decodes Gmail's URL-safe base64 body encoding, tolerating
// both padded and unpadded input.
func decodeBase64URL(data string) ([]byte, error) {
	if raw, err := base64.URLEncoding.DecodeString(data); err == nil {
		return raw, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 body: %w", err)
	}
	return raw, nil
}

// decodeCharset converts legacy charsets to UTF-8.
func decodeCharset(data []byte, charset string) ([]byte, error) {
	charset = strings.ToLower(strings.TrimSpace(charset))

	var decoder transform.Transformer
	switch charset {
	case "iso-8859-1", "latin1", "iso_8859-1":
		decoder = charmap.ISO8859_1.NewDecoder()
	case "iso-8859-2", "latin2":
		decoder = charmap.ISO8859_2.NewDecoder()
	case "iso-8859-15", "latin9":
		decoder = charmap.ISO8859_15.NewDecoder()
	case "windows-1252", "cp1252":
		decoder = charmap.Windows1252.NewDecoder()
	case "windows-1251", "cp1251":
		decoder = charmap.Windows1251.NewDecoder()
	case "koi8-r":
		decoder = charmap.KOI8R.NewDecoder()
	case "gb2312", "gbk", "gb18030":
		decoder = simplifiedchinese.GBK.NewDecoder()
	case "big5":
		decoder = traditionalchinese.Big5.NewDecoder()
	case "euc-jp":
		decoder = japanese.EUCJP.NewDecoder()
	case "iso-2022-jp":
		decoder = japanese.ISO2022JP.NewDecoder()
	case "shift_jis", "shift-jis", "sjis":
		decoder = japanese.ShiftJIS.NewDecoder()
	case "euc-kr":
		decoder = korean.EUCKR.NewDecoder()
	default:
		return data, fmt.Errorf("unknown charset: %s", charset)
	}

	reader := transform.NewReader(bytes.NewReader(data), decoder)
	result, err := io.ReadAll(reader)
	if err != nil {
		return data, fmt.Errorf("charset decoding failed: %w", err)
	}
	return result, nil
}
