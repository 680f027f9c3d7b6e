package media

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// DecodeText returns data as UTF-8 text. Invalid UTF-8 is retried as GBK;
// ok is false when neither decoding is clean.
func DecodeText(data []byte) (string, bool) {
	if utf8.Valid(data) {
		return string(data), true
	}
	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", false
	}
	return string(decoded), true
}
