// Package address はコマンドライン引数の "IPv4:ポート" 文字列を検証する
package address

import (
	"errors"
	"regexp"
	"strconv"
)

// MaxPort はTCPポート番号の上限
const MaxPort = 65535

// maxSegment はIPv4セグメントの上限
const maxSegment = 255

var (
	// ErrMissing はアドレスが指定されていない場合に返される
	ErrMissing = errors.New("ArgumentParse Error: No IP Address Provided")

	// ErrNoMatch は "a.b.c.d:port" の形式に一致しない場合に返される
	ErrNoMatch = errors.New("ValueParse Error: Not a valid IP address.")

	// ErrInvalidPort はポート番号が範囲外の場合に返される
	ErrInvalidPort = errors.New("Value Error: Not a valid TCP Port.")

	// ErrInvalidSegment はセグメントが先頭ゼロを含むか255を超える場合に返される
	ErrInvalidSegment = errors.New("Value Error: Not a valid IP Segment.")
)

var pattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)\.(\d+):(\d+)$`)

// Error は検証に失敗した入力と理由を保持する
// Error() は運用者向けのメッセージだけを返す
type Error struct {
	Input string
	Err   error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validate は raw を検証し、そのまま listen に使えるアドレスを返す
func Validate(raw string) (string, error) {
	if raw == "" {
		return "", &Error{Input: raw, Err: ErrMissing}
	}

	m := pattern.FindStringSubmatch(raw)
	if m == nil {
		return "", &Error{Input: raw, Err: ErrNoMatch}
	}

	port, err := strconv.ParseUint(m[5], 10, 32)
	if err != nil || port > MaxPort {
		return "", &Error{Input: raw, Err: ErrInvalidPort}
	}

	for _, segment := range m[1:5] {
		if len(segment) > 1 && segment[0] == '0' {
			return "", &Error{Input: raw, Err: ErrInvalidSegment}
		}
		// 桁数が多すぎて変換できない値も範囲外として扱う
		n, err := strconv.ParseUint(segment, 10, 32)
		if err != nil || n > maxSegment {
			return "", &Error{Input: raw, Err: ErrInvalidSegment}
		}
	}

	return m[0], nil
}
