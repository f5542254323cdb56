// Package session はサーバー起動ごとのセッションIDと終了報告を扱う
package session

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Session は1回の起動を識別する
type Session struct {
	ID  uuid.UUID
	out io.Writer
}

// New は新しいセッションIDを払い出す
func New(out io.Writer) *Session {
	return &Session{
		ID:  uuid.New(),
		out: out,
	}
}

// Started は開始メッセージを出力する
func (s *Session) Started() {
	fmt.Fprintf(s.out, "Web Server Started - Session ID: %s\n", s.ID)
}

// End は message と終了メッセージを出力し、exitCode をそのまま返す
// プロセスの終了は呼び出し側が行う
func (s *Session) End(exitCode int, message string) int {
	fmt.Fprintln(s.out, message)
	fmt.Fprintf(s.out, "Web Server Ended - Session ID: %s\n", s.ID)
	return exitCode
}
