// Package content は静的HTMLコンテンツの解決を担う
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Extension はコンテンツファイルの拡張子
const Extension = ".html"

// ErrNotFound はコンテンツが存在しない場合に返される
var ErrNotFound = errors.New("コンテンツが見つかりません")

// Store はエンドポイント名からコンテンツ本体を引く
type Store interface {
	// Lookup は name に対応するコンテンツを返す
	// 存在しない場合は ErrNotFound をラップしたエラーを返す
	Lookup(name string) ([]byte, error)
}

// FileStore はディレクトリ内の <name>.html を読み出すStore
// キャッシュは持たず、呼び出しのたびにファイルを読む
type FileStore struct {
	dir string
}

// NewFileStore は dir を基点とするFileStoreを作成する
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir は基点ディレクトリを返す
func (s *FileStore) Dir() string {
	return s.dir
}

// Lookup は <dir>/<name>.html を読み出す
func (s *FileStore) Lookup(name string) ([]byte, error) {
	path := filepath.Join(s.dir, name+Extension)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("コンテンツ %s の読み込みに失敗: %w", path, err)
	}

	return data, nil
}
