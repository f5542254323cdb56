// Package router はリクエスト行の解析、ルーティング、応答の組み立てを担う
//
// リクエスト行 "<METHOD> <PATH> HTTP/1.1" だけを解析し、
// エンドポイント名に対応する静的コンテンツを応答本体として返す。
// ヘッダーとボディは読まない。
package router

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"tsumugi/internal/content"
)

// プロトコルとコンテンツキー
const (
	ProtocolVersion = "HTTP/1.1"

	IndexEndpoint = "index"
	Error404Key   = "error_404"
	Error405Key   = "error_405"
	Error500Key   = "error_500"

	// FallbackBody は error_404 も存在しない場合の本体
	FallbackBody = "No Resource(s) Found."
)

// Method はHTTPメソッド
type Method string

// 許可されたメソッド
const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// AllowedMethods は許可されたメソッドの一覧を返す
func AllowedMethods() []Method {
	return []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}
}

// Allowed はメソッドが許可されているかを返す
func (m Method) Allowed() bool {
	for _, allowed := range AllowedMethods() {
		if m == allowed {
			return true
		}
	}
	return false
}

var requestLinePattern = regexp.MustCompile(`^(GET|POST|PUT|PATCH|DELETE) (\S+) HTTP/1\.1$`)

// Request は解析済みのリクエスト行
type Request struct {
	Method  Method
	Path    string
	Version string
}

// Endpoint はパスから全ての "/" を除いたコンテンツキーを返す
// 空になった場合は "index"
func (r Request) Endpoint() string {
	endpoint := strings.ReplaceAll(r.Path, "/", "")
	if endpoint == "" {
		return IndexEndpoint
	}
	return endpoint
}

// ParseRequestLine はリクエスト行を解析する
// 行末の CR/LF は無視する。形式に一致しない場合は false を返す
func ParseRequestLine(line string) (Request, bool) {
	line = strings.TrimRight(line, "\r\n")

	m := requestLinePattern.FindStringSubmatch(line)
	if m == nil {
		return Request{}, false
	}

	return Request{
		Method:  Method(m[1]),
		Path:    m[2],
		Version: ProtocolVersion,
	}, true
}

// Response は1回分の応答
type Response struct {
	Status Status
	Body   []byte
}

// ContentLength は本体のバイト長を返す
func (r Response) ContentLength() int {
	return len(r.Body)
}

// Bytes はワイヤー形式にシリアライズする
func (r Response) Bytes() []byte {
	header := fmt.Sprintf("%s %d %s\r\nContent-Length: %d\r\n\r\n",
		ProtocolVersion, r.Status.Code, r.Status.Message, r.ContentLength())

	out := make([]byte, 0, len(header)+len(r.Body))
	out = append(out, header...)
	return append(out, r.Body...)
}

// Router はリクエスト行を応答に変換する
// 状態を持たないため複数のワーカーから同時に呼んでよい
type Router struct {
	store content.Store
}

// New は store を参照するRouterを作成する
func New(store content.Store) *Router {
	return &Router{store: store}
}

// Route はリクエスト行からワイヤー形式の応答を作る
func (rt *Router) Route(line string) []byte {
	req, ok := ParseRequestLine(line)
	if !ok {
		return rt.Malformed()
	}
	return rt.Respond(req).Bytes()
}

// Malformed は解析できないリクエスト行に対する 500 応答を返す
func (rt *Router) Malformed() []byte {
	return rt.errorResponse(StatusKeyInternalServerError, Error500Key).Bytes()
}

// Respond は解析済みリクエストに対する応答を作る
func (rt *Router) Respond(req Request) Response {
	if !req.Method.Allowed() {
		return rt.errorResponse(StatusKeyMethodNotAllowed, Error405Key)
	}

	key := StatusKeyOK
	if req.Method == MethodPost {
		key = StatusKeyCreated
	}

	body, err := rt.store.Lookup(req.Endpoint())
	if err != nil {
		return Response{
			Status: LookupStatus(StatusKeyNotFound),
			Body:   rt.lookupOr(Error404Key),
		}
	}

	return Response{
		Status: LookupStatus(key),
		Body:   body,
	}
}

// errorResponse はステータスを固定したまま contentKey の本体を返す
func (rt *Router) errorResponse(statusKey, contentKey string) Response {
	return Response{
		Status: LookupStatus(statusKey),
		Body:   rt.lookupOr(contentKey),
	}
}

// lookupOr は contentKey を引き、無ければ FallbackBody を返す
func (rt *Router) lookupOr(contentKey string) []byte {
	body, err := rt.store.Lookup(contentKey)
	if err != nil {
		log.Printf("エラーページ %s を読み込めませんでした: %v", contentKey, err)
		return []byte(FallbackBody)
	}
	return body
}
