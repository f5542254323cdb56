package router

// ステータスキー
const (
	StatusKeyOK                  = "200"
	StatusKeyCreated             = "201"
	StatusKeyNotFound            = "404"
	StatusKeyMethodNotAllowed    = "405"
	StatusKeyInternalServerError = "500"
)

// Status はステータスコードとメッセージの組
type Status struct {
	Code    int
	Message string
}

// LookupStatus はステータスキーに対応する Status を返す
// 未知のキーは 404 Not Found になる
func LookupStatus(key string) Status {
	switch key {
	case StatusKeyOK:
		return Status{Code: 200, Message: "Ok"}
	case StatusKeyCreated:
		return Status{Code: 201, Message: "Created"}
	case StatusKeyMethodNotAllowed:
		return Status{Code: 405, Message: "Method Not Allowed"}
	case StatusKeyInternalServerError:
		return Status{Code: 500, Message: "Internal Server Error"}
	default:
		return Status{Code: 404, Message: "Not Found"}
	}
}
