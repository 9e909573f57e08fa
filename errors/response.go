package errors

import (
	"fmt"
	"net/http"

	"github.com/starius/errshape/msgtree"
)

// Response is an error response composed by a handler on purpose.
// Its status code is sent as is and its body is flattened into messages.
type Response struct {
	StatusCode int
	Body       msgtree.Tree
}

// NewResponse builds a Response. Body may be a msgtree.Tree or any value
// accepted by msgtree.FromValue.
func NewResponse(statusCode int, body interface{}) *Response {
	return &Response{
		StatusCode: statusCode,
		Body:       msgtree.FromValue(body),
	}
}

func (r *Response) Error() string {
	return fmt.Sprintf("%d %s: %v", r.StatusCode, http.StatusText(r.StatusCode), msgtree.Flatten(r.Body))
}
