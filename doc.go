/*
Package errshape provides types and functions used to define JSON APIs
whose errors all look the same to clients:

	{"status": false, "message": ["This field is required."]}
	{"status": false, "message": ["Invalid token"], "code": "AUTH001"}
	{"status": false, "message": ["Something went wrong. Please share this error ID with support: 9b2f..."], "error_id": "9b2f..."}

Organize your code in services. Each service is a Go type whose methods
correspond to endpoints. Each method has the following signature:

	func(ctx, *Request) (*Response, error)

Let's define a service Notes with method Get.

	type GetRequest struct {
		ID int64 `json:"id"`
	}

	type GetResponse struct {
		Title string `json:"title"`
	}

	func (s *Notes) Get(ctx context.Context, req *GetRequest) (*GetResponse, error) {
		...
	}

Now write the function that generates the table of routes:

	func GetRoutes(s *Notes) []errshape.Route {
		return []errshape.Route{
			{Method: http.MethodPost, Path: "/v1/notes/get", Handler: s.Get},
		}
	}

In the server bind the routes to http.ServeMux, passing a Responder which
decides how errors are reported:

	responder := respond.New(
		respond.WithLogger(logger),
		respond.WithDebug(debug),
		respond.WithBaseException(respond.As[*app.Error]()),
	)
	errshape.BindRoutes(http.DefaultServeMux, GetRoutes(notes), errshape.WithResponder(responder))

Whatever the handler returns is passed through the Responder (see package
respond): errors.Response and errors from package errors keep their status,
the application base error gets its own status and code, model errors become
400 or 404 and everything else becomes 500 with an error ID. Panics of
handlers are recovered and reported the same way.

Create the client from the same table of routes:

	client := errshape.NewClient(GetRoutes(nil), "http://127.0.0.1:8080")
	res := &GetResponse{}
	err := client.Call(ctx, res, &GetRequest{ID: 1})

Errors returned by the server are decoded into *APIError. You don't have to
pass a real service object to GetRoutes on client side; if GetRoutes accepts
an interface, use Method to refer to its methods:

	{Method: http.MethodPost, Path: "/v1/notes/get", Handler: errshape.Method(&s, "Get")}
*/
package errshape
