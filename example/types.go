package example

type Note struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Owner    string `json:"owner"`
	Archived bool   `json:"archived"`
}

type LoginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type CreateRequest struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type CreateResponse struct {
	Note *Note `json:"note"`
}

type GetRequest struct {
	Slug string `json:"slug"`
}

type GetResponse struct {
	Note *Note `json:"note"`
}

type ArchiveRequest struct {
	Slug string `json:"slug"`
}

type ArchiveResponse struct {
	Note *Note `json:"note"`
}

// FailRequest asks the server to fail on purpose: Mode "panic" panics, any
// other mode returns an unclassified error.
type FailRequest struct {
	Mode string `json:"mode"`
}

type FailResponse struct{}
