package example

import (
	"context"
	"net/http"
	"regexp"
	"unicode/utf8"

	pkgerrors "github.com/pkg/errors"
	"github.com/starius/errshape/errors"
	"github.com/starius/errshape/model"
	"github.com/starius/errshape/msgtree"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const maxTitle = 100

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type INotes interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Create(ctx context.Context, req *CreateRequest) (*CreateResponse, error)
	Get(ctx context.Context, req *GetRequest) (*GetResponse, error)
	Archive(ctx context.Context, req *ArchiveRequest) (*ArchiveResponse, error)
	Fail(ctx context.Context, req *FailRequest) (*FailResponse, error)
}

// Notes is a small notes service. Each of its failures maps to one of the
// categories of respond.Responder.
type Notes struct {
	store *Store
	auth  *Auth
	quota int
}

func NewNotes(store *Store, auth *Auth, quota int) *Notes {
	return &Notes{
		store: store,
		auth:  auth,
		quota: quota,
	}
}

func (s *Notes) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	token, err := s.auth.Login(req.User, req.Password)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token}, nil
}

func (s *Notes) Create(ctx context.Context, req *CreateRequest) (*CreateResponse, error) {
	user, err := s.auth.Verify(tokenFrom(ctx))
	if err != nil {
		return nil, err
	}

	if !slugRe.MatchString(req.Slug) {
		return nil, errors.Validation(msgtree.Map{
			{Key: "slug", Value: msgtree.List{msgtree.Detail{
				Message: "Use lowercase letters, digits and single dashes.",
				Code:    "invalid",
			}}},
		})
	}
	if err := validateNote(req.Title, req.Body); err != nil {
		return nil, err
	}

	count, err := s.store.Count(ctx, user)
	if err != nil {
		return nil, err
	}
	if count >= s.quota {
		return nil, status.Errorf(codes.ResourceExhausted, "Note quota of %d reached.", s.quota)
	}

	note := &Note{
		Slug:  req.Slug,
		Title: req.Title,
		Body:  req.Body,
		Owner: user,
	}
	if err := s.store.Insert(ctx, note); err != nil {
		return nil, err
	}
	return &CreateResponse{Note: note}, nil
}

// validateNote checks rules of the note itself, below the request layer.
func validateNote(title, body string) error {
	var messages []string
	if title == "" {
		messages = append(messages, "Title must not be empty.")
	}
	if utf8.RuneCountInString(title) > maxTitle {
		messages = append(messages, "Title is longer than 100 characters.")
	}
	if body == "" {
		messages = append(messages, "Body must not be empty.")
	}
	if len(messages) != 0 {
		return model.Invalid(messages...)
	}
	return nil
}

func (s *Notes) Get(ctx context.Context, req *GetRequest) (*GetResponse, error) {
	note, err := s.ownNote(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	return &GetResponse{Note: note}, nil
}

func (s *Notes) Archive(ctx context.Context, req *ArchiveRequest) (*ArchiveResponse, error) {
	note, err := s.ownNote(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if note.Archived {
		return nil, errors.NewResponse(http.StatusConflict, msgtree.Map{
			{Key: "slug", Value: msgtree.List{msgtree.Text("Note is already archived.")}},
		})
	}
	if err := s.store.SetArchived(ctx, req.Slug); err != nil {
		return nil, err
	}
	note.Archived = true
	return &ArchiveResponse{Note: note}, nil
}

func (s *Notes) ownNote(ctx context.Context, slug string) (*Note, error) {
	user, err := s.auth.Verify(tokenFrom(ctx))
	if err != nil {
		return nil, err
	}
	note, err := s.store.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if note.Owner != user {
		return nil, errNotOwner()
	}
	return note, nil
}

func (s *Notes) Fail(ctx context.Context, req *FailRequest) (*FailResponse, error) {
	if req.Mode == "panic" {
		var notes map[string]*Note
		notes["boom"] = &Note{}
	}
	return nil, pkgerrors.Wrap(pkgerrors.New("storage backend unavailable"), "fail on purpose")
}
