package respond

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// BaseError is implemented by the base error type of an application.
type BaseError interface {
	error
	Message() string
	Code() interface{}
	StatusCode() int
}

// Exception is what a BaseException extracts from a matching error.
// A zero StatusCode means 400.
type Exception struct {
	Message    string
	Code       interface{}
	StatusCode int
}

// BaseException recognizes application errors.
type BaseException func(err error) (Exception, bool)

// As builds a BaseException matching any error in the chain of type T.
//
//	respond.New(respond.WithBaseException(respond.As[*app.Error]()))
func As[T BaseError]() BaseException {
	return func(err error) (Exception, bool) {
		var target T
		if !errors.As(err, &target) {
			return Exception{}, false
		}
		return Exception{
			Message:    target.Message(),
			Code:       target.Code(),
			StatusCode: target.StatusCode(),
		}, true
	}
}

func (e Exception) status() int {
	if e.StatusCode == 0 {
		return http.StatusBadRequest
	}
	return e.StatusCode
}

// Registry maps names like "billing.Error" to base exceptions, so the base
// error of a deployment can be chosen in a config file.
type Registry struct {
	mu    sync.RWMutex
	bases map[string]BaseException
}

func NewRegistry() *Registry {
	return &Registry{
		bases: make(map[string]BaseException),
	}
}

// DefaultRegistry is used by WithBaseExceptionName when no registry is given.
var DefaultRegistry = NewRegistry()

// Register adds a base exception to DefaultRegistry. Call it from init.
func Register(name string, base BaseException) {
	DefaultRegistry.Register(name, base)
}

// Register adds a base exception under name, replacing a previous one.
func (r *Registry) Register(name string, base BaseException) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bases[name] = base
}

// Lookup resolves a name of the form "<package>.<Type>".
func (r *Registry) Lookup(name string) (BaseException, error) {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 || dot == len(name)-1 {
		return nil, fmt.Errorf("base exception name %q is not of the form <package>.<Type>", name)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	base, has := r.bases[name]
	if !has || base == nil {
		return nil, fmt.Errorf("base exception %q is not registered, known: [%s]", name, strings.Join(r.namesLocked(), ", "))
	}
	return base, nil
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.bases))
	for name := range r.bases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
