// Package msgtree describes nested error messages and collapses them into
// a flat list of strings.
//
// A Tree is one of Text, Detail, List or Map. Validation layers usually
// produce structures like
//
//	{"title": ["This field is required."], "tags": [{"name": ["Too long."]}]}
//
// Flatten turns that into ["This field is required.", "Too long."]: field
// names are dropped, order is kept.
package msgtree

import (
	"fmt"
	"reflect"
	"sort"
)

// Tree is a node of an error message tree.
type Tree interface {
	tree()
}

// Text is a plain leaf message.
type Text string

// Detail is a leaf message with a machine-readable code attached.
// Only Message is kept by Flatten.
type Detail struct {
	Message string
	Code    string
}

func (d Detail) String() string {
	return d.Message
}

// List is an ordered sequence of trees.
type List []Tree

// Field is one entry of Map.
type Field struct {
	Key   string
	Value Tree
}

// Map is an ordered mapping from field name to tree.
type Map []Field

func (Text) tree()   {}
func (Detail) tree() {}
func (List) tree()   {}
func (Map) tree()    {}

// Get returns the value stored under key.
func (m Map) Get(key string) (Tree, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Flatten collects the leaves of t depth-first, left to right.
func Flatten(t Tree) []string {
	messages := []string{}
	return appendLeaves(messages, t)
}

func appendLeaves(messages []string, t Tree) []string {
	switch t := t.(type) {
	case nil:
		return messages
	case List:
		for _, item := range t {
			messages = appendLeaves(messages, item)
		}
		return messages
	case Map:
		for _, f := range t {
			messages = appendLeaves(messages, f.Value)
		}
		return messages
	case Text:
		return append(messages, string(t))
	case Detail:
		return append(messages, t.Message)
	default:
		panic(fmt.Sprintf("msgtree: unknown node %T", t))
	}
}

// Len returns the number of leaves in t.
func Len(t Tree) int {
	switch t := t.(type) {
	case List:
		n := 0
		for _, item := range t {
			n += Len(item)
		}
		return n
	case Map:
		n := 0
		for _, f := range t {
			n += Len(f.Value)
		}
		return n
	case Text, Detail:
		return 1
	}
	return 0
}

// FromValue converts an arbitrary Go value into a Tree.
//
// Slices and arrays become List, maps with string keys become Map sorted by
// key, everything else becomes a Text leaf rendered with fmt. A nil value
// becomes an empty List.
func FromValue(v interface{}) Tree {
	switch v := v.(type) {
	case nil:
		return List{}
	case Tree:
		return v
	case string:
		return Text(v)
	case []string:
		list := make(List, 0, len(v))
		for _, s := range v {
			list = append(list, Text(s))
		}
		return list
	case []interface{}:
		list := make(List, 0, len(v))
		for _, item := range v {
			list = append(list, FromValue(item))
		}
		return list
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		m := make(Map, 0, len(v))
		for _, key := range keys {
			m = append(m, Field{Key: key, Value: FromValue(v[key])})
		}
		return m
	case error:
		return Text(v.Error())
	case fmt.Stringer:
		return Text(v.String())
	}

	value := reflect.ValueOf(v)
	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		if value.Kind() == reflect.Slice && value.IsNil() {
			return List{}
		}
		list := make(List, 0, value.Len())
		for i := 0; i < value.Len(); i++ {
			list = append(list, FromValue(value.Index(i).Interface()))
		}
		return list
	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String {
			break
		}
		keys := make([]string, 0, value.Len())
		for _, key := range value.MapKeys() {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		m := make(Map, 0, len(keys))
		for _, key := range keys {
			item := value.MapIndex(reflect.ValueOf(key).Convert(value.Type().Key()))
			m = append(m, Field{Key: key, Value: FromValue(item.Interface())})
		}
		return m
	case reflect.Ptr, reflect.Interface:
		if value.IsNil() {
			return List{}
		}
	}
	return Text(fmt.Sprint(v))
}
