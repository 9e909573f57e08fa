package msgtree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Decode parses JSON into a Tree keeping the key order of every object.
// Scalars (numbers, booleans, null) become Text leaves with their JSON
// spelling.
func Decode(data []byte) (Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	t, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return t, nil
}

func decodeValue(dec *json.Decoder) (Tree, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch tok := tok.(type) {
	case json.Delim:
		switch tok {
		case '[':
			list := List{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		case '{':
			m := Map{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, want string", keyTok)
				}
				value, err := decodeValue(dec)
				if err != nil {
					return nil, fmt.Errorf("field %q: %w", key, err)
				}
				m = append(m, Field{Key: key, Value: value})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", tok)
	case string:
		return Text(tok), nil
	case json.Number:
		return Text(tok.String()), nil
	case bool:
		return Text(fmt.Sprint(tok)), nil
	case nil:
		return Text("null"), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// MarshalJSON writes the map as a JSON object in field order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := marshalTree(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON writes the list as a JSON array.
func (l List) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		value, err := marshalTree(item)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalJSON writes the detail as its message string, dropping the code.
func (d Detail) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Message)
}

func marshalTree(t Tree) ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t)
}
