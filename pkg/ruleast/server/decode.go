package server

import (
	"io"
	"net/http"

	"github.com/valyala/fastjson"

	"github.com/randalmurphal/ruleast/pkg/ruleast"
)

// parseBody reads the request body and parses it with p. The returned
// value is only valid until p is returned to its pool.
func parseBody(w http.ResponseWriter, r *http.Request, p *fastjson.Parser) (*fastjson.Value, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, badRequest("read body: %v", err)
	}
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, badRequest("invalid JSON: %v", err)
	}
	if v.Type() != fastjson.TypeObject {
		return nil, badRequest("body must be a JSON object")
	}
	return v, nil
}

// stringField returns a required string field. An empty string counts as
// missing.
func stringField(v *fastjson.Value, key string) (string, error) {
	s, err := optionalString(v, key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", badRequest("missing field %q", key)
	}
	return s, nil
}

func optionalString(v *fastjson.Value, key string) (string, error) {
	f := v.Get(key)
	if f == nil {
		return "", nil
	}
	b, err := f.StringBytes()
	if err != nil {
		return "", badRequest("field %q must be a string", key)
	}
	return string(b), nil
}

// stringsField returns a required, non-empty array of strings.
func stringsField(v *fastjson.Value, key string) ([]string, error) {
	f := v.Get(key)
	if f == nil {
		return nil, badRequest("missing field %q", key)
	}
	items, err := f.Array()
	if err != nil {
		return nil, badRequest("field %q must be an array of strings", key)
	}
	if len(items) == 0 {
		return nil, badRequest("field %q must not be empty", key)
	}
	out := make([]string, len(items))
	for i, item := range items {
		b, err := item.StringBytes()
		if err != nil {
			return nil, badRequest("field %q must be an array of strings", key)
		}
		out[i] = string(b)
	}
	return out, nil
}

// recordField decodes a flat record. Integral numbers become int64 and
// strings stay strings; any other JSON type is rejected.
func recordField(v *fastjson.Value, key string) (ruleast.Record, error) {
	f := v.Get(key)
	if f == nil {
		return nil, badRequest("missing field %q", key)
	}
	obj, err := f.Object()
	if err != nil {
		return nil, badRequest("field %q must be an object", key)
	}

	record := make(ruleast.Record, obj.Len())
	var visitErr error
	obj.Visit(func(k []byte, val *fastjson.Value) {
		if visitErr != nil {
			return
		}
		switch val.Type() {
		case fastjson.TypeNumber:
			n, err := val.Int64()
			if err != nil {
				visitErr = badRequest("%s.%s: not an integer", key, k)
				return
			}
			record[string(k)] = n
		case fastjson.TypeString:
			b, _ := val.StringBytes()
			record[string(k)] = string(b)
		default:
			visitErr = badRequest("%s.%s: unsupported %s value", key, k, val.Type())
		}
	})
	if visitErr != nil {
		return nil, visitErr
	}
	return record, nil
}
