package socialgraph

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Sanitize coerces every node and edge attribute into the small scalar
// set the export formats support: nil values are dropped, scalars pass
// through, slices join into a comma-separated string, maps serialize to
// compact JSON, anything else falls back to its string form. Values
// that cannot be coerced are dropped. Running it twice is the same as
// running it once.
func Sanitize(g *Graph) {
	for _, id := range g.Nodes() {
		sanitizeBag(g.NodeAttrs(id))
	}
	for i := range g.edges {
		sanitizeBag(g.edges[i].Attrs)
	}
}

func sanitizeBag(attrs map[string]any) {
	for k, v := range attrs {
		coerced, ok := SanitizeValue(v)
		if !ok {
			delete(attrs, k)
			continue
		}
		attrs[k] = coerced
	}
}

// SanitizeValue coerces one attribute value; ok=false means the
// attribute should be dropped.
func SanitizeValue(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return t, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, ok := SanitizeValue(rv.Index(i).Interface())
			if !ok {
				continue
			}
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ","), true
	case reflect.Map:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return string(b), true
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, false
		}
		return SanitizeValue(rv.Elem().Interface())
	}
	return fmt.Sprintf("%v", v), true
}
