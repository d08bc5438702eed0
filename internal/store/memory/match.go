package memory

import (
	"bytes"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// lookup resolves a dotted path, fanning out across arrays the way Mongo
// does. A terminal array contributes itself and each of its elements.
func lookup(v any, path []string) []any {
	if len(path) == 0 {
		if arr, ok := asArray(v); ok {
			out := []any{v}
			return append(out, arr...)
		}
		return []any{v}
	}
	if arr, ok := asArray(v); ok {
		var out []any
		for _, elem := range arr {
			out = append(out, lookup(elem, path)...)
		}
		return out
	}
	doc, ok := asDoc(v)
	if !ok {
		return nil
	}
	next, ok := doc[path[0]]
	if !ok {
		return nil
	}
	return lookup(next, path[1:])
}

func asArray(v any) ([]any, bool) {
	switch a := v.(type) {
	case primitive.A:
		return a, true
	case []any:
		return a, true
	}
	return nil, false
}

func asDoc(v any) (map[string]any, bool) {
	switch d := v.(type) {
	case bson.M:
		return d, true
	case map[string]any:
		return d, true
	case primitive.D:
		return d.Map(), true
	}
	return nil, false
}

func splitPath(field string) []string {
	return strings.Split(field, ".")
}

// matches reports whether doc satisfies every condition of filter. Both
// sides must already be normalised through a bson round trip.
func matches(doc bson.M, filter bson.M) bool {
	for field, want := range filter {
		got := lookup(doc, splitPath(field))
		if ops, ok := operators(want); ok {
			for op, arg := range ops {
				if !applyOp(op, got, arg) {
					return false
				}
			}
			continue
		}
		if !anyEqual(got, want) {
			return false
		}
	}
	return true
}

func operators(v any) (map[string]any, bool) {
	doc, ok := asDoc(v)
	if !ok || len(doc) == 0 {
		return nil, false
	}
	for k := range doc {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return doc, true
}

func applyOp(op string, got []any, arg any) bool {
	switch op {
	case "$ne":
		return !anyEqual(got, arg)
	case "$in":
		list, _ := asArray(arg)
		for _, candidate := range list {
			if anyEqual(got, candidate) {
				return true
			}
		}
		return false
	case "$gt", "$gte", "$lt", "$lte":
		for _, g := range got {
			c, ok := compare(g, arg)
			if !ok {
				continue
			}
			switch {
			case op == "$gt" && c > 0, op == "$gte" && c >= 0, op == "$lt" && c < 0, op == "$lte" && c <= 0:
				return true
			}
		}
		return false
	}
	return false
}

// anyEqual treats a missing field as null.
func anyEqual(got []any, want any) bool {
	if len(got) == 0 {
		return want == nil
	}
	for _, g := range got {
		if equal(g, want) {
			return true
		}
	}
	return false
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// compare orders two values of the same BSON family. ok is false when
// they are not comparable.
func compare(a, b any) (int, bool) {
	if x, ok := number(a); ok {
		y, ok := number(b)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case primitive.DateTime:
		y, ok := b.(primitive.DateTime)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case primitive.ObjectID:
		y, ok := b.(primitive.ObjectID)
		if !ok {
			return 0, false
		}
		return bytes.Compare(x[:], y[:]), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

// sortValue picks the scalar a sort key resolves to. Missing sorts first.
func sortValue(doc bson.M, field string) any {
	got := lookup(doc, splitPath(field))
	if len(got) == 0 {
		return nil
	}
	return got[0]
}

func compareForSort(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	c, _ := compare(a, b)
	return c
}
