package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	cause := errors.New("disk full")
	err := &Error{Kind: KindInternal, Op: "flush", Step: "adapter.create", Collection: "users", Key: "u1", Err: cause}
	assert.Equal(t, "flush users/u1 (adapter.create): internal: disk full", err.Error())

	err = &Error{Kind: KindConflict, Op: "add", Key: "u1", Msg: "u1 already exists"}
	assert.Equal(t, "add u1: u1 already exists", err.Error())
}

func TestError_Is(t *testing.T) {
	err := &Error{Kind: KindNotFound, Op: "update"}
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConflict)

	tagged := withCollection("commit", "users", err)
	assert.ErrorIs(t, tagged, ErrNotFound)
	assert.Equal(t, KindNotFound, KindOf(tagged))

	plain := withCollection("rollback", "users", errors.New("odd"))
	assert.ErrorIs(t, plain, ErrInternal)
	assert.Nil(t, withCollection("commit", "users", nil))
}

func TestData_Clone(t *testing.T) {
	orig := Data{
		"s":    "x",
		"list": []any{Data{"n": 1}, []string{"a"}},
		"m":    map[any]any{"k": []any{1}},
	}
	cp := orig.Clone()
	assert.Equal(t, orig, cp)

	cp["list"].([]any)[0].(Data)["n"] = 2
	cp["list"].([]any)[1].([]string)[0] = "b"
	cp["m"].(map[any]any)["k"].([]any)[0] = 9

	assert.Equal(t, 1, orig["list"].([]any)[0].(Data)["n"])
	assert.Equal(t, "a", orig["list"].([]any)[1].([]string)[0])
	assert.Equal(t, 1, orig["m"].(map[any]any)["k"].([]any)[0])

	var nilData Data
	assert.Nil(t, nilData.Clone())
}

func TestData_CloneNestedContainers(t *testing.T) {
	type point struct {
		X    int
		Tags []string
	}
	n := 1
	orig := Data{
		"addrs": []Data{{"city": "A"}},
		"rows":  []map[string]any{{"n": 1}},
		"meta":  map[string]string{"k": "v"},
		"ids":   []int64{1, 2},
		"grid":  [2][]int{{1}, {2}},
		"ptr":   &n,
		"pt":    point{X: 1, Tags: []string{"a"}},
		"none":  []Data(nil),
	}
	cp := orig.Clone()
	assert.Equal(t, orig, cp)

	cp["addrs"].([]Data)[0]["city"] = "MUTATED"
	cp["rows"].([]map[string]any)[0]["n"] = 99
	cp["meta"].(map[string]string)["k"] = "MUTATED"
	cp["ids"].([]int64)[0] = 42
	cp["grid"].([2][]int)[0][0] = 7
	*cp["ptr"].(*int) = 5
	cp["pt"].(point).Tags[0] = "b"

	assert.Equal(t, "A", orig["addrs"].([]Data)[0]["city"])
	assert.Equal(t, 1, orig["rows"].([]map[string]any)[0]["n"])
	assert.Equal(t, "v", orig["meta"].(map[string]string)["k"])
	assert.Equal(t, int64(1), orig["ids"].([]int64)[0])
	assert.Equal(t, 1, orig["grid"].([2][]int)[0][0])
	assert.Equal(t, 1, n)
	assert.Equal(t, "a", orig["pt"].(point).Tags[0])
	assert.Nil(t, cp["none"])
}
