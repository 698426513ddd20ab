package apillon_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apillon/apillon-go"
)

type record struct {
	apillon.Entity `json:"-"`

	Name   string   `json:"name"`
	Size   int      `json:"size"`
	Public bool     `json:"public"`
	Tags   []string `json:"tags"`
	Owner  *string  `json:"owner"`

	hidden string
}

func TestPopulate_NeverOverwrites(t *testing.T) {
	dst := record{Entity: apillon.NewEntity(nil, "u1", "/records/u1"), Name: "local", Size: 0}
	patch := record{
		Entity: apillon.NewEntity(nil, "other", "/records/other"),
		Name:   "remote",
		Size:   42,
		Public: true,
		Tags:   []string{"a"},
		Owner:  apillon.Ptr("me"),
		hidden: "x",
	}

	apillon.Populate(&dst, patch)

	assert.Equal(t, "local", dst.Name)
	assert.Equal(t, 42, dst.Size)
	assert.True(t, dst.Public)
	assert.Equal(t, []string{"a"}, dst.Tags)
	require.NotNil(t, dst.Owner)
	assert.Equal(t, "me", *dst.Owner)
	assert.Equal(t, "u1", dst.UUID(), "the identity is never replaced")
	assert.Equal(t, "/records/u1", dst.APIPrefix())
	assert.Empty(t, dst.hidden)
}

func TestPopulate_Idempotent(t *testing.T) {
	dst := record{Name: "a"}
	patch := record{Name: "b", Size: 3}

	apillon.Populate(&dst, patch)
	once := dst
	apillon.Populate(&dst, patch)

	assert.Equal(t, once, dst)
}

func TestPopulate_ZeroIsUnset(t *testing.T) {
	type flags struct {
		Drop      bool  `json:"drop"`
		Revocable *bool `json:"revocable"`
	}
	dst := flags{Drop: false, Revocable: apillon.Ptr(false)}

	apillon.Populate(&dst, flags{Drop: true, Revocable: apillon.Ptr(true)})

	assert.True(t, dst.Drop, "a plain false counts as unset")
	require.NotNil(t, dst.Revocable)
	assert.False(t, *dst.Revocable, "a pointer to false is kept")
}

func TestPopulate_Scalar(t *testing.T) {
	n := 0
	apillon.Populate(&n, 5)
	assert.Equal(t, 5, n)

	apillon.Populate(&n, 7)
	assert.Equal(t, 5, n)

	apillon.Populate[int](nil, 1)
}

func TestMerge_LeavesInputsUntouched(t *testing.T) {
	base := record{Name: "base"}
	patch := record{Name: "patch", Size: 9}

	out := apillon.Merge(base, patch)

	assert.Equal(t, "base", out.Name)
	assert.Equal(t, 9, out.Size)
	assert.Equal(t, 0, base.Size)
	assert.Equal(t, "patch", patch.Name)
}

func TestPopulateJSON(t *testing.T) {
	dst := record{Name: "local"}

	err := apillon.PopulateJSON(&dst, []byte(`{"name": "remote", "size": 5, "unknown": true}`))
	require.NoError(t, err)
	assert.Equal(t, "local", dst.Name)
	assert.Equal(t, 5, dst.Size)

	require.NoError(t, apillon.PopulateJSON(&dst, nil))
	require.NoError(t, apillon.PopulateJSON(&dst, []byte("null")))

	err = apillon.PopulateJSON(&dst, []byte(`{"size": "not a number"}`))
	assert.Error(t, err, "type mismatches are reported")
}

func TestDecodeID(t *testing.T) {
	id, err := apillon.DecodeID([]byte(`{"bucketUuid": "b1", "name": "x"}`), "bucketUuid")
	require.NoError(t, err)
	assert.Equal(t, "b1", id)

	id, err = apillon.DecodeID([]byte(`{"name": "x"}`), "bucketUuid")
	require.NoError(t, err)
	assert.Empty(t, id)

	_, err = apillon.DecodeID([]byte(`{"bucketUuid": 7}`), "bucketUuid")
	assert.Error(t, err)

	_, err = apillon.DecodeID([]byte(`[]`), "bucketUuid")
	assert.Error(t, err)
}

func TestMarshalEntity(t *testing.T) {
	out, err := apillon.MarshalEntity("recordUuid", "u1", struct {
		Name string `json:"name"`
	}{Name: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"recordUuid": "u1", "name": "x"}`, string(out))

	out, err = apillon.MarshalEntity("recordUuid", "u1", struct{}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"recordUuid": "u1"}`, string(out))

	_, err = apillon.MarshalEntity("recordUuid", "u1", []int{1})
	assert.Error(t, err)
}

func TestModule(t *testing.T) {
	m := apillon.NewModule(nil, "/storage/buckets")
	assert.Equal(t, "/storage/buckets", m.APIPrefix())
	assert.Nil(t, m.Client())

	var r record
	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "Entity")
}
