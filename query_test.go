package apillon_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apillon/apillon-go"
)

type color int

const (
	red  color = 1
	blue color = 2
)

func (c color) String() string {
	switch c {
	case red:
		return "RED"
	case blue:
		return "BLUE"
	default:
		return "UNKNOWN"
	}
}

type itemFilter struct {
	Directory *string `query:"directoryUuid"`
	Deleted   *bool   `query:"markedForDeletion"`
	Color     *color  `query:"color"`
	Ignored   *string `query:"-"`
	apillon.Pagination
}

func TestBuildURL(t *testing.T) {
	tt := []struct {
		Name        string
		Filter      any
		Serializers apillon.Serializers
		Want        string
	}{
		{Name: "nil filter", Filter: nil, Want: "/items"},
		{Name: "nil pointer filter", Filter: (*itemFilter)(nil), Want: "/items"},
		{Name: "empty filter", Filter: itemFilter{}, Want: "/items"},
		{
			Name:   "declaration order with embedded pagination",
			Filter: &itemFilter{Deleted: apillon.Ptr(false), Directory: apillon.Ptr("d1"), Pagination: apillon.Pagination{Limit: apillon.Ptr(20), Page: apillon.Ptr(2)}},
			Want:   "/items?directoryUuid=d1&markedForDeletion=false&page=2&limit=20",
		},
		{
			Name:   "enum by ordinal",
			Filter: itemFilter{Color: apillon.Ptr(blue)},
			Want:   "/items?color=2",
		},
		{
			Name:        "enum by name",
			Filter:      itemFilter{Color: apillon.Ptr(red)},
			Serializers: apillon.Serializers{"color": apillon.EnumName},
			Want:        "/items?color=RED",
		},
		{
			Name:   "values are escaped",
			Filter: itemFilter{Pagination: apillon.Pagination{Search: apillon.Ptr("a b&c=d")}},
			Want:   "/items?search=a+b%26c%3Dd",
		},
		{
			Name:   "zero values are still sent",
			Filter: itemFilter{Pagination: apillon.Pagination{Page: apillon.Ptr(0), Desc: apillon.Ptr(false)}},
			Want:   "/items?page=0&desc=false",
		},
		{
			Name:   "ignored field",
			Filter: itemFilter{Ignored: apillon.Ptr("x")},
			Want:   "/items",
		},
		{Name: "non struct filter", Filter: 42, Want: "/items"},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Want, apillon.BuildURL("/items", tc.Filter, tc.Serializers))
		})
	}
}

func TestBuildURL_ExistingQuery(t *testing.T) {
	got := apillon.BuildURL("/items?fixed=1", itemFilter{Directory: apillon.Ptr("d")}, nil)
	assert.Equal(t, "/items?fixed=1&directoryUuid=d", got)
}

func TestBuildURL_Deterministic(t *testing.T) {
	f := &itemFilter{
		Directory:  apillon.Ptr("d1"),
		Color:      apillon.Ptr(red),
		Pagination: apillon.Pagination{Search: apillon.Ptr("x"), OrderBy: apillon.Ptr("name"), Desc: apillon.Ptr(true)},
	}

	first := apillon.BuildURL("/items", f, nil)
	for range 50 {
		assert.Equal(t, first, apillon.BuildURL("/items", f, nil))
	}
	assert.True(t, strings.HasPrefix(first, "/items?directoryUuid=d1&color=1&search=x"))
}

func TestQueryParams(t *testing.T) {
	params := apillon.QueryParams(itemFilter{Directory: apillon.Ptr("d1"), Deleted: apillon.Ptr(true)}, nil)
	assert.Equal(t, [][2]string{{"directoryUuid", "d1"}, {"markedForDeletion", "true"}}, params)
}
