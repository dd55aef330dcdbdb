package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		role    Role
		allowed []Capability
		denied  []Capability
	}{
		{RoleCommon, []Capability{CapViewPost, CapSubscribe, CapComment}, []Capability{CapAddPost, CapChangePost, CapDeletePost, CapManageCategories}},
		{RoleAuthor, []Capability{CapViewPost, CapAddPost, CapChangePost, CapDeletePost, CapSubscribe}, []Capability{CapManageCategories}},
		{RoleAdmin, []Capability{CapAddPost, CapDeletePost, CapManageCategories}, nil},
		{Role("stranger"), nil, []Capability{CapViewPost, CapAddPost}},
	}

	for _, tc := range cases {
		for _, c := range tc.allowed {
			assert.True(t, Can(tc.role, c), "%s should have %s", tc.role, c)
		}
		for _, c := range tc.denied {
			assert.False(t, Can(tc.role, c), "%s should not have %s", tc.role, c)
		}
	}

	assert.True(t, RoleAuthor.IsAuthor())
	assert.True(t, RoleAdmin.IsAuthor())
	assert.False(t, RoleCommon.IsAuthor())
	assert.False(t, Role("stranger").Valid())
	assert.True(t, Actor{UserID: 1, Role: RoleAuthor}.Can(CapAddPost))
}

func TestPostTypeRules(t *testing.T) {
	assert.Equal(t, 3, PostTypeNews.DailyLimit())
	assert.Equal(t, 5, PostTypeArticle.DailyLimit())
	assert.False(t, PostType("blog").Valid())

	p := Post{Categories: []Category{{ID: 4}, {ID: 2}}}
	assert.Equal(t, []uint{4, 2}, p.CategoryIDs())
}

func TestFormError(t *testing.T) {
	fe := NewFormError()
	assert.True(t, fe.Empty())

	fe.Add("title", "too short")
	fe.Add(NonFieldErrors, "limit reached")
	assert.False(t, fe.Empty())
	assert.True(t, fe.Has("title"))
	assert.False(t, fe.Has("content"))
	assert.Equal(t, "validation failed: non_field_errors: limit reached, title: too short", fe.Error())

	var err error = fe
	got, ok := AsFormError(err)
	assert.True(t, ok)
	assert.Same(t, fe, got)

	_, ok = AsFormError(ErrNotFound)
	assert.False(t, ok)

	var report FanOutReport
	report.Add(FanOutReport{Sent: 2, Failed: 1})
	report.Add(FanOutReport{Sent: 1})
	assert.Equal(t, FanOutReport{Sent: 3, Failed: 1}, report)
}
