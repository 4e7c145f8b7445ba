package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	Title   string
	Body    string
	Cat     string
	Replies int
}

func byText() Query[item] {
	return Query[item]{
		Fields: []func(item) string{
			func(i item) string { return i.Title },
			func(i item) string { return i.Body },
		},
		CategoryOf: func(i item) string { return i.Cat },
	}
}

var items = []item{
	{Title: "Tech Fest", Body: "annual celebration", Cat: "events", Replies: 2},
	{Title: "Career Fair", Body: "meet recruiters", Cat: "career", Replies: 9},
	{Title: "Library hours", Body: "extended for exams", Cat: "academic", Replies: 9},
}

func titles(in []item) []string {
	out := []string{}
	for _, i := range in {
		out = append(out, i.Title)
	}
	return out
}

func TestTextMatchesAnyField(t *testing.T) {
	q := byText()

	q.Text = "  tech "
	assert.Equal(t, []string{"Tech Fest"}, titles(Apply(items, q)))

	q.Text = "RECRUITERS"
	assert.Equal(t, []string{"Career Fair"}, titles(Apply(items, q)))

	q.Text = ""
	assert.Len(t, Apply(items, q), 3)

	q.Text = "nothing like this"
	assert.Empty(t, Apply(items, q))
}

func TestCategory(t *testing.T) {
	q := byText()
	for _, c := range []string{"", All} {
		q.Category = c
		assert.Len(t, Apply(items, q), 3)
	}
	q.Category = "career"
	assert.Equal(t, []string{"Career Fair"}, titles(Apply(items, q)))
	q.Category = "Career"
	assert.Empty(t, Apply(items, q))
}

func TestSortIsStableDescending(t *testing.T) {
	q := byText()
	q.SortKey = func(i item) float64 { return float64(i.Replies) }
	assert.Equal(t, []string{"Career Fair", "Library hours", "Tech Fest"}, titles(Apply(items, q)))

	q.SortKey = nil
	assert.Equal(t, []string{"Tech Fest", "Career Fair", "Library hours"}, titles(Apply(items, q)))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := append([]item(nil), items...)
	q := byText()
	q.SortKey = func(i item) float64 { return float64(i.Replies) }
	out := Apply(in, q)
	assert.Equal(t, items, in)
	out[0].Title = "changed"
	assert.Equal(t, "Tech Fest", in[0].Title)
}

func TestPage(t *testing.T) {
	p := NewPage[item](nil, "No events found.")
	assert.True(t, p.NoneFound)
	assert.Equal(t, "No events found.", p.Message)
	assert.NotNil(t, p.Items)

	p = NewPage(items[:1], "No events found.")
	assert.False(t, p.NoneFound)
	assert.Empty(t, p.Message)
}
