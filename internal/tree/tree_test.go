package tree

// Тесты чистых функций над деревом (internal/tree/tree.go).
//
// Проверяем:
//  - каскадное удаление поддерева и отсутствие «сирот»;
//  - точечное обновление content с переиспользованием нетронутых узлов;
//  - вставку ответа последним элементом Replies родителя;
//  - слияние агрегатов голосов с одной записью на пользователя;
//  - неизменность входного дерева во всех операциях;
//  - Validate на нарушениях инвариантов.
//
// Запуск:
//   go test ./internal/tree -v -race -count=1

import (
	"testing"

	"github.com/pribylovaa/news-portal-comments/internal/models"
	"github.com/stretchr/testify/require"
)

// node — короткий хелпер сборки узла.
func node(id, content string, replies ...*models.Comment) *models.Comment {
	return &models.Comment{ID: id, Content: content, Replies: replies}
}

// ids — id узлов в порядке обхода в глубину.
func ids(t models.Tree) []string {
	var out []string
	Walk(t, func(c *models.Comment, _ int) bool {
		out = append(out, c.ID)
		return true
	})
	return out
}

func TestRemoveSubtree_CascadesToReplies(t *testing.T) {
	t.Parallel()

	in := models.Tree{node("1", "", node("2", ""))}

	got, ok := RemoveSubtree(in, "1")
	require.True(t, ok)
	require.Empty(t, got)
	require.Nil(t, Find(got, "2"), "потомок удалённого узла не должен выжить")

	// вход не тронут.
	require.Equal(t, []string{"1", "2"}, ids(in))
}

func TestRemoveSubtree_Nested(t *testing.T) {
	t.Parallel()

	sibling := node("4", "", node("5", ""))
	in := models.Tree{
		node("1", "", node("2", "", node("3", "")), sibling),
		node("6", ""),
	}

	got, ok := RemoveSubtree(in, "2")
	require.True(t, ok)
	require.Equal(t, []string{"1", "4", "5", "6"}, ids(got))

	// соседнее поддерево и второй корень переиспользованы по ссылке.
	require.Same(t, sibling, got[0].Replies[0])
	require.Same(t, in[1], got[1])
	// предок на пути скопирован.
	require.NotSame(t, in[0], got[0])
}

func TestRemoveSubtree_Missing(t *testing.T) {
	t.Parallel()

	in := models.Tree{node("1", "")}
	got, ok := RemoveSubtree(in, "nope")
	require.False(t, ok)
	require.Equal(t, in, got)
}

func TestMapContent_TargetsOnlyMatchingNode(t *testing.T) {
	t.Parallel()

	child := node("2", "b")
	other := node("3", "x", node("4", "y"))
	in := models.Tree{node("1", "a", child), other}

	got, ok := MapContent(in, "2", "c")
	require.True(t, ok)

	require.Equal(t, "c", got[0].Replies[0].Content)
	require.Equal(t, "a", got[0].Content, "родитель не меняется по полям")
	require.Same(t, other, got[1], "узлы вне пути — та же ссылка")

	// вход не тронут.
	require.Equal(t, "b", child.Content)
	require.Same(t, child, in[0].Replies[0])
}

func TestMapContent_KeepsOtherFields(t *testing.T) {
	t.Parallel()

	in := models.Tree{&models.Comment{
		ID: "1", Content: "a", Approved: true, Upvotes: 3,
		Author: &models.Author{ID: "u", Name: "alice"},
		Votes:  []models.Vote{{UserID: "u", Type: models.VoteUp}},
	}}

	got, ok := MapContent(in, "1", "b")
	require.True(t, ok)
	require.Equal(t, "b", got[0].Content)
	require.True(t, got[0].Approved)
	require.Equal(t, 3, got[0].Upvotes)
	require.Equal(t, in[0].Author, got[0].Author)
	require.Equal(t, in[0].Votes, got[0].Votes)
}

func TestInsertUnder_Parent(t *testing.T) {
	t.Parallel()

	in := models.Tree{node("1", "")}
	reply := node("2", "")

	got, ok := InsertUnder(in, "1", reply)
	require.True(t, ok)
	require.Len(t, got, 1, "число корней не меняется")
	require.Equal(t, []*models.Comment{reply}, got[0].Replies)
	require.Empty(t, in[0].Replies, "вход не тронут")
}

// Ответ на узел 2 становится последним в его Replies и больше нигде не появляется.
func TestInsertUnder_LastAndOnlyUnderParent(t *testing.T) {
	t.Parallel()

	in := models.Tree{
		node("1", "", node("2", "", node("3", "")), node("5", "")),
		node("6", ""),
	}
	hi := node("7", "hi")

	got, ok := InsertUnder(in, "2", hi)
	require.True(t, ok)

	parent := Find(got, "2")
	require.NotNil(t, parent)
	require.Len(t, parent.Replies, 2)
	require.Same(t, hi, parent.Replies[1])

	seen := 0
	Walk(got, func(c *models.Comment, _ int) bool {
		for _, r := range c.Replies {
			if r == hi {
				seen++
				require.Equal(t, "2", c.ID)
			}
		}
		return true
	})
	require.Equal(t, 1, seen)
	require.Same(t, in[1], got[1])
}

func TestInsertUnder_Root(t *testing.T) {
	t.Parallel()

	in := models.Tree{node("1", "")}
	got, ok := InsertUnder(in, "", node("2", ""))
	require.True(t, ok)
	require.Equal(t, []string{"1", "2"}, ids(got))
	require.Len(t, in, 1)
}

func TestInsertUnder_MissingParent(t *testing.T) {
	t.Parallel()

	in := models.Tree{node("1", "")}
	got, ok := InsertUnder(in, "42", node("2", ""))
	require.False(t, ok)
	require.Equal(t, in, got)
}

func TestMergeVoteTally(t *testing.T) {
	t.Parallel()

	in := models.Tree{node("1", "", &models.Comment{
		ID: "2", Upvotes: 1,
		Votes: []models.Vote{{UserID: "me", Type: models.VoteUp}, {UserID: "x", Type: models.VoteDown}},
	})}

	got, ok := MergeVoteTally(in, "2", models.Tally{Upvotes: 0, Downvotes: 2}, models.Vote{UserID: "me", Type: models.VoteDown})
	require.True(t, ok)

	n := Find(got, "2")
	require.Equal(t, 0, n.Upvotes)
	require.Equal(t, 2, n.Downvotes)
	require.Equal(t, []models.Vote{{UserID: "me", Type: models.VoteDown}, {UserID: "x", Type: models.VoteDown}}, n.Votes)

	// снятие голоса.
	got, ok = MergeVoteTally(got, "2", models.Tally{Downvotes: 1}, models.Vote{UserID: "me", Type: models.VoteNone})
	require.True(t, ok)
	require.Equal(t, []models.Vote{{UserID: "x", Type: models.VoteDown}}, Find(got, "2").Votes)

	// вход не тронут.
	require.Equal(t, 1, Find(in, "2").Upvotes)
	require.Len(t, Find(in, "2").Votes, 2)

	_, ok = MergeVoteTally(in, "nope", models.Tally{}, models.Vote{UserID: "me", Type: models.VoteUp})
	require.False(t, ok)
}

func TestWalk_DepthAndStop(t *testing.T) {
	t.Parallel()

	in := models.Tree{node("1", "", node("2", "", node("3", ""))), node("4", "")}

	depths := map[string]int{}
	Walk(in, func(c *models.Comment, d int) bool {
		depths[c.ID] = d
		return true
	})
	require.Equal(t, map[string]int{"1": 0, "2": 1, "3": 2, "4": 0}, depths)

	visited := 0
	Walk(in, func(c *models.Comment, _ int) bool {
		visited++
		return c.ID != "2"
	})
	require.Equal(t, 2, visited)
	require.Equal(t, 4, Count(in))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(models.Tree{node("1", "", node("2", "")), node("3", "")}))
	require.NoError(t, Validate(nil))

	require.ErrorIs(t, Validate(models.Tree{node("1", ""), node("1", "")}), ErrDuplicateID)
	require.ErrorIs(t, Validate(models.Tree{node("1", "", nil)}), ErrNilNode)

	shared := node("2", "")
	require.ErrorIs(t, Validate(models.Tree{node("1", "", shared), node("3", "", shared)}), ErrSharedNode)

	cyclic := node("1", "")
	cyclic.Replies = []*models.Comment{cyclic}
	require.ErrorIs(t, Validate(models.Tree{cyclic}), ErrSharedNode)

	dupVotes := &models.Comment{ID: "1", Votes: []models.Vote{{UserID: "u"}, {UserID: "u"}}}
	require.ErrorIs(t, Validate(models.Tree{dupVotes}), ErrDuplicateVote)
}
