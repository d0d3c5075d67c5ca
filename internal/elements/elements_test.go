package elements

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/pattern"
	"github.com/starford/quire/internal/testutil"
)

func newExtractor(t *testing.T, notes map[string]string) *Extractor {
	t.Helper()
	_, store := testutil.TestNotes(t)
	testutil.WriteNotes(t, store, notes)
	clock := testutil.NewClock(2024, time.March, 10, 12, 0)
	return New(store, WithClock(clock.Now))
}

func TestTodos_Fields(t *testing.T) {
	e := newExtractor(t, map[string]string{
		"/work.md": "# Work\n- [ ] (2024-03-01) Write report :work: :urgent:\n- [X] (2024-02-01 -> 2024-02-03) Ship it\ntext\n",
	})
	todos, err := e.Todos(TodoQuery{})
	if err != nil {
		t.Fatalf("Todos: %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("len = %d, want 2", len(todos))
	}
	first := todos[0]
	if first.FilePath != "/work.md" || first.LineNumber != 2 || first.Status != pattern.StatusIncomplete {
		t.Errorf("first = %+v", first)
	}
	if first.Text != "Write report" || !reflect.DeepEqual(first.Tags, []string{"urgent", "work"}) {
		t.Errorf("text/tags = %q %v", first.Text, first.Tags)
	}
	if todos[1].StartDate != "2024-02-01" || todos[1].EndDate != "2024-02-03" {
		t.Errorf("dates = %+v", todos[1])
	}
}

func TestTodos_StatusFilter(t *testing.T) {
	e := newExtractor(t, map[string]string{
		"/a.md": "- [ ] open\n- [X] done\n- [S] skipped\n- [] open too\n",
	})
	cases := map[string]int{"": 4, "all": 4, "incomplete": 2, "complete": 1, "skipped": 1}
	for status, want := range cases {
		todos, err := e.Todos(TodoQuery{Status: status})
		if err != nil {
			t.Fatalf("Todos(%q): %v", status, err)
		}
		if len(todos) != want {
			t.Errorf("Todos(%q) = %d, want %d", status, len(todos), want)
		}
	}
	if _, err := e.Todos(TodoQuery{Status: "bogus"}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestTodos_SuppressFuture(t *testing.T) {
	e := newExtractor(t, map[string]string{
		"/a.md": "- [ ] (2024-03-10) today\n- [ ] (2024-03-11) tomorrow\n- [ ] unstamped\n",
	})
	todos, err := e.Todos(TodoQuery{SuppressFuture: true})
	if err != nil {
		t.Fatalf("Todos: %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("suppressed = %+v", todos)
	}
	for _, td := range todos {
		if td.Text == "tomorrow" {
			t.Error("future todo was not suppressed")
		}
	}
	all, _ := e.Todos(TodoQuery{})
	if len(all) != 3 {
		t.Errorf("unsuppressed = %d, want 3", len(all))
	}
}

func TestTodos_QueryTagSort(t *testing.T) {
	e := newExtractor(t, map[string]string{
		"/a.md": "- [ ] (2024-01-01) Call Alice about the budget :phone:\n" +
			"- [ ] (2024-02-01) call bob :phones:\n" +
			"- [ ] budget review\n",
	})

	got, _ := e.Todos(TodoQuery{Query: `call "the budget"`})
	if len(got) != 1 || got[0].LineNumber != 1 {
		t.Errorf("phrase query = %+v", got)
	}
	got, _ = e.Todos(TodoQuery{Query: "Call", CaseSensitive: true})
	if len(got) != 1 {
		t.Errorf("case sensitive = %+v", got)
	}
	got, _ = e.Todos(TodoQuery{Tag: "phone"})
	if len(got) != 1 || got[0].LineNumber != 1 {
		t.Errorf("tag = %+v", got)
	}
	got, _ = e.Todos(TodoQuery{SortBy: SortStartDate})
	if got[0].StartDate != "2024-02-01" || got[2].StartDate != "" {
		t.Errorf("sorted = %+v", got)
	}
}

func TestSplitTerms(t *testing.T) {
	cases := map[string][]string{
		"":                   nil,
		"a b":                {"a", "b"},
		`"a b" c`:            {"a b", "c"},
		`x "unterminated y`:  {"x", "unterminated y"},
		"  spaced   out  ":   {"spaced", "out"},
	}
	for in, want := range cases {
		if got := splitTerms(in); !reflect.DeepEqual(got, want) {
			t.Errorf("splitTerms(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuestions_Pairing(t *testing.T) {
	e := newExtractor(t, map[string]string{
		"/a.md": "? (2024-01-01) What is 2+2 :math:\nsome prose\n@ (2024-01-02) 4\n? Unanswered one\n? Second\n@ yes\n@ stray answer\n",
		"/b.md": "@ answer without question\n",
	})
	qs, err := e.Questions("", "")
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("questions = %+v", qs)
	}
	if qs[0].Answer != "4" || qs[0].AnswerDate != "2024-01-02" || qs[0].QuestionDate != "2024-01-01" {
		t.Errorf("qs[0] = %+v", qs[0])
	}
	if qs[0].Question != "What is 2+2" || !reflect.DeepEqual(qs[0].Tags, []string{"math"}) {
		t.Errorf("qs[0] text = %+v", qs[0])
	}
	if qs[1].Answered() {
		t.Errorf("qs[1] should be unanswered: %+v", qs[1])
	}
	if qs[2].Answer != "yes" {
		t.Errorf("qs[2] = %+v", qs[2])
	}

	answered, _ := e.Questions(QuestionsAnswered, "")
	unanswered, _ := e.Questions(QuestionsUnanswered, "")
	if len(answered) != 2 || len(unanswered) != 1 {
		t.Errorf("answered=%d unanswered=%d", len(answered), len(unanswered))
	}
	if _, err := e.Questions("maybe", ""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("err = %v", err)
	}
}

func TestQuestions_StampOnlyAnswer(t *testing.T) {
	e := newExtractor(t, map[string]string{
		"/a.md": "? Shipped yet\n@ (2024-01-01)\n",
	})
	qs, err := e.Questions(QuestionsAnswered, "")
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	if len(qs) != 1 || qs[0].AnswerDate != "2024-01-01" || qs[0].Answer != "" {
		t.Fatalf("answered = %+v", qs)
	}
	if unanswered, _ := e.Questions(QuestionsUnanswered, ""); len(unanswered) != 0 {
		t.Errorf("unanswered = %+v", unanswered)
	}
}

func TestQuestions_AnswerDoesNotCrossFiles(t *testing.T) {
	e := newExtractor(t, map[string]string{
		"/a.md": "? Last question",
		"/b.md": "@ Not for a\n",
	})
	qs, _ := e.Questions("", "")
	if len(qs) != 1 || qs[0].Answered() {
		t.Errorf("questions = %+v", qs)
	}
}

func TestDefinitions_SubElements(t *testing.T) {
	e := newExtractor(t, map[string]string{
		"/g.md": "{CRDT} replicated data type\n  merges without coordination\n  - commutative\n\nunrelated\n",
	})
	defs, err := e.Definitions("", true)
	if err != nil {
		t.Fatalf("Definitions: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("defs = %+v", defs)
	}
	want := []string{"merges without coordination", "- commutative"}
	if defs[0].Term != "CRDT" || !reflect.DeepEqual(defs[0].SubElements, want) {
		t.Errorf("def = %+v", defs[0])
	}
	plain, _ := e.Definitions("", false)
	if plain[0].SubElements != nil {
		t.Errorf("sub elements without flag: %v", plain[0].SubElements)
	}
}

func TestTagsAndLocations(t *testing.T) {
	e := newExtractor(t, map[string]string{
		"/a.md":     "x :beta: :alpha:\nGPS (48.8584, 2.2945) Eiffel Tower\n",
		"/sub/b.md": "y :alpha:\n",
		"/.hidden/c.md": "z :secret:\n",
	})
	tags, err := e.Tags("")
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if !reflect.DeepEqual(tags, []string{"alpha", "beta"}) {
		t.Errorf("tags = %v", tags)
	}
	sub, _ := e.Tags("/sub")
	if !reflect.DeepEqual(sub, []string{"alpha"}) {
		t.Errorf("sub tags = %v", sub)
	}
	locs, _ := e.Locations("")
	if len(locs) != 1 || locs[0].Name != "Eiffel Tower" || locs[0].LineNumber != 2 {
		t.Errorf("locations = %+v", locs)
	}
}

func TestResolveLink(t *testing.T) {
	cases := []struct{ source, target, want string }{
		{"/a/b/note.note", "../other.note", "/a/other.note"},
		{"/a/b/note.note", "/x/y.md", "/x/y.md"},
		{"/a/note.md", "peer.md#section", "/a/peer.md"},
		{"/a/note.md", "#top", "/a/note.md"},
		{"/a/note.md", "my%20file.md?x=1", "/a/my file.md"},
		{"/note.md", "../../escape.md", "/escape.md"},
	}
	for _, c := range cases {
		if got := ResolveLink(c.source, c.target); got != c.want {
			t.Errorf("ResolveLink(%q, %q) = %q, want %q", c.source, c.target, got, c.want)
		}
	}
}

func TestLinks_Validity(t *testing.T) {
	e := newExtractor(t, map[string]string{
		"/a/b/note.note": "see [other](../other.note) and [web](https://example.com)\n",
	})
	links, err := e.Links(LinkQuery{})
	if err != nil {
		t.Fatalf("Links: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("invalid link listed by default: %+v", links)
	}
	links, _ = e.Links(LinkQuery{IncludeInvalid: true, IncludeExternal: true})
	if len(links) != 2 {
		t.Fatalf("links = %+v", links)
	}
	if links[0].Target != "/a/other.note" || links[0].Valid || !links[0].Internal {
		t.Errorf("links[0] = %+v", links[0])
	}
	if links[1].Internal || !links[1].Valid {
		t.Errorf("links[1] = %+v", links[1])
	}
}

func TestLinks_EncodedTarget(t *testing.T) {
	e := newExtractor(t, map[string]string{
		"/my note.md": "# Mine\n",
		"/src.md":     "see [x](my%20note.md)\n",
	})
	to, err := e.Links(LinkQuery{Target: "/my note.md"})
	if err != nil {
		t.Fatalf("Links: %v", err)
	}
	if len(to) != 1 || to[0].Source != "/src.md" || !to[0].Valid {
		t.Errorf("target = %+v", to)
	}
}

func TestLinks_Filters(t *testing.T) {
	e := newExtractor(t, map[string]string{
		"/a.md":     "[to b](sub/b.md)\n",
		"/sub/b.md": "[back](../a.md) [self](#x)\n",
		"/c.md":     "[b again](/sub/b.md) [other b](/b.md)\n",
	})
	from, err := e.Links(LinkQuery{Source: "/a.md"})
	if err != nil {
		t.Fatalf("Links source: %v", err)
	}
	if len(from) != 1 || from[0].Target != "/sub/b.md" {
		t.Errorf("source = %+v", from)
	}
	// The bare-fragment self link carries no file name and is not a candidate.
	to, _ := e.Links(LinkQuery{Target: "/sub/b.md"})
	if len(to) != 2 {
		t.Errorf("target = %+v", to)
	}
	both, _ := e.Links(LinkQuery{Note: "/sub/b.md"})
	if len(both) != 4 {
		t.Errorf("note = %+v", both)
	}
	if _, err := e.Links(LinkQuery{Note: "/a.md", Source: "/a.md"}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
	if _, err := e.Links(LinkQuery{Source: "/ghost.md"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMarkTodo(t *testing.T) {
	e := newExtractor(t, map[string]string{
		"/a.md": "intro\n- [] (2024-01-01) task\n",
	})
	got, err := e.MarkTodo("/a.md", 2, pattern.StatusComplete)
	if err != nil {
		t.Fatalf("MarkTodo: %v", err)
	}
	if got != "- [X] (2024-01-01) task" {
		t.Errorf("line = %q", got)
	}
	got, _ = e.MarkTodo("/a.md", 2, pattern.StatusIncomplete)
	if got != "- [ ] (2024-01-01) task" {
		t.Errorf("line = %q", got)
	}
	if _, err := e.MarkTodo("/a.md", 1, pattern.StatusComplete); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
	if _, err := e.MarkTodo("/a.md", 9, pattern.StatusComplete); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
