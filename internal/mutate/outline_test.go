package mutate

import (
	"errors"
	"reflect"
	"testing"

	"coursekit/internal/model"
	"coursekit/internal/store"
)

func TestAdd_PositionalDefaultTitles(t *testing.T) {
	c := fixture()
	ids := newSeqIDs(c)

	c, sid := AddSection(c, ids)
	s, ok := c.FindSection(sid)
	if !ok || s.Title != "Section 3" || s.Subsections == nil {
		t.Fatalf("unexpected new section: %+v", s)
	}

	c, uid := AddSubsection(c, ids, sid)
	c, uid2 := AddSubsection(c, ids, sid)
	sub, _ := c.FindSubsection(uid2)
	if sub.Title != "Subsection 2" || sub.TopicBoxes == nil {
		t.Fatalf("unexpected new subsection: %+v", sub)
	}

	c, tid := AddTopicBox(c, ids, uid)
	tb, ok := c.FindTopicBox(tid)
	if !ok || tb.Title != "Topic 1" || tb.PLAPillars == nil || tb.Activities == nil {
		t.Fatalf("unexpected new topic box: %+v", tb)
	}

	c, bid := AddBreak(c, ids, 0)
	b, _ := c.FindSection(bid)
	if !b.IsBreak() || b.Duration != DefaultBreakMinutes {
		t.Fatalf("unexpected break: %+v", b)
	}
	c, sid4 := AddSection(c, ids)
	if s, _ := c.FindSection(sid4); s.Title != "Section 4" {
		t.Fatalf("expected breaks to be skipped in numbering, got %q", s.Title)
	}
}

func TestAdd_UnknownParentIsNoOp(t *testing.T) {
	c := fixture()
	if got, id := AddSubsection(c, nil, "B"); got != c || id != "" {
		t.Fatalf("expected no-op for break parent")
	}
	if got, id := AddTopicBox(c, nil, "nope"); got != c || id != "" {
		t.Fatalf("expected no-op for unknown parent")
	}
}

func TestAdd_IDsNeverReusedAfterDelete(t *testing.T) {
	c := &model.Course{Sections: []model.Section{}}
	ids := store.NewIDAllocator(c)
	c, first := AddSection(c, ids)
	c = DeleteSection(c, first)
	_, second := AddSection(c, ids)
	if first == second {
		t.Fatalf("id %q reused after delete", first)
	}
}

func TestRename(t *testing.T) {
	c := fixture()

	got := RenameSection(c, "S1", FieldTitle, "Intro")
	if s, _ := got.FindSection("S1"); s.Title != "Intro" {
		t.Fatalf("section title: %q", s.Title)
	}
	got = SetField(got, "Sub2", FieldDescription, "d")
	if sub, _ := got.FindSubsection("Sub2"); sub.Description != "d" {
		t.Fatalf("subsection description: %q", sub.Description)
	}
	got = SetField(got, "t3a", FieldTitle, "Leaf")
	if v, ok := FieldValue(got, "t3a", FieldTitle); !ok || v != "Leaf" {
		t.Fatalf("topic title: %q", v)
	}

	if !reflect.DeepEqual(c, fixture()) {
		t.Fatalf("input tree was modified")
	}
	if RenameSection(c, "S1", FieldTitle, "S1") != c {
		t.Fatalf("expected same pointer for unchanged value")
	}
	if RenameSection(c, "B", FieldTitle, "x") != c {
		t.Fatalf("expected breaks to have no title")
	}
	if SetField(c, "missing", FieldTitle, "x") != c {
		t.Fatalf("expected no-op for unknown id")
	}
	if RenameTopicBox(c, "t1a", Field("bogus"), "x") != c {
		t.Fatalf("expected no-op for unknown field")
	}
}

func TestDelete_RemovesSubtree(t *testing.T) {
	c := fixture()
	got := DeleteSection(c, "S1")
	for _, id := range []string{"S1", "Sub1", "Sub2", "t1a", "t1b", "t2a", "t2b"} {
		if got.HasID(id) {
			t.Fatalf("%s still present after deleting its section", id)
		}
	}
	if !reflect.DeepEqual(c, fixture()) {
		t.Fatalf("input tree was modified")
	}

	got = Delete(c, "t2a")
	if sub, _ := got.FindSubsection("Sub2"); !reflect.DeepEqual(topicIDs(*sub), []string{"t2b"}) {
		t.Fatalf("unexpected topics: %v", topicIDs(*sub))
	}
	got = Delete(got, "Sub1")
	if s, _ := got.FindSection("S1"); len(s.Subsections) != 1 {
		t.Fatalf("expected one subsection left")
	}
	if Delete(c, "missing") != c {
		t.Fatalf("expected no-op for unknown id")
	}
}

func TestSetTopicFields(t *testing.T) {
	c := fixture()
	got := SetTopicDuration(c, "t1a", 25)
	got = SetTopicList(got, "t1a", ListContentKeywords, []string{"a", "b"})
	got = SetBreakDuration(got, "B", 15)
	tb, _ := got.FindTopicBox("t1a")
	if tb.DurationMinutes != 25 || !reflect.DeepEqual(tb.ContentKeywords, []string{"a", "b"}) {
		t.Fatalf("unexpected topic box: %+v", tb)
	}
	if b, _ := got.FindSection("B"); b.Duration != 15 {
		t.Fatalf("unexpected break: %+v", b)
	}
	if SetBreakDuration(c, "S1", 15) != c || SetTopicDuration(c, "t1a", -1) != c {
		t.Fatalf("expected no-op")
	}
}

func TestOperations_DoNotAliasEarlierSnapshots(t *testing.T) {
	c := fixture()
	snap := c.Clone()

	ids := newSeqIDs(c)
	next, _ := AddTopicBox(c, ids, "Sub1")
	next = AttachResource(next, "t1a", model.Resource{Type: model.ResourceVideo, Title: "v"})
	next, _ = InsertGenerated(next, ids, model.LevelTopics, "Sub1", []model.GeneratedItem{{Title: "g"}})
	next = Reorder(next, Move{Kind: MoveTopicBox, SourceContainerID: "Sub1", SourceIndex: 0, DestContainerID: "Sub1", DestIndex: 2})
	_ = next

	if !reflect.DeepEqual(c, snap) {
		t.Fatalf("earlier snapshot changed by later operations")
	}
}

func TestInsertGenerated(t *testing.T) {
	c := fixture()
	ids := newSeqIDs(c)

	items := []model.GeneratedItem{
		{ID: "gen-1", Title: "One", DurationMinutes: 15, LearningObjectives: []string{"o"}},
		{ID: "t1a", Title: "Collides with tree"},
		{ID: "gen-1", Title: "Collides with batch"},
		{Title: "No id"},
	}
	got, used := InsertGenerated(c, ids, model.LevelTopics, "Sub2", items)
	if len(used) != 4 || used[0] != "gen-1" {
		t.Fatalf("unexpected ids: %v", used)
	}
	seen := map[string]bool{}
	for _, id := range used {
		if seen[id] || id == "" || id == "t1a" {
			t.Fatalf("id %q not unique", id)
		}
		seen[id] = true
	}
	sub2, _ := got.FindSubsection("Sub2")
	if len(sub2.TopicBoxes) != 6 {
		t.Fatalf("expected 6 topic boxes, got %d", len(sub2.TopicBoxes))
	}
	first := sub2.TopicBoxes[2]
	if first.Title != "One" || first.DurationMinutes != 15 || !reflect.DeepEqual(first.LearningObjectives, []string{"o"}) {
		t.Fatalf("unexpected first generated box: %+v", first)
	}
	last := sub2.TopicBoxes[5]
	if last.Title != "No id" || last.DurationMinutes != 0 || last.PLAPillars == nil || last.ContentKeywords == nil {
		t.Fatalf("expected defaults for absent fields: %+v", last)
	}

	got, used = InsertGenerated(c, ids, model.LevelSections, "", []model.GeneratedItem{{ID: "sx", Title: "New"}})
	if len(got.Sections) != 4 || got.Sections[3].ID != "sx" || got.Sections[3].Subsections == nil {
		t.Fatalf("unexpected sections: %+v", got.Sections)
	}

	got, _ = InsertGenerated(c, ids, model.LevelSubsections, "S2", []model.GeneratedItem{{ID: "ux", Title: "A"}, {ID: "uy", Title: "B"}})
	s2, _ := got.FindSection("S2")
	if len(s2.Subsections) != 3 || s2.Subsections[1].ID != "ux" || s2.Subsections[2].ID != "uy" {
		t.Fatalf("unexpected subsections: %+v", s2.Subsections)
	}

	if got, used := InsertGenerated(c, ids, model.LevelSubsections, "B", items); got != c || used != nil {
		t.Fatalf("expected no-op for break parent")
	}
	if got, _ := InsertGenerated(c, ids, model.LevelTopics, "Sub1", nil); got != c {
		t.Fatalf("expected no-op for empty batch")
	}
}

func TestResources(t *testing.T) {
	c := fixture()
	ws := model.Resource{Type: model.ResourceWorksheet, Title: "w", URL: "u", Source: model.SourceGenerated}

	got := AttachResource(c, "t1a", ws)
	got = AttachResource(got, "t1a", ws)
	tb, _ := got.FindTopicBox("t1a")
	if len(tb.Worksheets) != 2 {
		t.Fatalf("expected duplicates to be kept, got %d", len(tb.Worksheets))
	}

	got = AttachResource(got, "t1a", model.Resource{Type: model.ResourceActivity, Title: "a"})
	tb, _ = got.FindTopicBox("t1a")
	if len(tb.Activities) != 1 || tb.Activities[0].Source != model.SourceManual {
		t.Fatalf("unexpected activities: %+v", tb.Activities)
	}

	got = RemoveResource(got, "t1a", model.ResourceWorksheet, 0)
	tb, _ = got.FindTopicBox("t1a")
	if len(tb.Worksheets) != 1 {
		t.Fatalf("expected one worksheet left, got %d", len(tb.Worksheets))
	}

	if AttachResource(c, "missing", ws) != c {
		t.Fatalf("expected no-op for unknown topic box")
	}
	if AttachResource(c, "t1a", model.Resource{Type: "podcast"}) != c {
		t.Fatalf("expected no-op for unknown resource type")
	}
	if RemoveResource(c, "t1a", model.ResourceVideo, 0) != c {
		t.Fatalf("expected no-op for out of range index")
	}
}

func TestCheck(t *testing.T) {
	c := fixture()
	if err := Check(c, "section", "S1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Check(c, "section", "B"); err == nil {
		t.Fatalf("expected break not to satisfy section check")
	}
	err := Check(c, "topic", "zzz")
	if err == nil || err.Error() != "topic not found: zzz" {
		t.Fatalf("unexpected error: %v", err)
	}
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.ID != "zzz" {
		t.Fatalf("expected NotFoundError, got %T", err)
	}
}
