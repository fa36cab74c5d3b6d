package mutate

import (
	"reflect"
	"testing"

	"coursekit/internal/model"
)

func TestReorder_TopicBoxAcrossSubsections_Scenario(t *testing.T) {
	c := fixture()
	before := c.Clone()

	got := Reorder(c, Move{Kind: MoveTopicBox, SourceContainerID: "Sub1", SourceIndex: 1, DestContainerID: "Sub2", DestIndex: 0})

	sub1, _ := got.FindSubsection("Sub1")
	sub2, _ := got.FindSubsection("Sub2")
	if want := []string{"t1a"}; !reflect.DeepEqual(topicIDs(*sub1), want) {
		t.Fatalf("Sub1: got %v want %v", topicIDs(*sub1), want)
	}
	if want := []string{"t1b", "t2a", "t2b"}; !reflect.DeepEqual(topicIDs(*sub2), want) {
		t.Fatalf("Sub2: got %v want %v", topicIDs(*sub2), want)
	}
	if !reflect.DeepEqual(c, before) {
		t.Fatalf("input tree was modified")
	}
}

func TestReorder_TopicBoxAcrossSections_CarriesContent(t *testing.T) {
	c := fixture()
	src, _ := c.FindTopicBox("t1a")
	src.LearningObjectives = []string{"obj"}
	src.VideoResources = []model.Resource{{Type: model.ResourceVideo, Title: "v", URL: "u", Source: model.SourceGenerated}}
	want := src.Clone()

	got := Reorder(c, Move{Kind: MoveTopicBox, SourceContainerID: "Sub1", SourceIndex: 0, DestContainerID: "Sub3", DestIndex: 1})

	sub3, _ := got.FindSubsection("Sub3")
	if ids := topicIDs(*sub3); !reflect.DeepEqual(ids, []string{"t3a", "t1a"}) {
		t.Fatalf("Sub3: %v", ids)
	}
	if !reflect.DeepEqual(sub3.TopicBoxes[1], want) {
		t.Fatalf("moved topic box changed: %+v", sub3.TopicBoxes[1])
	}
	count := 0
	got.EachID(func(id string) {
		if id == "t1a" {
			count++
		}
	})
	if count != 1 {
		t.Fatalf("expected moved box exactly once, found %d", count)
	}
}

func TestReorder_SameContainerPermutations(t *testing.T) {
	c := fixture()

	got := Reorder(c, Move{Kind: MoveSection, SourceIndex: 0, DestIndex: 2})
	if ids := sectionIDs(got); !reflect.DeepEqual(ids, []string{"B", "S2", "S1"}) {
		t.Fatalf("sections: %v", ids)
	}

	got = Reorder(c, Move{Kind: MoveSubsection, SourceContainerID: "S1", SourceIndex: 1, DestContainerID: "S1", DestIndex: 0})
	s1, _ := got.FindSection("S1")
	if s1.Subsections[0].ID != "Sub2" || s1.Subsections[1].ID != "Sub1" {
		t.Fatalf("subsections not swapped: %+v", s1.Subsections)
	}

	got = Reorder(c, Move{Kind: MoveTopicBox, SourceContainerID: "Sub2", SourceIndex: 0, DestContainerID: "Sub2", DestIndex: 1})
	sub2, _ := got.FindSubsection("Sub2")
	if ids := topicIDs(*sub2); !reflect.DeepEqual(ids, []string{"t2b", "t2a"}) {
		t.Fatalf("topic boxes: %v", ids)
	}
}

func TestReorder_NoOpsReturnInput(t *testing.T) {
	c := fixture()
	moves := []Move{
		{Kind: MoveTopicBox, SourceContainerID: "Sub1", SourceIndex: 1, DestContainerID: "Sub1", DestIndex: 1},
		{Kind: MoveSection, SourceIndex: 2, DestIndex: 2},
		{Kind: MoveSection, SourceIndex: 0, DestIndex: 3},
		{Kind: MoveSection, SourceIndex: -1, DestIndex: 0},
		{Kind: MoveSubsection, SourceContainerID: "B", SourceIndex: 0, DestContainerID: "B", DestIndex: 1},
		{Kind: MoveSubsection, SourceContainerID: "S1", SourceIndex: 0, DestContainerID: "S2", DestIndex: 0},
		{Kind: MoveTopicBox, SourceContainerID: "missing", SourceIndex: 0, DestContainerID: "Sub2", DestIndex: 0},
		{Kind: MoveTopicBox, SourceContainerID: "Sub1", SourceIndex: 0, DestContainerID: "missing", DestIndex: 0},
		{Kind: MoveTopicBox, SourceContainerID: "Sub1", SourceIndex: 5, DestContainerID: "Sub2", DestIndex: 0},
		{Kind: MoveTopicBox, SourceContainerID: "Sub1", SourceIndex: 0, DestContainerID: "Sub2", DestIndex: 3},
		{Kind: "bogus", SourceIndex: 0, DestIndex: 1},
	}
	for _, m := range moves {
		got := Reorder(c, m)
		if got != c {
			t.Fatalf("expected same pointer for %+v", m)
		}
		if !reflect.DeepEqual(got, fixture()) {
			t.Fatalf("tree changed for %+v", m)
		}
	}
}

func TestReorder_DropAtEndAfterRemoval(t *testing.T) {
	c := fixture()
	got := Reorder(c, Move{Kind: MoveTopicBox, SourceContainerID: "Sub1", SourceIndex: 0, DestContainerID: "Sub2", DestIndex: 2})
	sub2, _ := got.FindSubsection("Sub2")
	if ids := topicIDs(*sub2); !reflect.DeepEqual(ids, []string{"t2a", "t2b", "t1a"}) {
		t.Fatalf("Sub2: %v", ids)
	}

	got = Reorder(c, Move{Kind: MoveSection, SourceIndex: 0, DestIndex: 2})
	if got.Sections[2].ID != "S1" {
		t.Fatalf("expected S1 last, got %v", sectionIDs(got))
	}
}

func TestReorder_ConservesCounts(t *testing.T) {
	c := fixture()
	want := model.CountAll(c)
	for _, kind := range []MoveKind{MoveSection, MoveSubsection, MoveTopicBox} {
		for _, from := range []string{"", "S1", "S2", "Sub1", "Sub2", "Sub3"} {
			for _, to := range []string{"", "S1", "S2", "Sub1", "Sub2", "Sub3"} {
				for si := -1; si <= 3; si++ {
					for di := -1; di <= 4; di++ {
						m := Move{Kind: kind, SourceContainerID: from, SourceIndex: si, DestContainerID: to, DestIndex: di}
						got := Reorder(c, m)
						if n := model.CountAll(got); n != want {
							t.Fatalf("counts changed for %+v: %+v -> %+v", m, want, n)
						}
					}
				}
			}
		}
	}
}

func TestReorder_DestinationWithNilTopicBoxes(t *testing.T) {
	c := fixture()
	c.Sections[2].Subsections = append(c.Sections[2].Subsections, model.Subsection{ID: "Empty"})

	got := Reorder(c, Move{Kind: MoveTopicBox, SourceContainerID: "Sub3", SourceIndex: 0, DestContainerID: "Empty", DestIndex: 0})
	empty, _ := got.FindSubsection("Empty")
	sub3, _ := got.FindSubsection("Sub3")
	if len(empty.TopicBoxes) != 1 || len(sub3.TopicBoxes) != 0 {
		t.Fatalf("unexpected result: Empty=%v Sub3=%v", topicIDs(*empty), topicIDs(*sub3))
	}
}
