package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"coursekit/internal/model"
)

func TestSQLiteStore_CreateUpdateLoad(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	c := &model.Course{
		Name:    "Fractions",
		Class:   "5",
		Subject: "Math",
		Sections: []model.Section{
			{ID: "section-a", Title: "A", Subsections: []model.Subsection{
				{ID: "subsection-a", Title: "Sub", TopicBoxes: []model.TopicBox{
					{ID: "topic-a", Title: "T", DurationMinutes: 20, PLAPillars: []string{"Knowledge"}, LearningObjectives: []string{}, ContentKeywords: []string{},
						VideoResources: []model.Resource{}, Worksheets: []model.Resource{}, Activities: []model.Resource{}},
				}},
			}},
			{ID: "break-a", Type: model.SectionTypeBreak, Duration: 10},
		},
	}

	res, err := s.SaveCourse(ctx, "", EncodePayload(c))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !res.Success || res.ID == "" {
		t.Fatalf("expected success with id, got %+v", res)
	}

	got, err := s.LoadCourse(ctx, res.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := c.Clone()
	want.ID = res.ID
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got=%+v\nwant=%+v", got, want)
	}

	got.Name = "Fractions II"
	res2, err := s.SaveCourse(ctx, res.ID, EncodePayload(got))
	if err != nil || !res2.Success || res2.ID != res.ID {
		t.Fatalf("update: res=%+v err=%v", res2, err)
	}

	list, err := s.ListCourses(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Fractions II" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list[0].CreatedAt.IsZero() || list[0].UpdatedAt.Before(list[0].CreatedAt) {
		t.Fatalf("expected storage timestamps on the summary: %+v", list[0])
	}
	if !reflect.DeepEqual(got.Sections, c.Sections) {
		t.Fatalf("saving must not alter the tree")
	}

	if err := s.DeleteCourse(ctx, res.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.LoadCourse(ctx, res.ID); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
	if err := s.DeleteCourse(ctx, res.ID); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound on second delete, got %v", err)
	}
}
