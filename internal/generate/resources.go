package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"coursekit/internal/model"
	"coursekit/internal/mutate"

	"golang.org/x/sync/errgroup"
)

// BatchLimit bounds concurrent resource requests for one subsection.
const BatchLimit = 4

type ResourceRequest struct {
	TopicID            string             `json:"topicId"`
	ResourceType       model.ResourceType `json:"resourceType"`
	GradeLevel         string             `json:"gradeLevel"`
	TopicTitle         string             `json:"topicTitle"`
	TopicDescription   string             `json:"topicDescription"`
	LearningObjectives []string           `json:"learningObjectives"`
}

func ResourceRequestFor(tb model.TopicBox, t model.ResourceType, grade string) ResourceRequest {
	objectives := tb.LearningObjectives
	if objectives == nil {
		objectives = []string{}
	}
	return ResourceRequest{
		TopicID:            tb.ID,
		ResourceType:       t,
		GradeLevel:         grade,
		TopicTitle:         tb.Title,
		TopicDescription:   tb.Description,
		LearningObjectives: objectives,
	}
}

// GenerateResource returns the resources produced for one topic box: one worksheet or
// activity, or a list of videos. Returned resources are typed and marked generated.
func (c *Client) GenerateResource(ctx context.Context, req ResourceRequest) ([]model.Resource, error) {
	raw, err := c.post(ctx, c.resourceURL+resourcePath, req)
	if err != nil {
		c.log.Warn("generate: resource request failed", "topic_id", req.TopicID, "type", req.ResourceType, "error", err)
		return nil, err
	}
	rs, err := decodeResources(raw)
	if err != nil {
		return nil, err
	}
	out := make([]model.Resource, 0, len(rs))
	for _, r := range rs {
		if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.URL) == "" {
			continue
		}
		r.Type = req.ResourceType
		r.Source = model.SourceGenerated
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, failure("no resources returned")
	}
	return out, nil
}

// decodeResources accepts a bare resource, a bare list, or an envelope carrying
// success/error plus resource, resources or videos.
func decodeResources(raw []byte) ([]model.Resource, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var list []model.Resource
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode resource response: %w", err)
		}
		return list, nil
	}

	var env struct {
		Success   *bool            `json:"success"`
		Error     string           `json:"error"`
		Message   string           `json:"message"`
		Resource  *model.Resource  `json:"resource"`
		Resources []model.Resource `json:"resources"`
		Videos    []model.Resource `json:"videos"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode resource response: %w", err)
	}
	if env.Success != nil && !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return nil, failure(msg)
	}
	switch {
	case env.Resource != nil:
		return []model.Resource{*env.Resource}, nil
	case len(env.Resources) > 0:
		return env.Resources, nil
	case len(env.Videos) > 0:
		return env.Videos, nil
	}

	var single model.Resource
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode resource response: %w", err)
	}
	return []model.Resource{single}, nil
}

// GenerateForSubsection generates resources of type t for every topic box of a subsection
// concurrently. Results come back in topic-box order; any failure fails the whole batch so
// the caller never attaches a partial result.
func (c *Client) GenerateForSubsection(ctx context.Context, course *model.Course, subsectionID string, t model.ResourceType, grade string) ([]model.TopicResources, error) {
	if err := mutate.Check(course, "subsection", subsectionID); err != nil {
		return nil, err
	}
	sub, _ := course.FindSubsection(subsectionID)
	boxes := sub.TopicBoxes
	if len(boxes) == 0 {
		return []model.TopicResources{}, nil
	}

	results := make([]model.TopicResources, len(boxes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(BatchLimit)
	for i, tb := range boxes {
		i, tb := i, tb
		g.Go(func() error {
			rs, err := c.GenerateResource(gctx, ResourceRequestFor(tb, t, grade))
			if err != nil {
				return fmt.Errorf("topic %s: %w", tb.ID, err)
			}
			results[i] = model.TopicResources{TopicBoxID: tb.ID, Resources: rs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.log.Info("generate: batch complete", "subsection_id", subsectionID, "type", t, "topics", len(results))
	return results, nil
}
