package workforce

import (
	"context"
	"fmt"

	"workforce-mgmt/pkg/activity"
)

// AddComment appends a comment to an existing task.
func (s *Service) AddComment(ctx context.Context, taskID int64, req AddCommentRequest) (CommentView, error) {
	if _, err := s.tasks.Get(ctx, taskID); err != nil {
		return CommentView{}, err
	}
	c, err := s.comments.Append(ctx, taskID, req.CommentText, s.now().UnixMilli())
	if err != nil {
		return CommentView{}, fmt.Errorf("append comment: %w", err)
	}
	s.publish(ctx, activity.CommentAdded, taskID, map[string]any{"comment_id": c.ID})
	return toCommentView(*c), nil
}

// ListComments returns a task's comments in the order they were added.
func (s *Service) ListComments(ctx context.Context, taskID int64) ([]CommentView, error) {
	if _, err := s.tasks.Get(ctx, taskID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("load comments for task %d: %w", taskID, err)
	}
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, toCommentView(c))
	}
	return views, nil
}
