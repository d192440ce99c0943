package service

import (
	"context"
	"fmt"

	"yc/internal/commander"
	"yc/internal/domain"
	"yc/internal/matcher"
	"yc/internal/resultview"
)

// Query runs one search to completion and returns up to limit results ranked
// the way the interactive view ranks them; limit <= 0 returns all. If ctx
// expires first, whatever arrived is still returned along with the error.
func Query(ctx context.Context, root domain.Commander, text string, limit int) ([]domain.Command, error) {
	if root == nil {
		return nil, ErrNoCommander
	}
	keywords := matcher.ParseQuery(text)
	if len(keywords) == 0 {
		return nil, nil
	}
	cmds, err := commander.Collect(ctx, root, keywords)
	view := resultview.New()
	view.Update(cmds)
	out := view.Commands()
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if err != nil {
		return out, fmt.Errorf("query %q: %w", text, err)
	}
	return out, nil
}
