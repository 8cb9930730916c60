package dashboard

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the dashboard full screen until the operator leaves or ctx ends.
func Run(ctx context.Context, m Model) (Exit, error) {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if m.feed != nil {
		m.feed.Close()
	}
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ExitQuit, nil
		}
		return ExitQuit, fmt.Errorf("dashboard: %w", err)
	}
	if fm, ok := final.(Model); ok {
		return fm.Exit(), nil
	}
	return ExitQuit, nil
}
