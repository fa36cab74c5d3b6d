package tui

import (
	"context"
	"fmt"
	"time"

	"coursekit/internal/autosave"
	"coursekit/internal/session"
	"coursekit/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// finalSaveTimeout bounds the save performed after the program exits.
const finalSaveTimeout = 30 * time.Second

// Run opens courseID for editing and blocks until the user quits. The session is closed
// (and its last change saved) after the program exits.
func Run(ctx context.Context, st store.Store, courseID string, opts session.Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	applyThemePreference()
	applyColorProfilePreference()

	// Statuses arrive from autosave goroutines; a full buffer drops updates rather than
	// blocking a save on the render loop.
	statusCh := make(chan autosave.Status, 16)
	opts.OnSaveStatus = func(st autosave.Status) {
		select {
		case statusCh <- st:
		default:
		}
	}

	s, err := session.Load(ctx, st, courseID, opts)
	if err != nil {
		return err
	}

	_, runErr := tea.NewProgram(newModel(s, statusCh), tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	closeCtx, cancel := context.WithTimeout(context.Background(), finalSaveTimeout)
	defer cancel()
	if err := s.Close(closeCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("final save: %w", err)
	}
	return runErr
}
