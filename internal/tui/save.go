package tui

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/sadopc/sitetrackr/internal/items"
	"github.com/sadopc/sitetrackr/internal/permits"
	"github.com/sadopc/sitetrackr/internal/store"
)

// saver writes snapshots of the in-memory state to the save file from
// tea.Cmd goroutines. Each kind of snapshot carries a sequence number taken
// on the Update loop; a write older than the last one applied is dropped so
// commands finishing out of order never roll the file back.
type saver struct {
	store *store.Store

	mu      sync.Mutex
	applied map[string]uint64
	next    uint64
}

func newSaver(s *store.Store) *saver {
	return &saver{store: s, applied: make(map[string]uint64)}
}

// ticket must be called on the Update loop, before the snapshot is taken.
func (sv *saver) ticket() uint64 {
	sv.next++
	return sv.next
}

func (sv *saver) run(what string, seq uint64, write func() error) tea.Cmd {
	return func() tea.Msg {
		sv.mu.Lock()
		defer sv.mu.Unlock()

		if seq <= sv.applied[what] {
			return nil
		}
		if err := write(); err != nil {
			log.Error().Err(err).Str("what", what).Msg("autosave failed")
			return savedMsg{what: what, err: err}
		}
		sv.applied[what] = seq
		log.Debug().Str("what", what).Uint64("seq", seq).Msg("autosaved")
		return savedMsg{what: what}
	}
}

// flush runs write under the save lock and marks every ticket issued so far
// as applied, so autosaves still in flight are dropped afterwards.
func (sv *saver) flush(write func() error) error {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	if err := write(); err != nil {
		return err
	}
	for _, what := range []string{"items", "project", "permits"} {
		sv.applied[what] = sv.next
	}
	return nil
}

func (sv *saver) saveItems(list []items.WorkItem) tea.Cmd {
	if sv == nil || sv.store == nil {
		return nil
	}
	return sv.run("items", sv.ticket(), func() error {
		if err := sv.store.SaveItems(list); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
}

func (sv *saver) saveInfo(info store.ProjectInfo) tea.Cmd {
	if sv == nil || sv.store == nil {
		return nil
	}
	return sv.run("project", sv.ticket(), func() error {
		if err := sv.store.SaveProjectInfo(info); err != nil {
			return fmt.Errorf("save project info: %w", err)
		}
		return nil
	})
}

func (sv *saver) savePermits(people []permits.Personnel, vehicles []permits.Vehicle) tea.Cmd {
	if sv == nil || sv.store == nil {
		return nil
	}
	return sv.run("permits", sv.ticket(), func() error {
		if err := sv.store.SavePersonnel(people); err != nil {
			return fmt.Errorf("save personnel: %w", err)
		}
		if err := sv.store.SaveVehicles(vehicles); err != nil {
			return fmt.Errorf("save vehicles: %w", err)
		}
		return nil
	})
}
