package index

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/starford/raido/internal/anchor"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

// RevalidatePins re-resolves every pin anchored into path and records
// the outcome. A relocated pin is re-anchored at its new line, so the
// next sweep reports it as ok unless the document moved it again. It
// returns the pins whose state or line actually changed.
func RevalidatePins(db *DB, store storage.Provider, path string, now time.Time) ([]models.Pin, error) {
	pins, err := db.PinsForPath(path)
	if err != nil {
		return nil, err
	}
	if len(pins) == 0 {
		return nil, nil
	}

	data, err := store.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		// Document gone: every pin into it is lost.
		var changed []models.Pin
		for _, p := range pins {
			if updErr := db.UpdatePinResolution(p.ID, models.PinStateLost, p.Line, now); updErr != nil {
				return changed, updErr
			}
			if p.State != models.PinStateLost {
				p.State = models.PinStateLost
				p.CheckedAt = now
				changed = append(changed, p)
			}
		}
		return changed, nil
	}

	text := string(data)
	var changed []models.Pin
	for _, p := range pins {
		res := anchor.Resolve(text, anchor.Anchor{
			Path:        p.Path,
			Line:        p.Line,
			Content:     p.Content,
			DisplayText: p.DisplayText,
		})

		state := models.PinStateLost
		line := p.Line
		switch {
		case res.Found && res.Relocated:
			state = models.PinStateRelocated
			line = res.Line
		case res.Found:
			state = models.PinStateOK
			line = res.Line
		}

		if updErr := db.UpdatePinResolution(p.ID, state, line, now); updErr != nil {
			return changed, updErr
		}
		if state != p.State || line != p.Line {
			p.State = state
			p.Line = line
			p.CheckedAt = now
			changed = append(changed, p)
		}
	}
	return changed, nil
}

// RevalidateAll sweeps every stored pin, grouped by document.
func RevalidateAll(db *DB, store storage.Provider, now time.Time) ([]models.Pin, error) {
	pins, err := db.ListPins("")
	if err != nil {
		return nil, err
	}
	paths := make(map[string]struct{})
	for _, p := range pins {
		paths[p.Path] = struct{}{}
	}

	var changed []models.Pin
	for p := range paths {
		c, err := RevalidatePins(db, store, p, now)
		if err != nil {
			return changed, err
		}
		changed = append(changed, c...)
	}
	return changed, nil
}

// Revalidator turns document-change notifications into throttled pin
// sweeps. Edits arrive on every keystroke of an open editor, so sweeps
// run at most once per interval; a sweep always re-checks every stored
// pin, which keeps dropped notifications harmless.
type Revalidator struct {
	db       *DB
	store    storage.Provider
	interval time.Duration
	logger   *slog.Logger
	onChange func([]models.Pin)
	pokeCh   chan struct{}
}

// NewRevalidator creates a revalidator. onChange (if non-nil) receives
// the pins each sweep moved or lost. interval <= 0 selects the default
// of 30 seconds.
func NewRevalidator(db *DB, store storage.Provider, interval time.Duration, logger *slog.Logger, onChange func([]models.Pin)) *Revalidator {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Revalidator{
		db:       db,
		store:    store,
		interval: interval,
		logger:   logger,
		onChange: onChange,
		pokeCh:   make(chan struct{}, 1),
	}
}

// Mark notes that path changed and a sweep is due. It never blocks.
func (r *Revalidator) Mark(path string) {
	select {
	case r.pokeCh <- struct{}{}:
	default:
		// A sweep is already scheduled.
	}
}

// Run processes pokes until ctx is cancelled. The first poke after an
// idle period starts the interval timer; the sweep runs when it fires.
func (r *Revalidator) Run(ctx context.Context) error {
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case <-r.pokeCh:
			if timerCh == nil {
				timer = time.NewTimer(r.interval)
				timerCh = timer.C
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			changed, err := RevalidateAll(r.db, r.store, time.Now())
			if err != nil {
				r.logger.Warn("revalidate: sweep failed", slog.String("error", err.Error()))
				continue
			}
			if len(changed) > 0 {
				r.logger.Debug("revalidate: pins moved", slog.Int("count", len(changed)))
				if r.onChange != nil {
					r.onChange(changed)
				}
			}
		}
	}
}
