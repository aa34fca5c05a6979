package usecase

import (
	"sync"

	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

// watcher receives the latest snapshot of one game. The buffer holds one snapshot;
// a newer snapshot replaces an unread older one.
type watcher struct {
	updates chan *entity.Game
	seen    int // number of moves in the last delivered snapshot
}

type watchHub struct {
	mu       sync.Mutex
	watchers map[string]map[*watcher]struct{}
}

func newWatchHub() *watchHub {
	return &watchHub{
		watchers: make(map[string]map[*watcher]struct{}),
	}
}

func (that *watchHub) subscribe(gameID string) *watcher {
	that.mu.Lock()
	defer that.mu.Unlock()

	w := &watcher{updates: make(chan *entity.Game, 1)}

	if that.watchers[gameID] == nil {
		that.watchers[gameID] = make(map[*watcher]struct{})
	}

	that.watchers[gameID][w] = struct{}{}

	return w
}

// unsubscribe closes the watcher's channel, once.
func (that *watchHub) unsubscribe(gameID string, w *watcher) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.remove(gameID, w)
}

func (that *watchHub) remove(gameID string, w *watcher) {
	watchers, ok := that.watchers[gameID]
	if !ok {
		return
	}

	if _, ok = watchers[w]; !ok {
		return
	}

	delete(watchers, w)
	close(w.updates)

	if len(watchers) == 0 {
		delete(that.watchers, gameID)
	}
}

// publish hands game to every watcher of it. Snapshots older than one a watcher already got are dropped,
// and watchers of a finished game are released after the final snapshot.
func (that *watchHub) publish(game *entity.Game) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for w := range that.watchers[game.ID] {
		if len(game.Moves) <= w.seen {
			continue
		}

		w.seen = len(game.Moves)

		select {
		case <-w.updates:
		default:
		}

		w.updates <- game.Clone()

		if game.IsDone() {
			that.remove(game.ID, w)
		}
	}
}
