// Package realtime keeps connected clients in sync with the store through
// live queries that re-run whenever a committed change concerns them.
package realtime

import (
	"context"
	"sync"

	"vibin_match/models"
)

// ChangeFeed carries committed changes from writers to every hub.
type ChangeFeed interface {
	Publish(ctx context.Context, change models.Change) error
	// Subscribe returns a stream of changes. The stream is closed when ctx
	// ends or the feed loses its connection; callers reconnect by calling
	// Subscribe again.
	Subscribe(ctx context.Context) (<-chan models.Change, error)
}

const localStreamBuffer = 64

// LocalFeed fans changes out inside one process.
type LocalFeed struct {
	mu      sync.Mutex
	nextID  int
	streams map[int]chan models.Change
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{streams: map[int]chan models.Change{}}
}

// Publish never blocks. A stream that cannot keep up is closed so its
// subscriber reconnects and re-reads everything.
func (f *LocalFeed) Publish(_ context.Context, change models.Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, stream := range f.streams {
		select {
		case stream <- change:
		default:
			close(stream)
			delete(f.streams, id)
		}
	}
	return nil
}

func (f *LocalFeed) Subscribe(ctx context.Context) (<-chan models.Change, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	stream := make(chan models.Change, localStreamBuffer)
	f.streams[id] = stream
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.drop(id)
	}()
	return stream, nil
}

// Subscribers returns the number of open streams.
func (f *LocalFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.streams)
}

// Disconnect closes every open stream as a dropped connection would.
func (f *LocalFeed) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.streams {
		close(f.streams[id])
		delete(f.streams, id)
	}
}

func (f *LocalFeed) drop(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stream, ok := f.streams[id]; ok {
		close(stream)
		delete(f.streams, id)
	}
}
