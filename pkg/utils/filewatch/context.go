// Package filewatch cancels contexts on file changes.
package filewatch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Modified is the cause of contexts canceled by file changes.
type Modified struct {
	Name string
	Op   fsnotify.Op
}

func (m *Modified) Error() string {
	return fmt.Sprintf("%s is updated (%s)", m.Name, m.Op.String())
}

// UntilModifyContext returns a context that is canceled
// when one of target files is modified (= written, created, removed, or renamed).
//
// Changes of permissions are ignored.
// The cause of the cancellation (context.Cause) is *Modified.
//
// If error is not nil, both of the the context and the cancel function are nil.
func UntilModifyContext(ctx context.Context, targetFilePath ...string) (context.Context, func(), error) {
	cctx, cancel := context.WithCancelCause(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		cancel(err)
		return nil, nil, err
	}

	for _, f := range targetFilePath {
		if err = w.Add(f); err != nil {
			w.Close()
			cancel(err)
			return nil, nil, err
		}
	}

	go func() {
		defer w.Close()

		for {
			select {
			case <-cctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				cancel(err)
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op == fsnotify.Chmod {
					continue
				}
				cancel(&Modified{Name: event.Name, Op: event.Op})
			}
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}
