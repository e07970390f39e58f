// Package identifier allocates sequential workload ids, like "keti001", "keti002", ...
package identifier

import (
	"context"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/keti-strato/pms/pkg/domain"
	kerr "github.com/keti-strato/pms/pkg/domain/errors"
	kdb "github.com/keti-strato/pms/pkg/domain/workload/db"
	xe "github.com/keti-strato/pms/pkg/errors"
)

// Next returns the id following the greatest sequential id in taken.
//
// Sequential ids are prefix followed by decimal digits. Other ids in taken are ignored.
// The numeric part is zero-padded to domain.SequentialDigits, and can be longer.
// When there are no sequential ids, it returns the first one (e.g. "keti001").
func Next(prefix string, taken []string) string {
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + "([0-9]+)$")

	greatest := new(big.Int)
	for _, id := range taken {
		m := pattern.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, ok := new(big.Int).SetString(m[1], 10)
		if !ok {
			continue
		}
		if greatest.Cmp(n) < 0 {
			greatest = n
		}
	}

	next := greatest.Add(greatest, big.NewInt(1)).String()
	if pad := domain.SequentialDigits - len(next); 0 < pad {
		next = strings.Repeat("0", pad) + next
	}
	return prefix + next
}

// Allocator allocates workload ids not used in the mirror.
type Allocator struct {
	store  kdb.WorkloadInterface
	prefix string
	ttl    time.Duration
}

type Option func(*Allocator) *Allocator

// WithPrefix changes the prefix of ids. Default is domain.SequentialPrefix.
func WithPrefix(prefix string) Option {
	return func(a *Allocator) *Allocator {
		a.prefix = prefix
		return a
	}
}

// WithReservationTTL changes how long allocated ids are kept reserved. Default is 5 minutes.
func WithReservationTTL(ttl time.Duration) Option {
	return func(a *Allocator) *Allocator {
		a.ttl = ttl
		return a
	}
}

func New(store kdb.WorkloadInterface, options ...Option) *Allocator {
	a := &Allocator{store: store, prefix: domain.SequentialPrefix, ttl: 5 * time.Minute}
	for _, opt := range options {
		a = opt(a)
	}
	return a
}

// Allocate reserves and returns a new id.
//
// Concurrent allocations get distinct ids.
// Release the id after the workload is mirrored or abandoned.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	id, err := a.store.Reserve(ctx, a.prefix, a.ttl, func(taken []string) (string, error) {
		return Next(a.prefix, taken), nil
	})
	if err != nil {
		return "", xe.Wrap(fmt.Errorf("%w: %w", kerr.ErrAllocation, err))
	}
	return id, nil
}

// Release drops the reservation of id.
func (a *Allocator) Release(ctx context.Context, id string) error {
	return a.store.Release(ctx, id)
}
