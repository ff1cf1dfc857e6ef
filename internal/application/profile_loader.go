package application

import (
	"context"
	"errors"
	"sync"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/vortex-feed/internal/domain/repository"
)

var errNoProfile = errors.New("no profile")

// profileLoader resolves author profile images for a feed load.
// Lookups run concurrently (bounded by limit); one failing address never affects another.
type profileLoader struct {
	users  repo.UserRemote
	logger *logrus.Logger
	limit  int
}

func (l *profileLoader) batch(ctx context.Context, addrs []string) []*dataloader.Result[string] {
	results := make([]*dataloader.Result[string], len(addrs))
	limit := l.limit
	if limit <= 0 {
		limit = len(addrs)
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i, addr := range addrs {
		wg.Add(1)
		go func(i int, addr string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			u, err := l.users.GetUser(ctx, addr)
			switch {
			case err != nil:
				results[i] = &dataloader.Result[string]{Error: err}
			case u == nil:
				results[i] = &dataloader.Result[string]{Error: errNoProfile}
			default:
				results[i] = &dataloader.Result[string]{Data: u.ProfileImage}
			}
		}(i, addr)
	}
	wg.Wait()
	return results
}

// resolve returns address -> profile image for every address whose lookup succeeded
// with a non-empty image.
func (l *profileLoader) resolve(ctx context.Context, addrs []string) map[string]string {
	out := make(map[string]string, len(addrs))
	if len(addrs) == 0 || l.users == nil {
		return out
	}

	// a fresh loader per feed load: its cache must not outlive the load
	loader := dataloader.NewBatchedLoader(l.batch,
		dataloader.WithBatchCapacity[string, string](len(addrs)),
	)
	thunks := make([]dataloader.Thunk[string], len(addrs))
	for i, a := range addrs {
		thunks[i] = loader.Load(ctx, a)
	}
	for i, thunk := range thunks {
		img, err := thunk()
		if err != nil {
			l.logger.WithError(err).WithField("address", addrs[i]).Debug("author profile lookup failed")
			continue
		}
		if img != "" {
			out[addrs[i]] = img
		}
	}
	return out
}
