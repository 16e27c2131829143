package directory

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/mrr-sync/pkg/canny"
)

// Lister fetches one page of companies.
type Lister interface {
	ListCompanies(ctx context.Context, limit, skip int) (*canny.ListResponse, error)
}

// ListAll pages through the company directory as directed by pager and
// merges every company into one Directory. A page that fails is logged and
// contributes nothing; later pages overwrite earlier ones on name collision.
func ListAll(ctx context.Context, lister Lister, pager PageProvider) *Directory {
	dir := New()
	log := zap.L().With(zap.String("component", "directory"))

	var prev *Page
	pages := 0
	for {
		limit, skip, ok := pager.Next(prev)
		if !ok {
			break
		}
		if ctx.Err() != nil {
			log.Warn("listing interrupted", zap.Error(ctx.Err()))
			break
		}

		page := &Page{Limit: limit, Skip: skip}
		resp, err := lister.ListCompanies(ctx, limit, skip)
		pages++
		switch {
		case err != nil:
			page.Err = err
			log.Error("list companies page failed",
				zap.Int("limit", limit),
				zap.Int("skip", skip),
				zap.Error(err),
			)
		case resp == nil:
		default:
			page.Count = len(resp.Companies)
			page.HasMore = resp.HasMore
			for _, c := range resp.Companies {
				if dir.Set(c) {
					log.Debug("duplicate company name, keeping later record", zap.String("name", c.Name))
				}
			}
		}
		prev = page
	}

	log.Info("listed companies",
		zap.Int("pages", pages),
		zap.Int("companies", dir.Len()),
	)
	return dir
}
