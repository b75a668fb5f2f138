package fetch

import (
	"context"

	"github.com/fantasylab/fantasy-lab/internal/dataset"
	"github.com/fantasylab/fantasy-lab/internal/model"
)

// RefreshDataset pulls the league dataset from url into relPath. The payload
// is validated before it touches disk.
func (c *Client) RefreshDataset(ctx context.Context, url, relPath string, force bool) (*model.Dataset, error) {
	var ds *model.Dataset
	raw, err := c.FetchRaw(ctx, url, relPath, force, func(b []byte) error {
		parsed, err := dataset.Parse(b)
		ds = parsed
		return err
	})
	if err != nil {
		return nil, err
	}
	if ds == nil {
		// served from the local file
		return dataset.Parse(raw)
	}
	return ds, nil
}
