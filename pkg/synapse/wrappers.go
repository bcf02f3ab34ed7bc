package synapse

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, project Entity) (Entity, error) {
	return c.CreateRepoEntity(ctx, "/project", project)
}

// GetProject fetches a project by id.
func (c *Client) GetProject(ctx context.Context, id string) (Entity, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: project id is required", ErrInvalidArgument)
	}
	return c.GetRepoEntity(ctx, "/project/"+id)
}

// CreateDataset creates a dataset.
func (c *Client) CreateDataset(ctx context.Context, dataset Entity) (Entity, error) {
	return c.CreateRepoEntity(ctx, "/dataset", dataset)
}

// GetDataset fetches a dataset by id.
func (c *Client) GetDataset(ctx context.Context, id string) (Entity, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: dataset id is required", ErrInvalidArgument)
	}
	return c.GetRepoEntity(ctx, "/dataset/"+id)
}

// CreateLayer creates a layer; its parentId names the owning dataset.
func (c *Client) CreateLayer(ctx context.Context, layer Entity) (Entity, error) {
	return c.CreateRepoEntity(ctx, "/layer", layer)
}

// GetLayer fetches a layer by id.
func (c *Client) GetLayer(ctx context.Context, id string) (Entity, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: layer id is required", ErrInvalidArgument)
	}
	return c.GetRepoEntity(ctx, "/layer/"+id)
}

// LoadLayer downloads the data of a layer into dir.
func (c *Client) LoadLayer(ctx context.Context, id, dir string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: layer id is required", ErrInvalidArgument)
	}
	return c.LoadEntity(ctx, "/layer/"+id, dir)
}

// GetPrincipals lists user groups followed by users.
func (c *Client) GetPrincipals(ctx context.Context) ([]Entity, error) {
	var out []Entity
	for _, uri := range []string{"/userGroup", "/user"} {
		page, err := c.GetRepoEntity(ctx, uri)
		if err != nil {
			return nil, err
		}
		if page == nil {
			continue
		}
		results, _ := page["results"].([]any)
		for _, item := range results {
			if m := asMap(item); m != nil {
				out = append(out, Entity(m))
			}
		}
	}
	return out, nil
}

// DecodeProject projects e onto a Project.
func DecodeProject(e Entity) (*Project, error) {
	var p Project
	if err := decodeInto(e, &p); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	return &p, nil
}

// DecodeDataset projects e onto a Dataset.
func DecodeDataset(e Entity) (*Dataset, error) {
	var d Dataset
	if err := decodeInto(e, &d); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &d, nil
}

// DecodeLayer projects e onto a Layer.
func DecodeLayer(e Entity) (*Layer, error) {
	var l Layer
	if err := decodeInto(e, &l); err != nil {
		return nil, fmt.Errorf("decode layer: %w", err)
	}
	return &l, nil
}

// DecodeLocation projects e onto a Location.
func DecodeLocation(e Entity) (*Location, error) {
	var l Location
	if err := decodeInto(e, &l); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}
	return &l, nil
}

func decodeInto(e Entity, out any) error {
	if e == nil {
		return fmt.Errorf("%w: entity is nil", ErrInvalidArgument)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(e))
}
