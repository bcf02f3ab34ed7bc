package synapse

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/httpx"
	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/synapseapi"
)

// Create POSTs entity to uri and returns the stored entity.
func (c *Client) Create(ctx context.Context, svc Service, uri string, entity Entity) (Entity, error) {
	if err := c.validate(svc, uri, entity); err != nil {
		return nil, err
	}
	body, err := synapseapi.EncodeJSON(entity)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, svc, &httpx.Request{
		Method: http.MethodPost,
		URI:    uri,
		Body:   body,
		Expect: []int{http.StatusCreated},
	})
	if err != nil {
		return nil, err
	}
	return decodeEntity(resp.Body)
}

// Get fetches the entity at uri. An empty uri yields nil without contacting
// the service.
func (c *Client) Get(ctx context.Context, svc Service, uri string) (Entity, error) {
	if _, err := c.endpoint(svc); err != nil {
		return nil, err
	}
	if uri == "" {
		return nil, nil
	}
	resp, err := c.do(ctx, svc, &httpx.Request{
		Method: http.MethodGet,
		URI:    uri,
		Expect: []int{http.StatusOK},
	})
	if err != nil {
		return nil, err
	}
	return decodeEntity(resp.Body)
}

// Put replaces the entity at uri. An etag field is forwarded as the ETag
// header; a stale etag yields an error matching ErrConflict.
func (c *Client) Put(ctx context.Context, svc Service, uri string, entity Entity) (Entity, error) {
	if err := c.validate(svc, uri, entity); err != nil {
		return nil, err
	}
	body, err := synapseapi.EncodeJSON(entity)
	if err != nil {
		return nil, err
	}
	req := &httpx.Request{
		Method: http.MethodPut,
		URI:    uri,
		Body:   body,
		Expect: []int{http.StatusOK, http.StatusNoContent},
	}
	if etag := entity.ETag(); etag != "" {
		req.Header = http.Header{"ETag": []string{etag}}
	}

	resp, err := c.do(ctx, svc, req)
	if err != nil {
		var terr *TransportError
		if errors.As(err, &terr) && terr.Conflict() {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, err
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return decodeEntity(resp.Body)
}

// Delete removes the entity at uri. An empty uri is a no-op.
func (c *Client) Delete(ctx context.Context, svc Service, uri string) error {
	if uri == "" {
		return nil
	}
	if _, err := c.endpoint(svc); err != nil {
		return err
	}
	_, err := c.do(ctx, svc, &httpx.Request{
		Method: http.MethodDelete,
		URI:    uri,
		Expect: []int{http.StatusNoContent},
	})
	return err
}

// Update overlays partial on the stored entity and writes the result back.
// It returns nil, nil when the stored entity does not exist. When the service
// answers the write with 204, the merged entity that was sent is returned.
func (c *Client) Update(ctx context.Context, svc Service, uri string, partial Entity) (Entity, error) {
	return c.UpdateKind(ctx, svc, uri, partial, KindEntity)
}

// UpdateAnnotations is Update for annotation resources: each top-level value
// of partial is merged key by key into the stored bag of the same name.
func (c *Client) UpdateAnnotations(ctx context.Context, svc Service, uri string, partial Entity) (Entity, error) {
	return c.UpdateKind(ctx, svc, uri, partial, KindAnnotations)
}

// UpdateKind is Update with an explicit merge strategy.
func (c *Client) UpdateKind(ctx context.Context, svc Service, uri string, partial Entity, kind ResourceKind) (Entity, error) {
	if err := c.validate(svc, uri, partial); err != nil {
		return nil, err
	}
	if kind != KindEntity && kind != KindAnnotations {
		return nil, fmt.Errorf("%w: unknown %s", ErrInvalidArgument, kind)
	}

	stored, err := c.Get(ctx, svc, uri)
	if err != nil {
		if IsNotFound(err) {
			c.logger.Debug("nothing to update", "uri", uri)
			return nil, nil
		}
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}
	etag := stored.ETag()
	if etag == "" {
		return nil, fmt.Errorf("%w: %s", ErrETagRequired, uri)
	}

	merged, err := Merge(stored, partial, kind)
	if err != nil {
		return nil, err
	}
	merged["etag"] = etag
	written, err := c.Put(ctx, svc, uri, merged)
	if err != nil {
		return nil, err
	}
	if written == nil {
		// 204: the service stored the merged entity without echoing it.
		return merged, nil
	}
	return written, nil
}

// CreateRepoEntity is Create against the repository service.
func (c *Client) CreateRepoEntity(ctx context.Context, uri string, entity Entity) (Entity, error) {
	return c.Create(ctx, Repository, uri, entity)
}

// GetRepoEntity is Get against the repository service.
func (c *Client) GetRepoEntity(ctx context.Context, uri string) (Entity, error) {
	return c.Get(ctx, Repository, uri)
}

// UpdateRepoEntity is Update against the repository service.
func (c *Client) UpdateRepoEntity(ctx context.Context, uri string, partial Entity) (Entity, error) {
	return c.Update(ctx, Repository, uri, partial)
}

// PutRepoEntity is Put against the repository service.
func (c *Client) PutRepoEntity(ctx context.Context, uri string, entity Entity) (Entity, error) {
	return c.Put(ctx, Repository, uri, entity)
}

// DeleteRepoEntity is Delete against the repository service.
func (c *Client) DeleteRepoEntity(ctx context.Context, uri string) error {
	return c.Delete(ctx, Repository, uri)
}

func (c *Client) validate(svc Service, uri string, entity Entity) error {
	if _, err := c.endpoint(svc); err != nil {
		return err
	}
	if uri == "" {
		return fmt.Errorf("%w: uri is required", ErrInvalidArgument)
	}
	if entity == nil {
		return fmt.Errorf("%w: entity is required", ErrInvalidArgument)
	}
	return nil
}
