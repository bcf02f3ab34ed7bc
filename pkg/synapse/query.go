package synapse

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/httpx"
	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/synapseapi"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Query runs q against the query resource of svc.
func (c *Client) Query(ctx context.Context, svc Service, q string) (*QueryResult, error) {
	if q == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidArgument)
	}
	if _, err := c.endpoint(svc); err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, svc, &httpx.Request{
		Method: http.MethodGet,
		URI:    "/query?" + url.Values{"query": []string{q}}.Encode(),
		Expect: []int{http.StatusOK},
	})
	if err != nil {
		return nil, err
	}
	var out QueryResult
	if err := synapseapi.DecodeResult(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decode query result: %w", err)
	}
	return &out, nil
}

// QueryRepo is Query against the repository service.
func (c *Client) QueryRepo(ctx context.Context, q string) (*QueryResult, error) {
	return c.Query(ctx, Repository, q)
}

// LookupByProperty returns the single kind entity whose property equals value,
// optionally restricted to children of parentID. No match yields nil; more
// than one yields ErrAmbiguousResult.
func (c *Client) LookupByProperty(ctx context.Context, kind, property, value, parentID string) (Entity, error) {
	q, err := lookupQuery(kind, property, value, parentID)
	if err != nil {
		return nil, err
	}
	result, err := c.Query(ctx, Repository, q)
	if err != nil {
		return nil, err
	}

	n := result.TotalNumberOfResults
	if len(result.Results) > n {
		n = len(result.Results)
	}
	if n > 1 {
		return nil, fmt.Errorf("%w: %d %s entities with %s == %q", ErrAmbiguousResult, n, kind, property, value)
	}
	if len(result.Results) == 0 {
		return nil, nil
	}

	id := result.Results[0].String(kind + ".id")
	if id == "" {
		return nil, fmt.Errorf("query row carries no %s.id", kind)
	}
	return c.Get(ctx, Repository, "/"+kind+"/"+id)
}

// GetRepoEntityByName looks up a kind entity by name.
func (c *Client) GetRepoEntityByName(ctx context.Context, kind, name, parentID string) (Entity, error) {
	return c.LookupByProperty(ctx, kind, "name", name, parentID)
}

func lookupQuery(kind, property, value, parentID string) (string, error) {
	if !identifier.MatchString(kind) {
		return "", fmt.Errorf("%w: kind %q", ErrInvalidArgument, kind)
	}
	if !identifier.MatchString(property) {
		return "", fmt.Errorf("%w: property %q", ErrInvalidArgument, property)
	}
	if strings.Contains(value, `"`) || strings.Contains(parentID, `"`) {
		return "", fmt.Errorf("%w: values must not contain double quotes", ErrInvalidArgument)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `select * from %s where %s == "%s"`, kind, property, value)
	if parentID != "" {
		fmt.Fprintf(&b, ` and parentId == "%s"`, parentID)
	}
	return b.String(), nil
}
