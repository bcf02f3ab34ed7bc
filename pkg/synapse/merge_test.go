package synapse

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sage-Bionetworks/synapse_sdk_go/pkg/synapse/mock"
)

func TestMergeEntityOverwritesTopLevelKeys(t *testing.T) {
	stored := Entity{"a": float64(1), "b": float64(2), "nested": map[string]any{"x": "y"}}
	partial := Entity{"b": float64(3), "nested": map[string]any{"z": "w"}}

	merged, err := Merge(stored, partial, KindEntity)
	require.NoError(t, err)
	assert.Equal(t, Entity{"a": float64(1), "b": float64(3), "nested": map[string]any{"z": "w"}}, merged)
	assert.Equal(t, float64(2), stored["b"], "stored must not change")

	again, err := Merge(merged, partial, KindEntity)
	require.NoError(t, err)
	assert.Equal(t, merged, again)
}

func TestMergeAnnotationsKeepsSiblings(t *testing.T) {
	stored := Entity{"x": map[string]any{"k1": float64(1), "k2": float64(2)}}
	partial := Entity{"x": map[string]any{"k2": float64(9)}, "y": map[string]any{"new": "v"}}

	merged, err := Merge(stored, partial, KindAnnotations)
	require.NoError(t, err)
	assert.Equal(t, Entity{
		"x": map[string]any{"k1": float64(1), "k2": float64(9)},
		"y": map[string]any{"new": "v"},
	}, merged)
	assert.Equal(t, float64(2), stored["x"].(map[string]any)["k2"])
}

func TestMergeAnnotationsRejectsScalars(t *testing.T) {
	_, err := Merge(Entity{"x": map[string]any{}}, Entity{"x": "flat"}, KindAnnotations)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestMergeDoesNotAliasPartial(t *testing.T) {
	list := []any{"a"}
	partial := Entity{"tags": list, "bag": map[string]any{"k": "v"}}

	merged, err := Merge(Entity{}, partial, KindEntity)
	require.NoError(t, err)
	merged["tags"].([]any)[0] = "changed"
	merged["bag"].(map[string]any)["k"] = "changed"
	assert.Equal(t, "a", list[0])
	assert.Equal(t, "v", partial["bag"].(map[string]any)["k"])
}

func TestUpdateIsIdempotent(t *testing.T) {
	env := loggedIn(t)
	ctx := context.Background()

	created, err := env.client.CreateProject(ctx, Entity{"a": float64(1), "b": float64(2)})
	require.NoError(t, err)

	first, err := env.client.UpdateRepoEntity(ctx, created.URI(), Entity{"b": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, float64(1), first["a"])
	assert.Equal(t, float64(3), first["b"])

	second, err := env.client.UpdateRepoEntity(ctx, created.URI(), Entity{"b": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, float64(1), second["a"])
	assert.Equal(t, float64(3), second["b"])
}

func TestUpdateAnnotations(t *testing.T) {
	env := loggedIn(t)
	ctx := context.Background()

	dataset, err := env.client.CreateDataset(ctx, Entity{"name": "annotated"})
	require.NoError(t, err)
	annotationsURI := dataset.String("annotations")

	_, err = env.client.UpdateAnnotations(ctx, Repository, annotationsURI, Entity{
		"stringAnnotations": map[string]any{"k1": []any{"1"}, "k2": []any{"2"}},
	})
	require.NoError(t, err)

	updated, err := env.client.UpdateAnnotations(ctx, Repository, annotationsURI, Entity{
		"stringAnnotations": map[string]any{"k2": []any{"9"}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k1": []any{"1"}, "k2": []any{"9"}}, updated.Map("stringAnnotations"))

	// the same key in a plain entity update replaces the whole bag
	replaced, err := env.client.Update(ctx, Repository, annotationsURI, Entity{
		"stringAnnotations": map[string]any{"k3": []any{"3"}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k3": []any{"3"}}, replaced.Map("stringAnnotations"))
}

func TestUpdateMissingResourceReturnsNil(t *testing.T) {
	env := loggedIn(t)

	got, err := env.client.UpdateRepoEntity(context.Background(), "/project/404", Entity{"name": "ghost"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateCannotOverrideStoredETag(t *testing.T) {
	env := loggedIn(t)
	ctx := context.Background()

	created, err := env.client.CreateProject(ctx, Entity{"name": "Sage"})
	require.NoError(t, err)

	updated, err := env.client.UpdateRepoEntity(ctx, created.URI(), Entity{"etag": "forged", "name": "Sage Bionetworks"})
	require.NoError(t, err)
	assert.Equal(t, created.ETag(), env.rec.last().Header.Get("ETag"))
	assert.Equal(t, "Sage Bionetworks", updated.String("name"))
}

func TestUpdateRequiresStoredETag(t *testing.T) {
	var puts int
	m := mock.New()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			puts++
		}
		io.WriteString(w, `{"id":"1","name":"no etag"}`)
	})
	env := newTestEnvWithHandler(t, m, handler)

	_, err := env.client.UpdateRepoEntity(context.Background(), "/project/1", Entity{"name": "x"})
	assert.True(t, errors.Is(err, ErrETagRequired))
	assert.Zero(t, puts)
}

func TestUpdateLostRaceIsConflict(t *testing.T) {
	var getCalls int
	m := mock.New()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			getCalls++
			io.WriteString(w, `{"id":"1","etag":"v1","name":"old"}`)
		case http.MethodPut:
			assert.Equal(t, "v1", r.Header.Get("ETag"))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPreconditionFailed)
			io.WriteString(w, `{"reason":"etag v2 expected"}`)
		}
	})
	env := newTestEnvWithHandler(t, m, handler)

	_, err := env.client.UpdateRepoEntity(context.Background(), "/project/1", Entity{"name": "new"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, 1, getCalls)
}

func TestMergeAnnotationsRejectsNull(t *testing.T) {
	_, err := Merge(Entity{"x": map[string]any{"k": "v"}}, Entity{"x": nil}, KindAnnotations)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = Merge(Entity{}, Entity{"fresh": nil}, KindAnnotations)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	merged, err := Merge(Entity{"x": "old"}, Entity{"x": nil}, KindEntity)
	require.NoError(t, err)
	assert.Equal(t, Entity{"x": nil}, merged)
}

func TestUpdateAcceptsNoContent(t *testing.T) {
	var puts int
	m := mock.New()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, `{"id":"1","etag":"v1","name":"old"}`)
		case http.MethodPut:
			puts++
			w.WriteHeader(http.StatusNoContent)
		}
	})
	env := newTestEnvWithHandler(t, m, handler)

	updated, err := env.client.UpdateRepoEntity(context.Background(), "/project/1", Entity{"name": "new"})
	require.NoError(t, err)
	assert.Equal(t, 1, puts)
	assert.Equal(t, Entity{"id": "1", "etag": "v1", "name": "new"}, updated)
	assert.JSONEq(t, `{"id":"1","etag":"v1","name":"new"}`, lastBody(t, env))
}
