package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/base44-client/internal/http"
	"github.com/fivetwenty-io/base44-client/pkg/base44"
)

// EntitiesClient implements base44.EntitiesClient. It keeps no registry of
// collection names: any non-empty name yields a working handle and unknown
// names surface as server 404s at call time. Adding client-side name
// validation here would break the no-pre-declaration contract.
type EntitiesClient struct {
	httpClient *http.Client
	appID      string
}

func newEntitiesClient(httpClient *http.Client, appID string) *EntitiesClient {
	return &EntitiesClient{httpClient: httpClient, appID: appID}
}

// Entity implements base44.EntitiesClient.Entity.
func (e *EntitiesClient) Entity(name string) base44.EntityClient {
	entity := &EntityClient{httpClient: e.httpClient, name: name}

	if name == "" {
		// The only client-side rejection: "" cannot form a well-formed URL.
		entity.nameErr = base44.NewValidationError("entity name is required")
		entity.nameErr.Err = base44.ErrEntityNameRequired

		return entity
	}

	entity.basePath = appPath(e.appID, "/entities/"+url.PathEscape(name))

	return entity
}

// EntityClient implements base44.EntityClient for one collection.
type EntityClient struct {
	httpClient *http.Client
	name       string
	basePath   string
	nameErr    *base44.Error
}

// listQuery renders ListOptions into query parameters.
func listQuery(opts *base44.ListOptions) url.Values {
	query := url.Values{}

	if opts == nil {
		return query
	}

	if opts.Sort != "" {
		query.Set("sort", opts.Sort)
	}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	if opts.Skip > 0 {
		query.Set("skip", strconv.Itoa(opts.Skip))
	}

	if len(opts.Fields) > 0 {
		query.Set("fields", strings.Join(opts.Fields, ","))
	}

	return query
}

// encodeFilter renders a filter mapping for the "q" parameter. A nil filter
// encodes as the empty mapping.
func encodeFilter(query base44.QueryFilter) (string, error) {
	if query == nil {
		query = base44.QueryFilter{}
	}

	data, err := json.Marshal(query)
	if err != nil {
		return "", fmt.Errorf("encoding filter query: %w", err)
	}

	return string(data), nil
}

// List implements base44.EntityClient.List.
func (e *EntityClient) List(ctx context.Context, opts *base44.ListOptions) ([]base44.Entity, error) {
	if e.nameErr != nil {
		return nil, e.nameErr
	}

	resp, err := e.httpClient.Get(ctx, e.basePath, listQuery(opts))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", e.name, err)
	}

	var records []base44.Entity

	err = json.Unmarshal(resp.Body, &records)
	if err != nil {
		return nil, fmt.Errorf("parsing %s list response: %w", e.name, err)
	}

	return records, nil
}

// Filter implements base44.EntityClient.Filter.
func (e *EntityClient) Filter(ctx context.Context, query base44.QueryFilter, opts *base44.ListOptions) ([]base44.Entity, error) {
	if e.nameErr != nil {
		return nil, e.nameErr
	}

	encoded, err := encodeFilter(query)
	if err != nil {
		return nil, err
	}

	params := listQuery(opts)
	params.Set("q", encoded)

	resp, err := e.httpClient.Get(ctx, e.basePath, params)
	if err != nil {
		return nil, fmt.Errorf("filtering %s: %w", e.name, err)
	}

	var records []base44.Entity

	err = json.Unmarshal(resp.Body, &records)
	if err != nil {
		return nil, fmt.Errorf("parsing %s filter response: %w", e.name, err)
	}

	return records, nil
}

// Get implements base44.EntityClient.Get.
func (e *EntityClient) Get(ctx context.Context, id string) (base44.Entity, error) {
	if e.nameErr != nil {
		return nil, e.nameErr
	}

	resp, err := e.httpClient.Get(ctx, e.basePath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", e.name, err)
	}

	var record base44.Entity

	err = json.Unmarshal(resp.Body, &record)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", e.name, err)
	}

	return record, nil
}

// Create implements base44.EntityClient.Create.
func (e *EntityClient) Create(ctx context.Context, data base44.Entity) (base44.Entity, error) {
	if e.nameErr != nil {
		return nil, e.nameErr
	}

	resp, err := e.httpClient.Post(ctx, e.basePath, data)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", e.name, err)
	}

	var record base44.Entity

	err = json.Unmarshal(resp.Body, &record)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", e.name, err)
	}

	return record, nil
}

// Update implements base44.EntityClient.Update.
func (e *EntityClient) Update(ctx context.Context, id string, data base44.Entity) (base44.Entity, error) {
	if e.nameErr != nil {
		return nil, e.nameErr
	}

	resp, err := e.httpClient.Put(ctx, e.basePath+"/"+url.PathEscape(id), data)
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", e.name, err)
	}

	var record base44.Entity

	err = json.Unmarshal(resp.Body, &record)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", e.name, err)
	}

	return record, nil
}

// Delete implements base44.EntityClient.Delete.
func (e *EntityClient) Delete(ctx context.Context, id string) error {
	if e.nameErr != nil {
		return e.nameErr
	}

	_, err := e.httpClient.Delete(ctx, e.basePath+"/"+url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("deleting %s: %w", e.name, err)
	}

	return nil
}

// DeleteMany implements base44.EntityClient.DeleteMany.
func (e *EntityClient) DeleteMany(ctx context.Context, query base44.QueryFilter) (int, error) {
	if e.nameErr != nil {
		return 0, e.nameErr
	}

	if query == nil {
		query = base44.QueryFilter{}
	}

	resp, err := e.httpClient.DeleteWithBody(ctx, e.basePath, query)
	if err != nil {
		return 0, fmt.Errorf("deleting %s records: %w", e.name, err)
	}

	var result struct {
		DeletedCount int `json:"deletedCount"`
	}

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return 0, fmt.Errorf("parsing %s delete response: %w", e.name, err)
	}

	return result.DeletedCount, nil
}

// BulkCreate implements base44.EntityClient.BulkCreate.
func (e *EntityClient) BulkCreate(ctx context.Context, records []base44.Entity) (*base44.BulkResult, error) {
	if e.nameErr != nil {
		return nil, e.nameErr
	}

	resp, err := e.httpClient.Post(ctx, e.basePath+"/bulk", records)
	if err != nil {
		return nil, fmt.Errorf("bulk creating %s: %w", e.name, err)
	}

	var result base44.BulkResult

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing %s bulk response: %w", e.name, err)
	}

	return &result, nil
}

// BulkUpdate implements base44.EntityClient.BulkUpdate.
func (e *EntityClient) BulkUpdate(ctx context.Context, updates []base44.BulkUpdate) (*base44.BulkResult, error) {
	if e.nameErr != nil {
		return nil, e.nameErr
	}

	resp, err := e.httpClient.Put(ctx, e.basePath+"/bulk", updates)
	if err != nil {
		return nil, fmt.Errorf("bulk updating %s: %w", e.name, err)
	}

	var result base44.BulkResult

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing %s bulk response: %w", e.name, err)
	}

	return &result, nil
}

// Import implements base44.EntityClient.Import.
func (e *EntityClient) Import(ctx context.Context, file base44.FileUpload, opts *base44.ImportOptions) (*base44.ImportResult, error) {
	if e.nameErr != nil {
		return nil, e.nameErr
	}

	fields := map[string]interface{}{"file": file}

	if opts != nil {
		fields["skipDuplicates"] = opts.SkipDuplicates
		fields["updateExisting"] = opts.UpdateExisting

		if opts.Mapping != nil {
			fields["mapping"] = opts.Mapping
		}
	}

	resp, err := e.httpClient.PostMultipart(ctx, e.basePath+"/import", fields)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", e.name, err)
	}

	var result base44.ImportResult

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing %s import response: %w", e.name, err)
	}

	return &result, nil
}

// Export implements base44.EntityClient.Export. The response body is
// returned raw: the server decides the byte format.
func (e *EntityClient) Export(ctx context.Context, query base44.QueryFilter, format string) ([]byte, error) {
	if e.nameErr != nil {
		return nil, e.nameErr
	}

	encoded, err := encodeFilter(query)
	if err != nil {
		return nil, err
	}

	if format == "" {
		format = "json"
	}

	params := url.Values{}
	params.Set("format", format)
	params.Set("q", encoded)

	resp, err := e.httpClient.Get(ctx, e.basePath+"/export", params)
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", e.name, err)
	}

	return resp.Body, nil
}

// Count implements base44.EntityClient.Count.
func (e *EntityClient) Count(ctx context.Context, query base44.QueryFilter) (int, error) {
	if e.nameErr != nil {
		return 0, e.nameErr
	}

	encoded, err := encodeFilter(query)
	if err != nil {
		return 0, err
	}

	params := url.Values{}
	params.Set("q", encoded)

	resp, err := e.httpClient.Get(ctx, e.basePath+"/count", params)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", e.name, err)
	}

	var result struct {
		Count int `json:"count"`
	}

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return 0, fmt.Errorf("parsing %s count response: %w", e.name, err)
	}

	return result.Count, nil
}

// Exists implements base44.EntityClient.Exists: false exactly on a 404
// probe failure, any other failure is re-raised.
func (e *EntityClient) Exists(ctx context.Context, id string) (bool, error) {
	if e.nameErr != nil {
		return false, e.nameErr
	}

	_, err := e.httpClient.Get(ctx, e.basePath+"/"+url.PathEscape(id)+"/exists", nil)
	if err != nil {
		if base44.IsNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("checking %s existence: %w", e.name, err)
	}

	return true, nil
}
