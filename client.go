package shortpage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/emrgen/shortpage/internal/model"
	"github.com/emrgen/shortpage/internal/render"
	"github.com/emrgen/shortpage/internal/service"
)

// Client talks to a running shortpage server over its REST api. Admin
// operations carry the X-Admin-Token header.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, adminToken string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   adminToken,
		http: &http.Client{
			// redirects are a resolve outcome, never follow them
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *Client) CreateBlock(ctx context.Context, params service.CreateBlockParams) (*model.Block, error) {
	var block model.Block
	if err := c.do(ctx, http.MethodPost, "/api/v1/blocks", params, &block); err != nil {
		return nil, err
	}

	return &block, nil
}

func (c *Client) GetBlock(ctx context.Context, id string) (*model.Block, error) {
	var block model.Block
	if err := c.do(ctx, http.MethodGet, "/api/v1/blocks/"+id, nil, &block); err != nil {
		return nil, err
	}

	return &block, nil
}

func (c *Client) ListBlocks(ctx context.Context) ([]*model.Block, error) {
	var blocks []*model.Block
	if err := c.do(ctx, http.MethodGet, "/api/v1/blocks", nil, &blocks); err != nil {
		return nil, err
	}

	return blocks, nil
}

func (c *Client) UpdateBlock(ctx context.Context, id string, params service.UpdateBlockParams) (*model.Block, error) {
	var block model.Block
	if err := c.do(ctx, http.MethodPut, "/api/v1/blocks/"+id, params, &block); err != nil {
		return nil, err
	}

	return &block, nil
}

func (c *Client) DeleteBlock(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/blocks/"+id, nil, nil)
}

func (c *Client) BlockStats(ctx context.Context, id string) (*service.BlockStats, error) {
	var stats service.BlockStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/blocks/"+id+"/stats", nil, &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (c *Client) TogglePrivacy(ctx context.Context, id string) (*model.Block, error) {
	var block model.Block
	if err := c.do(ctx, http.MethodPut, "/api/v1/blocks/"+id+"/privacy", nil, &block); err != nil {
		return nil, err
	}

	return &block, nil
}

func (c *Client) SetLandingBlock(ctx context.Context, id string) (*model.Block, error) {
	var block model.Block
	if err := c.do(ctx, http.MethodPut, "/api/v1/blocks/"+id+"/landing", nil, &block); err != nil {
		return nil, err
	}

	return &block, nil
}

func (c *Client) GetLandingBlock(ctx context.Context) (*model.Block, error) {
	var block model.Block
	if err := c.do(ctx, http.MethodGet, "/api/v1/landing", nil, &block); err != nil {
		return nil, err
	}

	return &block, nil
}

func (c *Client) RemoveLandingBlock(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/landing", nil, nil)
}

// Resolve fetches a slug the way an audience visitor would. A redirect
// outcome is returned as a result with only the redirect populated.
func (c *Client) Resolve(ctx context.Context, slug string) (*render.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+slug, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 && res.StatusCode < 400 {
		return &render.Result{
			Renderer: model.RendererRedirect,
			Redirect: &render.Redirect{
				URL:        res.Header.Get("Location"),
				StatusCode: res.StatusCode,
			},
		}, nil
	}

	if res.StatusCode != http.StatusOK {
		return nil, apiError(res)
	}

	var result render.Result
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("X-Admin-Token", c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return apiError(res)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(res.Body).Decode(out)
}

func apiError(res *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("%s: %s", res.Status, body.Error)
	}

	return fmt.Errorf("unexpected status: %s", res.Status)
}
