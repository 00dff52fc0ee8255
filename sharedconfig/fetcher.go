package sharedconfig

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	"github.com/tidwall/gjson"
	"gopkg.in/h2non/gentleman.v2"

	"github.com/sygmaprotocol/bridge-indexer/types"
)

// Fetcher retrieves the bridge's shared configuration over HTTP.
// A fetch is a single GET with no retries and nothing cached between calls.
type Fetcher struct {
	cli    *gentleman.Client
	logger log.Logger
	stage  string
}

func NewFetcher(logger log.Logger, stage string) *Fetcher {
	return &Fetcher{
		cli:    gentleman.New(),
		logger: logger,
		stage:  stage,
	}
}

// Fetch downloads and decodes the shared configuration published at url.
func (f *Fetcher) Fetch(url string) (*types.SharedConfig, error) {
	cfg, err := f.fetch(url)
	if err != nil {
		f.logger.Error("Failed to fetch shared config", "stage", f.stage, "url", url, "err", err)
		return nil, &types.FetchError{URL: url, Err: err}
	}
	f.logger.Debug("Fetched shared config", "stage", f.stage, "url", url, "domains", len(cfg.Domains))
	return cfg, nil
}

func (f *Fetcher) fetch(url string) (*types.SharedConfig, error) {
	req := f.cli.Request()
	req.URL(url)
	req.Method("GET")
	resp, err := req.Send()
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	if !resp.Ok {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body := resp.Bytes()
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("response body is not valid json")
	}
	if !gjson.GetBytes(body, "domains").IsArray() {
		return nil, fmt.Errorf("response body has no domains list")
	}

	cfg := &types.SharedConfig{}
	if err := json.Unmarshal(body, cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling shared config: %w", err)
	}
	return cfg, nil
}
