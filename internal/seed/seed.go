// Package seed loads the companies a run covers, from a local file or a remote
// endpoint, and drops records that fail validation.
package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/atsfeed/internal/httpclient"
	"github.com/amishk599/atsfeed/internal/model"
)

// FileSource reads companies from a JSON array, or from YAML when the file
// extension is .yaml or .yml.
type FileSource struct {
	path     string
	validate *validator.Validate
	logger   *slog.Logger
}

func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, validate: validator.New(), logger: logger}
}

func (s *FileSource) Companies(_ context.Context) ([]model.Company, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file %s: %w", s.path, err)
	}

	var companies []model.Company
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &companies)
	default:
		err = json.Unmarshal(data, &companies)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", s.path, err)
	}

	return validCompanies(s.validate, companies, s.logger), nil
}

// RemoteSource fetches companies from an HTTP endpoint. The body is either a
// JSON array or an object with a "companies" array.
type RemoteSource struct {
	url      string
	client   *httpclient.Client
	validate *validator.Validate
	logger   *slog.Logger
}

// NewRemoteSource creates a RemoteSource. client should carry the shared-secret
// headers.
func NewRemoteSource(url string, client *httpclient.Client, logger *slog.Logger) *RemoteSource {
	return &RemoteSource{url: url, client: client, validate: validator.New(), logger: logger}
}

func (s *RemoteSource) Companies(ctx context.Context) ([]model.Company, error) {
	resp, err := s.client.Get(ctx, "get companies", s.url)
	if err != nil {
		return nil, fmt.Errorf("fetching companies: %w", err)
	}

	companies, err := decodeCompanies(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding companies from %s: %w", s.url, err)
	}

	return validCompanies(s.validate, companies, s.logger), nil
}

func decodeCompanies(body []byte) ([]model.Company, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var companies []model.Company
		err := json.Unmarshal(body, &companies)
		return companies, err
	}
	var wrapped struct {
		Companies []model.Company `json:"companies"`
	}
	err := json.Unmarshal(body, &wrapped)
	return wrapped.Companies, err
}

// validCompanies returns the records that pass struct validation, logging the rest.
func validCompanies(v *validator.Validate, in []model.Company, logger *slog.Logger) []model.Company {
	out := make([]model.Company, 0, len(in))
	for i, c := range in {
		if err := v.Struct(c); err != nil {
			logger.Warn("skipping invalid company record",
				"index", i,
				"company", c.Name,
				"error", err,
			)
			continue
		}
		out = append(out, c)
	}
	return out
}

// Static serves a fixed company list.
type Static []model.Company

func (s Static) Companies(context.Context) ([]model.Company, error) {
	return s, nil
}
