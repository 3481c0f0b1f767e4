// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sigil-dev/filesearch/internal/pipeline"
	"github.com/sigil-dev/filesearch/internal/provider"
	"github.com/sigil-dev/filesearch/internal/store"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "service-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/status",
		Summary:     "Service and provider status",
		Tags:        []string{"system"},
	}, s.handleStatus)

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-store",
		Method:        http.MethodPost,
		Path:          "/api/v1/stores",
		Summary:       "Create an empty store",
		Tags:          []string{"stores"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateStore)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-stores",
		Method:      http.MethodGet,
		Path:        "/api/v1/stores",
		Summary:     "List stores",
		Tags:        []string{"stores"},
	}, s.handleListStores)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-store",
		Method:      http.MethodGet,
		Path:        "/api/v1/stores/{id}",
		Summary:     "Get store details",
		Tags:        []string{"stores"},
	}, s.handleGetStore)

	huma.Register(s.api, huma.Operation{
		OperationID: "query-store",
		Method:      http.MethodPost,
		Path:        "/api/v1/stores/{id}/query",
		Summary:     "Answer a question from a store",
		Tags:        []string{"stores"},
	}, s.handleQuery)
}

// --- Request/Response types for huma ---

type statusOutput struct {
	Body struct {
		Status    string          `json:"status" example:"ok" doc:"Service status"`
		Version   string          `json:"version" doc:"Server version"`
		Providers provider.Status `json:"providers" doc:"Embedding and answer backend health"`
	}
}

type createStoreOutput struct {
	Body struct {
		StoreID string `json:"store_id" example:"store_1" doc:"New store id"`
	}
}

type listStoresOutput struct {
	Body struct {
		Stores []store.Summary `json:"stores"`
	}
}

type storeIDInput struct {
	ID string `path:"id" minLength:"1" doc:"Store id"`
}

type getStoreOutput struct {
	Body store.Summary
}

type queryInput struct {
	ID   string `path:"id" minLength:"1" doc:"Store id"`
	Body struct {
		Query string `json:"query" minLength:"1" doc:"Question to answer"`
	}
}

type queryOutput struct {
	Body pipeline.QueryResult
}

// --- Handlers ---

func (s *Server) handleStatus(_ context.Context, _ *struct{}) (*statusOutput, error) {
	out := &statusOutput{}
	out.Body.Status = "ok"
	out.Body.Version = s.cfg.Version
	out.Body.Providers = provider.StatusOf(s.pipeline.Embedder(), s.pipeline.Generator())
	return out, nil
}

func (s *Server) handleCreateStore(ctx context.Context, _ *struct{}) (*createStoreOutput, error) {
	id, err := s.pipeline.CreateStore(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	out := &createStoreOutput{}
	out.Body.StoreID = id
	return out, nil
}

func (s *Server) handleListStores(ctx context.Context, _ *struct{}) (*listStoresOutput, error) {
	stores, err := s.pipeline.Stores(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	out := &listStoresOutput{}
	out.Body.Stores = stores
	return out, nil
}

func (s *Server) handleGetStore(ctx context.Context, input *storeIDInput) (*getStoreOutput, error) {
	sum, err := s.pipeline.Store(ctx, input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &getStoreOutput{Body: sum}, nil
}

func (s *Server) handleQuery(ctx context.Context, input *queryInput) (*queryOutput, error) {
	return &queryOutput{Body: s.pipeline.Query(ctx, input.ID, input.Body.Query)}, nil
}

// toHumaError converts a coded error into a huma status error.
func toHumaError(err error) error {
	return huma.NewError(fserr.HTTPStatus(err), err.Error())
}
