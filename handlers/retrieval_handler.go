package handlers

import (
	"context"
	"net/http"

	"github.com/upb/semantic-retrieval/middleware"
	"github.com/upb/semantic-retrieval/services/retrieval"
	"github.com/upb/semantic-retrieval/utils"
	"go.uber.org/zap"
)

// RetrieveRequest is the JSON body of POST /retrieve. Optional fields are
// pointers so an explicit zero can be told apart from an absent field.
type RetrieveRequest struct {
	Query           *string  `json:"query" validate:"required,notblank"`
	TopK            *int     `json:"topK,omitempty" validate:"omitempty,gte=1"`
	Threshold       *float64 `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	KnowledgeBaseID *string  `json:"knowledgeBaseId,omitempty" validate:"omitempty,max=256"`
}

// RetrievalService defines the interface for retrieval operations
type RetrievalService interface {
	Retrieve(ctx context.Context, req retrieval.Request) (*retrieval.Response, error)
	Options() retrieval.Options
}

// RetrievalHandler handles retrieval HTTP requests
type RetrievalHandler struct {
	service RetrievalService
	logger  *zap.Logger
}

// NewRetrievalHandler creates a new RetrievalHandler
func NewRetrievalHandler(service RetrievalService, logger *zap.Logger) *RetrievalHandler {
	return &RetrievalHandler{
		service: service,
		logger:  logger,
	}
}

// HandleRetrieve handles POST /api/v1/retrieve
func (h *RetrievalHandler) HandleRetrieve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var body RetrieveRequest
	if err := utils.DecodeJSON(r.Body, &body); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	if err := utils.ValidateStruct(&body); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	opts := h.service.Options()
	req := retrieval.Request{
		Query:     *body.Query,
		TopK:      opts.DefaultTopK,
		Threshold: opts.DefaultThreshold,
		ScopeID:   body.KnowledgeBaseID,
	}
	if body.TopK != nil {
		req.TopK = *body.TopK
	}
	if body.Threshold != nil {
		req.Threshold = *body.Threshold
	}

	resp, err := h.service.Retrieve(ctx, req)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("retrieval successful",
		zap.String("request_id", requestID),
		zap.Int("documents", len(resp.Documents)),
		zap.String("embedding_source", resp.EmbeddingSource))

	if err := utils.WriteOK(w, resp); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}
