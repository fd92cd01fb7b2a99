package codecd

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/codecrun/internal/resourcemanager"
)

// AdminHandler exposes a read-only (plus a single reclaim action) view of
// the Resource Manager's registry over HTTP/OpenAPI, grounded on
// internal/http/handlers.HealthHandler's huma.Register usage.
type AdminHandler struct {
	registry *resourcemanager.Manager
}

// NewAdminHandler creates an admin handler over registry.
func NewAdminHandler(registry *resourcemanager.Manager) *AdminHandler {
	return &AdminHandler{registry: registry}
}

// CodecSummary is one registered facade's admin-facing representation.
type CodecSummary struct {
	ID           string    `json:"id" doc:"Resource Manager registration ID"`
	Operation    string    `json:"operation" doc:"encoder or decoder"`
	Media        string    `json:"media" doc:"video or audio"`
	LastActivity time.Time `json:"last_activity"`
	IdleFor      string    `json:"idle_for" doc:"Human-readable time since last activity"`
	Reclaimed    bool      `json:"reclaimed"`
}

// ListCodecsInput is the input for GET /codecs.
type ListCodecsInput struct{}

// ListCodecsOutput is the output for GET /codecs.
type ListCodecsOutput struct {
	Body struct {
		Codecs []CodecSummary `json:"codecs"`
	}
}

// GetCodecInput is the input for GET /codecs/{id}.
type GetCodecInput struct {
	ID string `path:"id"`
}

// GetCodecOutput is the output for GET /codecs/{id}.
type GetCodecOutput struct {
	Body CodecSummary
}

// ReclaimCodecInput is the input for POST /codecs/{id}/reclaim.
type ReclaimCodecInput struct {
	ID string `path:"id"`
}

// ReclaimCodecOutput is the output for POST /codecs/{id}/reclaim.
type ReclaimCodecOutput struct {
	Body struct {
		Reclaimed bool `json:"reclaimed"`
	}
}

// Register registers the admin routes with the API.
func (h *AdminHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listCodecs",
		Method:      "GET",
		Path:        "/codecs",
		Summary:     "List registered codec instances",
		Tags:        []string{"admin"},
	}, func(ctx context.Context, in *ListCodecsInput) (*ListCodecsOutput, error) {
		out := &ListCodecsOutput{}
		now := time.Now()
		for _, l := range h.registry.List() {
			out.Body.Codecs = append(out.Body.Codecs, toSummary(l, now))
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "getCodec",
		Method:      "GET",
		Path:        "/codecs/{id}",
		Summary:     "Get a single registered codec instance",
		Tags:        []string{"admin"},
	}, func(ctx context.Context, in *GetCodecInput) (*GetCodecOutput, error) {
		now := time.Now()
		for _, l := range h.registry.List() {
			if l.ID == in.ID {
				return &GetCodecOutput{Body: toSummary(l, now)}, nil
			}
		}
		return nil, huma.Error404NotFound("no codec instance with that id")
	})

	huma.Register(api, huma.Operation{
		OperationID: "reclaimCodec",
		Method:      "POST",
		Path:        "/codecs/{id}/reclaim",
		Summary:     "Force-reclaim a codec instance regardless of its idle time",
		Tags:        []string{"admin"},
	}, func(ctx context.Context, in *ReclaimCodecInput) (*ReclaimCodecOutput, error) {
		ok, err := h.registry.ReclaimOne(in.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("reclaiming codec instance", err)
		}
		out := &ReclaimCodecOutput{}
		out.Body.Reclaimed = ok
		return out, nil
	})
}

func toSummary(l resourcemanager.Listing, now time.Time) CodecSummary {
	return CodecSummary{
		ID:           l.ID,
		Operation:    l.Kind.Operation,
		Media:        l.Kind.Media,
		LastActivity: l.LastActivity,
		IdleFor:      now.Sub(l.LastActivity).Round(time.Second).String(),
		Reclaimed:    l.Reclaimed,
	}
}
