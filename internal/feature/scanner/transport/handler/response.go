package handler

import (
	"invisible_lens/internal/api"
	"invisible_lens/internal/feature/scanner/domain/entity"
)

func toEntityResponse(r *entity.EntityRecord) *api.EntityResponse {
	if r == nil {
		return nil
	}
	return &api.EntityResponse{
		Title:        r.Title,
		Description:  r.Description,
		VisualStyle:  r.VisualStyle,
		Meaning:      r.Meaning,
		EstimatedAge: r.EstimatedAge,
		Rarity:       string(r.Rarity),
		Accent:       r.Rarity.Accent(),
	}
}

func toSessionResponse(s entity.SessionSnapshot) api.SessionResponse {
	out := api.SessionResponse{
		ID:    s.ID,
		State: string(s.State),
		Camera: api.CameraResponse{
			Active: s.Camera.Active,
			Error:  s.Camera.Error,
		},
		UpdatedAt: s.UpdatedAt.UnixMilli(),
	}
	if s.Result != nil {
		out.Result = &api.ScanResultResponse{
			Image:     s.Result.Frame.DataURL(),
			Entity:    toEntityResponse(s.Result.Entity),
			Source:    string(s.Result.Source),
			Fallback:  s.Result.Source == entity.SourceFallback,
			Timestamp: s.Result.CreatedAt.UnixMilli(),
		}
	}
	return out
}
