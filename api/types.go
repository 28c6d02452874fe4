package api

import (
	"github.com/samber/lo"

	"imagestore/images"
	"imagestore/models"
)

type ImageResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Url  string `json:"url"`
}

type UploadResult struct {
	Name     string         `json:"name"`
	Image    *ImageResponse `json:"image,omitempty"`
	Error    *string        `json:"error,omitempty"`
	Stage    *string        `json:"stage,omitempty"`
	Orphaned *bool          `json:"orphaned,omitempty"`
}

type UploadResponse struct {
	Results   []UploadResult `json:"results"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
}

type ErrorResponse struct {
	Message *string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func toImageResponse(image models.Image) ImageResponse {
	return ImageResponse{
		ID:   image.ID,
		Name: image.Name,
		Url:  image.Url,
	}
}

func toUploadResult(result images.Result, _ int) UploadResult {
	if result.Err != nil {
		return UploadResult{
			Name:     result.Name,
			Error:    lo.ToPtr(result.Err.Error()),
			Stage:    lo.ToPtr(string(result.Err.Stage)),
			Orphaned: lo.ToPtr(result.Err.Orphaned()),
		}
	}
	return UploadResult{
		Name:  result.Name,
		Image: lo.ToPtr(toImageResponse(*result.Image)),
	}
}

func newErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Message: lo.ToPtr(message)}
}
