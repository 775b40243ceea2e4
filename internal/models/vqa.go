package models

import (
	"fmt"
	"strings"
)

// VQARequest is built by the handler from the multipart fields "question" and "image".
type VQARequest struct {
	Question    string
	Image       []byte
	FileName    string
	ContentType string
}

func (r VQARequest) Validate() error {
	if len(r.Image) == 0 {
		return fmt.Errorf("image is empty")
	}
	if strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("question is empty")
	}
	return nil
}

type VQAResponse struct {
	Answer string `json:"answer" example:"red"`
}

type StreamChunk struct {
	Delta  string `json:"delta,omitempty"`
	Answer string `json:"answer,omitempty"`
	Done   bool   `json:"done,omitempty"`
	Err    error  `json:"-"`
}
