package models

// APIInfo is served on the API root.
type APIInfo struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Version     string            `json:"version"`
	Endpoints   map[string]string `json:"endpoints"`
	Model       string            `json:"model"`
	Usage       Usage             `json:"usage"`
	Status      string            `json:"status"`
}

type Usage struct {
	Method      string            `json:"method"`
	Endpoint    string            `json:"endpoint"`
	ContentType string            `json:"content_type"`
	Parameters  map[string]string `json:"parameters"`
	Example     map[string]string `json:"example"`
}

func NewAPIInfo(version, model string) APIInfo {
	return APIInfo{
		Name:        "Visual Question Answering API",
		Description: "A REST API that answers questions about images with a vision-language model",
		Version:     version,
		Endpoints: map[string]string{
			"GET /":            "API information and documentation",
			"POST /vqa":        "Submit a question and image for analysis",
			"POST /vqa/stream": "Same as /vqa, answer streamed as server-sent events",
		},
		Model: model,
		Usage: Usage{
			Method:      "POST",
			Endpoint:    "/vqa",
			ContentType: "multipart/form-data",
			Parameters: map[string]string{
				"question": "Question about the image (string)",
				"image":    "Image file (binary)",
			},
			Example: map[string]string{
				"question": "What color is the car?",
				"image":    "car_image.jpg",
			},
		},
		Status: "active",
	}
}
