package service

const (
	PNG  = "png"
	JPEG = "jpeg"
	GIF  = "gif"
	BMP  = "bmp"
	TIFF = "tiff"
	WEBP = "webp"
	PDF  = "pdf"
)

const (
	preparedMIMEType = "image/jpeg"

	systemPromptTemplate = `
You are a visual question answering assistant. Look at the image and answer the user's question.
Reply with the answer only, in at most %d words, without punctuation or explanations.`

	userPromptTemplate = "Question: %s"
)
