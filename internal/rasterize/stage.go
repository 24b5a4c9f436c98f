package rasterize

// Stage is a step of a single conversion.
type Stage string

const (
	StageUninitialized    Stage = "uninitialized"
	StageLibraryLoading   Stage = "library_loading"
	StageLibraryReady     Stage = "library_ready"
	StageDocumentDecoding Stage = "document_decoding"
	StagePageRendering    Stage = "page_rendering"
	StageImageEncoding    Stage = "image_encoding"
	StageDone             Stage = "done"
	StageFailed           Stage = "failed"
)
