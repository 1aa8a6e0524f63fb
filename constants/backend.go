package constants

// Backend names, recorded as extraction_method on every record.
const (
	BackendTextLayerA = "textlayer_a"
	BackendTextLayerB = "textlayer_b"
	BackendOCR        = "ocr"
)

// EscalationThreshold is the quality score below which OCR is attempted.
const EscalationThreshold = 200
