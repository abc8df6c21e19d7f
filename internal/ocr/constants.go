package ocr

import "time"

// Remote recognizer defaults
const (
	// ReadTextMethod is the unary RPC served by the OCR sidecar. Request and
	// response are google.protobuf.Struct messages.
	ReadTextMethod = "/autoquiz.ocr.v1.OCRService/ReadText"

	// Keepalive configuration
	DefaultKeepaliveTime    = 10 * time.Second
	DefaultKeepaliveTimeout = 3 * time.Second

	// Upper bound for one recognition round trip
	DefaultCallTimeout = 2 * time.Second
)

// Default recognition languages. Tesseract and the EasyOCR-style sidecar name
// the same scripts differently.
var (
	TesseractLanguages = []string{"eng", "chi_sim"}
	SidecarLanguages   = []string{"en", "ch_sim"}
)

// DefaultLanguages returns the default languages for an OCR backend name.
func DefaultLanguages(backend string) []string {
	if backend == "grpc" {
		return append([]string(nil), SidecarLanguages...)
	}
	return append([]string(nil), TesseractLanguages...)
}
